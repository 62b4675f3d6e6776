package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/bill-tracker-be/internal/database"
	"github.com/isdelr/bill-tracker-be/internal/models"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, userID, eventType, level, message string, billID *int64) error
	GetRecentEvents(ctx context.Context, userID string, limit int) ([]models.Event, error)
}

// EventService records each user's activity feed.
type EventService struct {
	db  *database.DB
	now func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(db *database.DB) *EventService {
	return &EventService{db: db, now: time.Now}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(ctx context.Context, userID, eventType, level, message string, billID *int64) error {
	event := models.Event{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      eventType,
		Level:     level,
		Message:   message,
		BillID:    billID,
		CreatedAt: s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, user_id, type, level, message, bill_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		event.ID, event.UserID, event.Type, event.Level, event.Message, event.BillID, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetRecentEvents retrieves a user's most recent events, newest first.
func (s *EventService) GetRecentEvents(ctx context.Context, userID string, limit int) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, level, message, bill_id, created_at FROM events WHERE user_id = ? ORDER BY created_at DESC LIMIT ?",
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		event := models.Event{UserID: userID}
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.BillID, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// recordEvent writes an activity entry. A failed write is logged and never
// fails the operation that produced it.
func recordEvent(ctx context.Context, events EventServiceProvider, userID, eventType, level, message string, billID *int64) {
	if events == nil {
		return
	}
	if err := events.CreateEvent(ctx, userID, eventType, level, message, billID); err != nil {
		log.Warn().Err(err).Str("userID", userID).Str("type", eventType).Msg("Failed to record event")
	}
}
