package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/isdelr/bill-tracker-be/internal/database"
	"github.com/isdelr/bill-tracker-be/internal/models"
)

// SessionServiceProvider defines the interface for session storage.
type SessionServiceProvider interface {
	CreateSession(ctx context.Context, userID string, data map[string]string, ttl time.Duration) (models.Session, error)
	GetSession(ctx context.Context, sid string) (models.Session, error)
	DeleteSession(ctx context.Context, sid string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

// SessionService stores login sessions in the sessions table.
type SessionService struct {
	db  *database.DB
	now func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(db *database.DB) *SessionService {
	return &SessionService{db: db, now: time.Now}
}

// CreateSession persists a new session that expires after ttl.
func (s *SessionService) CreateSession(ctx context.Context, userID string, data map[string]string, ttl time.Duration) (models.Session, error) {
	blob, err := json.Marshal(data)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to encode session data: %w", err)
	}

	session := models.Session{
		ID:     uuid.NewString(),
		UserID: userID,
		Data:   string(blob),
		Expire: s.now().UTC().Add(ttl),
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO sessions (sid, user_id, sess, expire) VALUES (?, ?, ?, ?)",
		session.ID, session.UserID, session.Data, session.Expire,
	)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// GetSession returns a live session. Expired sessions read as ErrNotFound.
func (s *SessionService) GetSession(ctx context.Context, sid string) (models.Session, error) {
	var session models.Session
	err := s.db.QueryRowContext(ctx,
		"SELECT sid, user_id, sess, expire FROM sessions WHERE sid = ?", sid,
	).Scan(&session.ID, &session.UserID, &session.Data, &session.Expire)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to get session: %w", err)
	}
	if !session.Expire.After(s.now()) {
		return models.Session{}, ErrNotFound
	}
	return session, nil
}

// DeleteSession removes a session. Deleting a missing session is not an error.
func (s *SessionService) DeleteSession(ctx context.Context, sid string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE sid = ?", sid); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every expired session and returns how many went.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expire <= ?", s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}
