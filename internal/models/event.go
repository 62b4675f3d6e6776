package models

import "time"

// Event represents a loggable action in a user's activity feed.
type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Type      string    `json:"type"`  // e.g., "bill.create", "bill.paid"
	Level     string    `json:"level"` // e.g., "info", "warn"
	Message   string    `json:"message"`
	BillID    *int64    `json:"billId,omitempty"` // Nullable for account-wide events
	CreatedAt time.Time `json:"createdAt"`
}
