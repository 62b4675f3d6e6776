package models

import "time"

// Stored bill statuses. StatusOverdue is only ever derived, never chosen.
const (
	StatusPaid    = "paid"
	StatusUnpaid  = "unpaid"
	StatusOverdue = "overdue"
)

// Display statuses add the two "not yet due" urgency levels.
const (
	DisplayDueSoon  = "due_soon"
	DisplayUpcoming = "upcoming"
)

// Bill is the central entity.
type Bill struct {
	ID         int64   `json:"id"`
	UserID     string  `json:"userId"`
	Name       string  `json:"name"`
	Amount     string  `json:"amount"`  // decimal string, up to 2 fractional digits
	DueDate    string  `json:"dueDate"` // ISO date string as supplied
	CategoryID *int64  `json:"categoryId"`
	Category   *string `json:"category"` // legacy free-text label
	Company    *string `json:"company"`
	Notes      *string `json:"notes"`
	Status     string  `json:"status"`
	Recurring  bool    `json:"recurring"`
	ImageURL   *string `json:"imageUrl"`

	// DisplayStatus is recomputed on every read; it is not persisted.
	DisplayStatus string `json:"displayStatus,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
