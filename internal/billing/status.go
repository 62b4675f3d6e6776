// Package billing holds the bill status rules. The same functions decide what
// is persisted on write and what is displayed on read, so the two can only
// differ by the passage of time between them.
package billing

import (
	"fmt"
	"time"

	"github.com/isdelr/bill-tracker-be/internal/models"
)

// DueSoonDays is the inclusive window, in calendar days, for "due soon".
const DueSoonDays = 7

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Today returns the calendar day of now in now's own location.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDueDate returns the calendar day named by an ISO date ("2006-01-02")
// or ISO timestamp. Timestamps with an offset are moved to local time first.
func ParseDueDate(s string) (time.Time, error) {
	if len(s) == len("2006-01-02") {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid due date %q: %w", s, err)
		}
		return t, nil
	}
	for _, layout := range dueDateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return Today(t.In(time.Local)), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due date %q", s)
}

// DaysUntil is the whole number of calendar days from today to due. It is
// negative for past dates.
func DaysUntil(due, today time.Time) int {
	return int(due.Sub(today).Hours() / 24)
}

// PersistedStatus is the status to store for a bill. Overdue is always
// derived: a supplied overdue counts as unpaid, and an unpaid bill whose due
// date is strictly before today is stored as overdue. A due date that does
// not parse never forces overdue.
func PersistedStatus(status, dueDate string, today time.Time) string {
	if status == models.StatusOverdue {
		status = models.StatusUnpaid
	}
	if status != models.StatusUnpaid {
		return status
	}
	due, err := ParseDueDate(dueDate)
	if err != nil {
		return status
	}
	if due.Before(today) {
		return models.StatusOverdue
	}
	return status
}

// DisplayStatus classifies a bill for display from its stored status and due
// date alone: paid, overdue, due_soon (within DueSoonDays) or upcoming.
func DisplayStatus(status, dueDate string, today time.Time) string {
	if status == models.StatusPaid {
		return models.StatusPaid
	}
	due, err := ParseDueDate(dueDate)
	if err != nil {
		return models.DisplayUpcoming
	}
	if due.Before(today) {
		return models.StatusOverdue
	}
	if DaysUntil(due, today) <= DueSoonDays {
		return models.DisplayDueSoon
	}
	return models.DisplayUpcoming
}

// Decorate fills DisplayStatus on each bill in place.
func Decorate(bills []models.Bill, today time.Time) {
	for i := range bills {
		bills[i].DisplayStatus = DisplayStatus(bills[i].Status, bills[i].DueDate, today)
	}
}
