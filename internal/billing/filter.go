package billing

import (
	"strconv"
	"strings"
	"time"

	"github.com/isdelr/bill-tracker-be/internal/models"
)

// BillFilter narrows a bill list. Empty fields and "all" match everything.
type BillFilter struct {
	Search   string // case-insensitive substring of name or company
	Category string // category id or legacy category label
	Status   string // paid, unpaid (stored) or overdue, due_soon, upcoming (display)
}

// Filter returns the bills matching f, preserving order.
func Filter(bills []models.Bill, f BillFilter, today time.Time) []models.Bill {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Bill, 0, len(bills))
	for _, bill := range bills {
		if search != "" && !matchesSearch(bill, search) {
			continue
		}
		if !matchesCategory(bill, f.Category) {
			continue
		}
		if !matchesStatus(bill, f.Status, today) {
			continue
		}
		out = append(out, bill)
	}
	return out
}

func matchesSearch(bill models.Bill, search string) bool {
	if strings.Contains(strings.ToLower(bill.Name), search) {
		return true
	}
	return bill.Company != nil && strings.Contains(strings.ToLower(*bill.Company), search)
}

func matchesCategory(bill models.Bill, category string) bool {
	if category == "" || category == "all" {
		return true
	}
	if bill.CategoryID != nil && strconv.FormatInt(*bill.CategoryID, 10) == category {
		return true
	}
	return bill.Category != nil && *bill.Category == category
}

func matchesStatus(bill models.Bill, status string, today time.Time) bool {
	switch status {
	case "", "all":
		return true
	case models.StatusPaid, models.StatusUnpaid:
		return bill.Status == status
	default:
		return DisplayStatus(bill.Status, bill.DueDate, today) == status
	}
}
