package billing

import (
	"testing"

	"github.com/isdelr/bill-tracker-be/internal/models"
)

func strPtr(s string) *string { return &s }

func TestSummarize(t *testing.T) {
	today := day("2024-06-15")
	bills := []models.Bill{
		{ID: 1, Name: "Rent", Amount: "1200.00", DueDate: "2024-06-01", Status: models.StatusOverdue},
		{ID: 2, Name: "Gym", Amount: "30", DueDate: "2024-06-10", Status: models.StatusPaid},
		{ID: 3, Name: "Power", Amount: "80.5", DueDate: "2024-06-16", Status: models.StatusUnpaid},
		{ID: 4, Name: "Phone", Amount: "45.25", DueDate: "2024-06-22", Status: models.StatusUnpaid},
		{ID: 5, Name: "Water", Amount: "20", DueDate: "2024-06-20", Status: models.StatusUnpaid},
		{ID: 6, Name: "Insurance", Amount: "300", DueDate: "2024-09-01", Status: models.StatusUnpaid},
	}

	s := Summarize(bills, today)

	if s.TotalBills != 6 {
		t.Errorf("TotalBills = %d, want 6", s.TotalBills)
	}
	if s.Overdue != 1 {
		t.Errorf("Overdue = %d, want 1", s.Overdue)
	}
	if s.DueThisWeek != 3 {
		t.Errorf("DueThisWeek = %d, want 3", s.DueThisWeek)
	}
	if s.MonthlyTotal != "1675.75" {
		t.Errorf("MonthlyTotal = %s, want 1675.75", s.MonthlyTotal)
	}
	if len(s.UpcomingBills) != 3 {
		t.Fatalf("UpcomingBills has %d entries, want 3", len(s.UpcomingBills))
	}
	wantIDs := []int64{1, 3, 4}
	for i, id := range wantIDs {
		if s.UpcomingBills[i].ID != id {
			t.Errorf("UpcomingBills[%d].ID = %d, want %d", i, s.UpcomingBills[i].ID, id)
		}
	}
	if s.UpcomingBills[0].DisplayStatus != models.StatusOverdue {
		t.Errorf("first upcoming display status = %q, want overdue", s.UpcomingBills[0].DisplayStatus)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, day("2024-06-15"))
	if s.TotalBills != 0 || s.Overdue != 0 || s.DueThisWeek != 0 {
		t.Errorf("unexpected counts for empty input: %+v", s)
	}
	if s.MonthlyTotal != "0.00" {
		t.Errorf("MonthlyTotal = %s, want 0.00", s.MonthlyTotal)
	}
	if s.UpcomingBills == nil {
		t.Error("UpcomingBills should be an empty slice, not nil")
	}
}

func TestFilter(t *testing.T) {
	today := day("2024-06-15")
	utilities := int64(7)
	bills := []models.Bill{
		{ID: 1, Name: "Rent", DueDate: "2024-06-01", Status: models.StatusOverdue, Category: strPtr("rent")},
		{ID: 2, Name: "Electric", Company: strPtr("City Power"), DueDate: "2024-06-01", Status: models.StatusUnpaid, CategoryID: &utilities},
		{ID: 3, Name: "Netflix", DueDate: "2024-07-30", Status: models.StatusPaid},
	}

	tests := []struct {
		name   string
		filter BillFilter
		want   []int64
	}{
		{"no filter", BillFilter{}, []int64{1, 2, 3}},
		{"all keywords", BillFilter{Category: "all", Status: "all"}, []int64{1, 2, 3}},
		{"search name", BillFilter{Search: "NET"}, []int64{3}},
		{"search company", BillFilter{Search: "power"}, []int64{2}},
		{"legacy category", BillFilter{Category: "rent"}, []int64{1}},
		{"category id", BillFilter{Category: "7"}, []int64{2}},
		{"stored unpaid", BillFilter{Status: "unpaid"}, []int64{2}},
		{"display overdue", BillFilter{Status: "overdue"}, []int64{1, 2}},
		{"paid", BillFilter{Status: "paid"}, []int64{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(bills, tt.filter, today)
			if len(got) != len(tt.want) {
				t.Fatalf("Filter returned %d bills, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("Filter()[%d].ID = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}
