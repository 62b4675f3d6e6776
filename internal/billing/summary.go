package billing

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/isdelr/bill-tracker-be/internal/models"
)

// maxUpcoming caps Summary.UpcomingBills.
const maxUpcoming = 3

// Summary holds the dashboard aggregates.
type Summary struct {
	TotalBills    int           `json:"totalBills"`
	DueThisWeek   int           `json:"dueThisWeek"`
	Overdue       int           `json:"overdue"`
	MonthlyTotal  string        `json:"monthlyTotal"`
	UpcomingBills []models.Bill `json:"upcomingBills"`
}

// Summarize computes dashboard aggregates. bills are expected in due date
// order so that UpcomingBills holds the most urgent unpaid ones, overdue first.
func Summarize(bills []models.Bill, today time.Time) Summary {
	s := Summary{
		TotalBills:    len(bills),
		UpcomingBills: []models.Bill{},
	}
	total := decimal.Zero

	for _, bill := range bills {
		amount, err := decimal.NewFromString(bill.Amount)
		if err != nil {
			log.Warn().Err(err).Int64("bill_id", bill.ID).Msg("Skipping unparseable amount in summary")
		} else {
			total = total.Add(amount)
		}

		display := DisplayStatus(bill.Status, bill.DueDate, today)
		switch display {
		case models.StatusPaid:
			continue
		case models.StatusOverdue:
			s.Overdue++
		case models.DisplayDueSoon:
			s.DueThisWeek++
		default:
			continue
		}

		if len(s.UpcomingBills) < maxUpcoming {
			bill.DisplayStatus = display
			s.UpcomingBills = append(s.UpcomingBills, bill)
		}
	}

	s.MonthlyTotal = total.StringFixed(2)
	return s
}
