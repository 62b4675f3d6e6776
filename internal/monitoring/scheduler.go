package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// OverdueRefresher moves past-due unpaid bills to overdue.
type OverdueRefresher interface {
	RefreshOverdue(ctx context.Context) (int, error)
}

// SessionPurger deletes expired sessions.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Scheduler runs the status sweep on a cron schedule. Reads never depend on
// it: display status is always computed fresh, the sweep only keeps the
// stored status current for bills nobody has touched.
type Scheduler struct {
	schedule cron.Schedule
	bills    OverdueRefresher
	sessions SessionPurger
	now      func() time.Time
	done     chan struct{}
	stopped  chan struct{}
}

// NewScheduler parses expr as a standard five-field cron expression.
func NewScheduler(expr string, bills OverdueRefresher, sessions SessionPurger) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", expr, err)
	}
	return &Scheduler{
		schedule: schedule,
		bills:    bills,
		sessions: sessions,
		now:      time.Now,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

// Run sweeps once immediately, then at every scheduled time until Stop.
func (s *Scheduler) Run() {
	defer close(s.stopped)
	log.Info().Msg("Starting background status sweep...")

	s.Sweep(context.Background())
	for {
		next := s.schedule.Next(s.now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-s.done:
			timer.Stop()
			log.Info().Msg("Stopping background status sweep.")
			return
		case <-timer.C:
			s.Sweep(context.Background())
		}
	}
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	close(s.done)
	<-s.stopped
}

// Sweep refreshes overdue bills and purges expired sessions once.
func (s *Scheduler) Sweep(ctx context.Context) {
	changed, err := s.bills.RefreshOverdue(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Status sweep: failed to refresh overdue bills")
	} else if changed > 0 {
		log.Info().Int("bills", changed).Msg("Status sweep: bills marked overdue")
	}

	purged, err := s.sessions.PurgeExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Status sweep: failed to purge sessions")
	} else if purged > 0 {
		log.Info().Int64("sessions", purged).Msg("Status sweep: expired sessions purged")
	}
}
