package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
	"github.com/Afrothundr/broccoli-scheduler/internal/queue"
)

// UserSource lists users for the fan-out. store.UserStore satisfies it.
type UserSource interface {
	List(ctx context.Context) ([]domain.User, error)
}

// Dispatcher enqueues jobs. *queue.Dispatcher satisfies it.
type Dispatcher interface {
	Enqueue(ctx context.Context, p queue.Payload, delay time.Duration) (uuid.UUID, error)
}

// Config controls when the scheduler fires and how the fan-out is paced.
type Config struct {
	// FireTime is the local time of day to fire, in "15:04" form.
	FireTime string
	// Location is the timezone FireTime is interpreted in. Defaults to UTC.
	Location *time.Location
	// Stagger is the enqueue delay added per eligible user so reports do
	// not land on the email provider all at once. Defaults to 5s.
	Stagger time.Duration
	// WeeklyAnchor is the weekday on which weekly-frequency users receive
	// their report. Zero value is Sunday.
	WeeklyAnchor time.Weekday
	// MonthlyAnchor is the day of month on which monthly-frequency users
	// receive their report. Defaults to 1.
	MonthlyAnchor int
}

func (c Config) withDefaults() Config {
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.Stagger <= 0 {
		c.Stagger = 5 * time.Second
	}
	if c.MonthlyAnchor <= 0 {
		c.MonthlyAnchor = 1
	}
	return c
}

// Scheduler triggers the daily report fan-out once per day at the
// configured time.
type Scheduler struct {
	users      UserSource
	dispatcher Dispatcher
	cfg        Config
	clock      Clock
	logger     *slog.Logger

	fireHour   int
	fireMinute int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Scheduler. clock may be nil for the system clock; logger
// may be nil for the default logger. Returns an error if FireTime does not
// parse as "15:04".
func New(users UserSource, dispatcher Dispatcher, cfg Config, clock Clock, logger *slog.Logger) (*Scheduler, error) {
	cfg = cfg.withDefaults()
	fireAt, err := time.Parse("15:04", cfg.FireTime)
	if err != nil {
		return nil, fmt.Errorf("invalid fire time %q: %w", cfg.FireTime, err)
	}
	if clock == nil {
		clock = SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		users:      users,
		dispatcher: dispatcher,
		cfg:        cfg,
		clock:      clock,
		logger:     logger.With(slog.String("component", "scheduler")),
		fireHour:   fireAt.Hour(),
		fireMinute: fireAt.Minute(),
	}, nil
}

// Start runs the trigger loop in a background goroutine until Stop is
// called or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the trigger loop and waits for an in-flight fan-out to
// finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	for {
		now := s.clock.Now().In(s.cfg.Location)
		next := s.nextFire(now)
		s.logger.Info("next report fan-out scheduled", "at", next)

		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(next.Sub(now)):
		}

		if err := s.FanOut(ctx); err != nil {
			s.logger.Error("report fan-out failed", "error", err)
		}
	}
}

// nextFire returns the next occurrence of the configured fire time strictly
// after now, in the configured location.
func (s *Scheduler) nextFire(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.fireHour, s.fireMinute, 0, 0, s.cfg.Location)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// FanOut enqueues one daily report job per eligible user, staggered by the
// configured interval in store order. A single enqueue failure is logged
// and does not stop the remaining users.
func (s *Scheduler) FanOut(ctx context.Context) error {
	users, err := s.users.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users for report fan-out: %w", err)
	}

	today := s.clock.Now().In(s.cfg.Location)
	enqueued := 0
	for _, user := range users {
		if !s.eligible(user, today) {
			continue
		}

		delay := time.Duration(enqueued) * s.cfg.Stagger
		payload := &queue.DailyReportPayload{UserID: user.ID}
		if _, err := s.dispatcher.Enqueue(ctx, payload, delay); err != nil {
			s.logger.Error("failed to enqueue daily report",
				"user_id", user.ID,
				"error", err)
			continue
		}
		enqueued++
	}

	s.logger.Info("report fan-out complete",
		"users", len(users),
		"enqueued", enqueued)
	return nil
}

// eligible applies the notification and frequency gates for the given
// report date. The frequency gates are mutually exclusive: a weekly user
// gets nothing on non-anchor days rather than falling back to daily.
func (s *Scheduler) eligible(user domain.User, today time.Time) bool {
	if !user.Preferences.NotificationsEnabled {
		return false
	}
	switch user.Preferences.EmailFrequency {
	case domain.EmailFrequencyDaily:
		return true
	case domain.EmailFrequencyWeekly:
		return today.Weekday() == s.cfg.WeeklyAnchor
	case domain.EmailFrequencyMonthly:
		return today.Day() == s.cfg.MonthlyAnchor
	default:
		return false
	}
}
