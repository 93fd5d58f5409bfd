// Package memqueue provides an in-memory queue.Store. It implements the
// full contract (delay, FIFO-of-eligible, visibility timeout, retry with
// backoff, dead-lettering) without I/O, so it backs tests and single-process
// deployments that don't need durability across restarts.
package memqueue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Afrothundr/broccoli-scheduler/internal/queue"
)

// Config holds the store's retry and claim settings.
type Config struct {
	// MaxAttempts is the delivery ceiling before a job goes dead.
	// Defaults to 5.
	MaxAttempts int

	// VisibilityTimeout is how long a claim lasts before the job becomes
	// reclaimable. Defaults to 30 seconds.
	VisibilityTimeout time.Duration

	// Backoff computes retry delays. Defaults to queue.DefaultBackoff().
	Backoff queue.BackoffStrategy
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       5,
		VisibilityTimeout: 30 * time.Second,
		Backoff:           queue.DefaultBackoff(),
	}
}

// entry wraps an envelope with store-internal bookkeeping.
type entry struct {
	env           queue.Envelope
	seq           uint64
	claimDeadline time.Time
}

// Store is an in-memory queue.Store. Safe for concurrent use; one mutex
// serializes claim operations, which is what guarantees an envelope is
// never claimed twice.
type Store struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]*entry
	nextSeq uint64

	cfg    Config
	sink   queue.DeadLetterSink
	logger *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

var _ queue.Store = (*Store)(nil)

// New creates an in-memory store. sink may be nil, in which case dead
// letters are only logged. If logger is nil, the default logger is used.
func New(cfg Config, sink queue.DeadLetterSink, logger *slog.Logger) *Store {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.VisibilityTimeout <= 0 {
		cfg.VisibilityTimeout = DefaultConfig().VisibilityTimeout
	}
	if cfg.Backoff == nil {
		cfg.Backoff = queue.DefaultBackoff()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		jobs:   make(map[uuid.UUID]*entry),
		cfg:    cfg,
		sink:   sink,
		logger: logger.With(slog.String("component", "memqueue")),
		now:    time.Now,
	}
}

// Enqueue implements queue.Store.
func (s *Store) Enqueue(ctx context.Context, t queue.Type, p queue.Payload, delay time.Duration) (uuid.UUID, error) {
	env, err := queue.NewEnvelope(t, p, delay, s.now())
	if err != nil {
		return uuid.Nil, err
	}
	env.MaxAttempts = s.cfg.MaxAttempts

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	s.jobs[env.ID] = &entry{env: *env, seq: s.nextSeq}

	s.logger.Debug("job enqueued",
		"job_id", env.ID,
		"queue", t,
		"not_before", env.NotBefore)
	return env.ID, nil
}

// ClaimReady implements queue.Store. Expired claims on the queue are
// released before a candidate is chosen, so abandoned jobs are retried
// rather than lost.
func (s *Store) ClaimReady(ctx context.Context, t queue.Type) (*queue.Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.releaseExpiredLocked(t, now)

	var candidate *entry
	for _, e := range s.jobs {
		if e.env.Queue != t || e.env.State != queue.StatePending {
			continue
		}
		if e.env.NotBefore.After(now) {
			continue
		}
		if candidate == nil || earlier(e, candidate) {
			candidate = e
		}
	}
	if candidate == nil {
		return nil, nil
	}

	candidate.env.State = queue.StateClaimed
	candidate.env.Attempts++
	candidate.claimDeadline = now.Add(s.cfg.VisibilityTimeout)

	claimed := candidate.env
	return &claimed, nil
}

// earlier orders eligible entries FIFO by enqueue time, breaking exact ties
// by insertion order.
func earlier(a, b *entry) bool {
	if a.env.EnqueuedAt.Equal(b.env.EnqueuedAt) {
		return a.seq < b.seq
	}
	return a.env.EnqueuedAt.Before(b.env.EnqueuedAt)
}

// releaseExpiredLocked returns claimed-but-unacknowledged jobs whose
// visibility timeout elapsed to the pending state. Caller holds s.mu.
func (s *Store) releaseExpiredLocked(t queue.Type, now time.Time) {
	for _, e := range s.jobs {
		if e.env.Queue != t || e.env.State != queue.StateClaimed {
			continue
		}
		if e.claimDeadline.After(now) {
			continue
		}
		e.env.State = queue.StatePending
		s.logger.Warn("claim expired, job reclaimable",
			"job_id", e.env.ID,
			"queue", e.env.Queue,
			"attempts", e.env.Attempts)
	}
}

// Acknowledge implements queue.Store.
func (s *Store) Acknowledge(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.jobs[id]
	if !ok || e.env.State == queue.StateDead {
		return fmt.Errorf("%w: %s", queue.ErrJobNotFound, id)
	}
	delete(s.jobs, id)
	return nil
}

// Fail implements queue.Store.
func (s *Store) Fail(ctx context.Context, id uuid.UUID, retry bool) error {
	s.mu.Lock()
	e, ok := s.jobs[id]
	if !ok || e.env.State == queue.StateDead {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", queue.ErrJobNotFound, id)
	}

	if retry && e.env.Attempts < e.env.MaxAttempts {
		delay := s.cfg.Backoff.Delay(e.env.Attempts)
		e.env.State = queue.StatePending
		e.env.NotBefore = s.now().Add(delay)
		s.mu.Unlock()

		s.logger.Info("job scheduled for retry",
			"job_id", id,
			"queue", e.env.Queue,
			"attempts", e.env.Attempts,
			"retry_in", delay.String())
		return nil
	}

	cause := "retry ceiling exhausted"
	if !retry {
		cause = "permanent failure"
	}
	e.env.State = queue.StateDead
	dead := e.env
	s.mu.Unlock()

	s.logger.Error("job dead-lettered",
		"job_id", id,
		"queue", dead.Queue,
		"attempts", dead.Attempts,
		"cause", cause)
	if s.sink != nil {
		if err := s.sink.Record(ctx, &dead, cause); err != nil {
			s.logger.Error("failed to record dead letter", "job_id", id, "error", err)
		}
	}
	return nil
}

// DeadLetters returns the envelopes currently in the dead state, for
// operator inspection.
func (s *Store) DeadLetters() []queue.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dead []queue.Envelope
	for _, e := range s.jobs {
		if e.env.State == queue.StateDead {
			dead = append(dead, e.env)
		}
	}
	return dead
}

