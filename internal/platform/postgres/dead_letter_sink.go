package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Afrothundr/broccoli-scheduler/internal/queue"
	"github.com/Afrothundr/broccoli-scheduler/internal/store"
)

// DeadLetterSink persists dead-lettered envelopes to the dead_letter_jobs
// table so exhausted jobs stay visible to operators after the queue backing
// store forgets them.
type DeadLetterSink struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ queue.DeadLetterSink = (*DeadLetterSink)(nil)

// NewDeadLetterSink creates a PostgreSQL dead-letter sink.
// If logger is nil, the default logger is used.
func NewDeadLetterSink(db store.DBTX, logger *slog.Logger) *DeadLetterSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeadLetterSink{
		db:     db,
		logger: logger.With(slog.String("component", "dead_letter_sink")),
	}
}

// Record implements queue.DeadLetterSink.
func (s *DeadLetterSink) Record(ctx context.Context, env *queue.Envelope, cause string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dead_letter_jobs (id, queue, payload, attempts, enqueued_at, cause, failed_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (id) DO NOTHING`,
		env.ID, string(env.Queue), []byte(env.Payload), env.Attempts, env.EnqueuedAt, cause)
	if err != nil {
		return fmt.Errorf("failed to insert dead letter %s: %w", env.ID, err)
	}
	s.logger.Info("dead letter recorded", "job_id", env.ID, "queue", env.Queue, "cause", cause)
	return nil
}
