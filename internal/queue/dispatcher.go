package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Dispatcher is the producer-facing API: it validates a job request and
// enqueues it on the payload's queue with an optional delay. Validation
// failures are synchronous and create no job; everything past Enqueue is
// fire-and-forget from the producer's point of view.
type Dispatcher struct {
	store    Store
	validate *validator.Validate
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher on top of the given store.
// If logger is nil, the default logger is used.
func NewDispatcher(store Store, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:    store,
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "dispatcher")),
	}
}

// Enqueue validates the payload and persists it on its queue. Returns
// ErrInvalidPayload (wrapped with field details) when validation fails.
func (d *Dispatcher) Enqueue(ctx context.Context, p Payload, delay time.Duration) (uuid.UUID, error) {
	if p == nil {
		return uuid.Nil, fmt.Errorf("%w: nil payload", ErrInvalidPayload)
	}
	if err := d.validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return uuid.Nil, fmt.Errorf("%w: %s", ErrInvalidPayload, verrs.Error())
		}
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	id, err := d.store.Enqueue(ctx, p.Queue(), p, delay)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to enqueue %s job: %w", p.Queue(), err)
	}

	d.logger.Info("job enqueued",
		"job_id", id,
		"queue", p.Queue(),
		"delay", delay.String())
	return id, nil
}
