package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the single source of truth for job state. Implementations must
// serialize claims per envelope so two routers never execute the same job
// concurrently; unrelated envelopes need no mutual exclusion.
type Store interface {
	// Enqueue persists a new envelope on the given queue, eligible for
	// claim after the delay elapses. Returns ErrPayloadMismatch when the
	// payload belongs on a different queue.
	Enqueue(ctx context.Context, t Type, p Payload, delay time.Duration) (uuid.UUID, error)

	// ClaimReady claims the eligible envelope with the earliest enqueue
	// time on the given queue, or returns (nil, nil) when none is ready.
	// Claiming starts the visibility timeout: if the claimer neither
	// acknowledges nor fails the job in time, it becomes reclaimable.
	ClaimReady(ctx context.Context, t Type) (*Envelope, error)

	// Acknowledge marks a claimed job as successfully handled and removes
	// it from the store.
	Acknowledge(ctx context.Context, id uuid.UUID) error

	// Fail records a failed handling attempt. With retry true the job is
	// re-queued with backoff until its attempt ceiling, after which it goes
	// dead; with retry false it goes dead immediately. Dead jobs are
	// reported to the store's DeadLetterSink.
	Fail(ctx context.Context, id uuid.UUID, retry bool) error
}

// DeadLetterSink receives envelopes that exhausted their retries or failed
// permanently. Implementations make them operator-visible; a job must never
// disappear without passing through a sink.
type DeadLetterSink interface {
	Record(ctx context.Context, env *Envelope, cause string) error
}

// SinkFunc adapts a function to the DeadLetterSink interface.
type SinkFunc func(ctx context.Context, env *Envelope, cause string) error

// Record implements DeadLetterSink.
func (f SinkFunc) Record(ctx context.Context, env *Envelope, cause string) error {
	return f(ctx, env, cause)
}
