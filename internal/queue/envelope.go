package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of an envelope inside a store.
type State string

// Envelope lifecycle states. A dead envelope is terminal and only ever
// surfaced through the store's dead-letter reporting.
const (
	StatePending State = "pending"
	StateClaimed State = "claimed"
	StateDead    State = "dead"
)

// Envelope is one queued unit of work: routing, payload, and timing
// metadata. The store owns an envelope until a router claims it; the router
// owns it for the duration of one handler invocation.
type Envelope struct {
	ID          uuid.UUID       `json:"id"`
	Queue       Type            `json:"queue"`
	Payload     json.RawMessage `json:"payload"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	EnqueuedAt  time.Time       `json:"enqueued_at"`
	NotBefore   time.Time       `json:"not_before"`
	State       State           `json:"state"`
}

// NewEnvelope builds a pending envelope for the given queue, rejecting
// payloads that belong on a different queue. The envelope becomes eligible
// for claim once the delay has elapsed.
func NewEnvelope(t Type, p Payload, delay time.Duration, now time.Time) (*Envelope, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil payload for queue %s", ErrPayloadMismatch, t)
	}
	if p.Queue() != t {
		return nil, fmt.Errorf("%w: %T belongs on %s, not %s", ErrPayloadMismatch, p, p.Queue(), t)
	}

	raw, err := EncodePayload(p)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		ID:         uuid.New(),
		Queue:      t,
		Payload:    raw,
		EnqueuedAt: now.UTC(),
		NotBefore:  now.Add(delay).UTC(),
		State:      StatePending,
	}, nil
}

// DecodePayload returns the envelope's payload as its concrete variant.
func (e *Envelope) DecodePayload() (Payload, error) {
	return DecodePayload(e.Queue, e.Payload)
}
