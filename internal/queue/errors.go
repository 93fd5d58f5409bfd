package queue

import "errors"

// Common errors returned by queue stores and the dispatcher.
var (
	// ErrPayloadMismatch is returned when a payload's kind does not match
	// the queue it is being enqueued on or decoded for.
	ErrPayloadMismatch = errors.New("payload does not match queue type")

	// ErrInvalidPayload is returned by the dispatcher when a payload fails
	// validation. No job is created.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrUnknownQueue is returned for a queue type outside the enum.
	ErrUnknownQueue = errors.New("unknown queue type")

	// ErrJobNotFound is returned when an acknowledge or fail call names a
	// job the store does not hold.
	ErrJobNotFound = errors.New("job not found")
)
