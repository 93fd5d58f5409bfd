package queue

import (
	"math"
	"time"
)

// BackoffStrategy computes the delay before a retry attempt. Attempt 1 is
// the first retry after the initial failure. Strategies are stateless and
// safe for concurrent use.
type BackoffStrategy interface {
	Delay(attempt int) time.Duration
}

// ExponentialBackoff doubles the delay each attempt, capped at Max.
// Delay = min(Initial * 2^(attempt-1), Max).
type ExponentialBackoff struct {
	Initial time.Duration
	Max     time.Duration
}

// Delay implements BackoffStrategy.
func (b ExponentialBackoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(float64(b.Initial) * math.Pow(2, float64(attempt-1)))
	if b.Max > 0 && (d > b.Max || d < 0) {
		return b.Max
	}
	return d
}

// DefaultBackoff is the retry schedule stores use unless configured
// otherwise: 1s, 2s, 4s, ... capped at 2 minutes.
func DefaultBackoff() BackoffStrategy {
	return ExponentialBackoff{Initial: time.Second, Max: 2 * time.Minute}
}
