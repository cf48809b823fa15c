package network

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Default per-node backoff bounds.
const (
	DefaultMinNodeBackoff  = 250 * time.Millisecond
	DefaultMaxNodeBackoff  = 1 * time.Hour
	DefaultMaxNodeAttempts = 10
)

// BackoffPolicy bounds the exponential backoff applied to a node after
// consecutive failures. Each node tracks its own current interval; the
// policy only supplies the limits.
type BackoffPolicy struct {
	MinBackoff time.Duration
	MaxBackoff time.Duration

	// MaxAttempts is the attempt count past which a node is reported as
	// exhausted. 0 means unlimited. Exhaustion is logged, not enforced;
	// the node stays in the topology and keeps backing off.
	MaxAttempts int
}

// DefaultBackoffPolicy returns the policy applied to fresh networks.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		MinBackoff:  DefaultMinNodeBackoff,
		MaxBackoff:  DefaultMaxNodeBackoff,
		MaxAttempts: DefaultMaxNodeAttempts,
	}
}

// next computes the delay to apply now and the interval to carry into the
// node's next failure. Randomization is disabled so consecutive failures
// never shrink the interval; growth is bounded by MaxBackoff.
func (p BackoffPolicy) next(current time.Duration) (delay, carried time.Duration) {
	if current <= 0 {
		current = p.MinBackoff
	}

	b := &backoff.ExponentialBackOff{
		InitialInterval:     current,
		RandomizationFactor: 0,
		Multiplier:          backoff.DefaultMultiplier,
		MaxInterval:         p.MaxBackoff,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()

	delay = b.NextBackOff()
	carried = b.NextBackOff()

	return delay, carried
}
