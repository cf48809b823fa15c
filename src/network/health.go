package network

import (
	"sync"
	"time"
)

// A node that answered normally is treated as known-good for this long
// before the engine probes it again.
const recentlyPingedWindow = 15 * time.Minute

type healthState int

const (
	// healthUnused: never attempted. Vaguely healthy, but not "pinged".
	healthUnused healthState = iota

	// healthHealthy: last use was normal; usedAt records when.
	healthHealthy

	// healthUnhealthy: last use errored. The node is avoided until
	// healthyAt, with the interval growing on repeated failures.
	healthUnhealthy
)

// nodeHealth is the per-node health state machine. Handles are shared
// between topology generations when a node persists across an update, so
// backoff memory survives address-book refreshes. All access goes through
// the mutex; none of the methods block.
type nodeHealth struct {
	mu sync.Mutex

	state     healthState
	usedAt    time.Time     // healthHealthy
	healthyAt time.Time     // healthUnhealthy
	interval  time.Duration // healthUnhealthy: next failure's delay
	attempts  int           // healthUnhealthy: consecutive failures
}

// markUnhealthy pushes the node into (or deeper into) the unhealthy state,
// growing the backoff from the carried interval. It reports the attempt
// count so the caller can log when the policy's cap is exceeded.
func (h *nodeHealth) markUnhealthy(policy BackoffPolicy, now time.Time) (attempts int, delay time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	current := time.Duration(0)
	if h.state == healthUnhealthy {
		current = h.interval
	} else {
		h.attempts = 0
	}

	delay, carried := policy.next(current)

	h.state = healthUnhealthy
	h.healthyAt = now.Add(delay)
	h.interval = carried
	h.attempts++

	return h.attempts, delay
}

// markHealthy resets the node to healthy, discarding backoff memory.
func (h *nodeHealth) markHealthy(now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.state = healthHealthy
	h.usedAt = now
	h.interval = 0
	h.attempts = 0
}

// markUsed records that the node was attempted. A healthy or unused node
// becomes healthy with a fresh usedAt; an unhealthy node keeps its backoff,
// since the attempt that just happened may be the one that failed.
func (h *nodeHealth) markUsed(now time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == healthUnhealthy {
		return
	}

	h.state = healthHealthy
	h.usedAt = now
}

// isHealthy reports whether the node may be selected at the given instant.
// Unused and healthy nodes qualify; unhealthy nodes qualify once their
// backoff has elapsed.
func (h *nodeHealth) isHealthy(now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == healthUnhealthy {
		return !now.Before(h.healthyAt)
	}
	return true
}

// recentlyPinged reports whether we have heard from the node recently
// enough to skip a liveness probe. An unhealthy node inside its backoff
// window counts: we did get *something* from it.
func (h *nodeHealth) recentlyPinged(now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case healthHealthy:
		return now.Before(h.usedAt.Add(recentlyPingedWindow))
	case healthUnhealthy:
		return now.Before(h.healthyAt)
	default:
		return false
	}
}
