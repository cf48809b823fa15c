package network

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() BackoffPolicy {
	return BackoffPolicy{
		MinBackoff:  250 * time.Millisecond,
		MaxBackoff:  8 * time.Second,
		MaxAttempts: 10,
	}
}

func TestBackoffPolicyGrowsMonotonically(t *testing.T) {
	policy := testPolicy()

	current := time.Duration(0)
	var last time.Duration
	for i := 0; i < 20; i++ {
		delay, carried := policy.next(current)

		assert.GreaterOrEqual(t, delay, last, "iteration %d", i)
		assert.LessOrEqual(t, delay, policy.MaxBackoff, "iteration %d", i)
		assert.GreaterOrEqual(t, carried, delay, "iteration %d", i)

		last = delay
		current = carried
	}

	// after enough failures the delay pins to the cap
	delay, _ := policy.next(current)
	assert.Equal(t, policy.MaxBackoff, delay)
}

func TestMarkUnhealthyBacksOff(t *testing.T) {
	h := &nodeHealth{}
	now := time.Now()

	attempts, delay := h.markUnhealthy(testPolicy(), now)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 250*time.Millisecond, delay)

	assert.False(t, h.isHealthy(now))
	assert.False(t, h.isHealthy(now.Add(delay-time.Millisecond)))
	assert.True(t, h.isHealthy(now.Add(delay)))
}

func TestMarkUnhealthyRepeatedFailuresGrow(t *testing.T) {
	h := &nodeHealth{}
	policy := testPolicy()
	now := time.Now()

	var last time.Duration
	for i := 1; i <= 8; i++ {
		attempts, delay := h.markUnhealthy(policy, now)
		assert.Equal(t, i, attempts)
		assert.GreaterOrEqual(t, delay, last)
		last = delay
	}
	assert.Greater(t, last, policy.MinBackoff)
}

func TestMarkHealthyResetsBackoff(t *testing.T) {
	h := &nodeHealth{}
	policy := testPolicy()
	now := time.Now()

	for i := 0; i < 5; i++ {
		h.markUnhealthy(policy, now)
	}
	h.markHealthy(now)

	require.True(t, h.isHealthy(now))

	// the next failure starts over from the minimum
	attempts, delay := h.markUnhealthy(policy, now)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, policy.MinBackoff, delay)
}

func TestMarkUsedDoesNotClearUnhealthy(t *testing.T) {
	h := &nodeHealth{}
	now := time.Now()

	_, delay := h.markUnhealthy(testPolicy(), now)
	h.markUsed(now)

	assert.False(t, h.isHealthy(now))
	assert.False(t, h.isHealthy(now.Add(delay/2)))
}

func TestRecentlyPinged(t *testing.T) {
	h := &nodeHealth{}
	now := time.Now()

	// unused nodes have never been heard from
	assert.False(t, h.recentlyPinged(now))

	h.markUsed(now)
	assert.True(t, h.recentlyPinged(now))
	assert.True(t, h.recentlyPinged(now.Add(recentlyPingedWindow-time.Second)))
	assert.False(t, h.recentlyPinged(now.Add(recentlyPingedWindow+time.Second)))
}

func TestRecentlyPingedUnhealthyWindow(t *testing.T) {
	h := &nodeHealth{}
	now := time.Now()

	_, delay := h.markUnhealthy(testPolicy(), now)

	// inside the backoff window the node answered recently, if badly
	assert.True(t, h.recentlyPinged(now))
	assert.False(t, h.recentlyPinged(now.Add(delay+time.Millisecond)))
}
