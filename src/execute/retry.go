package execute

import (
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hiero-ledger/hiero-go-client/src/network"
)

// maxRequestTimeout caps the overall deadline of a single execution when
// neither the caller nor the client set one.
const maxRequestTimeout = 15 * time.Minute

// Round backoff bounds. These pace retries of whole rounds; per-node
// backoff lives in the network registry.
const (
	roundMinBackoff = 250 * time.Millisecond
	roundMaxBackoff = 8 * time.Second
)

// newRoundBackoff builds the backoff that paces rounds until the deadline.
// NextBackOff returns Stop once the deadline has passed.
func newRoundBackoff(timeout time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = roundMinBackoff
	b.MaxInterval = roundMaxBackoff
	b.MaxElapsedTime = timeout
	b.Reset()
	return b
}

// resolveTimeout picks the overall deadline for one execution: the caller's
// timeout wins, then the client default, then the engine ceiling.
func resolveTimeout(callerTimeout, clientTimeout time.Duration) time.Duration {
	if callerTimeout > 0 {
		return callerTimeout
	}
	if clientTimeout > 0 {
		return clientTimeout
	}
	return maxRequestTimeout
}

// candidateNodeIndexes picks the nodes for one round.
//
// With explicit nodes the healthy subset is used, falling back to the full
// explicit list when all of them are backing off; the caller asked for these
// nodes, so they are never abandoned entirely. Without explicit nodes a
// third of the healthy set (rounded up) is sampled. Both lists come back
// shuffled. nil means no node is currently selectable.
func candidateNodeIndexes(net *network.Network, explicit []int, now time.Time) []int {
	if explicit != nil {
		healthy := make([]int, 0, len(explicit))
		for _, index := range explicit {
			if net.IsNodeHealthy(index, now) {
				healthy = append(healthy, index)
			}
		}

		indexes := healthy
		if len(indexes) == 0 {
			indexes = append([]int(nil), explicit...)
		}

		rand.Shuffle(len(indexes), func(i, j int) {
			indexes[i], indexes[j] = indexes[j], indexes[i]
		})
		return indexes
	}

	indexes := net.HealthyNodeIndexes(now)
	if len(indexes) == 0 {
		return nil
	}

	rand.Shuffle(len(indexes), func(i, j int) {
		indexes[i], indexes[j] = indexes[j], indexes[i]
	})

	amount := (len(indexes) + 2) / 3
	return indexes[:amount]
}

// The gRPC layer sometimes surfaces a 503 from an intermediary as a
// compression error on an Internal-coded status. Such a node is treated as
// completely broken: the effect of the request is unknowable.
const compressionFlagMessage = "protocol error: " +
	"received message with invalid compression flag: " +
	"60 (valid flags are 0 and 1) " +
	"while receiving response with status: " +
	"503 Service Unavailable"

// classifyTransportError decides what a failed RPC means for the node that
// served it and for the request.
func classifyTransportError(err error) (markUnhealthy, permanent bool) {
	s, ok := status.FromError(err)
	if !ok {
		return false, true
	}

	switch s.Code() {
	case codes.Unavailable, codes.ResourceExhausted:
		return true, false
	case codes.Internal:
		if s.Message() == compressionFlagMessage {
			return true, true
		}
		return false, true
	default:
		return false, true
	}
}
