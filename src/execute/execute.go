package execute

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/hiero-ledger/hiero-go-client/src/hiero"
)

// nodeConnectTimeout bounds the TCP/TLS dial for a single node channel.
const nodeConnectTimeout = 10 * time.Second

// outcome tags the result of one attempt against one node.
type outcome int

const (
	// outcomeDone carries the final response.
	outcomeDone outcome = iota
	// outcomeNextNode means try the next node in this round, immediately.
	outcomeNextNode
	// outcomeNextRound means back off and start a fresh round.
	outcomeNextRound
	// outcomePermanent aborts the whole execution.
	outcomePermanent
)

// Execute runs the request to completion against the environment's network.
//
// Rounds of attempts are paced by an exponential backoff bounded by the
// resolved deadline. Within a round each candidate node is tried once; a
// node failure moves to the next node immediately, a retriable precheck
// status ends the round, and anything the caller must fix aborts. When the
// deadline passes with the request unfinished the last failure is wrapped
// in hiero.TimeoutError.
func Execute(ctx context.Context, env Environment, executable Executable, timeout time.Duration) (interface{}, error) {
	timeout = resolveTimeout(timeout, env.RequestTimeout())
	roundBackoff := newRoundBackoff(timeout)

	logger := env.Logger().WithField("prefix", "execute")

	if env.AutoValidateChecksums() {
		ledgerID := env.LedgerID()
		if ledgerID == nil {
			return nil, &hiero.CannotValidateWithoutLedgerIDError{Task: "validate checksums"}
		}
		if err := executable.ValidateChecksums(*ledgerID); err != nil {
			return nil, err
		}
	}

	explicitTransactionID := executable.TransactionID()
	var transactionID *hiero.TransactionID
	if executable.RequiresTransactionID() {
		transactionID = explicitTransactionID
		if transactionID == nil {
			generated, err := env.GenerateTransactionID()
			if err != nil {
				return nil, err
			}
			transactionID = &generated
		}
	}

	var explicitNodeIndexes []int
	if ids := executable.NodeAccountIDs(); len(ids) > 0 {
		indexes, err := env.Network().NodeIndexesForIDs(ids)
		if err != nil {
			return nil, err
		}
		explicitNodeIndexes = indexes
	}

	var lastErr error
	for {
		now := time.Now()
		candidates := candidateNodeIndexes(env.Network(), explicitNodeIndexes, now)

		var roundErr error
		roundOver := false
		for _, index := range candidates {
			// Nodes we have not heard from recently are probed before
			// carrying a real request; explicitly pinned nodes are used
			// regardless.
			if explicitNodeIndexes == nil && !env.Network().NodeRecentlyPinged(index, now) && !env.PingNode(index) {
				continue
			}

			result, o, err := attemptNode(ctx, env, executable, index, explicitTransactionID != nil, &transactionID, logger)
			env.Network().MarkNodeUsed(index, time.Now())

			switch o {
			case outcomeDone:
				return result, nil
			case outcomeNextNode:
				roundErr = err
			case outcomeNextRound:
				roundErr = err
				roundOver = true
			case outcomePermanent:
				return nil, err
			}
			if roundOver {
				break
			}
		}

		if roundErr != nil {
			lastErr = roundErr
		}

		// A round where every candidate was skipped by the liveness probe
		// starts over immediately; the probes already marked the nodes
		// unhealthy, so the candidate set shrinks. An empty candidate set
		// (no healthy node at all) instead waits out the round backoff like
		// any other transient round failure, since looping immediately
		// would busy-spin until some node's backoff expires.
		if !roundOver && roundErr == nil && len(candidates) > 0 {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if roundBackoff.GetElapsedTime() > timeout {
				return nil, &hiero.TimeoutError{Cause: lastErr}
			}
			continue
		}

		delay := roundBackoff.NextBackOff()
		if delay == backoff.Stop {
			logger.WithError(lastErr).Debug("request deadline exhausted")
			return nil, &hiero.TimeoutError{Cause: lastErr}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// attemptNode carries the request to a single node and classifies what
// happened.
func attemptNode(
	ctx context.Context,
	env Environment,
	executable Executable,
	index int,
	hasExplicitTransactionID bool,
	transactionID **hiero.TransactionID,
	logger *logrus.Entry,
) (interface{}, outcome, error) {
	net := env.Network()

	nodeAccountID, channel, err := net.Channel(index, nodeConnectTimeout)
	if err != nil {
		return nil, outcomePermanent, &hiero.TransportError{NodeAccountID: nodeAccountID, Err: err}
	}

	request, err := executable.MakeRequest(*transactionID, nodeAccountID)
	if err != nil {
		return nil, outcomePermanent, err
	}

	response, err := executable.CallGRPC(ctx, channel, request)
	if err != nil {
		markUnhealthy, permanent := classifyTransportError(err)
		if markUnhealthy {
			net.MarkNodeUnhealthy(index)
		}

		wrapped := &hiero.TransportError{NodeAccountID: nodeAccountID, Err: err}
		logger.WithFields(logrus.Fields{
			"node":      nodeAccountID.String(),
			"permanent": permanent,
		}).WithError(err).Debug("transport failure")

		if permanent {
			return nil, outcomePermanent, wrapped
		}
		return nil, outcomeNextNode, wrapped
	}

	code, err := executable.ResponsePreCheckStatus(response)
	if err != nil {
		return nil, outcomePermanent, err
	}

	status, ok := hiero.StatusFromCode(code)
	if !ok {
		return nil, outcomePermanent, &hiero.ResponseStatusUnrecognizedError{Code: code}
	}

	precheckErr := func() error {
		return &hiero.PreCheckStatusError{Status: status, TransactionID: copyTransactionID(*transactionID)}
	}

	switch {
	case status == hiero.StatusOk && executable.ShouldRetry(response):
		return nil, outcomeNextRound, precheckErr()

	case status == hiero.StatusOk:
		net.MarkNodeHealthy(index)
		result, err := executable.MakeResponse(response, *transactionID, nodeAccountID)
		if err != nil {
			return nil, outcomePermanent, err
		}
		return result, outcomeDone, nil

	case status == hiero.StatusBusy || status == hiero.StatusPlatformNotActive:
		return nil, outcomeNextNode, precheckErr()

	case status == hiero.StatusTransactionExpired && !hasExplicitTransactionID:
		// The generated transaction id aged out before the node saw it.
		// Mint a fresh one and try the next node immediately.
		generated, genErr := env.GenerateTransactionID()
		if genErr != nil {
			return nil, outcomePermanent, genErr
		}
		err := precheckErr()
		*transactionID = &generated
		return nil, outcomeNextNode, err

	case executable.ShouldRetryPreCheck(status):
		return nil, outcomeNextRound, precheckErr()

	default:
		return nil, outcomePermanent, precheckErr()
	}
}

func copyTransactionID(id *hiero.TransactionID) *hiero.TransactionID {
	if id == nil {
		return nil
	}
	out := *id
	return &out
}
