package execute

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hiero-ledger/hiero-go-client/src/common"
	"github.com/hiero-ledger/hiero-go-client/src/hiero"
	"github.com/hiero-ledger/hiero-go-client/src/network"
)

// fakeEnv satisfies Environment without any real client behind it.
type fakeEnv struct {
	net            *network.Network
	ledgerID       *hiero.LedgerID
	autoValidate   bool
	requestTimeout time.Duration
	logger         *logrus.Entry

	generated int
	ping      func(index int) bool
}

func newFakeEnv(t *testing.T, addresses map[string]hiero.AccountID) *fakeEnv {
	logger := common.NewTestEntry(t, logrus.DebugLevel)
	return &fakeEnv{
		net:    network.ForAddresses(addresses, logger),
		logger: logger,
		ping:   func(int) bool { return true },
	}
}

func (e *fakeEnv) Network() *network.Network { return e.net }
func (e *fakeEnv) LedgerID() *hiero.LedgerID { return e.ledgerID }
func (e *fakeEnv) AutoValidateChecksums() bool {
	return e.autoValidate
}

func (e *fakeEnv) GenerateTransactionID() (hiero.TransactionID, error) {
	e.generated++
	return hiero.TransactionID{
		AccountID:  hiero.NewAccountID(2),
		ValidStart: time.Unix(1671234567, int64(e.generated)),
	}, nil
}

func (e *fakeEnv) RequestTimeout() time.Duration { return e.requestTimeout }
func (e *fakeEnv) PingNode(index int) bool       { return e.ping(index) }
func (e *fakeEnv) Logger() *logrus.Entry         { return e.logger }

type fakeResponse struct {
	code int32
}

// fakeRequest satisfies Executable; respond scripts what each RPC does.
type fakeRequest struct {
	nodeIDs       []hiero.AccountID
	txID          *hiero.TransactionID
	requiresTxID  bool
	checksumErr   error
	retryPreCheck func(hiero.Status) bool
	retryResponse func(interface{}) bool

	respond func(call int, node hiero.AccountID, txID *hiero.TransactionID) (interface{}, error)

	calls     int
	seenNodes []hiero.AccountID
	seenTxIDs []*hiero.TransactionID
}

type fakePayload struct {
	node hiero.AccountID
	txID *hiero.TransactionID
}

func (r *fakeRequest) NodeAccountIDs() []hiero.AccountID      { return r.nodeIDs }
func (r *fakeRequest) TransactionID() *hiero.TransactionID    { return r.txID }
func (r *fakeRequest) RequiresTransactionID() bool            { return r.requiresTxID }
func (r *fakeRequest) ValidateChecksums(hiero.LedgerID) error { return r.checksumErr }

func (r *fakeRequest) MakeRequest(txID *hiero.TransactionID, node hiero.AccountID) (interface{}, error) {
	return fakePayload{node: node, txID: txID}, nil
}

func (r *fakeRequest) CallGRPC(_ context.Context, _ *grpc.ClientConn, request interface{}) (interface{}, error) {
	payload := request.(fakePayload)
	r.calls++
	r.seenNodes = append(r.seenNodes, payload.node)
	r.seenTxIDs = append(r.seenTxIDs, payload.txID)
	return r.respond(r.calls, payload.node, payload.txID)
}

func (r *fakeRequest) ResponsePreCheckStatus(response interface{}) (int32, error) {
	return response.(fakeResponse).code, nil
}

func (r *fakeRequest) ShouldRetry(response interface{}) bool {
	if r.retryResponse == nil {
		return false
	}
	return r.retryResponse(response)
}

func (r *fakeRequest) ShouldRetryPreCheck(s hiero.Status) bool {
	if r.retryPreCheck == nil {
		return false
	}
	return r.retryPreCheck(s)
}

func (r *fakeRequest) MakeResponse(response interface{}, _ *hiero.TransactionID, node hiero.AccountID) (interface{}, error) {
	return response, nil
}

func singleNodeEnv(t *testing.T) *fakeEnv {
	return newFakeEnv(t, map[string]hiero.AccountID{
		"127.0.0.1:50211": hiero.NewAccountID(3),
	})
}

func okResponse() (interface{}, error) {
	return fakeResponse{code: int32(hiero.StatusOk)}, nil
}

func TestExecuteSuccess(t *testing.T) {
	env := singleNodeEnv(t)
	req := &fakeRequest{
		respond: func(int, hiero.AccountID, *hiero.TransactionID) (interface{}, error) {
			return okResponse()
		},
	}

	result, err := Execute(context.Background(), env, req, 0)
	require.NoError(t, err)
	assert.Equal(t, fakeResponse{code: int32(hiero.StatusOk)}, result)
	assert.Equal(t, 1, req.calls)

	// the node answered, so it is healthy and counts as recently pinged
	assert.True(t, env.net.IsNodeHealthy(0, time.Now()))
	assert.True(t, env.net.NodeRecentlyPinged(0, time.Now()))
}

func TestExecuteBusyMovesToNextNode(t *testing.T) {
	env := newFakeEnv(t, map[string]hiero.AccountID{
		"127.0.0.1:50211": hiero.NewAccountID(3),
		"127.0.0.2:50211": hiero.NewAccountID(4),
	})

	req := &fakeRequest{
		nodeIDs: []hiero.AccountID{hiero.NewAccountID(3), hiero.NewAccountID(4)},
		respond: func(_ int, node hiero.AccountID, _ *hiero.TransactionID) (interface{}, error) {
			if node == hiero.NewAccountID(3) {
				return fakeResponse{code: int32(hiero.StatusBusy)}, nil
			}
			return okResponse()
		},
	}

	result, err := Execute(context.Background(), env, req, 0)
	require.NoError(t, err)
	assert.Equal(t, fakeResponse{code: int32(hiero.StatusOk)}, result)
	assert.LessOrEqual(t, req.calls, 2)
	assert.Equal(t, hiero.NewAccountID(4), req.seenNodes[len(req.seenNodes)-1])
}

func TestExecuteUnavailableMarksNodeUnhealthy(t *testing.T) {
	env := singleNodeEnv(t)
	// keep the node in backoff well past the engine's retry
	env.net.SetMinBackoff(10 * time.Second)

	var healthyDuringRetry bool
	req := &fakeRequest{
		nodeIDs: []hiero.AccountID{hiero.NewAccountID(3)},
		respond: func(call int, _ hiero.AccountID, _ *hiero.TransactionID) (interface{}, error) {
			if call == 1 {
				return nil, status.Error(codes.Unavailable, "connection refused")
			}
			healthyDuringRetry = env.net.IsNodeHealthy(0, time.Now())
			return okResponse()
		},
	}

	result, err := Execute(context.Background(), env, req, 0)
	require.NoError(t, err)
	assert.Equal(t, fakeResponse{code: int32(hiero.StatusOk)}, result)
	assert.Equal(t, 2, req.calls)

	// the second attempt only happened because explicitly pinned nodes
	// fall back to the full list while backing off
	assert.False(t, healthyDuringRetry)
}

func TestExecuteBrokenNodeIsPermanent(t *testing.T) {
	env := singleNodeEnv(t)
	req := &fakeRequest{
		nodeIDs: []hiero.AccountID{hiero.NewAccountID(3)},
		respond: func(int, hiero.AccountID, *hiero.TransactionID) (interface{}, error) {
			return nil, status.Error(codes.Internal, compressionFlagMessage)
		},
	}

	_, err := Execute(context.Background(), env, req, 0)
	require.Error(t, err)

	var transport *hiero.TransportError
	require.ErrorAs(t, err, &transport)
	assert.Equal(t, hiero.NewAccountID(3), transport.NodeAccountID)
	assert.Equal(t, 1, req.calls)
	assert.False(t, env.net.IsNodeHealthy(0, time.Now()))
}

func TestExecuteOtherTransportErrorIsPermanent(t *testing.T) {
	env := singleNodeEnv(t)
	req := &fakeRequest{
		nodeIDs: []hiero.AccountID{hiero.NewAccountID(3)},
		respond: func(int, hiero.AccountID, *hiero.TransactionID) (interface{}, error) {
			return nil, status.Error(codes.PermissionDenied, "nope")
		},
	}

	_, err := Execute(context.Background(), env, req, 0)
	require.Error(t, err)

	var transport *hiero.TransportError
	require.ErrorAs(t, err, &transport)
	assert.Equal(t, 1, req.calls)

	// the node itself is not blamed for a permission error
	assert.True(t, env.net.IsNodeHealthy(0, time.Now()))
}

func TestExecutePermanentPreCheck(t *testing.T) {
	env := singleNodeEnv(t)
	req := &fakeRequest{
		respond: func(int, hiero.AccountID, *hiero.TransactionID) (interface{}, error) {
			return fakeResponse{code: int32(hiero.StatusInvalidSignature)}, nil
		},
	}

	_, err := Execute(context.Background(), env, req, 0)
	require.Error(t, err)

	var precheck *hiero.PreCheckStatusError
	require.ErrorAs(t, err, &precheck)
	assert.Equal(t, hiero.StatusInvalidSignature, precheck.Status)
	assert.Equal(t, 1, req.calls)
}

func TestExecuteUnrecognizedStatus(t *testing.T) {
	env := singleNodeEnv(t)
	req := &fakeRequest{
		respond: func(int, hiero.AccountID, *hiero.TransactionID) (interface{}, error) {
			return fakeResponse{code: 9999}, nil
		},
	}

	_, err := Execute(context.Background(), env, req, 0)
	require.Error(t, err)

	var unrecognized *hiero.ResponseStatusUnrecognizedError
	require.ErrorAs(t, err, &unrecognized)
	assert.Equal(t, int32(9999), unrecognized.Code)
}

func TestExecuteRegeneratesExpiredTransactionID(t *testing.T) {
	env := singleNodeEnv(t)
	req := &fakeRequest{
		nodeIDs:      []hiero.AccountID{hiero.NewAccountID(3)},
		requiresTxID: true,
		respond: func(call int, _ hiero.AccountID, _ *hiero.TransactionID) (interface{}, error) {
			if call == 1 {
				return fakeResponse{code: int32(hiero.StatusTransactionExpired)}, nil
			}
			return okResponse()
		},
	}

	_, err := Execute(context.Background(), env, req, 0)
	require.NoError(t, err)

	require.Equal(t, 2, req.calls)
	assert.Equal(t, 2, env.generated)
	require.NotNil(t, req.seenTxIDs[0])
	require.NotNil(t, req.seenTxIDs[1])
	assert.NotEqual(t, req.seenTxIDs[0].ValidStart, req.seenTxIDs[1].ValidStart)
}

func TestExecuteExplicitTransactionIDNeverRegenerated(t *testing.T) {
	env := singleNodeEnv(t)
	explicit := hiero.TransactionID{
		AccountID:  hiero.NewAccountID(2),
		ValidStart: time.Unix(1671234567, 0),
	}

	req := &fakeRequest{
		requiresTxID: true,
		txID:         &explicit,
		respond: func(int, hiero.AccountID, *hiero.TransactionID) (interface{}, error) {
			return fakeResponse{code: int32(hiero.StatusTransactionExpired)}, nil
		},
	}

	_, err := Execute(context.Background(), env, req, 0)
	require.Error(t, err)

	var precheck *hiero.PreCheckStatusError
	require.ErrorAs(t, err, &precheck)
	assert.Equal(t, hiero.StatusTransactionExpired, precheck.Status)
	assert.Equal(t, 1, req.calls)
	assert.Zero(t, env.generated)
}

func TestExecuteTimesOutWithLastError(t *testing.T) {
	env := singleNodeEnv(t)
	req := &fakeRequest{
		respond: func(int, hiero.AccountID, *hiero.TransactionID) (interface{}, error) {
			return fakeResponse{code: int32(hiero.StatusBusy)}, nil
		},
	}

	_, err := Execute(context.Background(), env, req, time.Nanosecond)
	require.Error(t, err)

	var timeout *hiero.TimeoutError
	require.ErrorAs(t, err, &timeout)

	var precheck *hiero.PreCheckStatusError
	require.ErrorAs(t, timeout.Cause, &precheck)
	assert.Equal(t, hiero.StatusBusy, precheck.Status)
}

func TestExecuteChecksumValidationNeedsLedgerID(t *testing.T) {
	env := singleNodeEnv(t)
	env.autoValidate = true

	req := &fakeRequest{
		respond: func(int, hiero.AccountID, *hiero.TransactionID) (interface{}, error) {
			return okResponse()
		},
	}

	_, err := Execute(context.Background(), env, req, 0)
	require.Error(t, err)

	var noLedger *hiero.CannotValidateWithoutLedgerIDError
	require.ErrorAs(t, err, &noLedger)
	assert.Zero(t, req.calls)
}

func TestExecuteChecksumValidationFailureAborts(t *testing.T) {
	env := singleNodeEnv(t)
	env.autoValidate = true
	ledgerID := hiero.LedgerIDMainnet
	env.ledgerID = &ledgerID

	bad := &hiero.BadEntityIDError{Entity: "0.0.123", PresentChecksum: "aaaaa", ExpectedChecksum: "bbbbb"}
	req := &fakeRequest{
		checksumErr: bad,
		respond: func(int, hiero.AccountID, *hiero.TransactionID) (interface{}, error) {
			return okResponse()
		},
	}

	_, err := Execute(context.Background(), env, req, 0)
	require.ErrorIs(t, err, bad)
	assert.Zero(t, req.calls)
}

func TestExecuteUnknownExplicitNode(t *testing.T) {
	env := singleNodeEnv(t)
	req := &fakeRequest{
		nodeIDs: []hiero.AccountID{hiero.NewAccountID(999)},
		respond: func(int, hiero.AccountID, *hiero.TransactionID) (interface{}, error) {
			return okResponse()
		},
	}

	_, err := Execute(context.Background(), env, req, 0)
	require.Error(t, err)

	var unknown *hiero.NodeAccountUnknownError
	require.ErrorAs(t, err, &unknown)
	assert.Zero(t, req.calls)
}

func TestExecuteProbesUnpingedNodes(t *testing.T) {
	env := singleNodeEnv(t)

	probed := 0
	env.ping = func(index int) bool {
		probed++
		// a failed probe marks the node unhealthy, like the real one does
		env.net.MarkNodeUnhealthy(index)
		return false
	}

	req := &fakeRequest{
		respond: func(int, hiero.AccountID, *hiero.TransactionID) (interface{}, error) {
			return okResponse()
		},
	}

	_, err := Execute(context.Background(), env, req, time.Nanosecond)
	require.Error(t, err)

	var timeout *hiero.TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Zero(t, req.calls)
	assert.Equal(t, 1, probed)
}

func TestExecuteRetriesWhenResponseSaysSo(t *testing.T) {
	env := singleNodeEnv(t)

	req := &fakeRequest{
		respond: func(int, hiero.AccountID, *hiero.TransactionID) (interface{}, error) {
			return okResponse()
		},
	}
	req.retryResponse = func(interface{}) bool {
		// the first answer is not good enough yet
		return req.calls == 1
	}

	result, err := Execute(context.Background(), env, req, 0)
	require.NoError(t, err)
	assert.Equal(t, fakeResponse{code: int32(hiero.StatusOk)}, result)
	assert.Equal(t, 2, req.calls)
}

func TestExecuteRequestSpecificPreCheckRetry(t *testing.T) {
	env := singleNodeEnv(t)

	req := &fakeRequest{
		retryPreCheck: func(s hiero.Status) bool { return s == hiero.StatusReceiptNotFound },
		respond: func(call int, _ hiero.AccountID, _ *hiero.TransactionID) (interface{}, error) {
			if call == 1 {
				return fakeResponse{code: int32(hiero.StatusReceiptNotFound)}, nil
			}
			return okResponse()
		},
	}

	result, err := Execute(context.Background(), env, req, 0)
	require.NoError(t, err)
	assert.Equal(t, fakeResponse{code: int32(hiero.StatusOk)}, result)
	assert.Equal(t, 2, req.calls)
}

func TestResolveTimeout(t *testing.T) {
	assert.Equal(t, time.Second, resolveTimeout(time.Second, time.Minute))
	assert.Equal(t, time.Minute, resolveTimeout(0, time.Minute))
	assert.Equal(t, maxRequestTimeout, resolveTimeout(0, 0))
}

func TestClassifyTransportError(t *testing.T) {
	mark, permanent := classifyTransportError(status.Error(codes.Unavailable, "x"))
	assert.True(t, mark)
	assert.False(t, permanent)

	mark, permanent = classifyTransportError(status.Error(codes.ResourceExhausted, "x"))
	assert.True(t, mark)
	assert.False(t, permanent)

	mark, permanent = classifyTransportError(status.Error(codes.Internal, compressionFlagMessage))
	assert.True(t, mark)
	assert.True(t, permanent)

	mark, permanent = classifyTransportError(status.Error(codes.Internal, "something else"))
	assert.False(t, mark)
	assert.True(t, permanent)

	mark, permanent = classifyTransportError(fmt.Errorf("not a grpc status"))
	assert.False(t, mark)
	assert.True(t, permanent)
}
