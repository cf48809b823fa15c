package execute

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/hiero-ledger/hiero-go-client/src/hiero"
	"github.com/hiero-ledger/hiero-go-client/src/network"
)

// Executable is implemented by every request the engine can drive: it
// supplies the request-specific pieces (payload construction, the gRPC call,
// response interpretation) while the engine owns node selection, retries and
// deadlines. Payloads and responses travel as interface{} because their
// concrete types differ per operation.
type Executable interface {
	// NodeAccountIDs returns the nodes the caller pinned the request to,
	// or nil to let the engine sample from the healthy set.
	NodeAccountIDs() []hiero.AccountID

	// TransactionID returns the explicitly assigned transaction id, or nil
	// when the engine should generate one per attempt.
	TransactionID() *hiero.TransactionID

	// RequiresTransactionID reports whether the request is a transaction
	// and therefore must carry a transaction id.
	RequiresTransactionID() bool

	// ValidateChecksums verifies every entity id embedded in the request
	// against the given ledger.
	ValidateChecksums(ledgerID hiero.LedgerID) error

	// MakeRequest builds the wire payload for one attempt against one node.
	MakeRequest(transactionID *hiero.TransactionID, nodeAccountID hiero.AccountID) (interface{}, error)

	// CallGRPC performs the request's RPC over the given channel.
	CallGRPC(ctx context.Context, channel *grpc.ClientConn, request interface{}) (interface{}, error)

	// ResponsePreCheckStatus extracts the raw precheck status code from a
	// successful RPC response.
	ResponsePreCheckStatus(response interface{}) (int32, error)

	// ShouldRetry inspects a response that passed precheck and reports
	// whether the request must still be retried, e.g. a receipt that is not
	// available yet.
	ShouldRetry(response interface{}) bool

	// ShouldRetryPreCheck reports request-specific statuses that warrant a
	// fresh round beyond the engine's built-in set.
	ShouldRetryPreCheck(status hiero.Status) bool

	// MakeResponse converts the final successful RPC response into the
	// value returned to the caller.
	MakeResponse(response interface{}, transactionID *hiero.TransactionID, nodeAccountID hiero.AccountID) (interface{}, error)
}

// Environment is what the engine needs from the client that hosts it.
// Client implements it; tests substitute fakes.
type Environment interface {
	// Network returns the consensus node registry requests run against.
	Network() *network.Network

	// LedgerID identifies the ledger for checksum validation, nil when
	// unknown.
	LedgerID() *hiero.LedgerID

	// AutoValidateChecksums reports whether entity checksums are verified
	// before anything hits the wire.
	AutoValidateChecksums() bool

	// GenerateTransactionID mints a transaction id from the operator.
	GenerateTransactionID() (hiero.TransactionID, error)

	// RequestTimeout is the default overall deadline for a request whose
	// caller did not set one. Zero means the engine's ceiling applies.
	RequestTimeout() time.Duration

	// PingNode checks liveness of a node that has not been heard from
	// recently, recording the outcome in its health state.
	PingNode(index int) bool

	Logger() *logrus.Entry
}
