package hiero

import "fmt"

// Status is a pre-check response code returned by a consensus node before
// full consensus, independent of the final execution outcome. The engine
// only interprets the codes below; anything else coming off the wire is
// surfaced as unrecognized.
type Status int32

const (
	// StatusOk means the request passed pre-check and was accepted.
	StatusOk Status = 0

	// StatusInvalidTransaction means the request was malformed.
	StatusInvalidTransaction Status = 1

	// StatusPayerAccountNotFound means the paying account does not exist.
	StatusPayerAccountNotFound Status = 2

	// StatusInvalidNodeAccount means the request was submitted to a node
	// other than the one named in it.
	StatusInvalidNodeAccount Status = 3

	// StatusTransactionExpired means the transaction's valid-start time is
	// too far in the past.
	StatusTransactionExpired Status = 4

	// StatusInvalidTransactionStart means the valid-start time is in the
	// future.
	StatusInvalidTransactionStart Status = 5

	// StatusInvalidSignature means the required signatures were missing or
	// wrong.
	StatusInvalidSignature Status = 7

	// StatusInsufficientTxFee means the offered fee was too low.
	StatusInsufficientTxFee Status = 9

	// StatusInsufficientPayerBalance means the payer cannot afford the fee.
	StatusInsufficientPayerBalance Status = 10

	// StatusDuplicateTransaction means this transaction id was already
	// submitted.
	StatusDuplicateTransaction Status = 11

	// StatusBusy means the node is overloaded and refused the request.
	StatusBusy Status = 12

	// StatusNotSupported means the API is not supported by this node.
	StatusNotSupported Status = 13

	// StatusReceiptNotFound means no receipt is available for the
	// transaction id.
	StatusReceiptNotFound Status = 18

	// StatusRecordNotFound means no record is available for the
	// transaction id.
	StatusRecordNotFound Status = 19

	// StatusUnknown means the node could not determine the outcome.
	StatusUnknown Status = 21

	// StatusPlatformNotActive means the underlying platform is not serving
	// requests.
	StatusPlatformNotActive Status = 26
)

var statusNames = map[Status]string{
	StatusOk:                       "OK",
	StatusInvalidTransaction:       "INVALID_TRANSACTION",
	StatusPayerAccountNotFound:     "PAYER_ACCOUNT_NOT_FOUND",
	StatusInvalidNodeAccount:       "INVALID_NODE_ACCOUNT",
	StatusTransactionExpired:       "TRANSACTION_EXPIRED",
	StatusInvalidTransactionStart:  "INVALID_TRANSACTION_START",
	StatusInvalidSignature:         "INVALID_SIGNATURE",
	StatusInsufficientTxFee:        "INSUFFICIENT_TX_FEE",
	StatusInsufficientPayerBalance: "INSUFFICIENT_PAYER_BALANCE",
	StatusDuplicateTransaction:     "DUPLICATE_TRANSACTION",
	StatusBusy:                     "BUSY",
	StatusNotSupported:             "NOT_SUPPORTED",
	StatusReceiptNotFound:          "RECEIPT_NOT_FOUND",
	StatusRecordNotFound:           "RECORD_NOT_FOUND",
	StatusUnknown:                  "UNKNOWN",
	StatusPlatformNotActive:        "PLATFORM_NOT_ACTIVE",
}

// StatusFromCode maps a raw pre-check code to a known Status. The second
// return value is false for codes this client does not recognize.
func StatusFromCode(code int32) (Status, bool) {
	s := Status(code)
	_, ok := statusNames[s]
	return s, ok
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS_%d", int32(s))
}
