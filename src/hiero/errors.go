package hiero

import (
	"fmt"
)

// The error taxonomy mirrors how the execution engine treats failures:
// configuration errors and unrecognized protocol codes are always permanent,
// transport and pre-check errors are classified by code, and a timeout wraps
// the last transient cause.

// NodeAccountUnknownError is returned when a request names a node account id
// that is not part of the current network topology.
type NodeAccountUnknownError struct {
	NodeAccountID AccountID
}

func (e *NodeAccountUnknownError) Error() string {
	return fmt.Sprintf("node account %s is not in the configured network", e.NodeAccountID)
}

// CannotValidateWithoutLedgerIDError is returned when checksum validation is
// requested but the client has no ledger id configured.
type CannotValidateWithoutLedgerIDError struct {
	Task string
}

func (e *CannotValidateWithoutLedgerIDError) Error() string {
	return fmt.Sprintf("cannot %s without a ledger id configured on the client", e.Task)
}

// BadEntityIDError is returned when an entity id carries a checksum that
// does not match the one computed for the client's ledger.
type BadEntityIDError struct {
	Entity           string
	PresentChecksum  string
	ExpectedChecksum string
}

func (e *BadEntityIDError) Error() string {
	return fmt.Sprintf("entity id %s has checksum %s, expected %s",
		e.Entity, e.PresentChecksum, e.ExpectedChecksum)
}

// PreCheckStatusError is a well-formed rejection from a node's pre-check.
type PreCheckStatusError struct {
	Status        Status
	TransactionID *TransactionID
}

func (e *PreCheckStatusError) Error() string {
	if e.TransactionID != nil {
		return fmt.Sprintf("transaction %s failed pre-check with status %s", e.TransactionID, e.Status)
	}
	return fmt.Sprintf("request failed pre-check with status %s", e.Status)
}

// TransportError wraps a gRPC level failure talking to a specific node.
type TransportError struct {
	NodeAccountID AccountID
	Err           error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error from node %s: %v", e.NodeAccountID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ResponseStatusUnrecognizedError is returned when a node answers with a
// pre-check code this client does not know about.
type ResponseStatusUnrecognizedError struct {
	Code int32
}

func (e *ResponseStatusUnrecognizedError) Error() string {
	return fmt.Sprintf("response pre-check status %d is not recognized", e.Code)
}

// TimeoutError is returned when the deadline elapsed while only transient
// errors occurred. Cause is the last node-level error observed.
type TimeoutError struct {
	Cause error
}

func (e *TimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("request timed out; last error: %v", e.Cause)
	}
	return "request timed out"
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}
