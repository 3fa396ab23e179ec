package client

import (
	"errors"
	"fmt"
)

// LedgerErrType ...
type LedgerErrType uint32

const (
	// Unreachable means the request never got an HTTP response.
	Unreachable LedgerErrType = iota
	// Rejected means the ledger answered with a non-2xx status.
	Rejected
	// BadResponse means a 2xx response could not be understood.
	BadResponse
)

// LedgerErr is returned for any failure talking to the ledger's REST API. It
// never wraps a signing or key problem: those fail before a request is made.
type LedgerErr struct {
	URL        string
	errType    LedgerErrType
	StatusCode int
	Reason     string
	cause      error
}

func newLedgerErr(url string, errType LedgerErrType, cause error) *LedgerErr {
	return &LedgerErr{
		URL:     url,
		errType: errType,
		cause:   cause,
	}
}

// Type ...
func (e *LedgerErr) Type() LedgerErrType {
	return e.errType
}

// Unwrap ...
func (e *LedgerErr) Unwrap() error {
	return e.cause
}

func (e *LedgerErr) Error() string {
	switch e.errType {
	case Unreachable:
		return fmt.Sprintf("Failed to connect to %s: %v", e.URL, e.cause)
	case Rejected:
		return fmt.Sprintf("Error %d: %s", e.StatusCode, e.Reason)
	default:
		return fmt.Sprintf("Unexpected response from %s: %v", e.URL, e.cause)
	}
}

// IsLedger reports whether err is a *LedgerErr of type t.
func IsLedger(err error, t LedgerErrType) bool {
	var lerr *LedgerErr
	return errors.As(err, &lerr) && lerr.errType == t
}
