package processor

import (
	"errors"
	"fmt"
)

// InvalidTransaction rejects a transaction on its own merits. Replaying it will
// always fail, so it is never retried.
type InvalidTransaction struct {
	Msg          string
	ExtendedData []byte
}

// NewInvalidTransaction ...
func NewInvalidTransaction(format string, args ...interface{}) *InvalidTransaction {
	return &InvalidTransaction{Msg: fmt.Sprintf(format, args...)}
}

// Error ...
func (e *InvalidTransaction) Error() string {
	return fmt.Sprintf("invalid transaction: %s", e.Msg)
}

// InternalError signals that the transaction could not be applied because of
// a fault in the ledger or the handler.
type InternalError struct {
	Msg   string
	Cause error
}

// NewInternalError ...
func NewInternalError(cause error, format string, args ...interface{}) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...), Cause: cause}
}

// Error ...
func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s: %v", e.Msg, e.Cause)
	}
	return fmt.Sprintf("internal error: %s", e.Msg)
}

// Unwrap ...
func (e *InternalError) Unwrap() error {
	return e.Cause
}

// AuthorizationErr is returned by a Context when a handler touches an address
// the transaction did not declare.
type AuthorizationErr struct {
	Address string
	Op      string
}

// Error ...
func (e *AuthorizationErr) Error() string {
	return fmt.Sprintf("%s of undeclared address %s", e.Op, e.Address)
}

// IsInvalidTransaction ...
func IsInvalidTransaction(err error) bool {
	var target *InvalidTransaction
	return errors.As(err, &target)
}

// IsInternalError ...
func IsInternalError(err error) bool {
	var target *InternalError
	return errors.As(err, &target)
}

// IsAuthorization ...
func IsAuthorization(err error) bool {
	var target *AuthorizationErr
	return errors.As(err, &target)
}
