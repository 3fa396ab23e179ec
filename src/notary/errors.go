package notary

import (
	"errors"
	"fmt"
)

// PayloadErr reports a payload that does not decode to a valid Fact, or a Fact
// that cannot be encoded in the requested version.
type PayloadErr struct {
	version string
	reason  string
}

// NewPayloadErr ...
func NewPayloadErr(version, reason string) PayloadErr {
	return PayloadErr{
		version: version,
		reason:  reason,
	}
}

// Error ...
func (e PayloadErr) Error() string {
	if e.version == "" {
		return fmt.Sprintf("invalid sale payload: %s", e.reason)
	}
	return fmt.Sprintf("invalid sale payload (v%s): %s", e.version, e.reason)
}

// IsPayload reports whether err is, or wraps, a PayloadErr.
func IsPayload(err error) bool {
	var payloadErr PayloadErr
	return errors.As(err, &payloadErr)
}

// ErrStructuredState is returned when a 1.0 transaction targets an account
// whose state has already been migrated to 2.0.
var ErrStructuredState = errors.New("account state is in 2.0 format and cannot take 1.0 sales")
