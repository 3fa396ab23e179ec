package keys

import (
	"errors"
	"fmt"
)

// KeyErrType ...
type KeyErrType uint32

const (
	// KeyMissing means no key file exists at the given path.
	KeyMissing KeyErrType = iota
	// KeyUnreadable ...
	KeyUnreadable
	// KeyPermissions means the key file is accessible to 'group' or 'others'.
	KeyPermissions
	// KeyInvalid means the file content is not a valid secp256k1 private key.
	KeyInvalid
)

// KeyErr is returned whenever a signing key cannot be obtained. It is a
// configuration error: nothing has been sent to the ledger when it occurs.
type KeyErr struct {
	path    string
	errType KeyErrType
	cause   error
}

// NewKeyErr ...
func NewKeyErr(path string, errType KeyErrType, cause error) KeyErr {
	return KeyErr{
		path:    path,
		errType: errType,
		cause:   cause,
	}
}

// Error ...
func (e KeyErr) Error() string {
	m := ""
	switch e.errType {
	case KeyMissing:
		m = "no key found"
	case KeyUnreadable:
		m = "could not read key"
	case KeyPermissions:
		m = "bad key file permissions"
	case KeyInvalid:
		m = "invalid key"
	}

	if e.cause != nil {
		return fmt.Sprintf("%s at %s: %v", m, e.path, e.cause)
	}
	return fmt.Sprintf("%s at %s", m, e.path)
}

// Unwrap ...
func (e KeyErr) Unwrap() error {
	return e.cause
}

// Type ...
func (e KeyErr) Type() KeyErrType {
	return e.errType
}

// IsKey checks that err is, or wraps, a KeyErr of type t.
func IsKey(err error, t KeyErrType) bool {
	var keyErr KeyErr
	return errors.As(err, &keyErr) && keyErr.errType == t
}

// IsConfiguration reports whether err is, or wraps, any KeyErr.
func IsConfiguration(err error) bool {
	var keyErr KeyErr
	return errors.As(err, &keyErr)
}
