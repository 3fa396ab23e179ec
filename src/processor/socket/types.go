package socket

import (
	"errors"

	"github.com/mosaicnetworks/notary/src/processor"
	"github.com/mosaicnetworks/notary/src/protocol"
)

// HandlerInfo is what a processor registers with the validator.
type HandlerInfo struct {
	Family     string
	Versions   []string
	Namespaces []string
	Addr       string
}

// ApplyArgs ...
type ApplyArgs struct {
	ContextID string
	Request   *processor.Request
}

// GetStateArgs ...
type GetStateArgs struct {
	ContextID string
	Addresses []string
}

// SetStateArgs ...
type SetStateArgs struct {
	ContextID string
	Entries   map[string][]byte
}

// AddEventArgs ...
type AddEventArgs struct {
	ContextID  string
	EventType  string
	Attributes []protocol.Attribute
	Data       []byte
}

// ContextReply carries the result of a context call. Errors travel in the
// reply rather than as RPC errors so that authorization failures keep their
// type across the wire.
type ContextReply struct {
	Entries map[string][]byte
	Written []string
	AuthErr *processor.AuthorizationErr
	Err     string
}

func newContextReply(err error) ContextReply {
	var auth *processor.AuthorizationErr
	if errors.As(err, &auth) {
		return ContextReply{AuthErr: auth}
	}
	if err != nil {
		return ContextReply{Err: err.Error()}
	}
	return ContextReply{}
}

func (r ContextReply) err() error {
	if r.AuthErr != nil {
		return r.AuthErr
	}
	if r.Err != "" {
		return errors.New(r.Err)
	}
	return nil
}
