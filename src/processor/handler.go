package processor

import (
	"github.com/mosaicnetworks/notary/src/protocol"
)

// Request is one transaction as delivered to a handler.
type Request struct {
	Header    *protocol.TransactionHeader `json:"header"`
	Signature string                      `json:"signature"`
	Payload   []byte                      `json:"payload"`
}

// NewRequest decodes the transaction header.
func NewRequest(txn *protocol.Transaction) (*Request, error) {
	header, err := txn.DecodeHeader()
	if err != nil {
		return nil, err
	}
	return &Request{
		Header:    header,
		Signature: txn.HeaderSignature,
		Payload:   txn.Payload,
	}, nil
}

// Context is the view of ledger state a handler gets for one transaction.
// Reads and writes are restricted to the transaction's declared inputs and
// outputs.
type Context interface {
	// GetState returns the current value of each address that has one.
	// Addresses without a value are absent from the result.
	GetState(addresses []string) (map[string][]byte, error)

	// SetState stages writes and returns the addresses written.
	SetState(entries map[string][]byte) ([]string, error)

	// AddEvent stages an event, published only if the transaction commits.
	AddEvent(eventType string, attributes []protocol.Attribute, data []byte) error
}

// TransactionHandler implements the state transition of a transaction family.
type TransactionHandler interface {
	FamilyName() string
	FamilyVersions() []string

	// Namespaces lists the address prefixes the family reads and writes.
	Namespaces() []string

	Apply(request *Request, context Context) error
}
