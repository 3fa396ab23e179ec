package notary

import (
	"bytes"
	"fmt"

	"github.com/ugorji/go/codec"
)

const structuredStateVersion = 2

// StructuredStateMarker is the first byte of 2.0 state. 1.0 state always
// starts with '{'.
const StructuredStateMarker byte = 0x02

// Ledger is the 2.0 state of an account.
type Ledger struct {
	// Legacy holds the 1.0 state the account had before its first 2.0 sale.
	Legacy []byte `codec:"legacy,omitempty" json:"legacy,omitempty"`

	// Sales, newest first.
	Sales []Fact `codec:"sales" json:"sales"`

	Version int `codec:"version" json:"version"`
}

type structuredCodec struct{}

func jsonHandle() *codec.JsonHandle {
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	jh.ErrorIfNoField = true
	return jh
}

func encodeCanonical(v interface{}) ([]byte, error) {
	b := new(bytes.Buffer)
	enc := codec.NewEncoder(b, jsonHandle())
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func decodeCanonical(data []byte, v interface{}) error {
	dec := codec.NewDecoderBytes(data, jsonHandle())
	return dec.Decode(v)
}

func (structuredCodec) Version() string {
	return VersionStructured
}

func (structuredCodec) EncodePayload(f Fact) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return encodeCanonical(f)
}

func (structuredCodec) DecodePayload(payload []byte) (Fact, error) {
	var f Fact
	if err := decodeCanonical(payload, &f); err != nil {
		return Fact{}, NewPayloadErr(VersionStructured, err.Error())
	}

	if err := f.Validate(); err != nil {
		return Fact{}, NewPayloadErr(VersionStructured, err.(PayloadErr).reason)
	}

	return f, nil
}

func (structuredCodec) Merge(prior []byte, f Fact) ([]byte, error) {
	ledger, err := DecodeLedger(prior)
	if err != nil {
		return nil, err
	}

	ledger.Sales = append([]Fact{f}, ledger.Sales...)

	return EncodeLedger(ledger)
}

// EncodeLedger writes l as 2.0 state: the marker byte followed by canonical
// JSON.
func EncodeLedger(l *Ledger) ([]byte, error) {
	body, err := encodeCanonical(l)
	if err != nil {
		return nil, err
	}
	return append([]byte{StructuredStateMarker}, body...), nil
}

// DecodeLedger reads account state of either version into a Ledger. 1.0 state
// ends up in Legacy with no Sales.
func DecodeLedger(state []byte) (*Ledger, error) {
	ledger := &Ledger{Version: structuredStateVersion}

	if len(state) == 0 {
		return ledger, nil
	}

	if !isStructured(state) {
		ledger.Legacy = append([]byte(nil), state...)
		return ledger, nil
	}

	if err := decodeCanonical(state[1:], ledger); err != nil {
		return nil, err
	}

	if ledger.Version != structuredStateVersion {
		return nil, fmt.Errorf("unknown state version %d", ledger.Version)
	}

	return ledger, nil
}

func isStructured(state []byte) bool {
	return len(state) > 0 && state[0] == StructuredStateMarker
}

// Entries returns the recorded sales of an account, newest first, in their
// wrapped form, whatever the state version.
func Entries(state []byte) ([]string, error) {
	if !isStructured(state) {
		return legacyEntries(state), nil
	}

	ledger, err := DecodeLedger(state)
	if err != nil {
		return nil, err
	}

	res := make([]string, 0, len(ledger.Sales))
	for _, s := range ledger.Sales {
		res = append(res, s.Wrap())
	}
	return append(res, legacyEntries(ledger.Legacy)...), nil
}
