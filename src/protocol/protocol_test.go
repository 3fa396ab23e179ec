package protocol

import (
	"bytes"
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestTransactionHeaderFieldNumbers(t *testing.T) {
	h := &TransactionHeader{
		FamilyName:    "notary",
		FamilyVersion: "1.0",
		Inputs:        []string{"ab"},
	}

	raw, err := h.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	// field 3 "notary", field 4 "1.0", field 5 "ab"
	expected := []byte{
		0x1a, 0x06, 'n', 'o', 't', 'a', 'r', 'y',
		0x22, 0x03, '1', '.', '0',
		0x2a, 0x02, 'a', 'b',
	}

	if !bytes.Equal(raw, expected) {
		t.Fatalf("header bytes should be %x, not %x", expected, raw)
	}
}

func TestBatchListRoundTrip(t *testing.T) {
	header := &TransactionHeader{
		BatcherPublicKey: "02aa",
		Dependencies:     []string{},
		FamilyName:       "notary",
		FamilyVersion:    "1.0",
		Inputs:           []string{"addr"},
		Nonce:            "0x1.8p-1",
		Outputs:          []string{"addr"},
		PayloadSha512:    "ff",
		SignerPublicKey:  "02aa",
	}
	headerBytes, _ := header.Marshal()

	txn := &Transaction{
		Header:          headerBytes,
		HeaderSignature: "txnsig",
		Payload:         []byte("Alice{Bob{H1"),
	}

	bh := &BatchHeader{SignerPublicKey: "02aa", TransactionIDs: []string{"txnsig"}}
	bhBytes, _ := bh.Marshal()

	list := &BatchList{
		Batches: []*Batch{
			{Header: bhBytes, HeaderSignature: "batchsig", Transactions: []*Transaction{txn}},
		},
	}

	raw, err := list.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	var decoded BatchList
	if err := decoded.Unmarshal(raw); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(decoded.BatchIDs(), []string{"batchsig"}) {
		t.Fatalf("unexpected batch ids %v", decoded.BatchIDs())
	}

	got := decoded.Batches[0].Transactions[0]
	if got.ID() != "txnsig" || !bytes.Equal(got.Payload, txn.Payload) {
		t.Fatalf("transaction mismatch: %#v", got)
	}

	gotHeader, err := got.DecodeHeader()
	if err != nil {
		t.Fatal(err)
	}

	// empty repeated fields decode as nil
	header.Dependencies = nil
	if !reflect.DeepEqual(gotHeader, header) {
		t.Fatalf("header should be %#v, not %#v", header, gotHeader)
	}

	gotBH, err := decoded.Batches[0].DecodeHeader()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(gotBH, bh) {
		t.Fatalf("batch header should be %#v, not %#v", bh, gotBH)
	}
}

func TestUnknownFieldsSkipped(t *testing.T) {
	h := &BatchHeader{SignerPublicKey: "02aa"}
	raw, _ := h.Marshal()

	raw = protowire.AppendTag(raw, 15, protowire.Fixed64Type)
	raw = protowire.AppendFixed64(raw, 42)
	raw = protowire.AppendTag(raw, 16, protowire.BytesType)
	raw = protowire.AppendString(raw, "future")

	var decoded BatchHeader
	if err := decoded.Unmarshal(raw); err != nil {
		t.Fatal(err)
	}
	if decoded.SignerPublicKey != "02aa" {
		t.Fatalf("unexpected signer %q", decoded.SignerPublicKey)
	}
}

func TestMalformed(t *testing.T) {
	// length prefix runs past the end
	if err := new(Transaction).Unmarshal([]byte{0x0a, 0x05, 'a'}); err == nil {
		t.Fatalf("truncated message should not decode")
	}

	// field 2 of a Transaction as a varint
	if err := new(Transaction).Unmarshal([]byte{0x10, 0x01}); err == nil {
		t.Fatalf("wrong wire type should not decode")
	}
}

func TestEventSubscriptionEncoding(t *testing.T) {
	sub := &EventSubscription{
		EventType: "ledger/state-delta",
		Filters: []EventFilter{
			{Key: "address", MatchString: "4fe6ca.*", FilterType: RegexAny},
		},
	}

	raw, _ := sub.Marshal()

	var decoded EventSubscription
	if err := decoded.Unmarshal(raw); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(&decoded, sub) {
		t.Fatalf("subscription should be %#v, not %#v", sub, decoded)
	}

	list := &EventList{Events: []*Event{{
		EventType:  "notary/add",
		Attributes: []Attribute{{Key: "sale-added", Value: "{AliceBobH1}"}},
	}}}
	raw, _ = list.Marshal()

	var decodedList EventList
	if err := decodedList.Unmarshal(raw); err != nil {
		t.Fatal(err)
	}
	if v := decodedList.Events[0].Values("sale-added"); len(v) != 1 || v[0] != "{AliceBobH1}" {
		t.Fatalf("unexpected attribute values %v", v)
	}
}

func TestFilterTypeText(t *testing.T) {
	for _, ft := range []FilterType{SimpleAny, SimpleAll, RegexAny, RegexAll} {
		text, _ := ft.MarshalText()

		var parsed FilterType
		if err := parsed.UnmarshalText(text); err != nil {
			t.Fatal(err)
		}
		if parsed != ft {
			t.Fatalf("%s parsed as %s", ft, parsed)
		}
	}

	if _, err := ParseFilterType("REGEX_SOME"); err == nil {
		t.Fatalf("unknown names should not parse")
	}
}

func TestBatchStatusTerminal(t *testing.T) {
	if StatusPending.IsTerminal() {
		t.Fatalf("PENDING is not terminal")
	}
	for _, s := range []BatchStatus{StatusCommitted, StatusInvalid, StatusUnknown} {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
}
