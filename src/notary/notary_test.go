package notary

import (
	"reflect"
	"testing"
)

func TestLegacyPayload(t *testing.T) {
	c, err := CodecFor(VersionLegacy)
	if err != nil {
		t.Fatal(err)
	}

	payload, err := c.EncodePayload(NewFact("Alice", "Bob", "H1"))
	if err != nil {
		t.Fatal(err)
	}

	if string(payload) != "Alice{Bob{H1" {
		t.Fatalf("payload should be Alice{Bob{H1, not %s", payload)
	}

	f, err := c.DecodePayload(payload)
	if err != nil {
		t.Fatal(err)
	}
	if f != NewFact("Alice", "Bob", "H1") {
		t.Fatalf("unexpected fact %#v", f)
	}
}

func TestLegacyPayloadInvalid(t *testing.T) {
	c, _ := CodecFor(VersionLegacy)

	bad := []string{
		"Alice{Bob",
		"Alice{Bob{H1{extra",
		"Alice{{H1",
		"{Bob{H1",
		"Alice{Bob{",
		"",
	}

	for _, p := range bad {
		if _, err := c.DecodePayload([]byte(p)); !IsPayload(err) {
			t.Fatalf("%q should be rejected with a PayloadErr, got %v", p, err)
		}
	}

	if _, err := c.EncodePayload(NewFact("Al{ce", "Bob", "H1")); !IsPayload(err) {
		t.Fatalf("fields containing the separator should not encode")
	}

	if _, err := c.EncodePayload(NewFact("Alice", "", "H1")); !IsPayload(err) {
		t.Fatalf("empty fields should not encode")
	}
}

func TestLegacyMerge(t *testing.T) {
	c, _ := CodecFor(VersionLegacy)

	state, err := c.Merge(nil, NewFact("Alice", "Bob", "H1"))
	if err != nil {
		t.Fatal(err)
	}
	if string(state) != "{AliceBobH1}" {
		t.Fatalf("state should be {AliceBobH1}, not %s", state)
	}

	state, err = c.Merge(state, NewFact("Carol", "Dave", "H2"))
	if err != nil {
		t.Fatal(err)
	}
	if string(state) != "{CarolDaveH2}{AliceBobH1}" {
		t.Fatalf("state should be {CarolDaveH2}{AliceBobH1}, not %s", state)
	}

	entries, _ := Entries(state)
	if !reflect.DeepEqual(entries, []string{"{CarolDaveH2}", "{AliceBobH1}"}) {
		t.Fatalf("unexpected entries %v", entries)
	}
}

func TestLegacyMergeQuotedFields(t *testing.T) {
	legacy, _ := CodecFor(VersionLegacy)
	structured, _ := CodecFor(VersionStructured)

	state, err := legacy.Merge(nil, NewFact(`"a"`, `"version":`, "H1"))
	if err != nil {
		t.Fatal(err)
	}
	if string(state) != `{"a""version":H1}` {
		t.Fatalf("unexpected state %s", state)
	}

	state, err = legacy.Merge(state, NewFact("Carol", "Dave", "H2"))
	if err != nil {
		t.Fatalf("second 1.0 sale should merge, got %v", err)
	}
	if string(state) != `{CarolDaveH2}{"a""version":H1}` {
		t.Fatalf("unexpected state %s", state)
	}

	entries, err := Entries(state)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(entries, []string{"{CarolDaveH2}", `{"a""version":H1}`}) {
		t.Fatalf("unexpected entries %v", entries)
	}

	state, err = structured.Merge(state, NewFact("Erin", "Frank", "H3"))
	if err != nil {
		t.Fatalf("2.0 sale over quoted 1.0 state should merge, got %v", err)
	}
	if state[0] != StructuredStateMarker {
		t.Fatalf("2.0 state should start with the marker byte, got %q", state[0])
	}

	ledger, err := DecodeLedger(state)
	if err != nil {
		t.Fatal(err)
	}
	if string(ledger.Legacy) != `{CarolDaveH2}{"a""version":H1}` {
		t.Fatalf("legacy state should be kept, got %q", ledger.Legacy)
	}
}

func TestStructuredPayload(t *testing.T) {
	c, err := CodecFor(VersionStructured)
	if err != nil {
		t.Fatal(err)
	}

	fact := NewFact("Al{ce", "B}b", "H1")

	payload, err := c.EncodePayload(fact)
	if err != nil {
		t.Fatal(err)
	}

	again, _ := c.EncodePayload(fact)
	if string(again) != string(payload) {
		t.Fatalf("encoding should be deterministic")
	}

	decoded, err := c.DecodePayload(payload)
	if err != nil {
		t.Fatal(err)
	}
	if decoded != fact {
		t.Fatalf("fact should be %#v, not %#v", fact, decoded)
	}

	bad := []string{
		`{"buyer":"Alice","seller":"Bob"}`,
		`{"buyer":"Alice","seller":"","house_id":"H1"}`,
		`{"buyer":"Alice","seller":"Bob","house_id":"H1","price":"1"}`,
		`Alice{Bob{H1`,
	}
	for _, p := range bad {
		if _, err := c.DecodePayload([]byte(p)); !IsPayload(err) {
			t.Fatalf("%s should be rejected with a PayloadErr, got %v", p, err)
		}
	}
}

func TestStructuredMergeOverLegacy(t *testing.T) {
	legacy, _ := CodecFor(VersionLegacy)
	structured, _ := CodecFor(VersionStructured)

	state, _ := legacy.Merge(nil, NewFact("Alice", "Bob", "H1"))

	state, err := structured.Merge(state, NewFact("Carol", "Dave", "H2"))
	if err != nil {
		t.Fatal(err)
	}

	state, err = structured.Merge(state, NewFact("Erin", "Frank", "H3"))
	if err != nil {
		t.Fatal(err)
	}

	ledger, err := DecodeLedger(state)
	if err != nil {
		t.Fatal(err)
	}

	if string(ledger.Legacy) != "{AliceBobH1}" {
		t.Fatalf("legacy state should be kept, got %q", ledger.Legacy)
	}

	expected := []Fact{NewFact("Erin", "Frank", "H3"), NewFact("Carol", "Dave", "H2")}
	if !reflect.DeepEqual(ledger.Sales, expected) {
		t.Fatalf("sales should be %v, not %v", expected, ledger.Sales)
	}

	entries, err := Entries(state)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(entries, []string{"{ErinFrankH3}", "{CarolDaveH2}", "{AliceBobH1}"}) {
		t.Fatalf("unexpected entries %v", entries)
	}

	if _, err := legacy.Merge(state, NewFact("Gina", "Hal", "H4")); err != ErrStructuredState {
		t.Fatalf("1.0 sale on 2.0 state should fail with ErrStructuredState, got %v", err)
	}
}

func TestCodecFor(t *testing.T) {
	if _, err := CodecFor("3.0"); err == nil {
		t.Fatalf("3.0 should not be supported")
	}

	if !reflect.DeepEqual(Versions(), []string{"1.0", "2.0"}) {
		t.Fatalf("unexpected versions %v", Versions())
	}
}
