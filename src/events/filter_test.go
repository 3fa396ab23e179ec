package events

import (
	"testing"

	"github.com/mosaicnetworks/notary/src/protocol"
)

func event(eventType string, attrs ...string) *protocol.Event {
	ev := &protocol.Event{EventType: eventType}
	for i := 0; i+1 < len(attrs); i += 2 {
		ev.Attributes = append(ev.Attributes, protocol.Attribute{Key: attrs[i], Value: attrs[i+1]})
	}
	return ev
}

func TestFilterMatch(t *testing.T) {
	delta := event("ledger/state-delta", "address", "5d6b4a01", "address", "5d6b4a02")

	cases := []struct {
		name   string
		filter protocol.EventFilter
		match  bool
	}{
		{"simple any hit", protocol.EventFilter{Key: "address", MatchString: "5d6b4a02", FilterType: protocol.SimpleAny}, true},
		{"simple any miss", protocol.EventFilter{Key: "address", MatchString: "ffff", FilterType: protocol.SimpleAny}, false},
		{"simple all miss", protocol.EventFilter{Key: "address", MatchString: "5d6b4a01", FilterType: protocol.SimpleAll}, false},
		{"regex any", protocol.EventFilter{Key: "address", MatchString: "^5d6b4a", FilterType: protocol.RegexAny}, true},
		{"regex all", protocol.EventFilter{Key: "address", MatchString: "^5d6b4a0[12]$", FilterType: protocol.RegexAll}, true},
		{"regex all miss", protocol.EventFilter{Key: "address", MatchString: "1$", FilterType: protocol.RegexAll}, false},
		{"missing key", protocol.EventFilter{Key: "batch_id", MatchString: ".*", FilterType: protocol.RegexAll}, false},
	}

	for _, c := range cases {
		subs, err := compile([]protocol.EventSubscription{{
			EventType: "ledger/state-delta",
			Filters:   []protocol.EventFilter{c.filter},
		}})
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got := subs[0].match(delta); got != c.match {
			t.Fatalf("%s: match should be %v", c.name, c.match)
		}
	}
}

func TestFilterEventType(t *testing.T) {
	subs, err := compile([]protocol.EventSubscription{
		{EventType: "notary/add"},
		{EventType: "ledger/batch-commit"},
	})
	if err != nil {
		t.Fatal(err)
	}

	events := []*protocol.Event{
		event("notary/add", "sale-added", "{AliceBobH1}"),
		event("ledger/state-delta", "address", "x"),
		event("ledger/batch-commit", "batch_id", "b1"),
	}

	matched := filterEvents(subs, events)
	if len(matched) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matched))
	}
	if matched[0].EventType != "notary/add" || matched[1].EventType != "ledger/batch-commit" {
		t.Fatalf("matches should keep event order")
	}
}

func TestCompileErrors(t *testing.T) {
	cases := map[string][]protocol.EventSubscription{
		"empty":     nil,
		"no type":   {{EventType: ""}},
		"unset":     {{EventType: "notary/add", Filters: []protocol.EventFilter{{Key: "k", MatchString: "v"}}}},
		"bad regex": {{EventType: "notary/add", Filters: []protocol.EventFilter{{Key: "k", MatchString: "(", FilterType: protocol.RegexAny}}}},
		"bad enum":  {{EventType: "notary/add", Filters: []protocol.EventFilter{{Key: "k", FilterType: protocol.FilterType(9)}}}},
	}

	for name, subs := range cases {
		if _, err := compile(subs); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}
