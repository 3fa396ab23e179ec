package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gammazero/nexus/v3/wamp"
	"github.com/mosaicnetworks/notary/src/common"
	"github.com/mosaicnetworks/notary/src/protocol"
)

func newTestBus(t *testing.T) *Bus {
	bus, err := NewBus("notary", common.NewTestEntry(t, "bus"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { bus.Close() })
	return bus
}

func receive(t *testing.T, l *Listener, timeout time.Duration) (protocol.EventList, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var (
		got   protocol.EventList
		found bool
	)
	l.Listen(ctx, func(list protocol.EventList) {
		got = list
		found = true
		cancel()
	})
	return got, found
}

func saleEvents() []*protocol.Event {
	return []*protocol.Event{
		event("notary/add", "sale-added", "{AliceBobH1}"),
		event("ledger/batch-commit", "batch_id", "b1", "sequence", "1"),
	}
}

func TestBusDelivery(t *testing.T) {
	bus := newTestBus(t)

	l, err := NewLocalListener(bus, common.NewTestEntry(t, "listener"))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	ctx := context.Background()
	err = l.Subscribe(ctx, []protocol.EventSubscription{{
		EventType: "notary/add",
		Filters: []protocol.EventFilter{{
			Key:         "sale-added",
			MatchString: "Alice",
			FilterType:  protocol.RegexAny,
		}},
	}})
	if err != nil {
		t.Fatal(err)
	}

	if n := bus.Subscribers(); n != 1 {
		t.Fatalf("expected 1 subscriber, got %d", n)
	}

	bus.Publish(saleEvents())

	list, ok := receive(t, l, 5*time.Second)
	if !ok {
		t.Fatal("no delivery")
	}
	if len(list.Events) != 1 || list.Events[0].EventType != "notary/add" {
		t.Fatalf("delivery should hold only the sale event, got %v", list.Events)
	}
	if v := list.Events[0].Values("sale-added"); len(v) != 1 || v[0] != "{AliceBobH1}" {
		t.Fatalf("unexpected attributes %v", list.Events[0].Attributes)
	}

	if err := l.Unsubscribe(ctx); err != nil {
		t.Fatal(err)
	}
	if n := bus.Subscribers(); n != 0 {
		t.Fatalf("expected 0 subscribers, got %d", n)
	}

	bus.Publish(saleEvents())
	if _, ok := receive(t, l, 200*time.Millisecond); ok {
		t.Fatal("delivery after unsubscribe")
	}
}

func TestBusRefusesSubscription(t *testing.T) {
	bus := newTestBus(t)

	l, err := NewLocalListener(bus, common.NewTestEntry(t, "listener"))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	err = l.Subscribe(context.Background(), []protocol.EventSubscription{{
		EventType: "notary/add",
		Filters: []protocol.EventFilter{{
			Key:         "sale-added",
			MatchString: "[",
			FilterType:  protocol.RegexAll,
		}},
	}})

	var serr *SubscribeErr
	if !errors.As(err, &serr) {
		t.Fatalf("expected a SubscribeErr, got %v", err)
	}
	if bus.Subscribers() != 0 {
		t.Fatal("a refused subscription should not be kept")
	}

	if err := l.Unsubscribe(context.Background()); !errors.As(err, &serr) {
		t.Fatalf("unsubscribing an unknown subscriber should be refused, got %v", err)
	}
}

func TestBusWebsocket(t *testing.T) {
	bus := newTestBus(t)

	if err := bus.Serve("127.0.0.1:0"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	l, err := Dial(ctx, "ws://"+bus.Addr()+"/", "notary", common.NewTestEntry(t, "listener"))
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	if err := l.Subscribe(ctx, []protocol.EventSubscription{{EventType: "ledger/batch-commit"}}); err != nil {
		t.Fatal(err)
	}

	bus.Publish(saleEvents())

	list, ok := receive(t, l, 5*time.Second)
	if !ok {
		t.Fatal("no delivery")
	}
	if len(list.Events) != 1 || list.Events[0].EventType != "ledger/batch-commit" {
		t.Fatalf("unexpected delivery %v", list.Events)
	}
}

func TestListenerBufferFull(t *testing.T) {
	l := &Listener{
		id:         "full",
		deliveries: make(chan protocol.EventList, DeliveryBuffer),
		logger:     common.NewTestEntry(t, "listener"),
	}

	raw, err := json.Marshal(protocol.EventList{Events: saleEvents()})
	if err != nil {
		t.Fatal(err)
	}

	extra := 6
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < DeliveryBuffer+extra; i++ {
			l.eventHandler(&wamp.Event{Arguments: wamp.List{string(raw)}})
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("event handler blocked on a full buffer")
	}

	if d := l.Dropped(); d != uint64(extra) {
		t.Fatalf("expected %d dropped deliveries, got %d", extra, d)
	}
	if n := len(l.deliveries); n != DeliveryBuffer {
		t.Fatalf("expected %d buffered deliveries, got %d", DeliveryBuffer, n)
	}
}
