package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gammazero/nexus/v3/client"
	"github.com/gammazero/nexus/v3/wamp"
	"github.com/google/uuid"
	"github.com/mosaicnetworks/notary/src/protocol"
	"github.com/sirupsen/logrus"
)

// ErrClosed is returned by Listen when the connection to the router is gone.
var ErrClosed = errors.New("event stream closed")

// DeliveryBuffer is the number of deliveries a Listener holds while nothing
// is listening. Further deliveries are dropped.
const DeliveryBuffer = 64

// Listener receives the events a Bus publishes for it.
type Listener struct {
	id         string
	client     *client.Client
	deliveries chan protocol.EventList
	dropped    atomic.Uint64
	logger     *logrus.Entry
}

// Dial connects a Listener to the websocket of a Bus, e.g.
// "ws://127.0.0.1:8009/".
func Dial(ctx context.Context, url string, realm string, logger *logrus.Entry) (*Listener, error) {
	cli, err := client.ConnectNet(ctx, url, client.Config{
		Realm:  realm,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	return newListener(cli, logger)
}

// NewLocalListener connects a Listener to bus in-process.
func NewLocalListener(bus *Bus, logger *logrus.Entry) (*Listener, error) {
	cli, err := client.ConnectLocal(bus.Router(), client.Config{
		Realm:  bus.Realm(),
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	return newListener(cli, logger)
}

func newListener(cli *client.Client, logger *logrus.Entry) (*Listener, error) {
	l := &Listener{
		id:         uuid.NewString(),
		client:     cli,
		deliveries: make(chan protocol.EventList, DeliveryBuffer),
		logger:     logger,
	}

	// the topic must exist before the first subscription so that no delivery
	// is lost
	if err := cli.Subscribe(topic(l.id), l.eventHandler, nil); err != nil {
		cli.Close()
		return nil, err
	}

	return l, nil
}

// ID ...
func (l *Listener) ID() string {
	return l.id
}

// Subscribe replaces the listener's subscriptions. A refusal by the Bus is a
// *SubscribeErr.
func (l *Listener) Subscribe(ctx context.Context, subs []protocol.EventSubscription) error {
	raw, err := json.Marshal(SubscribeRequest{Subscriptions: subs})
	if err != nil {
		return err
	}
	return l.call(ctx, ProcedureSubscribe, wamp.List{l.id, string(raw)})
}

// Unsubscribe drops every subscription. Deliveries already in flight may
// still arrive.
func (l *Listener) Unsubscribe(ctx context.Context) error {
	return l.call(ctx, ProcedureUnsubscribe, wamp.List{l.id})
}

func (l *Listener) call(ctx context.Context, procedure string, args wamp.List) error {
	result, err := l.client.Call(ctx, procedure, nil, args, nil, nil)
	if err != nil {
		return err
	}

	if len(result.Arguments) != 1 {
		return fmt.Errorf("%s: expected 1 result, got %d", procedure, len(result.Arguments))
	}

	raw, ok := wamp.AsString(result.Arguments[0])
	if !ok {
		return fmt.Errorf("%s: result is not a string", procedure)
	}

	var resp SubscribeResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return err
	}

	if resp.Status != StatusOK {
		return &SubscribeErr{Message: resp.Message}
	}

	return nil
}

// Listen calls fn with every delivery until ctx is done or the connection
// closes.
func (l *Listener) Listen(ctx context.Context, fn func(protocol.EventList)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.client.Done():
			return ErrClosed
		case list := <-l.deliveries:
			fn(list)
		}
	}
}

// Dropped returns the number of deliveries lost to a full buffer.
func (l *Listener) Dropped() uint64 {
	return l.dropped.Load()
}

// Close ...
func (l *Listener) Close() error {
	return l.client.Close()
}

func (l *Listener) eventHandler(event *wamp.Event) {
	if len(event.Arguments) != 1 {
		l.logger.Errorf("Delivery should contain 1 argument, not %d", len(event.Arguments))
		return
	}

	raw, ok := wamp.AsString(event.Arguments[0])
	if !ok {
		l.logger.Error("Error reading delivery")
		return
	}

	var list protocol.EventList
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		l.logger.WithError(err).Error("Decoding delivery")
		return
	}

	// never block the client's dispatch, or call results queued behind this
	// event would never be read
	select {
	case l.deliveries <- list:
	default:
		n := l.dropped.Add(1)
		l.logger.WithFields(logrus.Fields{
			"events":  len(list.Events),
			"dropped": n,
		}).Warn("Delivery buffer full, dropping events")
	}
}
