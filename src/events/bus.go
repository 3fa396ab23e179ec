package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gammazero/nexus/v3/client"
	"github.com/gammazero/nexus/v3/router"
	"github.com/gammazero/nexus/v3/wamp"
	"github.com/mosaicnetworks/notary/src/protocol"
	"github.com/sirupsen/logrus"
)

// Bus is the ledger side of the event stream. It implements ledger.Publisher.
type Bus struct {
	l           sync.RWMutex
	realm       string
	router      router.Router
	client      *client.Client
	subscribers map[string][]subscription
	httpServer  *http.Server
	listener    net.Listener
	logger      *logrus.Entry
}

// NewBus starts an in-process WAMP router for realm and registers the
// subscription procedures on it.
func NewBus(realm string, logger *logrus.Entry) (*Bus, error) {
	routerConfig := &router.Config{
		RealmConfigs: []*router.RealmConfig{
			&router.RealmConfig{
				URI:           wamp.URI(realm),
				AnonymousAuth: true,
			},
		},
	}

	nxr, err := router.NewRouter(routerConfig, logger)
	if err != nil {
		return nil, err
	}

	cli, err := client.ConnectLocal(nxr, client.Config{
		Realm:  realm,
		Logger: logger,
	})
	if err != nil {
		nxr.Close()
		return nil, err
	}

	b := &Bus{
		realm:       realm,
		router:      nxr,
		client:      cli,
		subscribers: make(map[string][]subscription),
		logger:      logger,
	}

	if err := cli.Register(ProcedureSubscribe, b.subscribe, nil); err != nil {
		b.Close()
		return nil, err
	}
	if err := cli.Register(ProcedureUnsubscribe, b.unsubscribe, nil); err != nil {
		b.Close()
		return nil, err
	}

	return b, nil
}

// Realm ...
func (b *Bus) Realm() string {
	return b.realm
}

// Router returns the embedded router, for in-process listeners.
func (b *Bus) Router() router.Router {
	return b.router
}

// Serve accepts websocket connections on bind in a background goroutine.
func (b *Bus) Serve(bind string) error {
	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}

	b.listener = ln
	b.httpServer = &http.Server{
		Handler: router.NewWebsocketServer(b.router),
	}

	go func() {
		err := b.httpServer.Serve(ln)
		if err != nil && err != http.ErrServerClosed {
			b.logger.WithError(err).Error("Serving websocket")
		}
	}()

	b.logger.WithField("bind", ln.Addr().String()).Debug("Event bus listening")

	return nil
}

// Addr returns the websocket address, once Serve has been called.
func (b *Bus) Addr() string {
	if b.listener == nil {
		return ""
	}
	return b.listener.Addr().String()
}

// Subscribers returns the number of subscribers with live subscriptions.
func (b *Bus) Subscribers() int {
	b.l.RLock()
	defer b.l.RUnlock()
	return len(b.subscribers)
}

// Publish sends every subscriber the events matching its subscriptions, as a
// single EventList.
func (b *Bus) Publish(events []*protocol.Event) {
	b.l.RLock()
	defer b.l.RUnlock()

	for id, subs := range b.subscribers {
		matched := filterEvents(subs, events)
		if len(matched) == 0 {
			continue
		}

		raw, err := json.Marshal(protocol.EventList{Events: matched})
		if err != nil {
			b.logger.WithError(err).Error("Encoding event list")
			continue
		}

		if err := b.client.Publish(topic(id), nil, wamp.List{string(raw)}, nil); err != nil {
			b.logger.WithError(err).WithField("subscriber", id).Error("Publishing events")
		}
	}
}

// Close shuts down the websocket server, then the router.
func (b *Bus) Close() error {
	if b.httpServer != nil {
		if err := b.httpServer.Shutdown(context.Background()); err != nil {
			b.logger.WithError(err).Error("Shutting down http server")
		}
	}

	err := b.client.Close()
	b.router.Close()
	return err
}

func (b *Bus) subscribe(ctx context.Context, inv *wamp.Invocation) client.InvokeResult {
	if len(inv.Arguments) != 2 {
		return errResult(
			fmt.Sprintf("Invocation should contain 2 arguments, not %d", len(inv.Arguments)))
	}

	id, ok := wamp.AsString(inv.Arguments[0])
	if !ok || id == "" {
		return errResult("Error reading subscriber id")
	}

	raw, ok := wamp.AsString(inv.Arguments[1])
	if !ok {
		return errResult("Error reading subscriptions")
	}

	var req SubscribeRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return response(SubscribeResponse{Status: StatusError, Message: err.Error()})
	}

	subs, err := compile(req.Subscriptions)
	if err != nil {
		return response(SubscribeResponse{Status: StatusError, Message: err.Error()})
	}

	b.l.Lock()
	b.subscribers[id] = subs
	b.l.Unlock()

	b.logger.WithFields(logrus.Fields{
		"subscriber":    id,
		"subscriptions": len(subs),
	}).Debug("Subscribed")

	return response(SubscribeResponse{Status: StatusOK})
}

func (b *Bus) unsubscribe(ctx context.Context, inv *wamp.Invocation) client.InvokeResult {
	if len(inv.Arguments) != 1 {
		return errResult(
			fmt.Sprintf("Invocation should contain 1 argument, not %d", len(inv.Arguments)))
	}

	id, ok := wamp.AsString(inv.Arguments[0])
	if !ok {
		return errResult("Error reading subscriber id")
	}

	b.l.Lock()
	_, known := b.subscribers[id]
	delete(b.subscribers, id)
	b.l.Unlock()

	if !known {
		return response(SubscribeResponse{Status: StatusError, Message: "unknown subscriber"})
	}

	b.logger.WithField("subscriber", id).Debug("Unsubscribed")

	return response(SubscribeResponse{Status: StatusOK})
}

func response(r SubscribeResponse) client.InvokeResult {
	raw, _ := json.Marshal(r)
	return client.InvokeResult{Args: wamp.List{string(raw)}}
}

func errResult(msg string) client.InvokeResult {
	return client.InvokeResult{
		Err:  ErrBadRequest,
		Args: wamp.List{msg},
	}
}
