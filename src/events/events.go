// Package events delivers ledger events to remote subscribers over WAMP.
//
// The ledger side runs a Bus: an embedded WAMP router that exposes two RPC
// procedures, one to subscribe and one to unsubscribe. Every subscriber owns
// a topic named after its id; the Bus filters the events of each committed
// batch against the subscriber's subscriptions and publishes the matching
// ones, as one JSON encoded EventList, on that topic.
//
// A Listener is the subscriber side. It connects to the router over a
// websocket, or in-process for tests, and hands each EventList to a callback.
// Delivery is at-least-once with no acknowledgement.
package events

import (
	"fmt"

	"github.com/mosaicnetworks/notary/src/protocol"
)

const (
	// ProcedureSubscribe registers or replaces a subscriber's subscriptions.
	// Arguments: [subscriber id, JSON SubscribeRequest]. Result: [JSON
	// SubscribeResponse].
	ProcedureSubscribe = "io.notary.events.subscribe"

	// ProcedureUnsubscribe drops every subscription of a subscriber.
	// Arguments: [subscriber id].
	ProcedureUnsubscribe = "io.notary.events.unsubscribe"

	// ErrBadRequest is the WAMP error URI returned for malformed invocations.
	ErrBadRequest = "io.notary.events.bad_request"

	topicPrefix = "io.notary.events.deliver."

	// StatusOK ...
	StatusOK = "OK"
	// StatusError ...
	StatusError = "ERROR"
)

// SubscribeRequest ...
type SubscribeRequest struct {
	Subscriptions []protocol.EventSubscription `json:"subscriptions"`
}

// SubscribeResponse ...
type SubscribeResponse struct {
	Status  string `json:"status"`
	Message string `json:"response_message,omitempty"`
}

// SubscribeErr is returned when the Bus refuses a subscription.
type SubscribeErr struct {
	Message string
}

func (e *SubscribeErr) Error() string {
	return fmt.Sprintf("subscription refused: %s", e.Message)
}

func topic(subscriber string) string {
	return topicPrefix + subscriber
}
