// Package protocol defines the messages exchanged with a Sawtooth-compatible
// ledger: transaction and batch envelopes, events and event subscriptions,
// and batch statuses.
//
// Envelopes are encoded with the protobuf wire format, using the field numbers
// of the Sawtooth SDK definitions, so that batches built here are accepted by
// any Sawtooth REST API. The encoding is written directly against protowire;
// there is no generated code. Header bytes are signed as produced, so Marshal
// must be deterministic: fields are always written in field number order and
// empty scalars are omitted, as a proto3 encoder would.
package protocol
