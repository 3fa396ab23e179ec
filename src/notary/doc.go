// Package notary defines the "notary" transaction family: the sale fact it
// records, the payload encodings clients submit and the state encodings the
// handler stores.
//
// Two family versions exist. Version 1.0 is the legacy, deployed format: the
// payload is buyer, seller and house id joined by a bare '{', and the state of
// an account is the concatenation, newest first, of every fact wrapped as
// "{" + buyer + seller + houseId + "}". Neither is escaped, so a field
// containing a brace cannot be represented; the 1.0 encoder refuses such
// fields instead of producing an ambiguous payload.
//
// Version 2.0 carries the fact as a canonical JSON record and keeps the account
// state as a structured list of facts, newest first. When a 2.0 transaction
// lands on an account that still holds 1.0 state, the old bytes are kept
// verbatim alongside the list. A 1.0 transaction is rejected once the account
// holds 2.0 state.
package notary
