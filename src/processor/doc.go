// Package processor applies transactions to ledger state.
//
// A TransactionHandler implements the state transition of one transaction
// family. The ledger hands it one transaction at a time, together with a
// Context through which it reads and writes the addresses the transaction
// declared, and emits events. Handlers keep no state between invocations.
//
// The Processor routes transactions to handlers by family name and version,
// and turns the outcome into a Response. Handlers signal a transaction that
// can never be valid with InvalidTransaction, and a failure of the ledger or of
// the handler itself with InternalError.
package processor
