// Package socket runs transaction handlers in a process separate from the
// ledger, over JSON-RPC on TCP.
//
// The validator listens with a Server. A TransactionProcessor listens on its
// own address and registers its handlers with the validator, which dials back
// and sees each of them as an ordinary processor.TransactionHandler. When the
// validator applies a transaction it calls the processor, which reads and
// writes state through calls back into the validator, tagged with the id of
// the context the transaction runs in.
package socket
