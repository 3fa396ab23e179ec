// Package ledger is a single-node development ledger. It stands in for the
// validator network a notary client talks to in production: it verifies
// submitted batches, applies them through a processor.Processor against a
// key/value store, keeps track of batch statuses and publishes the events
// committed transactions emit.
//
// There is no consensus and no block chain. Batches are applied one at a time,
// in submission order. Each batch runs in a single store transaction, so its
// transactions commit together or not at all. Stores detect conflicting
// read-modify-write cycles at commit time, in which case the batch is replayed.
package ledger
