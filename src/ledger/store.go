package ledger

// Store is the state database of the ledger. Keys are state addresses.
type Store interface {
	// Begin opens a transaction. Read-only transactions may not Set.
	Begin(update bool) StoreTxn

	// Scan returns every entry whose key starts with prefix, at the latest
	// committed version.
	Scan(prefix string) (map[string][]byte, error)

	Close() error
}

// StoreTxn is a snapshot-isolated transaction. Reads see the transaction's own
// writes.
type StoreTxn interface {
	// Get fails with a common.StoreErr of type KeyNotFound for absent keys.
	Get(key string) ([]byte, error)

	Set(key string, value []byte) error

	// Commit fails with a common.StoreErr of type Conflict if a key read by
	// this transaction was committed by another one in the meantime.
	Commit() error

	// Discard is a no-op after Commit.
	Discard()
}
