package ledger

import (
	"github.com/dgraph-io/badger"
	cm "github.com/mosaicnetworks/notary/src/common"
	"github.com/sirupsen/logrus"
)

const statePrefix = "state/"

// BadgerStore persists state in a Badger database. Badger transactions are
// optimistic: a commit fails with badger.ErrConflict when a key the
// transaction read was written concurrently.
type BadgerStore struct {
	db   *badger.DB
	path string
}

// NewBadgerStore opens an existing database or creates a new one if nothing
// is found in path.
func NewBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithSyncWrites(false).
		WithTruncate(true)

	if logger != nil {
		opts = opts.WithLogger(logger.WithFields(logrus.Fields{"ns": "badger"}))
	}

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerStore{
		db:   handle,
		path: path,
	}, nil
}

// Begin implements Store.
func (s *BadgerStore) Begin(update bool) StoreTxn {
	return &badgerTxn{txn: s.db.NewTransaction(update)}
}

// Scan implements Store.
func (s *BadgerStore) Scan(prefix string) (map[string][]byte, error) {
	res := make(map[string][]byte)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(statePrefix + prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			res[string(item.Key()[len(statePrefix):])] = v
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return res, nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// StorePath ...
func (s *BadgerStore) StorePath() string {
	return s.path
}

type badgerTxn struct {
	txn *badger.Txn
}

func (t *badgerTxn) Get(key string) ([]byte, error) {
	item, err := t.txn.Get([]byte(statePrefix + key))
	if err != nil {
		return nil, mapError(err, key)
	}
	return item.ValueCopy(nil)
}

func (t *badgerTxn) Set(key string, value []byte) error {
	return mapError(t.txn.Set([]byte(statePrefix+key), value), key)
}

func (t *badgerTxn) Commit() error {
	return mapError(t.txn.Commit(), "")
}

func (t *badgerTxn) Discard() {
	t.txn.Discard()
}

func mapError(err error, key string) error {
	switch err {
	case nil:
		return nil
	case badger.ErrKeyNotFound:
		return cm.NewStoreErr("State", cm.KeyNotFound, key)
	case badger.ErrConflict:
		return cm.NewStoreErr("State", cm.Conflict, key)
	case badger.ErrDiscardedTxn:
		return cm.NewStoreErr("State", cm.Discarded, key)
	case badger.ErrReadOnlyTxn:
		return cm.NewStoreErr("State", cm.Discarded, key)
	}
	return err
}
