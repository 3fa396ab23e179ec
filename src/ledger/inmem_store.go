package ledger

import (
	"strings"
	"sync"

	cm "github.com/mosaicnetworks/notary/src/common"
)

type versioned struct {
	value   []byte
	version uint64
}

// InmemStore keeps state in a map. Every committed write bumps the version of
// its key, which transactions compare at commit time to detect conflicts.
type InmemStore struct {
	l       sync.RWMutex
	entries map[string]versioned
	version uint64
	closed  bool
}

// NewInmemStore ...
func NewInmemStore() *InmemStore {
	return &InmemStore{
		entries: make(map[string]versioned),
	}
}

// Begin implements Store.
func (s *InmemStore) Begin(update bool) StoreTxn {
	return &inmemTxn{
		store:  s,
		update: update,
		reads:  make(map[string]uint64),
		writes: make(map[string][]byte),
	}
}

// Scan implements Store.
func (s *InmemStore) Scan(prefix string) (map[string][]byte, error) {
	s.l.RLock()
	defer s.l.RUnlock()

	if s.closed {
		return nil, cm.NewStoreErr("State", cm.Closed, prefix)
	}

	res := make(map[string][]byte)
	for k, v := range s.entries {
		if strings.HasPrefix(k, prefix) {
			res[k] = append([]byte(nil), v.value...)
		}
	}
	return res, nil
}

// Close implements Store.
func (s *InmemStore) Close() error {
	s.l.Lock()
	defer s.l.Unlock()

	s.closed = true
	return nil
}

type inmemTxn struct {
	store  *InmemStore
	update bool
	done   bool
	// version of each key when first read; 0 when absent
	reads  map[string]uint64
	writes map[string][]byte
}

func (t *inmemTxn) Get(key string) ([]byte, error) {
	if t.done {
		return nil, cm.NewStoreErr("State", cm.Discarded, key)
	}

	if v, ok := t.writes[key]; ok {
		return append([]byte(nil), v...), nil
	}

	t.store.l.RLock()
	defer t.store.l.RUnlock()

	if t.store.closed {
		return nil, cm.NewStoreErr("State", cm.Closed, key)
	}

	e, ok := t.store.entries[key]
	if _, seen := t.reads[key]; !seen {
		t.reads[key] = e.version
	}

	if !ok {
		return nil, cm.NewStoreErr("State", cm.KeyNotFound, key)
	}

	return append([]byte(nil), e.value...), nil
}

func (t *inmemTxn) Set(key string, value []byte) error {
	if t.done {
		return cm.NewStoreErr("State", cm.Discarded, key)
	}
	if !t.update {
		return cm.NewStoreErr("State", cm.Discarded, key)
	}

	t.writes[key] = append([]byte(nil), value...)
	return nil
}

func (t *inmemTxn) Commit() error {
	if t.done {
		return cm.NewStoreErr("State", cm.Discarded, "")
	}
	t.done = true

	if len(t.writes) == 0 {
		return nil
	}

	t.store.l.Lock()
	defer t.store.l.Unlock()

	if t.store.closed {
		return cm.NewStoreErr("State", cm.Closed, "")
	}

	for k, seen := range t.reads {
		if t.store.entries[k].version != seen {
			return cm.NewStoreErr("State", cm.Conflict, k)
		}
	}

	t.store.version++
	for k, v := range t.writes {
		t.store.entries[k] = versioned{value: v, version: t.store.version}
	}

	return nil
}

func (t *inmemTxn) Discard() {
	t.done = true
}
