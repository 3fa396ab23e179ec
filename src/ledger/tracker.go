package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/mosaicnetworks/notary/src/protocol"
)

// DefaultStatusRetention is how long a COMMITTED or INVALID status is kept.
const DefaultStatusRetention = time.Hour

type batchRecord struct {
	status  protocol.BatchStatus
	invalid []protocol.InvalidTransaction
	updated time.Time
}

type expiry struct {
	id      string
	updated time.Time
}

// Tracker records the status of the batches the ledger has seen. Batches it
// has never seen, or whose final status is older than the retention, are
// UNKNOWN.
type Tracker struct {
	l         sync.Mutex
	batches   map[string]batchRecord
	expiries  []expiry
	retention time.Duration
	now       func() time.Time
	// closed and replaced on every change
	changed chan struct{}
}

// NewTracker ...
func NewTracker() *Tracker {
	return NewTrackerWithRetention(DefaultStatusRetention)
}

// NewTrackerWithRetention returns a Tracker that forgets final statuses after
// retention. PENDING statuses are never forgotten.
func NewTrackerWithRetention(retention time.Duration) *Tracker {
	return &Tracker{
		batches:   make(map[string]batchRecord),
		retention: retention,
		now:       time.Now,
		changed:   make(chan struct{}),
	}
}

// SetPending ...
func (t *Tracker) SetPending(id string) {
	t.set(id, batchRecord{status: protocol.StatusPending})
}

// SetCommitted ...
func (t *Tracker) SetCommitted(id string) {
	t.set(id, batchRecord{status: protocol.StatusCommitted})
}

// SetInvalid ...
func (t *Tracker) SetInvalid(id string, invalid ...protocol.InvalidTransaction) {
	t.set(id, batchRecord{status: protocol.StatusInvalid, invalid: invalid})
}

func (t *Tracker) set(id string, r batchRecord) {
	t.l.Lock()
	defer t.l.Unlock()

	r.updated = t.now()
	t.evict(r.updated)

	t.batches[id] = r
	if r.status != protocol.StatusPending {
		t.expiries = append(t.expiries, expiry{id, r.updated})
	}

	close(t.changed)
	t.changed = make(chan struct{})
}

// evict drops the final statuses set before now minus the retention. expiries
// is in set order, so it stops at the first recent one.
func (t *Tracker) evict(now time.Time) {
	n := 0
	for _, e := range t.expiries {
		if now.Sub(e.updated) < t.retention {
			break
		}
		if r, ok := t.batches[e.id]; ok && r.updated.Equal(e.updated) && r.status != protocol.StatusPending {
			delete(t.batches, e.id)
		}
		n++
	}
	t.expiries = t.expiries[n:]
}

// Len returns the number of batches whose status is known.
func (t *Tracker) Len() int {
	t.l.Lock()
	defer t.l.Unlock()
	return len(t.batches)
}

// Statuses returns one entry per id, in order.
func (t *Tracker) Statuses(ids []string) []protocol.BatchStatusEntry {
	t.l.Lock()
	defer t.l.Unlock()

	return t.statuses(ids)
}

func (t *Tracker) statuses(ids []string) []protocol.BatchStatusEntry {
	res := make([]protocol.BatchStatusEntry, 0, len(ids))
	for _, id := range ids {
		r, ok := t.batches[id]
		if !ok {
			r = batchRecord{status: protocol.StatusUnknown}
		}
		res = append(res, protocol.BatchStatusEntry{
			ID:                  id,
			Status:              r.status,
			InvalidTransactions: append([]protocol.InvalidTransaction{}, r.invalid...),
		})
	}
	return res
}

func pending(entries []protocol.BatchStatusEntry) bool {
	for _, e := range entries {
		if e.Status == protocol.StatusPending {
			return true
		}
	}
	return false
}

// Wait blocks until none of ids is PENDING, timeout elapses or ctx is done,
// and returns the statuses at that point.
func (t *Tracker) Wait(ctx context.Context, ids []string, timeout time.Duration) []protocol.BatchStatusEntry {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		t.l.Lock()
		entries := t.statuses(ids)
		changed := t.changed
		t.l.Unlock()

		if !pending(entries) {
			return entries
		}

		select {
		case <-changed:
		case <-timer.C:
			return t.Statuses(ids)
		case <-ctx.Done():
			return t.Statuses(ids)
		}
	}
}

// Status returns the status of a single batch.
func (t *Tracker) Status(id string) protocol.BatchStatus {
	t.l.Lock()
	defer t.l.Unlock()

	r, ok := t.batches[id]
	if !ok {
		return protocol.StatusUnknown
	}
	return r.status
}
