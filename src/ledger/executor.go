package ledger

import (
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/mosaicnetworks/notary/src/address"
	cm "github.com/mosaicnetworks/notary/src/common"
	"github.com/mosaicnetworks/notary/src/envelope"
	"github.com/mosaicnetworks/notary/src/processor"
	"github.com/mosaicnetworks/notary/src/protocol"
	"github.com/sirupsen/logrus"
)

const (
	// EventBatchCommit is published once per committed batch, after the
	// events of its transactions.
	EventBatchCommit = "ledger/batch-commit"

	// EventStateDelta is published once per committed batch that wrote state,
	// with one "address" attribute per address written.
	EventStateDelta = "ledger/state-delta"

	// DefaultMaxRetries bounds the replays of a batch that hit a conflict.
	DefaultMaxRetries = 3
)

// Publisher receives the events of committed batches.
type Publisher interface {
	Publish(events []*protocol.Event)
}

// Executor applies batches to the store.
type Executor struct {
	store      Store
	processor  *processor.Processor
	tracker    *Tracker
	publisher  Publisher
	metrics    *Metrics
	maxRetries int
	sequence   uint64
	logger     *logrus.Entry
}

// NewExecutor ...
func NewExecutor(store Store,
	proc *processor.Processor,
	tracker *Tracker,
	publisher Publisher,
	metrics *Metrics,
	logger *logrus.Entry) *Executor {

	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	return &Executor{
		store:      store,
		processor:  proc,
		tracker:    tracker,
		publisher:  publisher,
		metrics:    metrics,
		maxRetries: DefaultMaxRetries,
		logger:     logger,
	}
}

type outcome struct {
	written   []string
	events    []*protocol.Event
	invalid   *protocol.InvalidTransaction
	processed []processed
}

// processed is a transaction response held back until the batch is final.
type processed struct {
	request  *processor.Request
	response processor.Response
	elapsed  time.Duration
}

// Execute verifies and applies batch, records its final status and, if it
// committed, publishes its events.
func (e *Executor) Execute(batch *protocol.Batch) protocol.BatchStatus {
	id := batch.HeaderSignature
	logger := e.logger.WithField("batch", shortID(id))

	if _, err := envelope.VerifyBatch(batch); err != nil {
		var verr envelope.VerifyErr
		txnID := id
		if errors.As(err, &verr) {
			txnID = verr.ID
		}
		logger.WithError(err).Info("Rejected batch")
		return e.invalid(id, protocol.InvalidTransaction{ID: txnID, Message: err.Error()})
	}

	var (
		res *outcome
		err error
	)

	for attempt := 0; ; attempt++ {
		res, err = e.apply(batch)
		if cm.IsStore(err, cm.Conflict) && attempt < e.maxRetries {
			e.metrics.retries.Inc()
			logger.WithField("attempt", attempt+1).Debug("Write conflict, replaying batch")
			continue
		}
		break
	}

	for _, p := range res.processed {
		e.processor.Record(p.request, p.response, p.elapsed)
	}

	if err != nil {
		logger.WithError(err).Error("Failed to commit batch")
		return e.invalid(id, protocol.InvalidTransaction{ID: id, Message: err.Error()})
	}

	if res.invalid != nil {
		return e.invalid(id, *res.invalid)
	}

	seq := atomic.AddUint64(&e.sequence, 1)

	e.tracker.SetCommitted(id)
	e.metrics.batches.WithLabelValues(string(protocol.StatusCommitted)).Inc()

	logger.WithFields(logrus.Fields{
		"sequence": seq,
		"written":  len(res.written),
	}).Debug("Committed batch")

	if e.publisher != nil {
		e.publisher.Publish(append(res.events, commitEvents(id, seq, res.written)...))
	}

	return protocol.StatusCommitted
}

func (e *Executor) invalid(id string, it protocol.InvalidTransaction) protocol.BatchStatus {
	e.tracker.SetInvalid(id, it)
	e.metrics.batches.WithLabelValues(string(protocol.StatusInvalid)).Inc()
	return protocol.StatusInvalid
}

// apply runs every transaction of batch in one store transaction. A rejected
// transaction discards the whole batch. The outcome is never nil, so that the
// responses of the last attempt can be recorded whatever happened.
func (e *Executor) apply(batch *protocol.Batch) (*outcome, error) {
	txn := e.store.Begin(true)
	defer txn.Discard()

	res := &outcome{}
	seen := make(map[string]bool)

	for _, t := range batch.Transactions {
		req, err := processor.NewRequest(t)
		if err != nil {
			return res, err
		}

		ctx := newContext(txn, req.Header)

		resp, elapsed := e.processor.Dispatch(req, ctx)
		res.processed = append(res.processed, processed{req, resp, elapsed})
		if resp.Status != processor.StatusOK {
			res.invalid = &protocol.InvalidTransaction{
				ID:           t.HeaderSignature,
				Message:      resp.Message,
				ExtendedData: resp.ExtendedData,
			}
			return res, nil
		}

		written, err := ctx.flush()
		if err != nil {
			return res, err
		}

		for _, a := range written {
			if !seen[a] {
				seen[a] = true
				res.written = append(res.written, a)
			}
		}
		res.events = append(res.events, ctx.events...)
	}

	if err := txn.Commit(); err != nil {
		return res, err
	}

	return res, nil
}

// State returns the committed value at addr, or nil.
func (e *Executor) State(addr string) ([]byte, error) {
	if !address.IsValid(addr) {
		return nil, errors.New("invalid address")
	}

	txn := e.store.Begin(false)
	defer txn.Discard()

	v, err := txn.Get(addr)
	if cm.IsStore(err, cm.KeyNotFound) {
		return nil, nil
	}
	return v, err
}

// Scan returns the committed state under an address prefix.
func (e *Executor) Scan(prefix string) (map[string][]byte, error) {
	return e.store.Scan(prefix)
}

func commitEvents(batchID string, seq uint64, written []string) []*protocol.Event {
	res := []*protocol.Event{{
		EventType: EventBatchCommit,
		Attributes: []protocol.Attribute{
			{Key: "batch_id", Value: batchID},
			{Key: "sequence", Value: strconv.FormatUint(seq, 10)},
		},
	}}

	if len(written) > 0 {
		delta := &protocol.Event{EventType: EventStateDelta}
		for _, a := range written {
			delta.Attributes = append(delta.Attributes, protocol.Attribute{Key: "address", Value: a})
		}
		res = append(res, delta)
	}

	return res
}

func shortID(id string) string {
	if len(id) > 16 {
		return id[:16]
	}
	return id
}
