package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/mosaicnetworks/notary/src/protocol"
	"github.com/sirupsen/logrus"
)

// ErrQueueFull is returned by Submit when the queue cannot take every batch
// of a submission.
var ErrQueueFull = errors.New("batch queue is full")

// Queue feeds submitted batches, in order, to a single executor goroutine.
type Queue struct {
	l        sync.Mutex
	executor *Executor
	tracker  *Tracker
	batches  chan *protocol.Batch
	metrics  *Metrics
	logger   *logrus.Entry
}

// NewQueue ...
func NewQueue(executor *Executor, size int, logger *logrus.Entry) *Queue {
	return &Queue{
		executor: executor,
		tracker:  executor.tracker,
		batches:  make(chan *protocol.Batch, size),
		metrics:  executor.metrics,
		logger:   logger,
	}
}

// Submit marks the batches PENDING and enqueues them. Batches already
// pending or committed are skipped. Either every new batch is queued or none
// is.
func (q *Queue) Submit(batches []*protocol.Batch) error {
	q.l.Lock()
	defer q.l.Unlock()

	var fresh []*protocol.Batch
	for _, b := range batches {
		switch q.tracker.Status(b.HeaderSignature) {
		case protocol.StatusPending, protocol.StatusCommitted:
			q.logger.WithField("batch", shortID(b.HeaderSignature)).Debug("Skipping known batch")
		default:
			fresh = append(fresh, b)
		}
	}

	if len(q.batches)+len(fresh) > cap(q.batches) {
		return ErrQueueFull
	}

	for _, b := range fresh {
		q.tracker.SetPending(b.HeaderSignature)
		q.batches <- b
		q.metrics.queueDepth.Inc()
	}

	return nil
}

// Run executes queued batches until ctx is done.
func (q *Queue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case b := <-q.batches:
			q.metrics.queueDepth.Dec()
			q.executor.Execute(b)
		}
	}
}
