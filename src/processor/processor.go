package processor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Status is the outcome of processing one transaction.
type Status int

const (
	// StatusOK ...
	StatusOK Status = iota
	// StatusInvalidTransaction ...
	StatusInvalidTransaction
	// StatusInternalError ...
	StatusInternalError
)

var statuses = []string{"OK", "INVALID_TRANSACTION", "INTERNAL_ERROR"}

// String ...
func (s Status) String() string {
	if s < 0 || int(s) >= len(statuses) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statuses[s]
}

// Response is what the Processor reports for a transaction.
type Response struct {
	Status       Status `json:"status"`
	Message      string `json:"message,omitempty"`
	ExtendedData []byte `json:"extended_data,omitempty"`
}

// ResponseFromError classifies the error returned by a handler. Errors that
// are neither InvalidTransaction nor AuthorizationErr count as internal.
func ResponseFromError(err error) Response {
	if err == nil {
		return Response{Status: StatusOK}
	}

	var invalid *InvalidTransaction
	if errors.As(err, &invalid) {
		return Response{Status: StatusInvalidTransaction, Message: invalid.Msg, ExtendedData: invalid.ExtendedData}
	}

	if IsAuthorization(err) {
		return Response{Status: StatusInvalidTransaction, Message: err.Error()}
	}

	return Response{Status: StatusInternalError, Message: err.Error()}
}

// Err is the inverse of ResponseFromError.
func (r Response) Err() error {
	switch r.Status {
	case StatusOK:
		return nil
	case StatusInvalidTransaction:
		return &InvalidTransaction{Msg: r.Message, ExtendedData: r.ExtendedData}
	default:
		return &InternalError{Msg: r.Message}
	}
}

// Metrics counts processed transactions.
type Metrics struct {
	transactions *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// NewMetrics registers the processor metrics with reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notary",
			Subsystem: "processor",
			Name:      "transactions_total",
			Help:      "Transactions processed, by family, version and outcome.",
		}, []string{"family", "version", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "notary",
			Subsystem: "processor",
			Name:      "apply_seconds",
			Help:      "Time spent in transaction handlers.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"family"}),
	}

	if reg != nil {
		reg.MustRegister(m.transactions, m.duration)
	}

	return m
}

// Transactions ...
func (m *Metrics) Transactions() *prometheus.CounterVec {
	return m.transactions
}

type handlerKey struct {
	family  string
	version string
}

// Processor routes transactions to the handler registered for their family
// name and version.
type Processor struct {
	l        sync.RWMutex
	handlers map[handlerKey]TransactionHandler
	metrics  *Metrics
	logger   *logrus.Entry
}

// NewProcessor ...
func NewProcessor(metrics *Metrics, logger *logrus.Entry) *Processor {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Processor{
		handlers: make(map[handlerKey]TransactionHandler),
		metrics:  metrics,
		logger:   logger,
	}
}

// AddHandler registers h for each of its family versions. It replaces any
// handler previously registered for the same family and version.
func (p *Processor) AddHandler(h TransactionHandler) {
	p.l.Lock()
	defer p.l.Unlock()

	for _, v := range h.FamilyVersions() {
		p.handlers[handlerKey{h.FamilyName(), v}] = h
	}

	p.logger.WithFields(logrus.Fields{
		"family":     h.FamilyName(),
		"versions":   h.FamilyVersions(),
		"namespaces": h.Namespaces(),
	}).Info("Registered transaction handler")
}

// Handler returns the handler for a family and version, if any.
func (p *Processor) Handler(family, version string) (TransactionHandler, bool) {
	p.l.RLock()
	defer p.l.RUnlock()

	h, ok := p.handlers[handlerKey{family, version}]
	return h, ok
}

// Process applies a request through the matching handler and records the
// outcome. A transaction for a family nobody handles is invalid.
func (p *Processor) Process(request *Request, context Context) Response {
	resp, elapsed := p.Dispatch(request, context)
	p.Record(request, resp, elapsed)
	return resp
}

// Dispatch applies a request through the matching handler without counting or
// logging it. elapsed is zero when no handler matched.
func (p *Processor) Dispatch(request *Request, context Context) (resp Response, elapsed time.Duration) {
	family := request.Header.FamilyName
	version := request.Header.FamilyVersion

	h, ok := p.Handler(family, version)
	if !ok {
		return Response{
			Status:  StatusInvalidTransaction,
			Message: fmt.Sprintf("no handler for %s %s", family, version),
		}, 0
	}

	start := time.Now()
	resp = ResponseFromError(h.Apply(request, context))
	return resp, time.Since(start)
}

// Record counts and logs the response a request got. Callers that replay a
// request record only the final attempt.
func (p *Processor) Record(request *Request, resp Response, elapsed time.Duration) {
	family := request.Header.FamilyName
	version := request.Header.FamilyVersion

	if elapsed > 0 {
		p.metrics.duration.WithLabelValues(family).Observe(elapsed.Seconds())
	}
	p.metrics.transactions.WithLabelValues(family, version, resp.Status.String()).Inc()

	entry := p.logger.WithFields(logrus.Fields{
		"txn":     shortID(request.Signature),
		"family":  family,
		"version": version,
		"status":  resp.Status,
	})

	switch resp.Status {
	case StatusOK:
		entry.Debug("Processed transaction")
	case StatusInvalidTransaction:
		entry.WithField("message", resp.Message).Info("Rejected transaction")
	default:
		entry.WithField("message", resp.Message).Error("Failed to process transaction")
	}
}

func shortID(id string) string {
	if len(id) > 16 {
		return id[:16]
	}
	return id
}
