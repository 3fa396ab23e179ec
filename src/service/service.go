// Package service exposes a development ledger over the REST API that notary
// clients submit to.
package service

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mosaicnetworks/notary/src/address"
	"github.com/mosaicnetworks/notary/src/envelope"
	"github.com/mosaicnetworks/notary/src/ledger"
	"github.com/mosaicnetworks/notary/src/protocol"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const (
	// MaxWait caps the wait parameter of GET /batch_statuses.
	MaxWait = 300 * time.Second

	maxBodySize = 10 << 20
)

// Error codes carried in ErrorResponse bodies.
const (
	codeInvalidBatch   = 30
	codeQueueFull      = 31
	codeNoBatches      = 34
	codeBadProtobuf    = 35
	codeWrongType      = 42
	codeInvalidCount   = 53
	codeInvalidAddress = 62
	codeNoBatchIDs     = 66
	codeStateNotFound  = 75
)

// Service ...
type Service struct {
	bindAddress string
	queue       *ledger.Queue
	tracker     *ledger.Tracker
	executor    *ledger.Executor
	gatherer    prometheus.Gatherer
	mux         *http.ServeMux
	server      *http.Server
	listener    net.Listener
	logger      *logrus.Entry
}

// NewService ...
func NewService(bindAddress string,
	queue *ledger.Queue,
	tracker *ledger.Tracker,
	executor *ledger.Executor,
	gatherer prometheus.Gatherer,
	logger *logrus.Entry) *Service {

	service := Service{
		bindAddress: bindAddress,
		queue:       queue,
		tracker:     tracker,
		executor:    executor,
		gatherer:    gatherer,
		mux:         http.NewServeMux(),
		logger:      logger,
	}

	service.registerHandlers()

	return &service
}

func (s *Service) registerHandlers() {
	s.logger.Debug("Registering ledger API handlers")
	s.mux.HandleFunc("/batches", s.makeHandler(http.MethodPost, s.PostBatches))
	s.mux.HandleFunc("/batch_statuses", s.makeHandler(http.MethodGet, s.GetBatchStatuses))
	s.mux.HandleFunc("/state/", s.makeHandler(http.MethodGet, s.GetState))
	if s.gatherer != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

func (s *Service) makeHandler(method string, fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		if r.Method != method {
			w.Header().Set("Allow", method)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		fn(w, r)
	}
}

// Handler returns the API handler, to mount it in another server.
func (s *Service) Handler() http.Handler {
	return s.mux
}

// Listen binds the service address. It is separate from Serve so that
// callers can learn the address before serving.
func (s *Service) Listen() error {
	ln, err := net.Listen("tcp", s.bindAddress)
	if err != nil {
		return err
	}
	s.listener = ln
	s.server = &http.Server{Handler: s.mux}
	return nil
}

// Addr ...
func (s *Service) Addr() string {
	if s.listener == nil {
		return s.bindAddress
	}
	return s.listener.Addr().String()
}

// Serve blocks serving the API, calling Listen first if needed.
func (s *Service) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.logger.WithField("bind_address", s.Addr()).Debug("Serving ledger API")

	err := s.server.Serve(s.listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close ...
func (s *Service) Close() error {
	if s.server == nil {
		return nil
	}
	return s.server.Close()
}

// PostBatches accepts a protobuf BatchList, verifies every batch and queues
// them.
func (s *Service) PostBatches(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "application/octet-stream" {
		writeError(w, http.StatusBadRequest, codeWrongType, "Wrong Content Type",
			"Batches must be submitted as a BatchList protobuf binary, with a 'Content-Type' header of 'application/octet-stream'")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.logger.WithError(err).Error("Reading request body")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var list protocol.BatchList
	if err := list.Unmarshal(body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadProtobuf, "Protobuf Not Decodable", err.Error())
		return
	}

	if len(list.Batches) == 0 {
		writeError(w, http.StatusBadRequest, codeNoBatches, "No Batches Submitted",
			"The protobuf BatchList you submitted was empty and contained no Batches")
		return
	}

	for _, b := range list.Batches {
		if _, err := envelope.VerifyBatch(b); err != nil {
			s.logger.WithError(err).Debug("Refusing batch")
			writeError(w, http.StatusBadRequest, codeInvalidBatch, "Submitted Batches Invalid", err.Error())
			return
		}
	}

	if err := s.queue.Submit(list.Batches); err != nil {
		s.logger.WithError(err).Warn("Refusing batches")
		writeError(w, http.StatusTooManyRequests, codeQueueFull, "Unable to Accept Batches", err.Error())
		return
	}

	ids := list.BatchIDs()

	s.logger.WithField("batches", len(ids)).Debug("Accepted batches")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(protocol.SubmitResponse{
		Link: s.link(r, "/batch_statuses?id="+strings.Join(ids, ",")),
	})
}

// GetBatchStatuses reports the status of comma-separated batch ids. With a
// positive wait, in seconds, it holds the request until no batch is PENDING
// or wait elapses.
func (s *Service) GetBatchStatuses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var ids []string
	for _, id := range strings.Split(q.Get("id"), ",") {
		if id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, codeNoBatchIDs, "Id Query Invalid or Missing",
			"Requests for batch statuses must include an 'id' query parameter")
		return
	}

	var entries []protocol.BatchStatusEntry

	wait, err := parseWait(q.Get("wait"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidCount, "Invalid Wait Query", err.Error())
		return
	}

	if wait > 0 {
		entries = s.tracker.Wait(r.Context(), ids, wait)
	} else {
		entries = s.tracker.Statuses(ids)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.BatchStatusResponse{
		Data: entries,
		Link: s.link(r, r.URL.RequestURI()),
	})
}

// GetState ...
func (s *Service) GetState(w http.ResponseWriter, r *http.Request) {
	addr := r.URL.Path[len("/state/"):]

	if !address.IsValid(addr) {
		writeError(w, http.StatusBadRequest, codeInvalidAddress, "Invalid State Address",
			"Expected a 70-character hex address")
		return
	}

	value, err := s.executor.State(addr)
	if err != nil {
		s.logger.WithError(err).Errorf("Retrieving state %s", addr)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if value == nil {
		writeError(w, http.StatusNotFound, codeStateNotFound, "State Not Found",
			"There is no state data at the address specified")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(protocol.StateResponse{
		Data: value,
		Link: s.link(r, r.URL.RequestURI()),
	})
}

func (s *Service) link(r *http.Request, path string) string {
	return "http://" + r.Host + path
}

func parseWait(v string) (time.Duration, error) {
	if v == "" || v == "false" {
		return 0, nil
	}
	if v == "true" {
		return MaxWait, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &strconv.NumError{Func: "wait", Num: v, Err: strconv.ErrSyntax}
	}

	wait := time.Duration(n) * time.Second
	if wait > MaxWait {
		wait = MaxWait
	}
	return wait, nil
}

func writeError(w http.ResponseWriter, status int, code int, title string, message string) {
	var resp protocol.ErrorResponse
	resp.Error.Code = code
	resp.Error.Title = title
	resp.Error.Message = message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
