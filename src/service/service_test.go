package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mosaicnetworks/notary/src/client"
	"github.com/mosaicnetworks/notary/src/common"
	"github.com/mosaicnetworks/notary/src/crypto/keys"
	"github.com/mosaicnetworks/notary/src/envelope"
	"github.com/mosaicnetworks/notary/src/ledger"
	"github.com/mosaicnetworks/notary/src/notary"
	"github.com/mosaicnetworks/notary/src/processor"
	"github.com/mosaicnetworks/notary/src/protocol"
	"github.com/prometheus/client_golang/prometheus"
)

type testNet struct {
	server  *httptest.Server
	client  *client.Client
	builder *envelope.Builder
}

func newTestNet(t *testing.T) *testNet {
	reg := prometheus.NewRegistry()

	proc := processor.NewProcessor(processor.NewMetrics(reg), common.NewTestEntry(t, "processor"))
	proc.AddHandler(processor.NewNotaryHandler(common.NewTestEntry(t, "notary")))

	tracker := ledger.NewTracker()
	executor := ledger.NewExecutor(ledger.NewInmemStore(),
		proc,
		tracker,
		nil,
		ledger.NewMetrics(reg),
		common.NewTestEntry(t, "ledger"))
	queue := ledger.NewQueue(executor, 16, common.NewTestEntry(t, "queue"))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go queue.Run(ctx)

	svc := NewService("127.0.0.1:0", queue, tracker, executor, reg, common.NewTestEntry(t, "service"))

	srv := httptest.NewServer(svc.Handler())
	t.Cleanup(srv.Close)

	key, err := keys.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	builder, err := envelope.NewBuilder(keys.NewKeySigner(key))
	if err != nil {
		t.Fatal(err)
	}

	return &testNet{
		server:  srv,
		client:  client.NewClient(srv.URL, common.NewTestEntry(t, "client")),
		builder: builder,
	}
}

func TestSales(t *testing.T) {
	n := newTestNet(t)
	ctx := context.Background()

	sales := []struct {
		fact  notary.Fact
		state string
	}{
		{notary.NewFact("Alice", "Bob", "H1"), "{AliceBobH1}"},
		{notary.NewFact("Carol", "Dave", "H2"), "{CarolDaveH2}{AliceBobH1}"},
	}

	for _, s := range sales {
		res, err := n.client.Sale(ctx, n.builder, s.fact, 5*time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if !res.Committed() {
			t.Fatalf("sale should commit: %s", res)
		}

		state, err := n.client.State(ctx, n.builder.Address())
		if err != nil {
			t.Fatal(err)
		}
		if string(state) != s.state {
			t.Fatalf("state should be %s, not %s", s.state, state)
		}
	}
}

func TestUnknownBatch(t *testing.T) {
	n := newTestNet(t)

	res, err := n.client.WaitForStatus(context.Background(), "deadbeef", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != client.OutcomeTerminal || res.Status() != protocol.StatusUnknown {
		t.Fatalf("an unknown batch should be reported UNKNOWN, got %s %s", res.Outcome, res.Status())
	}
}

func TestRejectTamperedBatch(t *testing.T) {
	n := newTestNet(t)

	list, err := n.builder.BuildBatchList(notary.NewFact("Alice", "Bob", "H1"))
	if err != nil {
		t.Fatal(err)
	}
	list.Batches[0].Transactions[0].Payload = []byte("Mallory{Bob{H1")

	_, err = n.client.SubmitAndWait(context.Background(), list, time.Second)
	if !client.IsLedger(err, client.Rejected) {
		t.Fatalf("expected a Rejected error, got %v", err)
	}
	if err.(*client.LedgerErr).StatusCode != http.StatusBadRequest {
		t.Fatalf("expected a 400, got %v", err)
	}
}

func TestBadRequests(t *testing.T) {
	n := newTestNet(t)

	cases := []struct {
		name   string
		method string
		path   string
		ctype  string
		body   []byte
		status int
		code   int
	}{
		{"wrong content type", http.MethodPost, "/batches", "application/json", []byte("{}"), http.StatusBadRequest, codeWrongType},
		{"empty batch list", http.MethodPost, "/batches", "application/octet-stream", nil, http.StatusBadRequest, codeNoBatches},
		{"no ids", http.MethodGet, "/batch_statuses", "", nil, http.StatusBadRequest, codeNoBatchIDs},
		{"bad wait", http.MethodGet, "/batch_statuses?id=a&wait=soon", "", nil, http.StatusBadRequest, codeInvalidCount},
		{"bad address", http.MethodGet, "/state/xyz", "", nil, http.StatusBadRequest, codeInvalidAddress},
		{"no state", http.MethodGet, "/state/" + n.builder.Address(), "", nil, http.StatusNotFound, codeStateNotFound},
	}

	for _, c := range cases {
		req, err := http.NewRequest(c.method, n.server.URL+c.path, bytes.NewReader(c.body))
		if err != nil {
			t.Fatal(err)
		}
		if c.ctype != "" {
			req.Header.Set("Content-Type", c.ctype)
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}

		var er protocol.ErrorResponse
		json.NewDecoder(resp.Body).Decode(&er)
		resp.Body.Close()

		if resp.StatusCode != c.status {
			t.Fatalf("%s: status should be %d, not %d", c.name, c.status, resp.StatusCode)
		}
		if er.Error.Code != c.code {
			t.Fatalf("%s: error code should be %d, not %d", c.name, c.code, er.Error.Code)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	n := newTestNet(t)

	resp, err := http.Get(n.server.URL + "/batches")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET /batches should be refused, got %d", resp.StatusCode)
	}
}

func TestMetrics(t *testing.T) {
	n := newTestNet(t)

	_, err := n.client.Sale(context.Background(), n.builder, notary.NewFact("Alice", "Bob", "H1"), 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(n.server.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	for _, m := range []string{
		`notary_ledger_batches_total{status="COMMITTED"} 1`,
		`notary_processor_transactions_total`,
	} {
		if !strings.Contains(string(body), m) {
			t.Fatalf("metrics should contain %s", m)
		}
	}
}
