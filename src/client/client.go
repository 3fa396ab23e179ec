// Package client submits notary batches to a ledger's REST API and follows
// their commit status.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mosaicnetworks/notary/src/envelope"
	"github.com/mosaicnetworks/notary/src/notary"
	"github.com/mosaicnetworks/notary/src/protocol"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// DefaultPollInterval is the minimum time between two status polls.
	DefaultPollInterval = 500 * time.Millisecond

	// DefaultRequestSlack is added to the server-side wait to bound a poll
	// request.
	DefaultRequestSlack = 10 * time.Second

	contentTypeBatchList = "application/octet-stream"
)

// Submission is what the ledger returns for an accepted BatchList.
type Submission struct {
	BatchIDs []string
	Link     string
}

// Client talks to one ledger endpoint. It holds no mutable state besides the
// http.Client, so it can be shared by concurrent submissions.
type Client struct {
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
	requestSlack time.Duration
	logger       *logrus.Entry
}

// Option ...
type Option func(*Client)

// WithHTTPClient ...
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithPollInterval ...
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = d
	}
}

// WithRequestSlack ...
func WithRequestSlack(d time.Duration) Option {
	return func(c *Client) {
		c.requestSlack = d
	}
}

// NewClient ...
func NewClient(baseURL string, logger *logrus.Entry, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{},
		pollInterval: DefaultPollInterval,
		requestSlack: DefaultRequestSlack,
		logger:       logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL ...
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Submit POSTs the protobuf encoding of list to {base}/batches.
func (c *Client) Submit(ctx context.Context, list *protocol.BatchList) (*Submission, error) {
	if len(list.Batches) == 0 {
		return nil, errors.New("empty batch list")
	}

	body, err := list.Marshal()
	if err != nil {
		return nil, err
	}

	u := c.baseURL + "/batches"

	c.logger.WithFields(logrus.Fields{
		"url":     u,
		"batches": len(list.Batches),
	}).Debug("Submitting batches")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentTypeBatchList)

	var resp protocol.SubmitResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	return &Submission{
		BatchIDs: list.BatchIDs(),
		Link:     resp.Link,
	}, nil
}

// Status makes one GET {base}/batch_statuses request. The ledger may hold the
// request for up to wait, in whole seconds rounded down, while the batch is
// PENDING.
func (c *Client) Status(ctx context.Context, id string, wait time.Duration) (*protocol.BatchStatusEntry, error) {
	q := url.Values{}
	q.Set("id", id)
	q.Set("wait", strconv.Itoa(waitSeconds(wait)))

	u := c.baseURL + "/batch_statuses?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var resp protocol.BatchStatusResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	for i := range resp.Data {
		if resp.Data[i].ID == id {
			return &resp.Data[i], nil
		}
	}

	return nil, newLedgerErr(u, BadResponse, fmt.Errorf("no status for batch %.16s", id))
}

// WaitForStatus polls the status of batch id until it leaves PENDING or
// maxWait has elapsed. It always polls at least once. Running out of time is
// reported as OutcomeTimedOut with a nil error. ctx is only checked between
// polls; a poll in flight runs to completion.
func (c *Client) WaitForStatus(ctx context.Context, id string, maxWait time.Duration) (*Result, error) {
	start := time.Now()
	deadline := start.Add(maxWait)
	limiter := rate.NewLimiter(rate.Every(c.pollInterval), 1)

	res := &Result{
		BatchID: id,
		MaxWait: maxWait,
	}

	for {
		delay := limiter.Reserve().Delay()
		if until := time.Until(deadline); delay > until {
			delay = until
		}

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, err := c.poll(ctx, id, time.Until(deadline))
		res.Polls++
		res.Elapsed = time.Since(start)
		if err != nil {
			return nil, err
		}
		res.Entry = entry

		c.logger.WithFields(logrus.Fields{
			"batch":  shortID(id),
			"status": entry.Status,
			"poll":   res.Polls,
		}).Debug("Batch status")

		if entry.Status.IsTerminal() {
			res.Outcome = OutcomeTerminal
			return res, nil
		}

		if res.Elapsed >= maxWait {
			res.Outcome = OutcomeTimedOut
			return res, nil
		}
	}
}

// poll detaches the request from ctx so that cancelling ctx does not abort
// it. It is bounded by the server wait plus requestSlack instead, and a ledger
// that does not answer within that bound is Unreachable.
func (c *Client) poll(ctx context.Context, id string, wait time.Duration) (*protocol.BatchStatusEntry, error) {
	if wait < 0 {
		wait = 0
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), wait+c.requestSlack)
	defer cancel()

	entry, err := c.Status(pctx, id, wait)
	if err != nil && !IsLedger(err, Unreachable) && errors.Is(err, context.DeadlineExceeded) {
		return nil, newLedgerErr(c.baseURL+"/batch_statuses", Unreachable, err)
	}
	return entry, err
}

// SubmitAndWait submits list and, if maxWait is positive, waits for the
// first batch.
func (c *Client) SubmitAndWait(ctx context.Context, list *protocol.BatchList, maxWait time.Duration) (*Result, error) {
	sub, err := c.Submit(ctx, list)
	if err != nil {
		return nil, err
	}

	if maxWait <= 0 {
		return &Result{
			BatchID: sub.BatchIDs[0],
			Link:    sub.Link,
			Outcome: OutcomeSubmitted,
		}, nil
	}

	res, err := c.WaitForStatus(ctx, sub.BatchIDs[0], maxWait)
	if err != nil {
		return nil, err
	}
	res.Link = sub.Link

	return res, nil
}

// Sale records fact with a batch built and signed by builder.
func (c *Client) Sale(ctx context.Context, builder *envelope.Builder, fact notary.Fact, maxWait time.Duration) (*Result, error) {
	list, err := builder.BuildBatchList(fact)
	if err != nil {
		return nil, err
	}
	return c.SubmitAndWait(ctx, list, maxWait)
}

// State returns the value stored at addr, or nil if there is none.
func (c *Client) State(ctx context.Context, addr string) ([]byte, error) {
	u := c.baseURL + "/state/" + url.PathEscape(addr)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var resp protocol.StateResponse
	err = c.do(req, &resp)
	var lerr *LedgerErr
	if errors.As(err, &lerr) && lerr.errType == Rejected && lerr.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return resp.Data, nil
}

// do sends req and decodes a 2xx JSON body into out.
func (c *Client) do(req *http.Request, out interface{}) error {
	u := req.URL.String()

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return newLedgerErr(u, Unreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newLedgerErr(u, Unreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		lerr := newLedgerErr(u, Rejected, nil)
		lerr.StatusCode = resp.StatusCode
		lerr.Reason = http.StatusText(resp.StatusCode)

		var er protocol.ErrorResponse
		if json.Unmarshal(body, &er) == nil && er.Error.Message != "" {
			lerr.Reason = er.Error.Message
		}
		return lerr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return newLedgerErr(u, BadResponse, err)
	}

	return nil
}

// waitSeconds rounds down so that a ledger holding the request for the full
// wait never takes the poll past the caller's deadline.
func waitSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}

func shortID(id string) string {
	if len(id) > 16 {
		return id[:16]
	}
	return id
}
