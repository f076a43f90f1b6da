// Package fetch retrieves a capture payload from the local reflect endpoint.
//
// Only the newest request matters: starting a fetch cancels any older one
// still in flight, and an older fetch that completes late reports
// ErrSuperseded instead of its body.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/okian/chartrec/pkg/logger"
	"github.com/okian/chartrec/pkg/metrics"
)

// Defaults.
const (
	DefaultURL      = "https://localreflect.rotaeno.imgg.dev/v0/CloudSave"
	DefaultTimeout  = 30 * time.Second
	DefaultMaxBytes = 8 << 20

	resultSuperseded = "superseded"
)

// Client fetches capture payloads.
type Client struct {
	url      string
	timeout  time.Duration
	maxBytes int64
	http     *http.Client
	log      logger.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		url:      DefaultURL,
		timeout:  DefaultTimeout,
		maxBytes: DefaultMaxBytes,
		http:     http.DefaultClient,
		log:      logger.Get().Named("fetch"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint the client fetches from.
func (c *Client) URL() string { return c.url }

// Fetch returns the raw response body.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	body, _, err := c.FetchTagged(ctx)
	return body, err
}

// FetchTagged is Fetch that also returns the generation of the request.
// Callers that apply the body later pass it to Current first, so a body that
// lost to a newer fetch in the meantime is never applied.
func (c *Client) FetchTagged(ctx context.Context) ([]byte, uint64, error) {
	start := time.Now()
	fctx, gen := c.begin(ctx)

	body, err := c.get(fctx)

	if !c.end(gen) {
		metrics.RecordFetch(resultSuperseded, time.Since(start))
		c.log.Debug(ctx, "fetch superseded", logger.Int("generation", int(gen)))
		return nil, gen, ErrSuperseded
	}
	if err != nil {
		metrics.RecordFetch(metrics.ResultError, time.Since(start))
		c.log.Warn(ctx, "fetch failed", logger.String("url", c.url), logger.Error(err))
		return nil, gen, err
	}
	metrics.RecordFetch(metrics.ResultOK, time.Since(start))
	c.log.Info(ctx, "fetched capture",
		logger.String("url", c.url),
		logger.Int("bytes", len(body)),
		logger.Duration("took", time.Since(start)))
	return body, gen, nil
}

// Current reports whether gen is still the newest fetch started.
func (c *Client) Current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

// begin cancels the previous fetch and registers a new generation.
func (c *Client) begin(ctx context.Context) (context.Context, uint64) {
	var (
		fctx   context.Context
		cancel context.CancelFunc
	)
	if c.timeout > 0 {
		fctx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		fctx, cancel = context.WithCancel(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	c.cancel = cancel
	return fctx, c.gen
}

// end releases gen and reports whether it is still the newest fetch.
func (c *Client) end(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.cancel()
	c.cancel = nil
	return true
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %w: %s", ErrFetch, ErrStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFetch, err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %w: over %d bytes", ErrFetch, ErrTooLarge, c.maxBytes)
	}
	return body, nil
}

// IsSuperseded reports whether err came from a fetch replaced by a newer one.
func IsSuperseded(err error) bool {
	return errors.Is(err, ErrSuperseded)
}
