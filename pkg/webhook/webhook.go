// Package webhook delivers chat reports to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/ccollicutt/chatlens/pkg/output"
)

const (
	// DefaultTimeout bounds a single delivery attempt.
	DefaultTimeout = 10 * time.Second

	// DefaultBackoff is the wait before the first retry. It doubles for
	// every further attempt.
	DefaultBackoff = 500 * time.Millisecond

	// RunIDHeader carries the report's run ID so receivers can deduplicate
	// retried deliveries.
	RunIDHeader = "X-ChatLens-Run-ID"

	// AttemptHeader carries the 1-based attempt number.
	AttemptHeader = "X-ChatLens-Attempt"

	maxResponseBody = 1 << 20
)

// Client posts reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
	backoff    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBackoff sets the wait before the first retry.
func WithBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		c.backoff = d
	}
}

// NewClient creates a webhook client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendOptions configures one delivery.
type SendOptions struct {
	URL      string
	Token    string        // Bearer token (optional)
	Timeout  time.Duration // Per attempt, DefaultTimeout if zero
	Compress bool          // Gzip the body
	Retries  int           // Extra attempts after a retryable failure
}

// Response describes the final attempt of a delivery.
type Response struct {
	StatusCode int
	Body       string
	Attempts   int
	Duration   time.Duration // Across all attempts, backoff included
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// attempt is the outcome of one POST.
type attempt struct {
	status int
	body   string
	err    error

	// permanent marks failures a retry cannot fix.
	permanent bool
}

func (a attempt) retryable() bool {
	if a.permanent {
		return false
	}
	if a.err != nil {
		return true
	}
	return a.status == http.StatusTooManyRequests || a.status >= 500
}

// Send posts report as JSON to opts.URL. Network errors, 429 and 5xx
// responses are retried up to opts.Retries times with exponential backoff.
// The returned Response is never nil.
func (c *Client) Send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}
	defer func() { resp.Duration = time.Since(start) }()

	payload, encoding, err := encodeReport(report, opts.Compress)
	if err != nil {
		resp.Error = err
		return resp
	}

	for n := 1; n <= opts.Retries+1; n++ {
		if n > 1 {
			if err := c.wait(ctx, n-1); err != nil {
				resp.Error = fmt.Errorf("retry %d abandoned after %w: %w", n-1, resp.Error, err)
				return resp
			}
		}

		a := c.post(ctx, payload, encoding, report.Metadata.RunID, n, opts)
		resp.Attempts = n
		resp.StatusCode = a.status
		resp.Body = a.body
		resp.Error = a.err
		if a.err == nil && a.status >= 400 {
			resp.Error = fmt.Errorf("webhook returned status %d", a.status)
		}

		if !a.retryable() {
			break
		}
	}

	return resp
}

// wait sleeps before retry number retry, or returns early on cancellation.
func (c *Client) wait(ctx context.Context, retry int) error {
	timer := time.NewTimer(c.backoff << (retry - 1))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func encodeReport(report *output.Report, compress bool) ([]byte, string, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if !compress {
		return payload, "", nil
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, "", fmt.Errorf("failed to compress report: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to compress report: %w", err)
	}
	return buf.Bytes(), "gzip", nil
}

func (c *Client) post(ctx context.Context, payload []byte, encoding, runID string, n int, opts SendOptions) attempt {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(payload))
	if err != nil {
		return attempt{err: fmt.Errorf("failed to create request: %w", err), permanent: true}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "chatlens-webhook")
	req.Header.Set(AttemptHeader, strconv.Itoa(n))
	if encoding != "" {
		req.Header.Set("Content-Encoding", encoding)
	}
	if runID != "" {
		req.Header.Set(RunIDHeader, runID)
	}
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return attempt{err: fmt.Errorf("request failed: %w", err)}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return attempt{status: httpResp.StatusCode, err: fmt.Errorf("failed to read response: %w", err)}
	}
	return attempt{status: httpResp.StatusCode, body: string(body)}
}
