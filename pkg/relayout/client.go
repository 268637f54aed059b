// Package relayout asks the layout server to re-render the drawing with
// per-node sizes, and debounces those requests.
package relayout

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/btlive/pkg/buildinfo"
	"github.com/matzehuels/btlive/pkg/errors"
	"github.com/matzehuels/btlive/pkg/httputil"
	"github.com/matzehuels/btlive/pkg/observability"
	"github.com/matzehuels/btlive/pkg/overlay"
)

// RequestIDHeader carries a per-request uuid for server logs.
const RequestIDHeader = "X-Request-ID"

// DefaultTimeout bounds one relayout round trip.
const DefaultTimeout = 30 * time.Second

// ErrEmptyResponse is returned when the server answers 2xx with no body.
var ErrEmptyResponse = errors.New(errors.ErrCodeRender, "relayout returned an empty drawing")

// Request is the relayout request body.
type Request struct {
	Dims map[string]overlay.Dims `json:"dims"`
}

// Options configures a Client.
type Options struct {
	// URL of the relayout endpoint, e.g. http://host:8000/relayout.
	URL        string
	HTTPClient *http.Client
	// Attempts is the number of tries for transient failures (5xx, 429,
	// transport errors). Zero means one try.
	Attempts int
	// Backoff is the delay before the second try; it doubles afterwards.
	Backoff time.Duration
	Logger  *log.Logger
}

// Client posts collapsed-node dimensions and returns the new drawing.
type Client struct {
	opts   Options
	logger *log.Logger
}

// New returns a relayout client.
func New(opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 250 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Client{opts: opts, logger: logger}
}

// Relayout sends dims and returns the response body. Non-2xx responses,
// transport failures and empty bodies are errors; the caller keeps its
// current drawing in that case.
func (c *Client) Relayout(ctx context.Context, dims map[string]overlay.Dims) (svg []byte, err error) {
	if dims == nil {
		dims = map[string]overlay.Dims{}
	}
	body, err := json.Marshal(Request{Dims: dims})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode relayout request")
	}

	reqID := uuid.NewString()
	logger := c.logger.With("request", reqID[:8])
	hooks := observability.Relayout()
	hooks.OnRelayoutStart(ctx, len(dims))
	start := time.Now()
	defer func() {
		hooks.OnRelayoutComplete(ctx, time.Since(start), len(svg), err)
	}()

	err = httputil.Retry(ctx, c.opts.Attempts, c.opts.Backoff, func() error {
		data, err := c.post(ctx, reqID, body)
		if err != nil {
			if httputil.IsRetryable(err) {
				logger.Debug("relayout attempt failed", "err", err)
			}
			return err
		}
		svg = data
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "relayout")
		}
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "relayout %s", c.opts.URL)
	}
	if len(bytes.TrimSpace(svg)) == 0 {
		svg = nil
		return nil, ErrEmptyResponse
	}
	logger.Debug("relayout done", "nodes", len(dims), "bytes", len(svg), "elapsed", time.Since(start))
	return svg, nil
}

func (c *Client) post(ctx context.Context, reqID string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/svg+xml")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set(RequestIDHeader, reqID)

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &httputil.RetryableError{Err: err}
	}
	defer resp.Body.Close()
	if err := httputil.CheckResponse(resp); err != nil {
		return nil, err
	}
	return httputil.ReadBody(resp.Body)
}
