// Package livesync streams color updates from the layout server.
//
// [Client] runs a small state machine over a long-lived GET request:
//
//	Disconnected -> Connecting    connection attempt starts
//	Connecting   -> Streaming     first payload decoded
//	Streaming    -> Streaming     further payloads
//	Connecting   -> Disconnected  heartbeat expiry, transport error,
//	Streaming    -> Disconnected  non-200 status or end of body
//
// Every Disconnected schedules exactly one reconnect after a fixed delay;
// reconnection never gives up. Only one attempt is in flight at a time:
// starting an attempt aborts the previous one first.
package livesync

import (
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/btlive/pkg/buildinfo"
	"github.com/matzehuels/btlive/pkg/observability"
)

// Defaults.
const (
	DefaultHeartbeat      = 5 * time.Second
	DefaultReconnectDelay = 1500 * time.Millisecond
	readBufferSize        = 32 << 10
)

// State is a connection state.
type State int

const (
	Disconnected State = iota
	Connecting
	Streaming
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "Connecting"
	case Streaming:
		return "Streaming"
	default:
		return "Disconnected"
	}
}

// Status texts shown to users.
const (
	StatusDisconnected = "Disconnected – retrying..."
	statusUpdatePrefix = "Last update: "
)

// Options configures a Client.
type Options struct {
	// URL of the streaming endpoint, e.g. http://host:8000/msg.
	URL string
	// HTTPClient defaults to a client without a timeout; the heartbeat
	// bounds stalls instead.
	HTTPClient *http.Client
	// Heartbeat is the longest silence tolerated on an open stream.
	Heartbeat time.Duration
	// ReconnectDelay is the fixed wait after a disconnect.
	ReconnectDelay time.Duration
	Logger         *log.Logger

	// OnUpdate is called for every decoded payload, from the Run goroutine.
	OnUpdate func(Update)
	// OnStateChange is called after every transition, from the Run goroutine.
	OnStateChange func(State)
	// Now defaults to time.Now.
	Now func() time.Time
}

// Client is the streaming color-update client.
type Client struct {
	opts   Options
	logger *log.Logger

	mu        sync.Mutex
	state     State
	status    string
	lastTS    float64
	hasTS     bool
	cancelCur context.CancelFunc
	attempts  int

	kick chan struct{}
}

// New returns a client in the Disconnected state.
func New(opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = DefaultHeartbeat
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Client{
		opts:   opts,
		logger: logger,
		kick:   make(chan struct{}, 1),
	}
}

// State returns the current state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Status returns the human-readable status line.
func (c *Client) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// LastTimestamp returns the most recent payload timestamp.
func (c *Client) LastTimestamp() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastTS, c.hasTS
}

// Attempts returns how many connection attempts have started.
func (c *Client) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// Reconnect aborts the in-flight attempt, if any, and skips the pending
// reconnect delay so a fresh attempt starts right away.
func (c *Client) Reconnect() {
	c.mu.Lock()
	if c.cancelCur != nil {
		c.cancelCur()
	}
	c.mu.Unlock()
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// Run connects and reconnects until ctx is done. It always returns ctx's
// error.
func (c *Client) Run(ctx context.Context) error {
	for {
		reason := c.connect(ctx)
		if ctx.Err() != nil {
			c.setState(ctx, Disconnected)
			return ctx.Err()
		}
		c.disconnected(ctx, reason)

		timer := time.NewTimer(c.opts.ReconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		case <-c.kick:
			timer.Stop()
		}
	}
}

// connect runs one attempt to completion and returns why it ended.
func (c *Client) connect(parent context.Context) string {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	c.mu.Lock()
	if c.cancelCur != nil {
		c.cancelCur()
	}
	c.cancelCur = cancel
	c.attempts++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.cancelCur = nil
		c.mu.Unlock()
	}()
	// drain a stale kick so it does not skip the next delay
	select {
	case <-c.kick:
	default:
	}

	attempt := uuid.NewString()
	logger := c.logger.With("attempt", attempt[:8])
	c.setState(ctx, Connecting)
	observability.Sync().OnConnect(ctx, attempt)
	logger.Debug("connecting", "url", c.opts.URL)

	var timedOut atomic.Bool
	heartbeat := time.AfterFunc(c.opts.Heartbeat, func() {
		timedOut.Store(true)
		cancel()
	})
	defer heartbeat.Stop()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.URL, nil)
	if err != nil {
		logger.Error("bad stream url", "err", err)
		return "error"
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		if timedOut.Load() {
			return "heartbeat"
		}
		logger.Debug("stream request failed", "err", err)
		return "error"
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Warn("stream returned non-success status", "status", resp.StatusCode)
		return "status"
	}

	var dec Decoder
	buf := make([]byte, readBufferSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			heartbeat.Reset(c.opts.Heartbeat)
			c.handleChunk(ctx, logger, &dec, buf[:n])
		}
		if rerr != nil {
			switch {
			case timedOut.Load():
				return "heartbeat"
			case rerr == io.EOF:
				return "eof"
			default:
				logger.Debug("stream read failed", "err", rerr)
				return "error"
			}
		}
	}
}

func (c *Client) handleChunk(ctx context.Context, logger *log.Logger, dec *Decoder, chunk []byte) {
	u, ok, err := dec.Feed(chunk)
	if err != nil {
		logger.Warn("failed to parse stream payload", "err", err)
		observability.Sync().OnMalformed(ctx)
		return
	}
	if !ok {
		return
	}

	now := c.opts.Now()
	c.mu.Lock()
	if u.HasTimestamp {
		c.lastTS, c.hasTS = u.Timestamp, true
	}
	c.status = statusUpdatePrefix + now.Format("15:04:05")
	c.mu.Unlock()

	c.setState(ctx, Streaming)
	observability.Sync().OnUpdate(ctx, len(u.Colors))
	if c.opts.OnUpdate != nil {
		c.opts.OnUpdate(u)
	}
}

func (c *Client) disconnected(ctx context.Context, reason string) {
	prev := c.State()
	if prev == Streaming {
		c.logger.Warn("disconnected from stream", "reason", reason)
	} else {
		c.logger.Debug("connection attempt ended", "reason", reason)
	}
	c.mu.Lock()
	c.status = StatusDisconnected
	c.mu.Unlock()
	observability.Sync().OnDisconnect(ctx, reason)
	c.setState(ctx, Disconnected)
}

func (c *Client) setState(ctx context.Context, s State) {
	c.mu.Lock()
	prev := c.state
	c.state = s
	c.mu.Unlock()
	if prev == s {
		return
	}
	observability.Sync().OnStateChange(ctx, prev.String(), s.String())
	if c.opts.OnStateChange != nil {
		c.opts.OnStateChange(s)
	}
}
