package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/the-snesler/spacebot-sub001/pkg/logger"
	"github.com/the-snesler/spacebot-sub001/pkg/sse"
)

// EventLagged is the reserved event type the server emits when it had
// to discard buffered events instead of growing its queue without
// bound. It is consumed by the connection itself and never forwarded
// to handlers: a lag means the client's projection is stale, which is
// the same situation as a reconnect.
const EventLagged = "lagged"

// Handler receives decoded frames for one registered event type.
// Handlers run synchronously on the connection's read goroutine, so
// frame order matches server send order.
type Handler func(frame sse.Frame)

// DialFunc opens the transport for one connection attempt and returns
// the stream body. Tests inject failing or scripted dialers here.
type DialFunc func(ctx context.Context, url, token string) (io.ReadCloser, error)

// Config configures a Connection.
type Config struct {
	URL            string
	Token          string
	BackoffFloor   time.Duration // defaults to DefaultBackoffFloor
	BackoffCeiling time.Duration // defaults to DefaultBackoffCeiling
	Dial           DialFunc      // defaults to an HTTP event-stream GET
}

// Connection owns one persistent event-stream connection. It retries
// broken transports forever with exponential backoff; the only
// terminal state is an explicit Close.
type Connection struct {
	cfg  Config
	dial DialFunc

	mu            sync.Mutex
	state         ConnectionState
	handlers      map[string]Handler
	onReconnect   func()
	onStateChange func(ConnectionState)
	cancel        context.CancelFunc
	running       bool
}

// NewConnection creates a connection for the given config. Register
// handlers with On before calling Open.
func NewConnection(cfg Config) *Connection {
	dial := cfg.Dial
	if dial == nil {
		dial = httpDial
	}
	return &Connection{
		cfg:      cfg,
		dial:     dial,
		state:    StateDisconnected,
		handlers: make(map[string]Handler),
	}
}

// On registers the handler for an event type. Inbound frames with no
// registered handler are dropped silently.
func (c *Connection) On(event string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = h
}

// OnReconnect registers the resynchronization callback. It fires after
// every successful open that followed a broken or failed connection,
// and on a server lag signal. It runs on the read goroutine before any
// further frames are dispatched.
func (c *Connection) OnReconnect(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReconnect = fn
}

// OnStateChange registers an observer for connection state transitions.
func (c *Connection) OnStateChange(fn func(ConnectionState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStateChange = fn
}

// State returns the current connection state.
func (c *Connection) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Open starts the connect/read/dispatch loop. It is a no-op if the
// connection is already running.
func (c *Connection) Open(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	c.setState(StateConnecting)
	go c.run(runCtx)
}

// Close disables the connection: it cancels any pending reconnect
// timer, closes the transport and moves to the disconnected state.
// The connection may be reopened later with Open.
func (c *Connection) Close() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.setState(StateDisconnected)
}

func (c *Connection) run(ctx context.Context) {
	bo := newBackoff(c.cfg.BackoffFloor, c.cfg.BackoffCeiling)
	firstAttempt := true

	for ctx.Err() == nil {
		reopen := !firstAttempt
		firstAttempt = false

		body, err := c.dial(ctx, c.cfg.URL, c.cfg.Token)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("event stream connect failed: %v", err)
			c.setState(StateReconnecting)
			if !sleepCtx(ctx, bo.Next()) {
				return
			}
			continue
		}

		// Unblock the read loop when the connection is disabled.
		go func(rc io.ReadCloser) {
			<-ctx.Done()
			rc.Close()
		}(body)

		bo.Reset()
		c.setState(StateConnected)
		if reopen {
			c.fireReconnect()
		}

		err = c.read(ctx, body)
		body.Close()
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Warn("event stream dropped: %v", err)
		} else {
			logger.Info("event stream closed by server")
		}
		c.setState(StateReconnecting)
		if !sleepCtx(ctx, bo.Next()) {
			return
		}
	}
}

func (c *Connection) read(ctx context.Context, body io.Reader) error {
	dec := sse.NewDecoder(body)
	for {
		frame, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		c.dispatch(frame)
	}
}

func (c *Connection) dispatch(frame sse.Frame) {
	if frame.Event == EventLagged {
		var payload struct {
			Skipped int `json:"skipped"`
		}
		if err := json.Unmarshal([]byte(frame.Raw), &payload); err == nil {
			logger.Warn("event stream lagged, %d events skipped; forcing resync", payload.Skipped)
		} else {
			logger.Warn("event stream lagged; forcing resync")
		}
		c.fireReconnect()
		return
	}

	c.mu.Lock()
	handler := c.handlers[frame.Event]
	c.mu.Unlock()
	if handler == nil {
		return
	}
	handler(frame)
}

func (c *Connection) fireReconnect() {
	c.mu.Lock()
	fn := c.onReconnect
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (c *Connection) setState(state ConnectionState) {
	c.mu.Lock()
	c.state = state
	observer := c.onStateChange
	c.mu.Unlock()
	if observer != nil {
		observer(state)
	}
}

// httpDial is the production transport: a long-lived event-stream GET.
func httpDial(ctx context.Context, url, token string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("stream request failed with status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
