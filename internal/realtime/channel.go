package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/subcue/subcue/internal/logging"
)

// connection lifecycle
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

type Listener func(Message)

type Options struct {
	// base websocket URL, e.g. ws://localhost:8000; the per-project path
	// is appended on connect
	URL string

	ReconnectInterval    time.Duration
	MaxReconnectAttempts int

	Dialer *websocket.Dialer
	Logger *logging.Logger
}

// Channel is the per-project push channel. It is an owned object with an
// explicit Connect/Disconnect lifecycle, never process-global state, so two
// projects or two tests cannot leak listeners into each other.
//
// Delivery is at-most-once and unordered across reconnects; consumers must
// tolerate duplicate or stale messages.
type Channel struct {
	mu        sync.Mutex
	opts      Options
	logger    *logging.Logger
	projectID string
	conn      *websocket.Conn
	state     ConnState
	listeners map[MessageType][]Listener
	gen       int // connection generation; stale read loops bail out
	degraded  bool
	closed    bool

	// invoked once when reconnect attempts are exhausted and the caller
	// should rely on polling
	OnDegraded func()
}

func NewChannel(opts Options) *Channel {
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.ReconnectInterval <= 0 {
		opts.ReconnectInterval = 2 * time.Second
	}
	if opts.MaxReconnectAttempts <= 0 {
		opts.MaxReconnectAttempts = 5
	}
	return &Channel{
		opts:      opts,
		logger:    opts.Logger,
		listeners: make(map[MessageType][]Listener),
	}
}

// Connect opens the push channel for one project. Callers must establish
// the channel before triggering a long-running server operation, or early
// progress events are lost.
func (c *Channel) Connect(ctx context.Context, projectID string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("channel is closed")
	}
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return fmt.Errorf("channel already %s for project %s", c.state, c.projectID)
	}
	c.projectID = projectID
	c.state = StateConnecting
	c.degraded = false
	c.mu.Unlock()

	conn, err := c.dial(ctx)
	if err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.state = StateConnected
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	c.logger.Infow("realtime channel connected", "project_id", projectID)
	go c.readLoop(conn, gen)
	return nil
}

// registers a listener for one message type, or every type via Wildcard
func (c *Channel) On(t MessageType, fn Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners[t] = append(c.listeners[t], fn)
}

func (c *Channel) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// reports whether reconnect attempts were exhausted and polling should be
// relied on
func (c *Channel) Degraded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

// CheckConnectionHealth verifies the channel is connected and the socket
// accepts a ping. Callers about to start a critical server-side action use
// this plus ForceReconnect rather than discovering a dead channel after
// the action started.
func (c *Channel) CheckConnectionHealth() bool {
	c.mu.Lock()
	conn := c.conn
	ok := c.state == StateConnected && conn != nil
	c.mu.Unlock()
	if !ok {
		return false
	}

	deadline := time.Now().Add(2 * time.Second)
	return conn.WriteControl(websocket.PingMessage, nil, deadline) == nil
}

// ForceReconnect tears the socket down and dials again for the same
// project, resetting the degraded flag
func (c *Channel) ForceReconnect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("channel is closed")
	}
	projectID := c.projectID
	if projectID == "" {
		c.mu.Unlock()
		return fmt.Errorf("no project to reconnect to")
	}
	// invalidate the old read loop before it can observe the close
	c.gen++
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
	c.mu.Unlock()

	return c.Connect(ctx, projectID)
}

// Disconnect releases the socket and clears all listeners. Must be called
// when leaving a project so no stale event reaches the next project's
// state.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
	c.listeners = make(map[MessageType][]Listener)
	c.projectID = ""
}

func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	c.mu.Lock()
	url := fmt.Sprintf("%s/ws/%s", c.opts.URL, c.projectID)
	c.mu.Unlock()

	conn, resp, err := c.opts.Dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", url, err)
	}
	return conn, nil
}

func (c *Channel) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			stale := c.closed || gen != c.gen
			c.mu.Unlock()
			if stale {
				return
			}
			c.logger.Warnw("realtime channel read failed", "error", err)
			c.reconnect()
			return
		}
		c.handleRaw(data)
	}
}

// bounded fixed-interval reconnect; after exhausting the attempts the
// channel stays disconnected for this project and signals degraded mode
func (c *Channel) reconnect() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	projectID := c.projectID
	interval := c.opts.ReconnectInterval
	maxAttempts := c.opts.MaxReconnectAttempts
	c.mu.Unlock()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		time.Sleep(interval)

		c.mu.Lock()
		if c.closed || c.projectID != projectID {
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), interval+5*time.Second)
		conn, err := c.dial(ctx)
		cancel()
		if err != nil {
			c.logger.Warnw("reconnect attempt failed",
				"project_id", projectID,
				"attempt", attempt,
				"max_attempts", maxAttempts,
			)
			continue
		}

		c.mu.Lock()
		if c.closed || c.projectID != projectID {
			c.mu.Unlock()
			conn.Close()
			return
		}
		c.conn = conn
		c.state = StateConnected
		c.gen++
		gen := c.gen
		c.mu.Unlock()

		c.logger.Infow("realtime channel reconnected",
			"project_id", projectID,
			"attempt", attempt,
		)
		go c.readLoop(conn, gen)
		return
	}

	c.mu.Lock()
	c.state = StateDisconnected
	c.degraded = true
	onDegraded := c.OnDegraded
	c.mu.Unlock()

	c.logger.Errorw("realtime channel gave up reconnecting",
		"project_id", projectID,
		"attempts", maxAttempts,
	)
	if onDegraded != nil {
		onDegraded()
	}
}

func (c *Channel) handleRaw(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Warnw("discarding malformed channel message", "error", err)
		return
	}

	c.mu.Lock()
	projectID := c.projectID
	// messages for another project are stale-listener deliveries after a
	// fast project switch; discard them
	if msg.ProjectID != "" && msg.ProjectID != projectID {
		c.mu.Unlock()
		c.logger.Debugw("discarding message for wrong project",
			"got", msg.ProjectID,
			"want", projectID,
		)
		return
	}
	handlers := append([]Listener(nil), c.listeners[msg.Type]...)
	handlers = append(handlers, c.listeners[Wildcard]...)
	c.mu.Unlock()

	for _, fn := range handlers {
		fn(msg)
	}
}
