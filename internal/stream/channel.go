package stream

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/bidngo-client/internal/observability"
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// maxReconnectAttempts bounds the backoff ladder; the channel goes terminal
// Disconnected after the sixth failed reconnect.
const maxReconnectAttempts = 6

// reconnectDelay doubles from 1s and caps at 30s: 1s, 2s, 4s, 8s, 16s, 30s.
func reconnectDelay(attempt int) time.Duration {
	if attempt >= 5 {
		return 30 * time.Second
	}
	return time.Second << attempt
}

// Channel maintains at most one WebSocket connection to the bid feed and
// fans every frame out to all registered listeners. It is a plain
// constructible value, not package state: the composition root owns it and
// injects it where needed. Subscriptions hold references on the connection,
// so one screen tearing down cannot cut the feed for another.
type Channel struct {
	url    string
	dialer *websocket.Dialer
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	conn      *websocket.Conn
	gen       int
	attempts  int
	timer     *time.Timer
	closed    bool
	subs      map[int]func(Event)
	nextSubID int
}

func NewChannel(url string, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		url:    url,
		dialer: websocket.DefaultDialer,
		logger: logger,
		subs:   make(map[int]func(Event)),
	}
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscription is a listener registration. Cancel releases it; the shared
// connection closes when the last subscription cancels.
type Subscription struct {
	ch   *Channel
	id   int
	once sync.Once
}

func (s *Subscription) Cancel() {
	s.once.Do(func() {
		if s.ch == nil {
			return
		}
		s.ch.mu.Lock()
		defer s.ch.mu.Unlock()
		delete(s.ch.subs, s.id)
		if len(s.ch.subs) == 0 {
			s.ch.teardownLocked(false)
		}
	})
}

// Subscribe registers fn for every subsequent frame and connects the
// channel if it is not already up. Each listener sees each frame once.
func (c *Channel) Subscribe(fn func(Event)) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return &Subscription{}
	}
	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = fn
	c.connectLocked()
	return &Subscription{ch: c, id: id}
}

// Connect is a no-op while a connection is live, being dialed, or waiting
// out a backoff delay.
func (c *Channel) Connect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectLocked()
}

// Close tears the channel down for good: the socket is closed, scheduled
// reconnect timers are cancelled, and in-flight dials are abandoned.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked(true)
}

func (c *Channel) connectLocked() {
	if c.closed || c.state != StateDisconnected {
		return
	}
	c.attempts = 0
	c.state = StateConnecting
	c.gen++
	go c.dial(c.gen)
}

func (c *Channel) dial(gen int) {
	conn, _, err := c.dialer.Dial(c.url, nil)

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		c.logger.Warn("event channel dial failed", "url", c.url, "error", err)
		c.scheduleReconnectLocked()
		c.mu.Unlock()
		return
	}
	c.conn = conn
	c.state = StateConnected
	c.attempts = 0
	c.mu.Unlock()

	observability.WSConnectsTotal.Inc()
	c.logger.Info("event channel connected", "url", c.url)
	go c.readLoop(conn, gen)
}

func (c *Channel) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}
		c.deliver(decodeEvent(payload))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return
	}
	c.conn = nil
	c.scheduleReconnectLocked()
}

func (c *Channel) deliver(ev Event) {
	c.mu.Lock()
	fns := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	label := ev.Type
	if label == "" {
		label = "raw"
	}
	observability.WSEventsTotal.WithLabelValues(label).Inc()

	for _, fn := range fns {
		fn(ev)
	}
}

func (c *Channel) scheduleReconnectLocked() {
	if c.attempts >= maxReconnectAttempts {
		c.state = StateDisconnected
		c.logger.Error("event channel gave up reconnecting", "attempts", c.attempts)
		return
	}
	delay := reconnectDelay(c.attempts)
	c.attempts++
	c.state = StateReconnecting
	observability.WSReconnectsTotal.Inc()
	c.logger.Info("event channel reconnect scheduled", "attempt", c.attempts, "delay", delay.String())

	c.timer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || c.state != StateReconnecting {
			return
		}
		c.state = StateConnecting
		c.gen++
		go c.dial(c.gen)
	})
}

func (c *Channel) teardownLocked(terminal bool) {
	if terminal {
		c.closed = true
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	// bump the generation so stale dials and read loops park themselves
	c.gen++
	c.attempts = 0
	c.state = StateDisconnected
}
