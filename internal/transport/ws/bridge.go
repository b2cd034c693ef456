// Package ws exposes a scheduler over websocket: clients send commands as
// JSON text messages and receive status snapshots back.
package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/younwookim/stepper/internal/application/output"
	"github.com/younwookim/stepper/internal/application/replay"
	"github.com/younwookim/stepper/internal/domain/motion"
)

// Config sizes the bridge queues
type Config struct {
	InboxSize  int // decoded client events waiting for Drain
	OutboxSize int // encoded snapshots per client
	HighWater  int // pause the output channel above this backlog
	LowWater   int // resume once every backlog is at or below this
	Logger     *slog.Logger
}

// DefaultConfig returns the bridge defaults
func DefaultConfig() Config {
	return Config{
		InboxSize:  256,
		OutboxSize: 64,
		HighWater:  48,
		LowWater:   16,
	}
}

const writeTimeout = 5 * time.Second

type client struct {
	conn    *websocket.Conn
	out     chan []byte
	closing chan struct{}
	once    sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.closing) })
}

// Bridge is an http.Handler serving websocket clients. Network goroutines
// only touch the inbox and outboxes; Drain, Pump and the output.Listener
// methods belong to the host's frame loop.
type Bridge struct {
	cfg      Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	inbox chan replay.Event

	mu        sync.Mutex
	clients   map[*client]struct{}
	ended     bool
	throttled bool
}

// NewBridge creates a bridge with no clients
func NewBridge(cfg Config) *Bridge {
	def := DefaultConfig()
	if cfg.InboxSize <= 0 {
		cfg.InboxSize = def.InboxSize
	}
	if cfg.OutboxSize <= 0 {
		cfg.OutboxSize = def.OutboxSize
	}
	if cfg.HighWater <= 0 || cfg.HighWater > cfg.OutboxSize {
		cfg.HighWater = cfg.OutboxSize * 3 / 4
	}
	if cfg.LowWater < 0 || cfg.LowWater >= cfg.HighWater {
		cfg.LowWater = cfg.HighWater / 3
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Bridge{
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		inbox:   make(chan replay.Event, cfg.InboxSize),
		clients: make(map[*client]struct{}),
	}
}

// ServeHTTP upgrades the request and serves one client until it leaves
func (b *Bridge) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		b.logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	c := &client{
		conn:    conn,
		out:     make(chan []byte, b.cfg.OutboxSize),
		closing: make(chan struct{}),
	}
	if !b.register(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream ended"),
			time.Now().Add(time.Second))
		return
	}
	defer b.unregister(c)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Writer goroutine
	go b.writeLoop(ctx, cancel, c)

	// Reader loop
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			cancel()
			break
		}
		ev, err := DecodeEvent(msg)
		if err != nil {
			b.logger.Warn("bad client message", "err", err)
			continue
		}
		select {
		case b.inbox <- ev:
		default:
			b.logger.Warn("bridge inbox full; dropping client event", "kind", ev.Kind)
		}
	}
}

func (b *Bridge) writeLoop(ctx context.Context, cancel context.CancelFunc, c *client) {
	write := func(msg []byte) bool {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			cancel()
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.out:
			if !write(msg) {
				return
			}
		case <-c.closing:
			// flush what is left, then say goodbye
			for {
				select {
				case msg := <-c.out:
					if !write(msg) {
						return
					}
				default:
					_ = c.conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream ended"),
						time.Now().Add(time.Second))
					return
				}
			}
		}
	}
}

func (b *Bridge) register(c *client) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ended {
		return false
	}
	b.clients[c] = struct{}{}
	return true
}

func (b *Bridge) unregister(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.clients, c)
}

// Clients returns the number of connected clients
func (b *Bridge) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Drain applies every queued client event to sink and returns how many
// were applied.
func (b *Bridge) Drain(sink replay.Sink) int {
	n := 0
	for {
		select {
		case ev := <-b.inbox:
			if replay.Apply(sink, ev) {
				n++
			}
		default:
			return n
		}
	}
}

// Pump applies back-pressure to ch: it pauses ch when any client backlog
// exceeds the high-water mark and resumes it once every backlog is back
// at or below the low-water mark. Pump only resumes a pause it caused.
func (b *Bridge) Pump(ch *output.Channel) {
	backlog := b.maxBacklog()

	b.mu.Lock()
	throttled := b.throttled
	b.mu.Unlock()

	switch {
	case !throttled && backlog > b.cfg.HighWater:
		if ch.Paused() {
			return
		}
		b.setThrottled(true)
		b.logger.Debug("pausing output", "backlog", backlog)
		ch.Pause()
	case throttled && backlog <= b.cfg.LowWater:
		b.setThrottled(false)
		b.logger.Debug("resuming output", "backlog", backlog)
		ch.Resume()
	}
}

func (b *Bridge) setThrottled(v bool) {
	b.mu.Lock()
	b.throttled = v
	b.mu.Unlock()
}

// Throttled reports whether the bridge is holding the output paused
func (b *Bridge) Throttled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.throttled
}

func (b *Bridge) maxBacklog() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	backlog := 0
	for c := range b.clients {
		backlog = max(backlog, len(c.out))
	}
	return backlog
}

// OnData broadcasts s to every client. A client whose outbox is full
// misses the snapshot.
func (b *Bridge) OnData(s output.Snapshot) {
	msg, err := EncodeSnapshot(s)
	if err != nil {
		b.logger.Error("failed to encode snapshot", "err", err)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		select {
		case c.out <- msg:
		default:
			b.logger.Warn("client outbox full; dropping snapshot")
		}
	}
}

// OnEnd closes every client connection once its outbox is flushed
func (b *Bridge) OnEnd() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ended = true
	for c := range b.clients {
		c.close()
	}
}

// OnPause is a no-op; the bridge only reacts to its own backlog
func (b *Bridge) OnPause() {}

// OnDrain is a no-op; the bridge only reacts to its own backlog
func (b *Bridge) OnDrain() {}

// Close disconnects every client
func (b *Bridge) Close() {
	b.OnEnd()
}

// DecodeEvent decodes one client message. A message carrying "k" is an
// event envelope; anything else is a bare command to write.
func DecodeEvent(msg []byte) (replay.Event, error) {
	var probe struct {
		Kind *replay.EventKind `json:"k"`
	}
	if err := json.Unmarshal(msg, &probe); err != nil {
		return replay.Event{}, fmt.Errorf("failed to decode message: %w", err)
	}

	if probe.Kind == nil {
		var cmd motion.Command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			return replay.Event{}, fmt.Errorf("failed to decode command: %w", err)
		}
		return replay.Event{Kind: replay.EventWrite, Command: &cmd}, nil
	}

	var ev replay.Event
	if err := json.Unmarshal(msg, &ev); err != nil {
		return replay.Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	switch ev.Kind {
	case replay.EventWrite:
		if ev.Command == nil {
			return replay.Event{}, fmt.Errorf("write event without cmd")
		}
	case replay.EventRotate:
		if ev.Delta == nil {
			return replay.Event{}, fmt.Errorf("rot event without rot")
		}
	case replay.EventReset, replay.EventEnd:
	default:
		return replay.Event{}, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return ev, nil
}

// EncodeSnapshot renders s as a JSON object in the snapshot's field order
func EncodeSnapshot(s output.Snapshot) ([]byte, error) {
	fields := s.Fields()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range fields.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		v, _ := fields.Get(key)
		kb, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", key, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
