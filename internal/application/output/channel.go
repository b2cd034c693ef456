package output

// DefaultCapacity is the buffer size used when none is configured.
const DefaultCapacity = 1024

// Listener receives channel notifications. All calls happen synchronously
// on the goroutine that pushed, paused or resumed.
type Listener interface {
	OnData(s Snapshot)
	OnEnd()
	OnPause()
	OnDrain()
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Data  func(s Snapshot)
	End   func()
	Pause func()
	Drain func()
}

func (f ListenerFuncs) OnData(s Snapshot) {
	if f.Data != nil {
		f.Data(s)
	}
}

func (f ListenerFuncs) OnEnd() {
	if f.End != nil {
		f.End()
	}
}

func (f ListenerFuncs) OnPause() {
	if f.Pause != nil {
		f.Pause()
	}
}

func (f ListenerFuncs) OnDrain() {
	if f.Drain != nil {
		f.Drain()
	}
}

// Channel is a bounded FIFO of snapshots with pause/resume back-pressure.
// A nil entry is the end-of-stream sentinel.
//
// The channel starts paused: nothing is delivered until Resume is called.
type Channel struct {
	buffer    []*Snapshot
	capacity  int
	listeners []Listener

	paused   bool
	closed   bool // sentinel queued
	ended    bool // sentinel delivered
	draining bool

	dropped uint64
}

// NewChannel creates a paused channel holding at most capacity entries.
func NewChannel(capacity int) *Channel {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Channel{
		capacity: capacity,
		paused:   true,
	}
}

// Subscribe registers l for every future notification.
func (c *Channel) Subscribe(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Push queues a copy of s and delivers it right away if the channel is
// flowing. It returns false if the channel is closed or the buffer is full.
func (c *Channel) Push(s *Snapshot) bool {
	if c.closed || s == nil {
		return false
	}
	if len(c.buffer) >= c.capacity {
		c.dropped++
		return false
	}
	cp := *s
	c.buffer = append(c.buffer, &cp)
	c.flush()
	return true
}

// Close queues the end-of-stream sentinel. Entries already buffered are
// still delivered before OnEnd fires.
func (c *Channel) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.buffer = append(c.buffer, nil)
	c.flush()
}

// Pause stops delivery. Listeners are notified only on the transition.
func (c *Channel) Pause() {
	if c.paused {
		return
	}
	c.paused = true
	for _, l := range c.listeners {
		l.OnPause()
	}
}

// Resume restarts delivery, drains the buffer in FIFO order and then
// notifies OnDrain, unless the channel was paused again or ended meanwhile.
func (c *Channel) Resume() {
	if c.ended {
		return
	}
	c.paused = false
	c.flush()
	if c.paused || c.ended || len(c.buffer) > 0 {
		return
	}
	for _, l := range c.listeners {
		l.OnDrain()
	}
}

func (c *Channel) flush() {
	// Listeners may push or pause from inside a callback; the outer loop
	// picks that up.
	if c.draining {
		return
	}
	c.draining = true
	defer func() { c.draining = false }()

	for !c.paused && len(c.buffer) > 0 {
		s := c.buffer[0]
		c.buffer[0] = nil
		c.buffer = c.buffer[1:]

		if s == nil {
			c.ended = true
			c.buffer = nil
			for _, l := range c.listeners {
				l.OnEnd()
			}
			return
		}
		for _, l := range c.listeners {
			l.OnData(*s)
		}
	}
}

// Paused reports whether delivery is halted.
func (c *Channel) Paused() bool { return c.paused }

// Closed reports whether the end-of-stream sentinel has been queued.
func (c *Channel) Closed() bool { return c.closed }

// Ended reports whether the end-of-stream sentinel has been delivered.
func (c *Channel) Ended() bool { return c.ended }

// Len returns the number of buffered entries, sentinel included.
func (c *Channel) Len() int { return len(c.buffer) }

// Dropped returns how many pushes were refused because the buffer was full.
func (c *Channel) Dropped() uint64 { return c.dropped }
