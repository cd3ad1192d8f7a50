// Package notify is the session's queue of short-lived user notifications.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/studentdesk/internal/app/models"
)

// EventType tells subscribers whether a notification appeared or went away
type EventType string

const (
	EventAdded   EventType = "added"
	EventExpired EventType = "expired"
)

// Event is delivered to subscribers for every change of the visible set
type Event struct {
	Type         EventType           `json:"type"`
	Notification models.Notification `json:"notification"`
}

const listenerBuffer = 64

type entry struct {
	n     models.Notification
	timer *time.Timer
}

// Channel holds the currently visible notifications. Each one removes itself
// when its duration elapses.
type Channel struct {
	logger          zerolog.Logger
	defaultDuration time.Duration
	now             func() time.Time

	mu      sync.Mutex
	entries []*entry
	nextID  int64
	closed  bool

	listenersMu sync.RWMutex
	listeners   map[chan Event]struct{}
}

// Option configures a Channel
type Option func(*Channel)

// WithLogger sets the channel's logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Channel) {
		c.logger = l
	}
}

// WithDefaultDuration overrides the 3s default lifetime
func WithDefaultDuration(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.defaultDuration = d
		}
	}
}

// NewChannel creates an empty notification channel
func NewChannel(opts ...Option) *Channel {
	c := &Channel{
		logger:          zerolog.Nop(),
		defaultDuration: models.DefaultNotificationDuration,
		now:             time.Now,
		listeners:       make(map[chan Event]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify queues a message and schedules its removal after duration.
// A zero duration uses the channel default and an unknown kind becomes info.
// It never blocks on subscribers.
func (c *Channel) Notify(message string, kind models.NotificationKind, duration time.Duration) models.Notification {
	if !kind.Valid() {
		kind = models.NotificationInfo
	}
	if duration <= 0 {
		duration = c.defaultDuration
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug().Str("message", message).Msg("Notification channel closed, dropping message")
		return models.Notification{}
	}
	c.nextID++
	n := models.Notification{
		ID:        c.nextID,
		Message:   message,
		Kind:      kind,
		Duration:  duration,
		CreatedAt: c.now(),
	}
	e := &entry{n: n}
	c.entries = append(c.entries, e)
	id := n.ID
	e.timer = time.AfterFunc(duration, func() { c.expire(id) })
	c.mu.Unlock()

	c.logger.Debug().Int64("id", n.ID).Str("kind", string(kind)).Str("message", message).Msg("Notification queued")
	c.emit(Event{Type: EventAdded, Notification: n})
	return n
}

// Info queues an info notification with the default duration
func (c *Channel) Info(message string) models.Notification {
	return c.Notify(message, models.NotificationInfo, 0)
}

// Success queues a success notification with the default duration
func (c *Channel) Success(message string) models.Notification {
	return c.Notify(message, models.NotificationSuccess, 0)
}

// Error queues an error notification with the default duration
func (c *Channel) Error(message string) models.Notification {
	return c.Notify(message, models.NotificationError, 0)
}

// Active returns the visible notifications in insertion order
func (c *Channel) Active() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Notification, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.n
	}
	return out
}

// Dismiss removes a notification before it expires
func (c *Channel) Dismiss(id int64) bool {
	return c.remove(id, true)
}

// Close stops every pending timer and empties the channel. Later Notify
// calls are ignored.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	for _, e := range c.entries {
		e.timer.Stop()
	}
	c.entries = nil
	c.mu.Unlock()

	c.listenersMu.Lock()
	for ch := range c.listeners {
		delete(c.listeners, ch)
		close(ch)
	}
	c.listenersMu.Unlock()
}

// Subscribe registers a listener for added/expired events
func (c *Channel) Subscribe() <-chan Event {
	ch := make(chan Event, listenerBuffer)

	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		close(ch)
		return ch
	}

	c.listeners[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a listener returned by Subscribe
func (c *Channel) Unsubscribe(sub <-chan Event) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	for ch := range c.listeners {
		if ch == sub {
			delete(c.listeners, ch)
			close(ch)
			return
		}
	}
}

func (c *Channel) expire(id int64) {
	c.remove(id, false)
}

func (c *Channel) remove(id int64, stopTimer bool) bool {
	c.mu.Lock()
	var removed *entry
	for i, e := range c.entries {
		if e.n.ID == id {
			removed = e
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	if removed == nil {
		return false
	}
	if stopTimer {
		removed.timer.Stop()
	}
	c.emit(Event{Type: EventExpired, Notification: removed.n})
	return true
}

func (c *Channel) emit(ev Event) {
	c.listenersMu.RLock()
	defer c.listenersMu.RUnlock()

	for ch := range c.listeners {
		select {
		case ch <- ev:
		default:
			c.logger.Warn().Msg("Skipped slow notification listener")
		}
	}
}
