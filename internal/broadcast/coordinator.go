// Package broadcast fans topic change signals out to connected subscribers.
package broadcast

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/teamboard/internal/model"
)

// Errors
var (
	ErrAlreadySubscribed = errors.New("connection already subscribed")
	ErrClosed            = errors.New("coordinator closed")
)

// DefaultBufferSize is the number of pending signals a subscription holds before new ones are dropped
const DefaultBufferSize = 16

// ConnID identifies one subscriber connection
type ConnID string

// Subscription is a registered connection's signal feed.
// Signals is closed when the subscription is removed or the coordinator shuts down.
type Subscription struct {
	id          ConnID
	signals     chan model.Topic
	connectedAt time.Time
}

// ID returns the connection id
func (s *Subscription) ID() ConnID {
	return s.id
}

// Signals returns the channel of changed topics
func (s *Subscription) Signals() <-chan model.Topic {
	return s.signals
}

// Delivery counts the outcome of one publish
type Delivery struct {
	Sent    int
	Dropped int
}

// Coordinator is the registry of live subscriptions.
//
// Sends happen under the read lock and channels are only closed under the write lock, so a publish
// never races a close.
type Coordinator struct {
	mu         sync.RWMutex
	subs       map[ConnID]*Subscription
	closed     bool
	bufferSize int
	logger     *slog.Logger
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithBufferSize sets the per-subscription signal buffer
func WithBufferSize(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.bufferSize = n
		}
	}
}

// NewCoordinator creates an empty Coordinator
func NewCoordinator(logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		subs:       make(map[ConnID]*Subscription),
		bufferSize: DefaultBufferSize,
		logger:     logger.With(slog.String("component", "broadcast")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers a connection
func (c *Coordinator) Subscribe(id ConnID) (*Subscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if _, ok := c.subs[id]; ok {
		return nil, ErrAlreadySubscribed
	}

	sub := &Subscription{
		id:          id,
		signals:     make(chan model.Topic, c.bufferSize),
		connectedAt: time.Now(),
	}
	c.subs[id] = sub

	c.logger.Info("subscriber registered",
		slog.String("conn_id", string(id)),
		slog.Int("total_subscribers", len(c.subs)))
	return sub, nil
}

// Unsubscribe removes a connection. Unknown ids are a no-op.
func (c *Coordinator) Unsubscribe(id ConnID) {
	c.mu.Lock()
	sub, ok := c.subs[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.subs, id)
	close(sub.signals)
	remaining := len(c.subs)
	c.mu.Unlock()

	c.logger.Info("subscriber unregistered",
		slog.String("conn_id", string(id)),
		slog.Duration("connection_duration", time.Since(sub.connectedAt)),
		slog.Int("total_subscribers", remaining))
}

// Publish signals topic to every subscriber without blocking
func (c *Coordinator) Publish(topic model.Topic) {
	d := c.deliver(topic)
	if d.Dropped > 0 {
		c.logger.Warn("broadcast partial failure",
			slog.String("topic", string(topic)),
			slog.Int("sent", d.Sent),
			slog.Int("dropped", d.Dropped))
		return
	}
	c.logger.Debug("broadcast",
		slog.String("topic", string(topic)),
		slog.Int("sent", d.Sent))
}

func (c *Coordinator) deliver(topic model.Topic) Delivery {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var d Delivery
	for _, sub := range c.subs {
		select {
		case sub.signals <- topic:
			d.Sent++
		default:
			d.Dropped++
			c.logger.Warn("signal dropped - subscriber buffer full",
				slog.String("conn_id", string(sub.id)),
				slog.String("topic", string(topic)))
		}
	}
	return d
}

// SubscriberCount returns the number of registered connections
func (c *Coordinator) SubscriberCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

// Close disconnects every subscriber and rejects new ones
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	count := len(c.subs)
	for id, sub := range c.subs {
		close(sub.signals)
		delete(c.subs, id)
	}
	c.logger.Info("coordinator closed", slog.Int("disconnected_subscribers", count))
}
