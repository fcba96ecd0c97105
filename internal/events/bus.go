package events

import (
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// subscriberBuf is the per-subscriber channel depth. A subscriber that
// falls further behind than this loses events rather than stalling the
// publisher.
const subscriberBuf = 64

// Subscriber receives events for one table topic.
type Subscriber struct {
	// C carries the subscriber's events. It is closed by Unsubscribe and
	// when the bus shuts down.
	C <-chan Event

	ch      chan Event
	topic   string
	viewer  string // "" = public feed only
	dropped atomic.Int64
}

// Dropped reports how many events were discarded because the subscriber's
// buffer was full.
func (s *Subscriber) Dropped() int64 { return s.dropped.Load() }

// Bus fans events out to per-table subscribers. Publishing never blocks:
// each subscriber has a bounded buffer and a full buffer drops the event
// for that subscriber only.
type Bus struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscriber]struct{}
	closed bool
	logger *log.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *log.Logger) *Bus {
	return &Bus{
		topics: make(map[string]map[*Subscriber]struct{}),
		logger: logger.WithPrefix("events"),
	}
}

// Subscribe registers for a topic's public feed. Private events are not
// delivered; use SubscribeAs to receive events addressed to a player.
func (b *Bus) Subscribe(topic string) *Subscriber {
	return b.SubscribeAs(topic, "")
}

// SubscribeAs registers for a topic's public feed plus events addressed
// privately to viewer.
func (b *Bus) SubscribeAs(topic, viewer string) *Subscriber {
	sub := &Subscriber{ch: make(chan Event, subscriberBuf), topic: topic, viewer: viewer}
	sub.C = sub.ch

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.ch)
		return sub
	}
	subs := b.topics[topic]
	if subs == nil {
		subs = make(map[*Subscriber]struct{})
		b.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

// Unsubscribe removes the subscriber and closes its channel. Safe to call
// more than once.
func (b *Bus) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.topics[sub.topic]
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.topics, sub.topic)
	}
	close(sub.ch)
}

// Publish delivers ev to every subscriber of its table's topic. Sends are
// non-blocking; private events reach only the addressed viewer.
func (b *Bus) Publish(ev Event) {
	topic := Topic(ev.TableID)

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for sub := range b.topics[topic] {
		if ev.To != "" && ev.To != sub.viewer {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			sub.dropped.Add(1)
			b.logger.Debug("Subscriber behind, dropping event",
				"topic", topic, "kind", ev.Kind, "viewer", sub.viewer)
		}
	}
}

// Subscribers reports how many subscribers a topic currently has.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Close shuts the bus down and closes every subscriber channel. Publishes
// and subscriptions after Close are no-ops.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for topic, subs := range b.topics {
		for sub := range subs {
			close(sub.ch)
		}
		delete(b.topics, topic)
	}
}
