package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents the kind of watch notification published by the
// engine after a commit.
type EventType string

const (
	// HeadsChanged fires whenever insert_event changes an author's head set.
	HeadsChanged EventType = "heads.changed"
	// ContentMissing fires when a new row is added to events_content_missing,
	// waking the fetcher.
	ContentMissing EventType = "content.missing"
	// ContentReady fires once an event's content has been processed and the
	// content state transitions out of Missing, whether the bytes were
	// fetched later or already known at insert time.
	ContentReady EventType = "content.ready"
	// NotificationCreated names a new row in the notifications table for
	// some recipient. No code path in this module publishes it.
	NotificationCreated EventType = "notification.created"
)

// Event is a single watch notification.
type Event struct {
	ID        uuid.UUID
	Type      EventType
	Timestamp time.Time
	Author    [32]byte
	EventID   [16]byte
	Metadata  map[string]string
}

// Subscriber is a channel that receives events.
type Subscriber chan *Event

// Broker manages watch subscriptions and fan-out. It is the engine's
// post-commit hook and the fetcher's wake signal.
type Broker struct {
	subscribers map[Subscriber]bool
	mu          sync.RWMutex
	eventCh     chan *Event
	stopCh      chan struct{}
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		eventCh:     make(chan *Event, 100), // Buffer up to 100 events
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's event distribution loop.
func (b *Broker) Start() {
	go b.run()
}

// Stop stops the broker.
func (b *Broker) Stop() {
	close(b.stopCh)
}

// Subscribe creates a new subscription and returns a channel.
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(Subscriber, 50) // Buffer per subscriber
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes a subscription.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subscribers, sub)
	close(sub)
}

// Publish publishes an event to all subscribers. It waits while the
// broker's 100-event internal buffer is full; if the broker is stopped the
// event is dropped.
func (b *Broker) Publish(event *Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	for {
		select {
		case event := <-b.eventCh:
			b.broadcast(event)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber buffer full, skip
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
