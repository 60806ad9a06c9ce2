package notify

import (
	"sync"
)

// Event is a job status transition pushed to interested consumers.
type Event struct {
	SourceID           string   `json:"sourceId"`
	Status             string   `json:"status"`
	AvailableQualities []string `json:"availableQualities"`
	Timestamp          int64    `json:"timestamp"`
}

// EventBus fans events out to per-source subscribers. Slow subscribers
// have events dropped rather than blocking the publisher.
type EventBus struct {
	subscribers map[string][]chan Event
	mu          sync.RWMutex
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]chan Event)}
}

// Subscribe returns a channel receiving events for one source.
func (eb *EventBus) Subscribe(sourceID string) chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := make(chan Event, 16)
	eb.subscribers[sourceID] = append(eb.subscribers[sourceID], ch)
	return ch
}

// Unsubscribe removes and closes the channel.
func (eb *EventBus) Unsubscribe(sourceID string, ch chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	subs := eb.subscribers[sourceID]
	for i, sub := range subs {
		if sub == ch {
			eb.subscribers[sourceID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(eb.subscribers[sourceID]) == 0 {
		delete(eb.subscribers, sourceID)
	}
}

// Publish delivers the event to every subscriber of its source.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for _, ch := range eb.subscribers[event.SourceID] {
		select {
		case ch <- event:
		default:
			// Drop event if subscriber is slow
		}
	}
}
