package sse

import (
	"sync"
)

// Event is a message delivered to the subscribers of a topic.
type Event struct {
	Topic string
	Event string
	Data  interface{}
}

// Hub fans events out to per-topic subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	buffer      int
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		buffer:      16,
	}
}

// Subscribe registers one channel on every given topic. The returned cleanup
// removes it from all of them and closes the channel.
func (h *Hub) Subscribe(topics ...string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer)
	for _, topic := range topics {
		if h.subscribers[topic] == nil {
			h.subscribers[topic] = make(map[chan Event]struct{})
		}
		h.subscribers[topic][ch] = struct{}{}
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, topic := range topics {
				delete(h.subscribers[topic], ch)
				if len(h.subscribers[topic]) == 0 {
					delete(h.subscribers, topic)
				}
			}
			close(ch)
		})
	}

	return ch, cleanup
}

// Publish sends the event to each subscriber of each topic at most once.
// Full subscriber buffers are skipped.
func (h *Hub) Publish(event Event, topics ...string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[chan Event]struct{})
	for _, topic := range topics {
		for ch := range h.subscribers[topic] {
			if _, dup := seen[ch]; dup {
				continue
			}
			seen[ch] = struct{}{}

			e := event
			e.Topic = topic
			select {
			case ch <- e:
			default:
			}
		}
	}
}

// SubscriberCount returns the number of active subscribers for a topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}

// TotalSubscribers counts distinct subscriber channels.
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	distinct := make(map[chan Event]struct{})
	for _, subs := range h.subscribers {
		for ch := range subs {
			distinct[ch] = struct{}{}
		}
	}
	return len(distinct)
}

// AllTopic receives every event. Only callers without an institution scope
// may subscribe to it.
const AllTopic = "all"

func InstitutionTopic(id string) string { return "institution:" + id }
func OfficerTopic(id string) string     { return "officer:" + id }
