package events

import (
	"sync"
)

// Stage is a step of a generation request.
type Stage string

const (
	StageGenerating Stage = "generating"
	StageFinalizing Stage = "finalizing"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// Event describes a progress update for one user's generation.
type Event struct {
	UserID  string `json:"-"`
	Flow    string `json:"flow,omitempty"`
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

// Publisher is the side of the broker generation code depends on.
type Publisher interface {
	Publish(evt Event)
}

// Broker manages SSE subscribers.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[chan Event]string
}

// NewBroker constructs a broker instance.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[chan Event]string),
	}
}

// Subscribe returns a channel that receives events for userID.
func (b *Broker) Subscribe(userID string) chan Event {
	ch := make(chan Event, 8)
	b.mu.Lock()
	b.subscribers[ch] = userID
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel from the broker.
func (b *Broker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers the event to the subscribers of its user.
func (b *Broker) Publish(evt Event) {
	b.mu.RLock()
	for ch, userID := range b.subscribers {
		if userID != evt.UserID {
			continue
		}
		select {
		case ch <- evt:
		default:
			// drop if subscriber is slow
		}
	}
	b.mu.RUnlock()
}

// Subscribers reports how many channels are attached.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
