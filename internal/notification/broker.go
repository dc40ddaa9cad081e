package notification

import (
	"context"
	"sync"

	"github.com/stemsi/clinsim-backend/internal/model"
)

const subscriberBuffer = 16

// Broker wraps a Sink and pushes each stored notification to live
// subscribers of the owning student. Slow subscribers miss pushes but the
// record is always in the Sink.
type Broker struct {
	Sink

	mu   sync.RWMutex
	subs map[string]map[chan model.Notification]struct{}
}

// NewBroker wraps sink.
func NewBroker(sink Sink) *Broker {
	return &Broker{
		Sink: sink,
		subs: make(map[string]map[chan model.Notification]struct{}),
	}
}

// Append stores n and publishes it.
func (b *Broker) Append(ctx context.Context, n model.Notification) (model.Notification, error) {
	stored, err := b.Sink.Append(ctx, n)
	if err != nil {
		return stored, err
	}

	b.mu.RLock()
	for ch := range b.subs[stored.StudentID] {
		select {
		case ch <- stored:
		default:
		}
	}
	b.mu.RUnlock()

	return stored, nil
}

// Subscribe registers a listener for studentID. Call the returned func to
// unsubscribe; the channel is closed afterwards.
func (b *Broker) Subscribe(studentID string) (<-chan model.Notification, func()) {
	ch := make(chan model.Notification, subscriberBuffer)

	b.mu.Lock()
	if b.subs[studentID] == nil {
		b.subs[studentID] = make(map[chan model.Notification]struct{})
	}
	b.subs[studentID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[studentID], ch)
			if len(b.subs[studentID]) == 0 {
				delete(b.subs, studentID)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
}
