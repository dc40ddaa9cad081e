// Package notification stores per-student notifications with read tracking.
package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/clinsim-backend/internal/model"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Sink is an append-only store of notifications. Appends may arrive
// concurrently from many alert callbacks and must never be dropped.
type Sink interface {
	Append(ctx context.Context, n model.Notification) (model.Notification, error)
	List(ctx context.Context, studentID string, unreadOnly bool) ([]model.Notification, error)
	// MarkRead is idempotent for known IDs.
	MarkRead(ctx context.Context, studentID, notificationID string) error
}

// prepare fills in the ID and creation time when the caller left them empty.
func prepare(n model.Notification) model.Notification {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return n
}

// MemorySink keeps notifications in process memory.
type MemorySink struct {
	mu    sync.RWMutex
	items map[string][]*model.Notification
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{items: make(map[string][]*model.Notification)}
}

func (m *MemorySink) Append(_ context.Context, n model.Notification) (model.Notification, error) {
	n = prepare(n)
	stored := n

	m.mu.Lock()
	m.items[n.StudentID] = append(m.items[n.StudentID], &stored)
	m.mu.Unlock()

	return n, nil
}

func (m *MemorySink) List(_ context.Context, studentID string, unreadOnly bool) ([]model.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Notification, 0, len(m.items[studentID]))
	for _, n := range m.items[studentID] {
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (m *MemorySink) MarkRead(_ context.Context, studentID, notificationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.items[studentID] {
		if n.ID == notificationID {
			n.Read = true
			return nil
		}
	}
	return ErrNotificationNotFound
}
