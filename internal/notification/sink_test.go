package notification

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/clinsim-backend/internal/model"
)

func TestMemorySink_ConcurrentAppendsAreNotLost(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	const n = 500
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := sink.Append(ctx, model.Notification{
				StudentID: "s1",
				Message:   fmt.Sprintf("alert %d", i),
				Category:  model.NotificationCategoryAlert,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	all, err := sink.List(ctx, "s1", false)
	require.NoError(t, err)
	assert.Len(t, all, n)

	seen := make(map[string]bool, n)
	for _, item := range all {
		assert.False(t, seen[item.ID], "duplicate id %s", item.ID)
		seen[item.ID] = true
	}
}

func TestMemorySink_MarkReadIsIdempotent(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	stored, err := sink.Append(ctx, model.Notification{StudentID: "s1", Message: "hello"})
	require.NoError(t, err)
	require.NotEmpty(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())

	require.NoError(t, sink.MarkRead(ctx, "s1", stored.ID))
	require.NoError(t, sink.MarkRead(ctx, "s1", stored.ID))

	unread, err := sink.List(ctx, "s1", true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	all, err := sink.List(ctx, "s1", false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Read)
}

func TestMemorySink_MarkReadUnknown(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()

	assert.ErrorIs(t, sink.MarkRead(ctx, "s1", "missing"), ErrNotificationNotFound)

	stored, err := sink.Append(ctx, model.Notification{StudentID: "s1", Message: "hi"})
	require.NoError(t, err)
	assert.ErrorIs(t, sink.MarkRead(ctx, "someone-else", stored.ID), ErrNotificationNotFound)
}

func TestMemorySink_ListReturnsCopies(t *testing.T) {
	sink := NewMemorySink()
	ctx := context.Background()
	_, err := sink.Append(ctx, model.Notification{StudentID: "s1", Message: "original"})
	require.NoError(t, err)

	list, _ := sink.List(ctx, "s1", false)
	list[0].Message = "changed"

	again, _ := sink.List(ctx, "s1", false)
	assert.Equal(t, "original", again[0].Message)
}

func TestBroker_PublishesToSubscriber(t *testing.T) {
	broker := NewBroker(NewMemorySink())
	ctx := context.Background()

	ch, unsubscribe := broker.Subscribe("s1")
	defer unsubscribe()

	_, err := broker.Append(ctx, model.Notification{StudentID: "s2", Message: "not mine"})
	require.NoError(t, err)
	stored, err := broker.Append(ctx, model.Notification{StudentID: "s1", Message: "mine"})
	require.NoError(t, err)

	select {
	case got := <-ch:
		assert.Equal(t, stored.ID, got.ID)
		assert.Equal(t, "mine", got.Message)
	case <-time.After(time.Second):
		t.Fatal("expected a published notification")
	}

	list, err := broker.List(ctx, "s1", false)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBroker_UnsubscribeClosesChannel(t *testing.T) {
	broker := NewBroker(NewMemorySink())
	ch, unsubscribe := broker.Subscribe("s1")

	unsubscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)

	_, err := broker.Append(context.Background(), model.Notification{StudentID: "s1", Message: "after"})
	assert.NoError(t, err)
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	broker := NewBroker(NewMemorySink())
	_, unsubscribe := broker.Subscribe("s1")
	defer unsubscribe()

	for i := 0; i < subscriberBuffer*3; i++ {
		_, err := broker.Append(context.Background(), model.Notification{StudentID: "s1", Message: "x"})
		require.NoError(t, err)
	}

	list, err := broker.List(context.Background(), "s1", false)
	require.NoError(t, err)
	assert.Len(t, list, subscriberBuffer*3)
}
