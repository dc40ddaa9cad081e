package notification

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/clinsim-backend/internal/config"
	"github.com/stemsi/clinsim-backend/internal/model"
)

// liveRedis connects to REDIS_URL and skips the test when nothing answers.
func liveRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	opts.DialTimeout = 200 * time.Millisecond
	opts.MaxRetries = -1

	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable at %s: %v", url, err)
	}
	return rdb
}

func testStudent(t *testing.T, rdb *redis.Client) string {
	id := "test-" + uuid.New().String()
	t.Cleanup(func() {
		_ = rdb.Del(context.Background(), config.CacheKey.StudentNotificationsKey(id)).Err()
	})
	return id
}

func TestRedisSink_AppendAndList(t *testing.T) {
	rdb := liveRedis(t)
	sink := NewRedisSink(rdb, time.Hour)
	ctx := context.Background()
	student := testStudent(t, rdb)

	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	second, err := sink.Append(ctx, model.Notification{StudentID: student, Message: "second", CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	first, err := sink.Append(ctx, model.Notification{StudentID: student, Message: "first", CreatedAt: base})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	list, err := sink.List(ctx, student, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
	assert.True(t, base.Equal(list[0].CreatedAt))

	ttl, err := rdb.TTL(ctx, config.CacheKey.StudentNotificationsKey(student)).Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestRedisSink_AppendKeepsExistingID(t *testing.T) {
	rdb := liveRedis(t)
	sink := NewRedisSink(rdb, 0)
	ctx := context.Background()
	student := testStudent(t, rdb)

	_, err := sink.Append(ctx, model.Notification{ID: "n1", StudentID: student, Message: "original"})
	require.NoError(t, err)
	_, err = sink.Append(ctx, model.Notification{ID: "n1", StudentID: student, Message: "duplicate"})
	require.NoError(t, err)

	list, err := sink.List(ctx, student, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "original", list[0].Message)
}

func TestRedisSink_MarkReadIsIdempotent(t *testing.T) {
	rdb := liveRedis(t)
	sink := NewRedisSink(rdb, 0)
	ctx := context.Background()
	student := testStudent(t, rdb)

	n, err := sink.Append(ctx, model.Notification{StudentID: student, Message: "alert"})
	require.NoError(t, err)
	_, err = sink.Append(ctx, model.Notification{StudentID: student, Message: "other"})
	require.NoError(t, err)

	require.NoError(t, sink.MarkRead(ctx, student, n.ID))
	require.NoError(t, sink.MarkRead(ctx, student, n.ID))

	unread, err := sink.List(ctx, student, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "other", unread[0].Message)

	all, err := sink.List(ctx, student, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	err = sink.MarkRead(ctx, student, "missing")
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestRedisSink_ConcurrentAppendsAreNotLost(t *testing.T) {
	rdb := liveRedis(t)
	sink := NewRedisSink(rdb, time.Hour)
	ctx := context.Background()
	student := testStudent(t, rdb)

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := sink.Append(ctx, model.Notification{StudentID: student, Message: fmt.Sprintf("alert %d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := sink.List(ctx, student, false)
	require.NoError(t, err)
	assert.Len(t, list, n)
}

func TestRedisSink_UnreachableReturnsErrors(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	sink := NewRedisSink(rdb, time.Hour)
	ctx := context.Background()

	_, err := sink.Append(ctx, model.Notification{StudentID: "s1", Message: "m"})
	assert.ErrorContains(t, err, "store notification")

	_, err = sink.List(ctx, "s1", false)
	assert.ErrorContains(t, err, "list notifications")

	err = sink.MarkRead(ctx, "s1", "n1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotificationNotFound)
}
