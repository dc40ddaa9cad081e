package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/clinsim-backend/internal/config"
	"github.com/stemsi/clinsim-backend/internal/model"
)

const markReadRetries = 5

// RedisSink keeps each student's notifications in a Redis hash keyed by
// notification ID, so appends from several instances never overwrite each
// other.
type RedisSink struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSink creates a RedisSink. A zero ttl keeps notifications forever.
func NewRedisSink(rdb *redis.Client, ttl time.Duration) *RedisSink {
	return &RedisSink{rdb: rdb, ttl: ttl}
}

func (r *RedisSink) Append(ctx context.Context, n model.Notification) (model.Notification, error) {
	n = prepare(n)

	raw, err := json.Marshal(n)
	if err != nil {
		return model.Notification{}, fmt.Errorf("marshal notification: %w", err)
	}

	key := config.CacheKey.StudentNotificationsKey(n.StudentID)
	pipe := r.rdb.TxPipeline()
	pipe.HSetNX(ctx, key, n.ID, raw)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return model.Notification{}, fmt.Errorf("store notification: %w", err)
	}
	return n, nil
}

func (r *RedisSink) List(ctx context.Context, studentID string, unreadOnly bool) ([]model.Notification, error) {
	values, err := r.rdb.HGetAll(ctx, config.CacheKey.StudentNotificationsKey(studentID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	out := make([]model.Notification, 0, len(values))
	for _, raw := range values {
		var n model.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// MarkRead flips the read flag under WATCH so a concurrent writer on the
// same field forces a retry instead of a lost update.
func (r *RedisSink) MarkRead(ctx context.Context, studentID, notificationID string) error {
	key := config.CacheKey.StudentNotificationsKey(studentID)

	update := func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, key, notificationID).Result()
		if errors.Is(err, redis.Nil) {
			return ErrNotificationNotFound
		}
		if err != nil {
			return err
		}

		var n model.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			return fmt.Errorf("decode notification: %w", err)
		}
		if n.Read {
			return nil
		}
		n.Read = true

		updated, err := json.Marshal(n)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, notificationID, updated)
			return nil
		})
		return err
	}

	for i := 0; i < markReadRetries; i++ {
		err := r.rdb.Watch(ctx, update, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("mark notification read: %w", redis.TxFailedErr)
}
