package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/clinsim-backend/internal/model"
)

type stubWriter struct {
	mu       sync.Mutex
	bulkErr  error
	failOn   map[string]bool
	bulk     [][]*model.PerformanceReport
	inserted []string
}

func (s *stubWriter) BulkInsert(_ context.Context, reports []*model.PerformanceReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bulk = append(s.bulk, append([]*model.PerformanceReport(nil), reports...))
	return s.bulkErr
}

func (s *stubWriter) Insert(_ context.Context, r *model.PerformanceReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[r.SessionID] {
		return errors.New("constraint violation")
	}
	s.inserted = append(s.inserted, r.SessionID)
	return nil
}

func unreachableRedis(t *testing.T) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func reports(ids ...string) []*model.PerformanceReport {
	out := make([]*model.PerformanceReport, 0, len(ids))
	for _, id := range ids {
		out = append(out, &model.PerformanceReport{SessionID: id, StudentID: "stu-" + id, OverallScore: 80})
	}
	return out
}

func TestFlushSafe_BulkSucceeds(t *testing.T) {
	repo := &stubWriter{}
	w := NewReportWorker(repo, unreachableRedis(t), zerolog.Nop())

	requeued := w.flushSafe(context.Background(), reports("a", "b", "c"))

	assert.Empty(t, requeued)
	require.Len(t, repo.bulk, 1)
	assert.Len(t, repo.bulk[0], 3)
	assert.Empty(t, repo.inserted)
}

func TestFlushSafe_FallsBackToSingleRows(t *testing.T) {
	repo := &stubWriter{
		bulkErr: errors.New("deadlock detected"),
		failOn:  map[string]bool{"b": true},
	}
	w := NewReportWorker(repo, unreachableRedis(t), zerolog.Nop())

	requeued := w.flushSafe(context.Background(), reports("a", "b", "c"))

	assert.Equal(t, []string{"a", "c"}, repo.inserted)
	require.Len(t, requeued, 1)
	assert.Equal(t, "b", requeued[0].SessionID)
}

func TestFlushSafe_EmptyBatch(t *testing.T) {
	repo := &stubWriter{}
	w := NewReportWorker(repo, unreachableRedis(t), zerolog.Nop())

	assert.Nil(t, w.flushSafe(context.Background(), nil))
	assert.Empty(t, repo.bulk)
}

func TestDecodeReport(t *testing.T) {
	raw, err := json.Marshal(&model.PerformanceReport{SessionID: "s1", Grade: model.GradeA, Duration: 90 * time.Second})
	require.NoError(t, err)

	r := decodeReport(string(raw))
	require.NotNil(t, r)
	assert.Equal(t, "s1", r.SessionID)
	assert.Equal(t, model.GradeA, r.Grade)
	assert.Equal(t, 90*time.Second, r.Duration)

	assert.Nil(t, decodeReport("{not json"))
	assert.Nil(t, decodeReport(`{"overall_score": 10}`))
}

func TestReportQueue_PropagatesRedisErrors(t *testing.T) {
	q := NewReportQueue(unreachableRedis(t))
	err := q.Persist(context.Background(), reports("x")[0])
	assert.Error(t, err)
}

func TestStart_StopsOnCancel(t *testing.T) {
	repo := &stubWriter{}
	w := NewReportWorker(repo, unreachableRedis(t), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}
