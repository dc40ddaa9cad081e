package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/clinsim-backend/internal/config"
	"github.com/stemsi/clinsim-backend/internal/model"
)

// ReportQueue hands finished reports to the ReportWorker through Redis.
type ReportQueue struct {
	rdb *redis.Client
}

func NewReportQueue(rdb *redis.Client) *ReportQueue {
	return &ReportQueue{rdb: rdb}
}

// Persist enqueues the report. The database write happens later.
func (q *ReportQueue) Persist(ctx context.Context, report *model.PerformanceReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := q.rdb.RPush(ctx, config.WorkerKey.PersistReportsQueue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue report: %w", err)
	}
	return nil
}
