package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/clinsim-backend/internal/config"
	"github.com/stemsi/clinsim-backend/internal/model"
)

const (
	ReportBatchSize    = 50
	ReportBatchTimeout = 2 * time.Second
	ReportPollTimeout  = 1 * time.Second
)

// ReportWriter is the database side of report persistence.
type ReportWriter interface {
	BulkInsert(ctx context.Context, reports []*model.PerformanceReport) error
	Insert(ctx context.Context, report *model.PerformanceReport) error
}

type ReportWorker struct {
	repo ReportWriter
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewReportWorker(repo ReportWriter, rdb *redis.Client, log zerolog.Logger) *ReportWorker {
	return &ReportWorker{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "report_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ReportWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ReportWorker started")

	batch := make([]*model.PerformanceReport, 0, ReportBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ReportBatchSize || time.Since(lastFlush) >= ReportBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Int("pending", len(batch)).Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ReportPollTimeout, config.WorkerKey.PersistReportsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			if r := decodeReport(item[1]); r != nil {
				batch = append(batch, r)
			} else {
				w.log.Error().Msg("Invalid report payload")
			}
		}
	}
}

func decodeReport(raw string) *model.PerformanceReport {
	var r model.PerformanceReport
	if err := json.Unmarshal([]byte(raw), &r); err != nil || r.SessionID == "" {
		return nil
	}
	return &r
}

// ----------------------------------------------------------------
// Batch insert with single-row fallback
// ----------------------------------------------------------------

// flushSafe returns the reports that could not be written and were pushed
// back onto the queue.
func (w *ReportWorker) flushSafe(ctx context.Context, batch []*model.PerformanceReport) []*model.PerformanceReport {
	if len(batch) == 0 {
		return nil
	}

	err := w.repo.BulkInsert(ctx, batch)
	if err == nil {
		w.log.Debug().Int("count", len(batch)).Msg("Reports persisted")
		return nil
	}

	w.log.Warn().Err(err).Msg("bulk report insert failed, using fallback")

	var requeued []*model.PerformanceReport
	for _, r := range batch {
		if err := w.repo.Insert(ctx, r); err != nil {
			w.log.Error().Err(err).Str("session_id", r.SessionID).Msg("single insert failed, requeueing")
			raw, _ := json.Marshal(r)
			if err := w.rdb.RPush(ctx, config.WorkerKey.PersistReportsQueue, raw).Err(); err != nil {
				w.log.Error().Err(err).Str("session_id", r.SessionID).Msg("requeue failed, report dropped")
			}
			requeued = append(requeued, r)
		}
	}
	return requeued
}
