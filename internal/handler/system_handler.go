package handler

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/clinsim-backend/internal/config"
	"github.com/stemsi/clinsim-backend/internal/response"
)

const healthCheckTimeout = 2 * time.Second

// SessionCounter reports the number of running simulations.
type SessionCounter interface {
	ActiveSessionCount() int
}

// SystemHandler reports dependency health and Go runtime metrics.
// Either backing store may be nil when it is not configured.
type SystemHandler struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	sessions  SessionCounter
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(pool *pgxpool.Pool, rdb *redis.Client, sessions SessionCounter, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		pool:      pool,
		rdb:       rdb,
		sessions:  sessions,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthReport struct {
	Status    string            `json:"status"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks"`
	Timestamp int64             `json:"timestamp"`

	ActiveSessions int   `json:"active_sessions"`
	QueueReports   int64 `json:"queue_reports"`

	// Go Application
	Goroutines  int    `json:"goroutines"`
	HeapAlloc   uint64 `json:"heap_alloc"`
	NumGC       uint32 `json:"num_gc"`
	AppRSSBytes uint64 `json:"app_rss_bytes"`
	GoVersion   string `json:"go_version"`
}

// Health godoc
// GET /api/v1/simulations/health
// Answers 503 when a configured dependency is unreachable.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	report := h.collect(ctx)
	if report.Status != "ok" {
		h.log.Warn().Interface("checks", report.Checks).Msg("Health check degraded")
		response.Success(c, http.StatusServiceUnavailable, report)
		return
	}
	response.Success(c, http.StatusOK, report)
}

func (h *SystemHandler) collect(ctx context.Context) healthReport {
	r := healthReport{
		Status:    "ok",
		Uptime:    formatDuration(time.Since(h.startTime)),
		Checks:    map[string]string{},
		Timestamp: time.Now().Unix(),
		GoVersion: runtime.Version(),
	}

	// ── Dependencies ──
	if h.pool != nil {
		r.Checks["postgres"] = checkResult(h.pool.Ping(ctx))
	}
	if h.rdb != nil {
		r.Checks["redis"] = checkResult(h.rdb.Ping(ctx).Err())
		r.QueueReports, _ = h.rdb.LLen(ctx, config.WorkerKey.PersistReportsQueue).Result()
	}
	for _, v := range r.Checks {
		if v != "ok" {
			r.Status = "degraded"
		}
	}

	if h.sessions != nil {
		r.ActiveSessions = h.sessions.ActiveSessionCount()
	}

	// ── Go Runtime ──
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	r.Goroutines = runtime.NumGoroutine()
	r.HeapAlloc = ms.HeapAlloc
	r.NumGC = ms.NumGC
	r.AppRSSBytes, _ = readProcessRSS()

	return r
}

func checkResult(err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

// readProcessRSS reads VmRSS from /proc/self/status.
func readProcessRSS() (uint64, error) {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "VmRSS:") {
			return parseMemInfoValue(line), nil
		}
	}
	return 0, fmt.Errorf("VmRSS not found")
}

func parseMemInfoValue(line string) uint64 {
	// Format: "VmRSS:     16384 kB"
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	val, _ := strconv.ParseUint(fields[1], 10, 64)
	return val * 1024
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
