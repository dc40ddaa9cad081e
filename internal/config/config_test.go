package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t, []string{"http://a", "http://b"}, parseOrigins(" http://a , ,http://b "))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("NOTIFICATION_BACKEND", NotificationBackendRedis)
	t.Setenv("PERSIST_REPORTS", "false")
	t.Setenv("USE_SCENARIO_DB", "false")
	t.Setenv("SCENARIO_CACHE_TTL_MINUTES", "0")
	t.Setenv("NARRATIVE_TIMEOUT_SECONDS", "3")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

	cfg := Load()
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, NotificationBackendRedis, cfg.NotificationBackend)
	assert.False(t, cfg.PersistReports)
	assert.False(t, cfg.NeedsPostgres())
	assert.True(t, cfg.NeedsRedis())
	assert.Equal(t, 3*time.Second, cfg.NarrativeTimeout)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "scenario:cardiac:chest-pain", CacheKey.ScenarioKey("Cardiac", "Chest-Pain"))
	assert.Equal(t, "student:42:notifications", CacheKey.StudentNotificationsKey("42"))
}
