package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	for _, key := range []string{"APP_PORT", "DB_DRIVER", "SQLITE_PATH", "REDIS_HOST", "CACHE_TTL", "BASIC_AUTH_USERNAME", "BASIC_AUTH_PASSWORD", "RATE_LIMIT_MAX"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, 3004, cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "db.sqlite", cfg.SQLitePath)
	assert.Empty(t, cfg.RedisHost)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, "username", cfg.BasicAuthUsername)
	assert.Equal(t, "password", cfg.BasicAuthPassword)
	assert.Equal(t, 100, cfg.RateLimitMax)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("REDIS_PORT", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, 8080, cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 6379, cfg.RedisPort)
}
