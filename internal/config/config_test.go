package config

import (
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	defaults(v)
	cfg := FromViper(v)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "mysql", cfg.Store)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 24*time.Hour, cfg.ActivationTTL)
	assert.Equal(t, time.Hour, cfg.PasswordResetTTL)
	assert.Equal(t, 3, cfg.SweepHour)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	defaults(v)
	v.Set("REDIS_HOST", "cache")
	v.Set("REDIS_PORT", "6380")
	v.Set("FRONTEND_URL", "https://wis.example/")
	v.Set("RATE_LIMIT_CAPACITY", 0)
	v.Set("RATE_LIMIT_REFILL_INTERVAL", "10s")
	v.Set("RATE_LIMIT_TTL", "1s")
	v.Set("ACCESS_TOKEN_TTL", "5m")

	cfg := FromViper(v)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, "https://wis.example", cfg.FrontendURL)
	assert.Equal(t, 1, cfg.RateLimit.Capacity)
	assert.Equal(t, 50*time.Second, cfg.RateLimit.TTL)
	assert.Equal(t, 5*time.Minute, cfg.AccessTTL)
}

func TestTestConfig(t *testing.T) {
	cfg := Test()
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.Cache.Enabled)
}

func TestLevel(t *testing.T) {
	for raw, want := range map[string]log.Lvl{
		"debug": log.DEBUG,
		"warn":  log.WARN,
		"error": log.ERROR,
		"off":   log.OFF,
		"":      log.INFO,
		"loud":  log.INFO,
	} {
		assert.Equal(t, want, Config{LogLevel: raw}.Level(), raw)
	}
}
