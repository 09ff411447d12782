package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadCacheConfigDefaults(t *testing.T) {
	cfg := LoadCacheConfig()
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.Methods["GET"])
	assert.False(t, cfg.Methods["POST"])
	assert.Equal(t, 30*time.Second, cfg.TTL)
	assert.Equal(t, "cache", cfg.Prefix)
}

func TestLoadCacheConfigOverrides(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "2m")

	cfg := LoadCacheConfig()
	assert.False(t, cfg.Enabled)
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.Equal(t, 2*time.Minute, cfg.TTL)
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, time.Second, cfg.RefillInterval)
	assert.Equal(t, 5*time.Second, cfg.TTL, "TTL clamped to 5x refill interval")
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_BOOL", "on")
	t.Setenv("X_INT", "42")
	t.Setenv("X_DUR", "150ms")

	assert.True(t, envBool("X_BOOL", false))
	assert.False(t, envBool("X_MISSING", false))
	assert.Equal(t, 42, envInt("X_INT", 0))
	assert.Equal(t, 7, envInt("X_MISSING", 7))
	assert.Equal(t, 150*time.Millisecond, envDur("X_DUR", 0))
	assert.Equal(t, time.Second, envDur("X_MISSING", time.Second))
	assert.Equal(t, "fallback", envStr("X_MISSING", "fallback"))
}
