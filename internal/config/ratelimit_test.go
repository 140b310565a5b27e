package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 60, cfg.Capacity)
	assert.Equal(t, time.Second, cfg.RefillInterval)
}

func TestLoadRateLimitConfigClampsInterval(t *testing.T) {
	// The bucket script counts elapsed time in whole milliseconds, so a
	// finer interval must be raised to 1ms instead of truncating to zero.
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "100us")
	cfg := LoadRateLimitConfig()
	assert.Equal(t, time.Millisecond, cfg.RefillInterval)

	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "-5s")
	cfg = LoadRateLimitConfig()
	assert.Equal(t, time.Second, cfg.RefillInterval)
}

func TestLoadRateLimitConfigFloorsCounts(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
}
