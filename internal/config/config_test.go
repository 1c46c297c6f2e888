package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SKIP_AUTH", "true")
	t.Setenv("TOKEN_TTL_HOURS", "not-a-number")
	t.Setenv("PERMISSION_BACKFILL_SCHEDULE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.SkipAuth)
	assert.Equal(t, 72, cfg.TokenTTL)
	assert.Empty(t, cfg.BackfillSchedule)
	assert.False(t, cfg.IsProduction())
}
