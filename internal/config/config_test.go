package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.DatabasePath)
	assert.NotEmpty(t, cfg.ModelPath)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "0 0 18 * * FRI", cfg.RebalanceSchedule)
	assert.InDelta(t, 0.10, cfg.TargetVolatility, 1e-12)
	assert.Equal(t, 10, cfg.ModelWindowSize)
	assert.Equal(t, 14, cfg.HighYieldDays)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("TARGET_VOLATILITY", "0.25")
	t.Setenv("MODEL_WINDOW_SIZE", "4")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Port)
	assert.InDelta(t, 0.25, cfg.TargetVolatility, 1e-12)
	assert.Equal(t, 4, cfg.ModelWindowSize)
	assert.True(t, cfg.DevMode)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "missing database path", mutate: func(c *Config) { c.DatabasePath = "" }, wantErr: "DATABASE_PATH"},
		{name: "missing model path", mutate: func(c *Config) { c.ModelPath = "" }, wantErr: "MODEL_PATH"},
		{name: "negative volatility", mutate: func(c *Config) { c.TargetVolatility = -0.1 }, wantErr: "TARGET_VOLATILITY"},
		{name: "zero window", mutate: func(c *Config) { c.ModelWindowSize = 0 }, wantErr: "MODEL_WINDOW_SIZE"},
		{name: "zero lookback", mutate: func(c *Config) { c.HighYieldDays = 0 }, wantErr: "HIGH_YIELD_DAYS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
