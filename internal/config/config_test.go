package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_Defaults(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	cfg := m.GetConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Backend)
	assert.NotEmpty(t, cfg.Database.SQLitePath)

	assert.Equal(t, 0.40, cfg.Screening.ActivationThreshold)
	assert.Equal(t, 90, cfg.Screening.SymptomWindowDays)
	assert.Equal(t, 30, cfg.Screening.DedupWindowDays)
	assert.Equal(t, 30, cfg.Screening.FollowUpDays)
	assert.InDelta(t, 1.0, cfg.Screening.SymptomWeight+cfg.Screening.RiskFactorWeight+cfg.Screening.IrregularityWeight, 1e-9)
	assert.Equal(t, 28.0, cfg.Screening.DefaultCycleLength)

	assert.True(t, cfg.Scheduler.Enabled)
	assert.NotEmpty(t, cfg.Scheduler.CronSpec)
	assert.Greater(t, cfg.Cache.MaxEntries, 0)

	require.NoError(t, m.Validate())
}

func TestManager_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "invalid port",
			mutate: func(c *Config) { c.Server.Port = -1 },
		},
		{
			name:   "unknown backend",
			mutate: func(c *Config) { c.Database.Backend = "oracle" },
		},
		{
			name: "postgres without url",
			mutate: func(c *Config) {
				c.Database.Backend = "postgres"
				c.Database.PostgresURL = ""
			},
		},
		{
			name:   "threshold out of range",
			mutate: func(c *Config) { c.Screening.ActivationThreshold = 1.5 },
		},
		{
			name: "weights sum above one",
			mutate: func(c *Config) {
				c.Screening.SymptomWeight = 0.9
				c.Screening.RiskFactorWeight = 0.9
			},
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "verbose" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewManager()
			require.NoError(t, err)

			tt.mutate(m.GetConfig())

			assert.Error(t, m.Validate())
		})
	}
}
