package config

import (
	"testing"

	apperrors "genexplorer/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "GIN_MODE", "MU_TABLE_PATH", "PHI_TABLE_PATH", "DATA_DIR", "WATCH_SOURCES", "GENE_PAGE_SIZE", "METRICS_ENABLED", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.GinMode)
	assert.True(t, cfg.Data.Synthetic())
	assert.True(t, cfg.Data.WatchSources)
	assert.NotEmpty(t, cfg.Data.DataDir)
	assert.Equal(t, 100, cfg.Explore.GenePageSize)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("MU_TABLE_PATH", "/data/mu.csv")
	t.Setenv("PHI_TABLE_PATH", "/data/phi.xlsx")
	t.Setenv("WATCH_SOURCES", "false")
	t.Setenv("GENE_PAGE_SIZE", "25")
	t.Setenv("METRICS_ENABLED", "not-a-bool")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.False(t, cfg.Data.Synthetic())
	assert.Equal(t, "/data/phi.xlsx", cfg.Data.PhiTablePath)
	assert.False(t, cfg.Data.WatchSources)
	assert.Equal(t, 25, cfg.Explore.GenePageSize)
	assert.True(t, cfg.Metrics.Enabled, "unparseable values fall back to the default")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"only mu path", map[string]string{"MU_TABLE_PATH": "/data/mu.csv"}},
		{"only phi path", map[string]string{"PHI_TABLE_PATH": "/data/phi.csv"}},
		{"zero page size", map[string]string{"GENE_PAGE_SIZE": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
		})
	}
}
