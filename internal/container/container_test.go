package container

import (
	"context"
	"testing"

	"genexplorer/domain/table"
	"genexplorer/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:   config.ServerConfig{Port: "0"},
		Data:     config.DataConfig{DataDir: t.TempDir(), WatchSources: true},
		Explore:  config.ExploreConfig{GenePageSize: 5},
		Metrics:  config.MetricsConfig{Enabled: true},
		LogLevel: "ERROR",
	}
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestContainer_SyntheticSources(t *testing.T) {
	c, err := New(testConfig(t))
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.InitSources(ctx))
	require.NoError(t, c.StartWatcher(ctx))
	assert.NotNil(t, c.Watcher)

	genes, err := c.Explorer.ListGenes(ctx, "", nil)
	require.NoError(t, err)
	assert.Len(t, genes, 5)

	res, err := c.Explorer.ApplyFilter(ctx, "", table.NewSelection(genes[:2], nil, nil))
	require.NoError(t, err)
	assert.Equal(t, genes[:2], res.Mu.Entities)
	assert.NotEmpty(t, res.Phi.Entities)
	assert.Equal(t, 2, c.HeaderCache.Len(), "both headers cached")
}
