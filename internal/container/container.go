package container

import (
	"context"
	"fmt"

	"genexplorer/adapters/excel"
	"genexplorer/app"
	"genexplorer/internal"
	"genexplorer/internal/cache"
	"genexplorer/internal/config"
	"genexplorer/internal/metrics"
	"genexplorer/internal/prepare"
	"genexplorer/internal/testkit"
	"genexplorer/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	Metrics     *metrics.Metrics
	Sources     excel.SourceConfig
	Store       ports.TableStore
	HeaderCache *cache.HeaderCache
	Watcher     *cache.Watcher

	// Services
	Explorer *app.ExplorerService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)),
	}
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.New()
	}
	return c, nil
}

// InitSources resolves the table files, generating a synthetic pair when
// none are configured, and builds the explorer on top of them
func (c *Container) InitSources(ctx context.Context) error {
	c.Sources = excel.SourceConfig{
		MuPath:  c.Config.Data.MuTablePath,
		PhiPath: c.Config.Data.PhiTablePath,
	}
	if c.Config.Data.Synthetic() {
		c.Logger.Info("[Container] no table paths configured, generating synthetic tables in %s", c.Config.Data.DataDir)
		src, err := prepare.GenerateSynthetic(ctx, c.Config.Data.DataDir, testkit.DefaultScreenConfig(), c.Logger)
		if err != nil {
			return fmt.Errorf("failed to generate synthetic tables: %w", err)
		}
		c.Sources = src
	}

	c.Store = excel.NewStore(c.Sources, c.Logger)
	c.HeaderCache = cache.NewHeaderCache(c.Metrics, c.Logger)
	c.Explorer = app.NewExplorerService(c.Store,
		app.WithHeaderCache(c.HeaderCache),
		app.WithMetrics(c.Metrics),
		app.WithLogger(c.Logger),
		app.WithGenePageSize(c.Config.Explore.GenePageSize),
	)

	c.Logger.Info("[Container] mu table: %s", c.Sources.MuPath)
	c.Logger.Info("[Container] phi table: %s", c.Sources.PhiPath)
	return nil
}

// StartWatcher invalidates cached headers when the table files change
func (c *Container) StartWatcher(ctx context.Context) error {
	if !c.Config.Data.WatchSources || c.HeaderCache == nil {
		return nil
	}
	w, err := cache.NewWatcher(c.HeaderCache, c.Logger, c.Sources.MuPath, c.Sources.PhiPath)
	if err != nil {
		return fmt.Errorf("failed to watch table files: %w", err)
	}
	c.Watcher = w
	w.Start(ctx)
	return nil
}

// Close releases resources held by the container
func (c *Container) Close() error {
	var err error
	if c.Watcher != nil {
		err = c.Watcher.Close()
	}
	c.Logger.Sync()
	return err
}
