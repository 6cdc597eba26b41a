// Package cache memoizes table headers so repeated filter requests do not
// re-read the first line of large source files.
package cache

import (
	"context"
	"os"
	"sync"
	"time"

	"genexplorer/internal"
	"genexplorer/internal/metrics"
	"genexplorer/ports"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	modTime time.Time
	size    int64
	header  []string
}

// HeaderCache keys headers by path and file modification time. Sources
// whose path cannot be stat'ed bypass the cache.
type HeaderCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *internal.Logger
}

var _ ports.HeaderCache = (*HeaderCache)(nil)

// NewHeaderCache creates an empty cache; m may be nil
func NewHeaderCache(m *metrics.Metrics, logger *internal.Logger) *HeaderCache {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &HeaderCache{entries: make(map[string]entry), metrics: m, logger: logger}
}

// Header returns the cached header of src, reading it when the file changed
func (c *HeaderCache) Header(ctx context.Context, src ports.TableSource) ([]string, error) {
	path := src.Path()
	info, err := os.Stat(path)
	if err != nil {
		c.metrics.HeaderCacheMiss()
		return src.ReadHeader(ctx)
	}

	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		c.metrics.HeaderCacheHit()
		return clone(e.header), nil
	}

	c.metrics.HeaderCacheMiss()
	// The shared read must not inherit one caller's cancellation; each
	// caller stops waiting on its own ctx instead.
	readCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(path, func() (interface{}, error) {
		header, err := src.ReadHeader(readCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[path] = entry{modTime: info.ModTime(), size: info.Size(), header: header}
		c.mu.Unlock()
		c.logger.Debug("[HeaderCache] cached %d columns for %s", len(header), path)
		return header, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return clone(res.Val.([]string)), nil
	}
}

// Invalidate drops the entry for path
func (c *HeaderCache) Invalidate(path string) {
	c.mu.Lock()
	_, ok := c.entries[path]
	delete(c.entries, path)
	c.mu.Unlock()
	if ok {
		c.logger.Info("[HeaderCache] invalidated %s", path)
	}
}

// Len returns the number of cached headers
func (c *HeaderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func clone(h []string) []string {
	return append([]string(nil), h...)
}
