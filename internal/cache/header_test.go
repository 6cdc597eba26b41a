package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"genexplorer/internal/metrics"
	"genexplorer/internal/testkit"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func fileSource(t *testing.T) (*testkit.MemorySource, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mu.csv")
	header := []string{"design", "A", "group", "size"}
	require.NoError(t, testkit.WriteCSV(path, header, nil))
	return testkit.NewMemorySource(path, header, nil), path
}

func TestHeaderCache_Hit(t *testing.T) {
	src, _ := fileSource(t)
	c := NewHeaderCache(nil, nil)

	for i := 0; i < 3; i++ {
		h, err := c.Header(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, []string{"design", "A", "group", "size"}, h)
	}
	assert.Equal(t, 1, src.HeaderReads())
	assert.Equal(t, 1, c.Len())
}

func TestHeaderCache_ReturnsCopies(t *testing.T) {
	src, _ := fileSource(t)
	c := NewHeaderCache(nil, nil)

	h, err := c.Header(context.Background(), src)
	require.NoError(t, err)
	h[0] = "mutated"

	h, err = c.Header(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, "design", h[0])
}

func TestHeaderCache_ModTimeChangeRereads(t *testing.T) {
	src, path := fileSource(t)
	c := NewHeaderCache(nil, nil)

	_, err := c.Header(context.Background(), src)
	require.NoError(t, err)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	_, err = c.Header(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, src.HeaderReads())
}

func TestHeaderCache_Invalidate(t *testing.T) {
	src, path := fileSource(t)
	c := NewHeaderCache(nil, nil)

	_, err := c.Header(context.Background(), src)
	require.NoError(t, err)
	c.Invalidate(path)
	assert.Zero(t, c.Len())

	_, err = c.Header(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, src.HeaderReads())
}

func TestHeaderCache_UnstattableBypasses(t *testing.T) {
	src := testkit.ExampleMu()
	m := metrics.New()
	c := NewHeaderCache(m, nil)

	for i := 0; i < 2; i++ {
		_, err := c.Header(context.Background(), src)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, src.HeaderReads())
	assert.Zero(t, c.Len())
	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "genexplorer_header_cache_lookups_total"))
}

// slowSource blocks header reads until released or its read context ends
type slowSource struct {
	*testkit.MemorySource
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (s *slowSource) ReadHeader(ctx context.Context) ([]string, error) {
	s.once.Do(func() { close(s.started) })
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.release:
	}
	return s.MemorySource.ReadHeader(ctx)
}

func TestHeaderCache_CancelledCallerDoesNotFailOthers(t *testing.T) {
	mem, _ := fileSource(t)
	src := &slowSource{MemorySource: mem, started: make(chan struct{}), release: make(chan struct{})}
	c := NewHeaderCache(nil, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Header(firstCtx, src)
		firstErr <- err
	}()
	<-src.started

	type result struct {
		header []string
		err    error
	}
	second := make(chan result, 1)
	go func() {
		h, err := c.Header(context.Background(), src)
		second <- result{h, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(src.release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, []string{"design", "A", "group", "size"}, got.header)
	assert.Equal(t, 1, mem.HeaderReads())
	assert.Equal(t, 1, c.Len())
}

func TestHeaderCache_Concurrent(t *testing.T) {
	src, _ := fileSource(t)
	c := NewHeaderCache(nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := c.Header(context.Background(), src)
			assert.NoError(t, err)
			assert.Len(t, h, 4)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, src.HeaderReads(), 16)
	assert.Equal(t, 1, c.Len())
}

func TestWatcher_InvalidatesOnWrite(t *testing.T) {
	defer goleak.VerifyNone(t)
	src, path := fileSource(t)
	c := NewHeaderCache(nil, nil)
	_, err := c.Header(context.Background(), src)
	require.NoError(t, err)

	w, err := NewWatcher(c, nil, path)
	require.NoError(t, err)
	invalidated := make(chan string, 4)
	w.OnInvalidate = func(p string) { invalidated <- p }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Close()

	require.NoError(t, testkit.WriteCSV(path, []string{"design", "B", "group", "size"}, nil))

	select {
	case p := <-invalidated:
		assert.Equal(t, path, p)
	case <-time.After(5 * time.Second):
		t.Fatal("no invalidation after write")
	}
	assert.Zero(t, c.Len())
}
