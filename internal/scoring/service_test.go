package scoring

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalneeds/leadflow-backend/pkg/logger"
)

type fakeAnalyzer struct {
	analysis *Analysis
	err      error
	calls    int
}

func (f *fakeAnalyzer) Analyze(context.Context, string) (*Analysis, error) {
	f.calls++
	return f.analysis, f.err
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*Analysis
	getErr  error
	setErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*Analysis)}
}

func (m *memoryCache) Get(_ context.Context, ref string) (*Analysis, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	a, ok := m.entries[ref]
	return a, ok, nil
}

func (m *memoryCache) Set(_ context.Context, ref string, a *Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[ref] = a
	return nil
}

func TestService_Analyze_CachesResult(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: &Analysis{TrustScore: 48}}
	svc := NewService(analyzer, newMemoryCache(), logger.Nop())

	first, err := svc.Analyze(context.Background(), "https://utfs.io/f/a.png")
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), "https://utfs.io/f/a.png")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, analyzer.calls)

	_, err = svc.Analyze(context.Background(), "https://utfs.io/f/b.png")
	require.NoError(t, err)
	assert.Equal(t, 2, analyzer.calls)
}

func TestService_Analyze_CacheErrorsIgnored(t *testing.T) {
	cache := newMemoryCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	analyzer := &fakeAnalyzer{analysis: &Analysis{TrustScore: 80}}
	svc := NewService(analyzer, cache, logger.Nop())

	a, err := svc.Analyze(context.Background(), "https://utfs.io/f/a.png")
	require.NoError(t, err)
	assert.Equal(t, 80, a.TrustScore)
}

func TestService_Analyze_FailureNotCached(t *testing.T) {
	cache := newMemoryCache()
	analyzer := &fakeAnalyzer{err: ErrAnalysisFailed}
	svc := NewService(analyzer, cache, logger.Nop())

	_, err := svc.Analyze(context.Background(), "https://utfs.io/f/a.png")
	assert.ErrorIs(t, err, ErrAnalysisFailed)
	assert.Empty(t, cache.entries)
}

func TestService_NilCache(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: &Analysis{TrustScore: 10}}
	svc := NewService(analyzer, nil, logger.Nop())

	_, _ = svc.Analyze(context.Background(), "x")
	_, _ = svc.Analyze(context.Background(), "x")
	assert.Equal(t, 2, analyzer.calls)
}

func TestCacheKey(t *testing.T) {
	k := CacheKey("https://utfs.io/f/a.png")
	assert.Len(t, k, len(cachePrefix)+64)
	assert.Equal(t, k, CacheKey("https://utfs.io/f/a.png"))
	assert.NotEqual(t, k, CacheKey("https://utfs.io/f/b.png"))
}
