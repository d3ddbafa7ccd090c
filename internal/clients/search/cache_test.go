package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"TikTokFactCheck/internal/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSearcher struct {
	calls   int
	results []Result
	err     error
}

func (s *countingSearcher) Text(_ context.Context, _ string, _ int) ([]Result, error) {
	s.calls++
	return s.results, s.err
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCachedSearcher_HitAfterMiss(t *testing.T) {
	mr, rdb := newTestRedis(t)
	next := &countingSearcher{results: []Result{{Title: "t", Href: "https://x.fr", Body: "b"}}}
	c := NewCachedSearcher(next, rdb, time.Hour, logger.NewNop())

	first, err := c.Text(context.Background(), "claim", 3)
	require.NoError(t, err)
	second, err := c.Text(context.Background(), "claim", 3)
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists(CacheKey("claim", 3)))
	assert.Equal(t, time.Hour, mr.TTL(CacheKey("claim", 3)))
}

func TestCachedSearcher_DifferentMaxIsDifferentKey(t *testing.T) {
	_, rdb := newTestRedis(t)
	next := &countingSearcher{}
	c := NewCachedSearcher(next, rdb, time.Minute, nil)

	_, _ = c.Text(context.Background(), "claim", 3)
	_, _ = c.Text(context.Background(), "claim", 5)
	assert.Equal(t, 2, next.calls)
}

func TestCachedSearcher_ErrorNotCached(t *testing.T) {
	mr, rdb := newTestRedis(t)
	next := &countingSearcher{err: errors.New("boom")}
	c := NewCachedSearcher(next, rdb, time.Minute, nil)

	_, err := c.Text(context.Background(), "claim", 3)
	require.Error(t, err)
	assert.False(t, mr.Exists(CacheKey("claim", 3)))
}

func TestCachedSearcher_RedisDownFallsThrough(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()
	next := &countingSearcher{results: []Result{{Title: "t"}}}
	c := NewCachedSearcher(next, rdb, time.Minute, nil)

	results, err := c.Text(context.Background(), "claim", 3)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
