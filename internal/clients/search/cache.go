package search

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"TikTokFactCheck/internal/logger"

	"github.com/redis/go-redis/v9"
)

// CachedSearcher 以 Redis 快取包裝另一個 Searcher；快取失敗時直接查詢
type CachedSearcher struct {
	next Searcher
	rdb  redis.Cmdable
	ttl  time.Duration
	log  logger.Logger
}

// NewCachedSearcher 建立快取裝飾器
func NewCachedSearcher(next Searcher, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedSearcher {
	if log == nil {
		log = logger.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedSearcher{next: next, rdb: rdb, ttl: ttl, log: log}
}

// CacheKey 由查詢字串與筆數組出快取鍵
func CacheKey(query string, maxResults int) string {
	hash := sha256.Sum256([]byte(query))
	return fmt.Sprintf("search:%x:%d", hash[:12], maxResults)
}

// Text 實作 Searcher
func (c *CachedSearcher) Text(ctx context.Context, query string, maxResults int) ([]Result, error) {
	key := CacheKey(query, maxResults)

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []Result
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			c.log.Debug("[Search Cache] 命中快取", logger.String("key", key))
			return cached, nil
		}
		c.log.Warn("[Search Cache] 快取內容無法解析，改為重新查詢", logger.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("[Search Cache] 讀取快取失敗", logger.String("key", key), logger.Error(err))
	}

	results, err := c.next.Text(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(results)
	if err != nil {
		return results, nil
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warn("[Search Cache] 寫入快取失敗", logger.String("key", key), logger.Error(err))
	}
	return results, nil
}
