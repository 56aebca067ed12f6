package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"docvault-go/pkg/log"
)

// cachedClient wraps a Client with a Redis vector cache. Repeated queries
// for the same text skip the provider round-trip; cache misses or Redis
// failures fall through to the inner client.
type cachedClient struct {
	inner Client
	rdb   *redis.Client
	ttl   time.Duration
}

// NewCached decorates inner with a Redis-backed cache. Keys include the
// model name, so a model change invalidates every cached vector.
func NewCached(inner Client, rdb *redis.Client, ttl time.Duration) Client {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &cachedClient{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *cachedClient) Model() string {
	return c.inner.Model()
}

func (c *cachedClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var vector []float32
		if err := json.Unmarshal(raw, &vector); err == nil && len(vector) > 0 {
			return vector, nil
		}
		// Corrupt entry; drop it and re-embed.
		_ = c.rdb.Del(ctx, key).Err()
	}

	vector, err := c.inner.CreateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(vector); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			log.Warnf("[EmbeddingCache] failed to cache vector: %v", err)
		}
	}
	return vector, nil
}

func (c *cachedClient) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(c.inner.Model() + "\x00" + text))
	return fmt.Sprintf("embed:%x", sum)
}
