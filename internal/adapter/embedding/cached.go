package embedding

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"bloomforge/internal/cache"
	"bloomforge/internal/domain"
	"bloomforge/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultEmbeddingTTL = 168 * time.Hour

// Cached memoises another EmbeddingService in domain.Cache. Concurrent
// requests for the same text share one upstream call.
type Cached struct {
	next    domain.EmbeddingService
	source  string
	cache   domain.Cache
	ttl     time.Duration
	sfGroup singleflight.Group
}

func NewCached(next domain.EmbeddingService, source string, c domain.Cache, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = defaultEmbeddingTTL
	}
	return &Cached{next: next, source: source, cache: c, ttl: ttl}
}

var _ domain.EmbeddingService = (*Cached)(nil)

func (c *Cached) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("input text cannot be empty for embedding")
	}
	key := cache.EmbeddingKey(c.source, text)

	if raw, err := c.cache.Get(ctx, key); err == nil {
		var vec []float32
		if errDecode := gob.NewDecoder(bytes.NewReader([]byte(raw))).Decode(&vec); errDecode == nil && len(vec) > 0 {
			return vec, nil
		}
		logger.Get().Warn("Discarding undecodable cached embedding", zap.String("key", key))
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		logger.Get().Warn("Embedding cache read failed", zap.String("key", key), zap.Error(err))
	}

	res, err, _ := c.sfGroup.Do(key, func() (interface{}, error) {
		vec, err := c.next.Generate(ctx, text)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(vec); err != nil {
			return vec, nil
		}
		if err := c.cache.Set(ctx, key, buf.String(), c.ttl); err != nil {
			logger.Get().Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
		}
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	vec, ok := res.([]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight.Do for embedding: %T", res)
	}
	return vec, nil
}
