package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bloomforge/internal/cache"
	"bloomforge/internal/domain"
	"bloomforge/internal/logger"

	"go.uber.org/zap"
)

// ErrResultNotFound is returned when no generation result is cached for a session.
var ErrResultNotFound = errors.New("generation result not found in cache")

// ResultCacheService keeps the latest generation result of each session so
// an exam paper can be assembled without resending the questions.
type ResultCacheService interface {
	Put(ctx context.Context, sessionID string, result *domain.GenerationResult) error
	Get(ctx context.Context, sessionID string) (*domain.GenerationResult, error)
	Delete(ctx context.Context, sessionID string) error
}

type resultCacheServiceImpl struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewResultCacheService returns a no-op implementation when cache is nil.
func NewResultCacheService(c domain.Cache, ttl time.Duration) ResultCacheService {
	if c == nil {
		logger.Get().Debug("ResultCacheService initialized without cache, results will not be retained")
		return noopResultCacheService{}
	}
	return &resultCacheServiceImpl{cache: c, ttl: ttl}
}

func resultKey(sessionID string) string {
	return cache.GenerateCacheKey("generation", "result", sessionID)
}

func (s *resultCacheServiceImpl) Put(ctx context.Context, sessionID string, result *domain.GenerationResult) error {
	if result == nil {
		return domain.NewInvalidInputError("cannot cache nil result")
	}

	key := resultKey(sessionID)
	data, err := json.Marshal(result)
	if err != nil {
		return domain.NewInternalError("failed to marshal result for caching", err)
	}
	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		return domain.NewInternalError(fmt.Sprintf("failed to set generation result to cache for key %s", key), err)
	}
	logger.Get().Debug("Cached generation result", zap.String("key", key), zap.Duration("ttl", s.ttl))
	return nil
}

func (s *resultCacheServiceImpl) Get(ctx context.Context, sessionID string) (*domain.GenerationResult, error) {
	key := resultKey(sessionID)
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, ErrResultNotFound
		}
		return nil, domain.NewInternalError(fmt.Sprintf("failed to get generation result from cache for key %s", key), err)
	}
	if data == "" {
		return nil, ErrResultNotFound
	}

	var result domain.GenerationResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, domain.NewInternalError(fmt.Sprintf("failed to unmarshal result from cache for key %s", key), err)
	}
	return &result, nil
}

func (s *resultCacheServiceImpl) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, resultKey(sessionID))
}

type noopResultCacheService struct{}

func (noopResultCacheService) Put(context.Context, string, *domain.GenerationResult) error {
	return nil
}

func (noopResultCacheService) Get(context.Context, string) (*domain.GenerationResult, error) {
	return nil, ErrResultNotFound
}

func (noopResultCacheService) Delete(context.Context, string) error { return nil }
