package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bloomforge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cacheSessionID = "01HZX3J5Q8M8W7K4T2C9D6B1AF"

func TestResultCacheService_Put(t *testing.T) {
	ctx := context.Background()
	ttl := 30 * time.Minute
	result := &domain.GenerationResult{
		Questions:        []domain.Question{{ID: "q1", Content: "What is chlorophyll?", Answer: "A pigment", Marks: 2}},
		TotalQuestions:   1,
		TotalMarks:       2,
		GenerationMethod: MethodRuleBased,
	}

	t.Run("success", func(t *testing.T) {
		mc := &ManualMockCache{SetFunc: func(_ context.Context, key, value string, exp time.Duration) error {
			assert.Equal(t, "bloomforge:generation:result:"+cacheSessionID, key)
			assert.Equal(t, ttl, exp)
			var got domain.GenerationResult
			require.NoError(t, json.Unmarshal([]byte(value), &got))
			assert.Equal(t, "What is chlorophyll?", got.Questions[0].Content)
			return nil
		}}
		assert.NoError(t, NewResultCacheService(mc, ttl).Put(ctx, cacheSessionID, result))
	})

	t.Run("nil result", func(t *testing.T) {
		err := NewResultCacheService(&ManualMockCache{}, ttl).Put(ctx, cacheSessionID, nil)
		assert.True(t, domain.HasCode(err, domain.CodeInvalidInput))
	})

	t.Run("cache error", func(t *testing.T) {
		mc := &ManualMockCache{SetFunc: func(context.Context, string, string, time.Duration) error {
			return errors.New("connection reset")
		}}
		err := NewResultCacheService(mc, ttl).Put(ctx, cacheSessionID, result)
		assert.True(t, domain.HasCode(err, domain.CodeInternal))
	})
}

func TestResultCacheService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("miss", func(t *testing.T) {
		mc := &ManualMockCache{GetFunc: func(context.Context, string) (string, error) { return "", domain.ErrCacheMiss }}
		_, err := NewResultCacheService(mc, time.Minute).Get(ctx, cacheSessionID)
		assert.ErrorIs(t, err, ErrResultNotFound)
	})

	t.Run("empty value", func(t *testing.T) {
		mc := &ManualMockCache{GetFunc: func(context.Context, string) (string, error) { return "", nil }}
		_, err := NewResultCacheService(mc, time.Minute).Get(ctx, cacheSessionID)
		assert.ErrorIs(t, err, ErrResultNotFound)
	})

	t.Run("corrupt value", func(t *testing.T) {
		mc := &ManualMockCache{GetFunc: func(context.Context, string) (string, error) { return "{not json", nil }}
		_, err := NewResultCacheService(mc, time.Minute).Get(ctx, cacheSessionID)
		assert.True(t, domain.HasCode(err, domain.CodeInternal))
	})

	t.Run("hit", func(t *testing.T) {
		mc := &ManualMockCache{GetFunc: func(context.Context, string) (string, error) {
			return `{"questions":[{"content":"Q","answer":"A","marks":3}],"totalQuestions":1,"totalMarks":3,"generationMethod":"ai"}`, nil
		}}
		got, err := NewResultCacheService(mc, time.Minute).Get(ctx, cacheSessionID)
		require.NoError(t, err)
		assert.Equal(t, MethodAI, got.GenerationMethod)
		assert.Equal(t, 3, got.TotalMarks)
	})
}

func TestResultCacheService_NilCacheIsNoop(t *testing.T) {
	svc := NewResultCacheService(nil, time.Minute)
	ctx := context.Background()

	assert.NoError(t, svc.Put(ctx, cacheSessionID, &domain.GenerationResult{}))
	_, err := svc.Get(ctx, cacheSessionID)
	assert.ErrorIs(t, err, ErrResultNotFound)
	assert.NoError(t, svc.Delete(ctx, cacheSessionID))
}
