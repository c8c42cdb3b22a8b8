package embedding

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"testing"
	"time"

	"bloomforge/internal/adapter/rediscache"
	"bloomforge/internal/cache"
	"bloomforge/internal/config"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEmbedder is a mock type for the embeddings.Embedder interface
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func TestService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockEmb := new(MockEmbedder)
		svc := &Service{embedder: mockEmb, source: "ollama"}
		mockEmb.On("EmbedQuery", ctx, "test text").Return([]float32{0.1, 0.2, 0.3}, nil).Once()

		vec, err := svc.Generate(ctx, "test text")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
		mockEmb.AssertExpectations(t)
	})

	t.Run("empty text", func(t *testing.T) {
		svc := &Service{embedder: new(MockEmbedder), source: "ollama"}
		_, err := svc.Generate(ctx, "")
		assert.ErrorContains(t, err, "input text cannot be empty")
	})

	t.Run("embedder error", func(t *testing.T) {
		mockEmb := new(MockEmbedder)
		svc := &Service{embedder: mockEmb, source: "ollama"}
		embedderErr := errors.New("ollama failed")
		mockEmb.On("EmbedQuery", ctx, "test text").Return(nil, embedderErr).Once()

		_, err := svc.Generate(ctx, "test text")
		assert.ErrorIs(t, err, embedderErr)
		assert.ErrorContains(t, err, "failed to generate embedding using ollama")
	})
}

func encode(t *testing.T, vec []float32) string {
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(vec))
	return buf.String()
}

func TestCached_MissThenHit(t *testing.T) {
	ctx := context.Background()
	db, rmock := redismock.NewClientMock()
	mockEmb := new(MockEmbedder)
	inner := &Service{embedder: mockEmb, source: "ollama"}
	c := NewCached(inner, "ollama", rediscache.New(db), time.Hour)

	vec := []float32{1, 2, 3}
	key := cache.EmbeddingKey("ollama", "question text")

	rmock.ExpectGet(key).SetErr(redis.Nil)
	rmock.ExpectSet(key, encode(t, vec), time.Hour).SetVal("OK")
	mockEmb.On("EmbedQuery", ctx, "question text").Return(vec, nil).Once()

	got, err := c.Generate(ctx, "question text")
	require.NoError(t, err)
	assert.Equal(t, vec, got)

	rmock.ExpectGet(key).SetVal(encode(t, vec))
	got, err = c.Generate(ctx, "question text")
	require.NoError(t, err)
	assert.Equal(t, vec, got)

	assert.NoError(t, rmock.ExpectationsWereMet())
	mockEmb.AssertExpectations(t)
}

func TestCached_UpstreamError(t *testing.T) {
	ctx := context.Background()
	db, rmock := redismock.NewClientMock()
	mockEmb := new(MockEmbedder)
	c := NewCached(&Service{embedder: mockEmb, source: "openai"}, "openai", rediscache.New(db), 0)

	key := cache.EmbeddingKey("openai", "x")
	rmock.ExpectGet(key).SetErr(redis.Nil)
	mockEmb.On("EmbedQuery", ctx, "x").Return(nil, errors.New("rate limited")).Once()

	_, err := c.Generate(ctx, "x")
	assert.ErrorContains(t, err, "rate limited")
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestNew(t *testing.T) {
	svc, err := New(config.EmbeddingConfig{Source: "none"}, config.LLMConfig{}, nil)
	assert.NoError(t, err)
	assert.Nil(t, svc)

	_, err = New(config.EmbeddingConfig{Source: "word2vec"}, config.LLMConfig{}, nil)
	assert.Error(t, err)

	_, err = New(config.EmbeddingConfig{Source: "openai"}, config.LLMConfig{}, nil)
	assert.ErrorContains(t, err, "API key cannot be empty")
}
