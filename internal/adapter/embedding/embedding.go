// Package embedding produces text embeddings through langchaingo, optionally
// cached in domain.Cache.
package embedding

import (
	"context"
	"fmt"

	"bloomforge/internal/config"
	"bloomforge/internal/domain"

	"github.com/tmc/langchaingo/embeddings"
	ollamaLLM "github.com/tmc/langchaingo/llms/ollama"
	openaiLLM "github.com/tmc/langchaingo/llms/openai"
)

// Service implements domain.EmbeddingService with any langchaingo embedder.
type Service struct {
	embedder embeddings.Embedder
	source   string
}

// NewOllama creates an embedder backed by an Ollama server.
func NewOllama(serverURL, modelName string) (*Service, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("ollama server URL cannot be empty")
	}
	if modelName == "" {
		return nil, fmt.Errorf("ollama model name cannot be empty")
	}
	llm, err := ollamaLLM.New(
		ollamaLLM.WithModel(modelName),
		ollamaLLM.WithServerURL(serverURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo Ollama LLM client for embedder: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic embedder from Ollama LLM: %w", err)
	}
	return &Service{embedder: embedder, source: "ollama"}, nil
}

// NewOpenAI creates an embedder backed by the OpenAI API.
func NewOpenAI(apiKey, modelName string) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	if modelName == "" {
		modelName = "text-embedding-3-small"
	}
	llm, err := openaiLLM.New(
		openaiLLM.WithToken(apiKey),
		openaiLLM.WithEmbeddingModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo OpenAI LLM client for embedder: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic embedder from OpenAI LLM: %w", err)
	}
	return &Service{embedder: embedder, source: "openai"}, nil
}

var _ domain.EmbeddingService = (*Service)(nil)

// Source names the backing provider; it namespaces cache keys.
func (s *Service) Source() string { return s.source }

func (s *Service) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("input text cannot be empty for embedding")
	}
	vec, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding using %s: %w", s.source, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("received empty embedding from %s", s.source)
	}
	return vec, nil
}

// New builds the configured embedding source, wrapped in a cache when one is
// given. Source "none" yields nil and no error.
func New(cfg config.EmbeddingConfig, llmCfg config.LLMConfig, cache domain.Cache) (domain.EmbeddingService, error) {
	var (
		svc *Service
		err error
	)
	switch cfg.Source {
	case "", "none":
		return nil, nil
	case "ollama":
		svc, err = NewOllama(llmCfg.ServerURL, cfg.Model)
	case "openai":
		svc, err = NewOpenAI(llmCfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown embedding source %q", cfg.Source)
	}
	if err != nil {
		return nil, err
	}
	if cache == nil {
		return svc, nil
	}
	return NewCached(svc, svc.Source(), cache, cfg.CacheTTL), nil
}
