package llm

import (
	"context"
	"fmt"

	"bloomforge/internal/domain"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChain wraps any langchaingo model.
type LangChain struct {
	model       llms.Model
	name        string
	temperature float64
}

// NewLangChain wraps an already constructed model.
func NewLangChain(model llms.Model, name string, temperature float64) *LangChain {
	return &LangChain{model: model, name: name, temperature: temperature}
}

// NewOllama connects to an Ollama server.
func NewOllama(serverURL, modelName string, temperature float64) (*LangChain, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("ollama server URL cannot be empty")
	}
	if modelName == "" {
		return nil, fmt.Errorf("ollama model name cannot be empty")
	}
	m, err := ollama.New(
		ollama.WithModel(modelName),
		ollama.WithServerURL(serverURL),
		ollama.WithFormat("json"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo Ollama client: %w", err)
	}
	return NewLangChain(m, "ollama/"+modelName, temperature), nil
}

// NewOpenAI uses the OpenAI API through langchaingo.
func NewOpenAI(apiKey, modelName string, temperature float64) (*LangChain, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	m, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(modelName),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo OpenAI client: %w", err)
	}
	return NewLangChain(m, "openai/"+modelName, temperature), nil
}

var _ domain.TextGenerator = (*LangChain)(nil)

func (l *LangChain) Name() string { return l.name }

func (l *LangChain) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, l.model, prompt, llms.WithTemperature(l.temperature))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%s request timed out: %w", l.name, err)
		}
		return "", fmt.Errorf("%s request failed: %w", l.name, err)
	}
	return out, nil
}
