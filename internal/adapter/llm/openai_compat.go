package llm

import (
	"context"
	"fmt"

	"bloomforge/internal/domain"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are an expert educator who writes exam questions. Always answer with a single JSON object."

// OpenAICompatible targets any server speaking the OpenAI chat API, such as
// vLLM or LM Studio, and requests JSON-object replies.
type OpenAICompatible struct {
	api         *openai.Client
	model       string
	temperature float32
}

func NewOpenAICompatible(baseURL, apiKey, modelName string, temperature float64) (*OpenAICompatible, error) {
	if modelName == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAICompatible{
		api:         openai.NewClientWithConfig(cfg),
		model:       modelName,
		temperature: float32(temperature),
	}, nil
}

var _ domain.TextGenerator = (*OpenAICompatible)(nil)

func (o *OpenAICompatible) Name() string { return "openai-compatible/" + o.model }

func (o *OpenAICompatible) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: o.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
