package domain

import "context"

// TextGenerator is the remote generative model: a prompt goes in, text comes out.
type TextGenerator interface {
	// Generate sends prompt to the model and returns its raw text reply.
	Generate(ctx context.Context, prompt string) (string, error)
	// Name identifies the provider and model for logs and status replies.
	Name() string
}

// GenerationInput is everything the AI orchestrator needs for one call.
type GenerationInput struct {
	Content string
	// AnalysisContent is Content without document headers. Content is
	// analysed when it is empty.
	AnalysisContent string
	Requirements    Requirements
	Distribution    map[BloomLevel]int
	MultiDocument   bool
}

// AnalysisText returns the text key terms should be drawn from.
func (in GenerationInput) AnalysisText() string {
	if in.AnalysisContent != "" {
		return in.AnalysisContent
	}
	return in.Content
}

// QuestionGenerationService produces exam questions from document content.
type QuestionGenerationService interface {
	// GenerateQuestions returns questions with answers already guaranteed.
	// A failed remote call is reported as an AI_GENERATION_FAILED DomainError;
	// unparseable replies are repaired rather than reported.
	GenerateQuestions(ctx context.Context, input GenerationInput) ([]Question, error)
}
