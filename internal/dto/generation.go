package dto

import (
	"time"

	"bloomforge/internal/domain"
)

// RequirementsRequest carries the generation parameters as sent by clients.
// UseAI is a pointer so an omitted field can default to true.
type RequirementsRequest struct {
	QuestionCount     int      `json:"questionCount"`
	QuestionTypes     []string `json:"questionTypes"`
	BloomDistribution string   `json:"bloomDistribution"`
	Difficulty        string   `json:"difficulty"`
	UseAI             *bool    `json:"useAI"`
	CourseOutcomes    []string `json:"courseOutcomes"`
}

// GenerateQuestionsRequest is the body of POST /api/generate-questions.
// @Description Request body for question generation
type GenerateQuestionsRequest struct {
	SessionID    string              `json:"sessionId"`
	Requirements RequirementsRequest `json:"requirements"`
}

// GenerateQuestionsResponse is the body returned by POST /api/generate-questions.
// @Description Generated questions
type GenerateQuestionsResponse struct {
	SessionID string `json:"sessionId"`
	*domain.GenerationResult
}

// AIStatusResponse is returned by GET /api/ai-status.
type AIStatusResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
	Provider  string `json:"provider,omitempty"`
}

// QuestionSetResponse is a persisted generation result.
type QuestionSetResponse struct {
	ID               string              `json:"id"`
	SessionID        string              `json:"sessionId"`
	GenerationMethod string              `json:"generationMethod"`
	Requirements     domain.Requirements `json:"requirements"`
	Questions        []domain.Question   `json:"questions"`
	TotalQuestions   int                 `json:"totalQuestions"`
	TotalMarks       int                 `json:"totalMarks"`
	CreatedAt        time.Time           `json:"createdAt"`
}

// QuestionSetListResponse is returned by GET /api/question-sets/:sessionId.
type QuestionSetListResponse struct {
	SessionID    string                `json:"sessionId"`
	QuestionSets []QuestionSetResponse `json:"questionSets"`
	Total        int                   `json:"total"`
}

// NewQuestionSetResponse maps a persisted set to its response shape.
func NewQuestionSetResponse(set *domain.QuestionSet) QuestionSetResponse {
	return QuestionSetResponse{
		ID:               set.ID,
		SessionID:        set.SessionID,
		GenerationMethod: set.GenerationMethod,
		Requirements:     set.Requirements,
		Questions:        set.Questions,
		TotalQuestions:   len(set.Questions),
		TotalMarks:       set.TotalMarks,
		CreatedAt:        set.CreatedAt,
	}
}
