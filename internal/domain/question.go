package domain

import (
	"context"
	"strings"
	"time"
)

// Question is the canonical exam question. Both AI and rule-based output are
// normalised into this shape before leaving the generation pipeline.
type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	BloomLevel    BloomLevel   `json:"bloomLevel"`
	BloomCode     string       `json:"bloomCode"`
	Difficulty    Difficulty   `json:"difficulty"`
	Content       string       `json:"content"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correctAnswer"`
	Explanation   string       `json:"explanation"`
	Answer        string       `json:"answer"`
	Marks         int          `json:"marks"`
	Source        Origin       `json:"source"`
}

// Origin tags where a question came from.
type Origin string

const (
	OriginAI        Origin = "ai"
	OriginRuleBased Origin = "rule-based"
	OriginTextScan  Origin = "ai-text"
	OriginFallback  Origin = "fallback"
)

// Validate checks the invariants every returned question must hold.
func (q *Question) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(q.Content) == "" {
		errs = append(errs, NewMissingFieldError("content"))
	}
	if strings.TrimSpace(q.Answer) == "" {
		errs = append(errs, NewMissingFieldError("answer"))
	}
	if !q.Type.Valid() {
		errs = append(errs, NewInvalidFormatError("type", q.Type))
	}
	if !q.BloomLevel.Valid() {
		errs = append(errs, NewInvalidFormatError("bloomLevel", q.BloomLevel))
	}
	if q.Marks <= 0 {
		errs = append(errs, NewInvalidFormatError("marks", q.Marks))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// TotalMarks sums the marks of a question list.
func TotalMarks(questions []Question) int {
	total := 0
	for _, q := range questions {
		total += q.Marks
	}
	return total
}

// Requirements are the caller's generation parameters.
type Requirements struct {
	QuestionCount     int            `json:"questionCount"`
	QuestionTypes     []QuestionType `json:"questionTypes"`
	BloomDistribution string         `json:"bloomDistribution"`
	Difficulty        Difficulty     `json:"difficulty"`
	UseAI             bool           `json:"useAI"`
	CourseOutcomes    []string       `json:"courseOutcomes"`
}

// Normalize fills defaults in place.
func (r *Requirements) Normalize() {
	if r.QuestionCount <= 0 {
		r.QuestionCount = 10
	}
	if len(r.QuestionTypes) == 0 {
		r.QuestionTypes = []QuestionType{MultipleChoice, ShortAnswer, Essay}
	}
	if r.BloomDistribution == "" {
		r.BloomDistribution = "balanced"
	}
	r.Difficulty = ParseDifficulty(string(r.Difficulty))
}

// GenerationResult is what a generation call hands back to the caller.
type GenerationResult struct {
	Questions        []Question `json:"questions"`
	TotalQuestions   int        `json:"totalQuestions"`
	TotalMarks       int        `json:"totalMarks"`
	GenerationMethod string     `json:"generationMethod"`
	IsMultiDocument  bool       `json:"isMultiDocument"`
	DocumentCount    int        `json:"documentCount"`
}

// QuestionSet is a persisted generation result.
type QuestionSet struct {
	ID               string
	SessionID        string
	GenerationMethod string
	Requirements     Requirements
	Questions        []Question
	TotalMarks       int
	CreatedAt        time.Time
}

// QuestionBankRepository persists generated question sets.
type QuestionBankRepository interface {
	SaveQuestionSet(ctx context.Context, set *QuestionSet) error
	ListQuestionSets(ctx context.Context, sessionID string, limit int) ([]*QuestionSet, error)
	GetLatestQuestionSet(ctx context.Context, sessionID string) (*QuestionSet, error)
	SaveExamPaper(ctx context.Context, sessionID string, paper *ExamPaper) error
}

// TransactionManager runs fn inside a database transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
