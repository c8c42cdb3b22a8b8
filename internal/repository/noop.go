package repository

import (
	"context"

	"bloomforge/internal/domain"
)

// NoopQuestionBank is used when persistence is disabled. Saves succeed
// without storing anything and reads find nothing.
type NoopQuestionBank struct{}

func (NoopQuestionBank) SaveQuestionSet(context.Context, *domain.QuestionSet) error { return nil }

func (NoopQuestionBank) ListQuestionSets(context.Context, string, int) ([]*domain.QuestionSet, error) {
	return []*domain.QuestionSet{}, nil
}

func (NoopQuestionBank) GetLatestQuestionSet(_ context.Context, sessionID string) (*domain.QuestionSet, error) {
	return nil, domain.NewNotFoundError("Question bank is disabled").WithContext("session_id", sessionID)
}

func (NoopQuestionBank) SaveExamPaper(context.Context, string, *domain.ExamPaper) error { return nil }

// NoopTransactionManager runs fn directly.
type NoopTransactionManager struct{}

func (NoopTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
