package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"bloomforge/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- ManualMockCache ---
type ManualMockCache struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func (m *ManualMockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", errors.New("GetFunc not set")
}

func (m *ManualMockCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	return errors.New("SetFunc not set")
}

func (m *ManualMockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return errors.New("DeleteFunc not set")
}

func (m *ManualMockCache) Ping(context.Context) error { return nil }

func (m *ManualMockCache) HGet(context.Context, string, string) (string, error) {
	return "", domain.ErrCacheMiss
}

func (m *ManualMockCache) HGetAll(context.Context, string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (m *ManualMockCache) HSet(context.Context, string, string, string) error { return nil }

func (m *ManualMockCache) HDel(context.Context, string, ...string) error { return nil }

func (m *ManualMockCache) Expire(context.Context, string, time.Duration) error { return nil }

// --- fakeExtractor ---
type fakeExtractor struct {
	mu    sync.Mutex
	calls int
	// byName returns a canned extraction or error per file name.
	byName map[string]extractResult
}

type extractResult struct {
	out *domain.Extraction
	err error
}

func (f *fakeExtractor) Extract(_ context.Context, upload domain.Upload) (*domain.Extraction, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if r, ok := f.byName[upload.FileName]; ok {
		return r.out, r.err
	}
	return &domain.Extraction{
		Content:        string(upload.Data),
		VisualElements: []domain.VisualElement{},
		FileType:       domain.FileTypePDF,
		MimeType:       "application/pdf",
		PageCount:      1,
	}, nil
}

// --- MockAIGenerator ---
type MockAIGenerator struct {
	mock.Mock
}

func (m *MockAIGenerator) GenerateQuestions(ctx context.Context, in domain.GenerationInput) ([]domain.Question, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Question), args.Error(1)
}

func (m *MockAIGenerator) Probe(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAIGenerator) Name() string { return "mock/model" }

// --- MockQuestionBank ---
type MockQuestionBank struct {
	mock.Mock
}

func (m *MockQuestionBank) SaveQuestionSet(ctx context.Context, set *domain.QuestionSet) error {
	args := m.Called(ctx, set)
	return args.Error(0)
}

func (m *MockQuestionBank) ListQuestionSets(ctx context.Context, sessionID string, limit int) ([]*domain.QuestionSet, error) {
	args := m.Called(ctx, sessionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.QuestionSet), args.Error(1)
}

func (m *MockQuestionBank) GetLatestQuestionSet(ctx context.Context, sessionID string) (*domain.QuestionSet, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuestionSet), args.Error(1)
}

func (m *MockQuestionBank) SaveExamPaper(ctx context.Context, sessionID string, paper *domain.ExamPaper) error {
	args := m.Called(ctx, sessionID, paper)
	return args.Error(0)
}

// --- fakeRenderer ---
type fakeRenderer struct {
	pdf  []byte
	err  error
	html string
}

func (f *fakeRenderer) RenderPDF(_ context.Context, html string) ([]byte, error) {
	f.html = html
	return f.pdf, f.err
}
