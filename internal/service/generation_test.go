package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bloomforge/internal/domain"
	"bloomforge/internal/generator"
	"bloomforge/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSessionWith(t *testing.T, store domain.SessionStore, content ...string) string {
	t.Helper()
	docs := make([]domain.Document, 0, len(content))
	for i, c := range content {
		docs = append(docs, domain.Document{ID: string(rune('a' + i)), FileName: "doc.pdf", Content: c})
	}
	id := "01HZX3J5Q8M8W7K4T2C9D6B1AF"
	require.NoError(t, store.Create(context.Background(), domain.NewSession(id, len(docs) > 1, docs...)))
	return id
}

func countByLevel(questions []domain.Question) map[domain.BloomLevel]int {
	out := map[domain.BloomLevel]int{}
	for _, q := range questions {
		out[q.BloomLevel]++
	}
	return out
}

func TestGenerateQuestions_RuleBasedScenario(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, nil, nil)
	id := newSessionWith(t, store, photosynthesis)
	svc := NewGenerationService(store, generator.MustNew())

	res, err := svc.GenerateQuestions(context.Background(), id, domain.Requirements{
		QuestionCount:     6,
		BloomDistribution: "balanced",
		UseAI:             false,
	})
	require.NoError(t, err)
	assert.Equal(t, MethodRuleBased, res.GenerationMethod)
	assert.Equal(t, 9, res.TotalQuestions, "per-level ceilings overshoot and are not truncated")
	assert.Equal(t, map[domain.BloomLevel]int{
		domain.Remember: 2, domain.Understand: 2, domain.Apply: 2,
		domain.Analyze: 1, domain.Evaluate: 1, domain.Create: 1,
	}, countByLevel(res.Questions))
	for _, q := range res.Questions {
		assert.NotEmpty(t, q.Content)
		assert.NotEmpty(t, q.Answer)
		assert.Positive(t, q.Marks)
	}
	assert.Equal(t, domain.TotalMarks(res.Questions), res.TotalMarks)
	assert.False(t, res.IsMultiDocument)
	assert.Equal(t, 1, res.DocumentCount)
}

func TestGenerateQuestions_SessionNotFound(t *testing.T) {
	svc := NewGenerationService(session.NewMemoryStore(time.Hour, nil, nil), generator.MustNew())
	_, err := svc.GenerateQuestions(context.Background(), "01HZX3J5Q8M8W7K4T2C9D6B1AF", domain.Requirements{})
	assert.True(t, domain.HasCode(err, domain.CodeSessionNotFound))
}

func TestGenerateQuestions_AIPath(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, nil, nil)
	id := newSessionWith(t, store, photosynthesis, "Mitochondria release energy through respiration.")

	aiQuestions := []domain.Question{
		{ID: "q1", Type: domain.ShortAnswer, BloomLevel: domain.Remember, Content: "What is photosynthesis?", Answer: "A process", Marks: 2, Source: domain.OriginAI},
		{ID: "q2", Type: domain.Essay, BloomLevel: domain.Create, Content: "Design an experiment.", Answer: "An outline", Marks: 8, Source: domain.OriginAI},
	}
	ai := &MockAIGenerator{}
	ai.On("GenerateQuestions", mock.Anything, mock.MatchedBy(func(in domain.GenerationInput) bool {
		return in.MultiDocument && in.Requirements.QuestionCount == 2 && in.Distribution[domain.Remember] == 1
	})).Return(aiQuestions, nil).Once()

	svc := NewGenerationService(store, generator.MustNew(), WithAI(ai))
	res, err := svc.GenerateQuestions(context.Background(), id, domain.Requirements{QuestionCount: 2, UseAI: true})
	require.NoError(t, err)
	assert.Equal(t, MethodAI, res.GenerationMethod)
	assert.Equal(t, 2, res.TotalQuestions)
	assert.Equal(t, 10, res.TotalMarks)
	assert.True(t, res.IsMultiDocument)
	assert.Equal(t, 2, res.DocumentCount)
	ai.AssertExpectations(t)
}

func TestGenerateQuestions_MultiDocumentHeadersNotAnalysed(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, nil, nil)
	id := newSessionWith(t, store, photosynthesis, "Mitochondria release energy through respiration.")

	res, err := NewGenerationService(store, generator.MustNew()).GenerateQuestions(context.Background(), id, domain.Requirements{
		QuestionCount: 6,
		QuestionTypes: []domain.QuestionType{domain.MultipleChoice},
	})
	require.NoError(t, err)
	require.True(t, res.IsMultiDocument)
	for _, q := range res.Questions {
		for _, opt := range q.Options {
			assert.NotRegexp(t, `^(?i)(document|doc|pdf) \(`, opt)
		}
		assert.NotContains(t, strings.ToLower(q.Content), "pdf")
	}

	ai := &MockAIGenerator{}
	ai.On("GenerateQuestions", mock.Anything, mock.MatchedBy(func(in domain.GenerationInput) bool {
		return strings.Contains(in.Content, "--- Document: doc.pdf ---") &&
			!strings.Contains(in.AnalysisContent, "--- Document:") &&
			strings.Contains(in.AnalysisContent, "Mitochondria")
	})).Return([]domain.Question{
		{ID: "q1", Type: domain.ShortAnswer, BloomLevel: domain.Remember, Content: "What is photosynthesis?", Answer: "A process", Marks: 2, Source: domain.OriginAI},
	}, nil).Once()
	_, err = NewGenerationService(store, generator.MustNew(), WithAI(ai)).
		GenerateQuestions(context.Background(), id, domain.Requirements{QuestionCount: 1, UseAI: true})
	require.NoError(t, err)
	ai.AssertExpectations(t)
}

func TestGenerateQuestions_AIToppedUpIsMixed(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, nil, nil)
	id := newSessionWith(t, store, photosynthesis)

	ai := &MockAIGenerator{}
	ai.On("GenerateQuestions", mock.Anything, mock.Anything).Return([]domain.Question{
		{Type: domain.ShortAnswer, BloomLevel: domain.Remember, Content: "Q", Answer: "A", Marks: 2, Source: domain.OriginAI},
		{Type: domain.ShortAnswer, BloomLevel: domain.Apply, Content: "Q2", Answer: "A2", Marks: 4, Source: domain.OriginRuleBased},
	}, nil)

	res, err := NewGenerationService(store, generator.MustNew(), WithAI(ai)).
		GenerateQuestions(context.Background(), id, domain.Requirements{QuestionCount: 2, UseAI: true})
	require.NoError(t, err)
	assert.Equal(t, MethodAIRuleBased, res.GenerationMethod)
}

func TestGenerateQuestions_AIFailureFallsBack(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, nil, nil)
	id := newSessionWith(t, store, photosynthesis)

	ai := &MockAIGenerator{}
	ai.On("GenerateQuestions", mock.Anything, mock.Anything).
		Return(nil, domain.NewAIGenerationFailedError(errors.New("quota exceeded")))

	res, err := NewGenerationService(store, generator.MustNew(), WithAI(ai)).
		GenerateQuestions(context.Background(), id, domain.Requirements{QuestionCount: 6, UseAI: true})
	require.NoError(t, err)
	assert.Equal(t, MethodRuleBased, res.GenerationMethod)
	assert.Equal(t, 9, res.TotalQuestions)
}

func TestGenerateQuestions_UseAIFalseSkipsModel(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, nil, nil)
	id := newSessionWith(t, store, photosynthesis)
	ai := &MockAIGenerator{}

	res, err := NewGenerationService(store, generator.MustNew(), WithAI(ai)).
		GenerateQuestions(context.Background(), id, domain.Requirements{QuestionCount: 3, UseAI: false})
	require.NoError(t, err)
	assert.Equal(t, MethodRuleBased, res.GenerationMethod)
	ai.AssertNotCalled(t, "GenerateQuestions", mock.Anything, mock.Anything)
}

func TestGenerateQuestions_PersistsResult(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, nil, nil)
	id := newSessionWith(t, store, photosynthesis)

	bank := &MockQuestionBank{}
	bank.On("SaveQuestionSet", mock.Anything, mock.MatchedBy(func(set *domain.QuestionSet) bool {
		return set.SessionID == id && set.GenerationMethod == MethodRuleBased && len(set.Questions) == 9 && set.ID != ""
	})).Return(nil).Once()

	var cached string
	c := &ManualMockCache{SetFunc: func(_ context.Context, key, value string, ttl time.Duration) error {
		assert.Equal(t, "bloomforge:generation:result:"+id, key)
		assert.Equal(t, time.Hour, ttl)
		cached = value
		return nil
	}}

	svc := NewGenerationService(store, generator.MustNew(),
		WithQuestionBank(bank, noopTxForTest{}),
		WithResultCache(NewResultCacheService(c, time.Hour)))
	res, err := svc.GenerateQuestions(context.Background(), id, domain.Requirements{QuestionCount: 6})
	require.NoError(t, err)
	bank.AssertExpectations(t)

	var decoded domain.GenerationResult
	require.NoError(t, json.Unmarshal([]byte(cached), &decoded))
	assert.Equal(t, res.TotalQuestions, decoded.TotalQuestions)
}

func TestGenerateQuestions_PersistenceFailureIsNotFatal(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, nil, nil)
	id := newSessionWith(t, store, photosynthesis)

	bank := &MockQuestionBank{}
	bank.On("SaveQuestionSet", mock.Anything, mock.Anything).Return(errors.New("database is locked"))

	res, err := NewGenerationService(store, generator.MustNew(), WithQuestionBank(bank, noopTxForTest{})).
		GenerateQuestions(context.Background(), id, domain.Requirements{QuestionCount: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Questions)
}

type noopTxForTest struct{}

func (noopTxForTest) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type countingProbe struct {
	MockAIGenerator
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (c *countingProbe) Probe(ctx context.Context) error {
	c.calls.Add(1)
	<-c.release
	return c.err
}

func TestAIStatus(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, nil, nil)

	t.Run("not configured", func(t *testing.T) {
		st := NewGenerationService(store, generator.MustNew()).AIStatus(context.Background())
		assert.False(t, st.Available)
		assert.Empty(t, st.Provider)
	})

	t.Run("available", func(t *testing.T) {
		ai := &MockAIGenerator{}
		ai.On("Probe", mock.Anything).Return(nil)
		st := NewGenerationService(store, generator.MustNew(), WithAI(ai)).AIStatus(context.Background())
		assert.True(t, st.Available)
		assert.Equal(t, "mock/model", st.Provider)
	})

	t.Run("unavailable", func(t *testing.T) {
		ai := &MockAIGenerator{}
		ai.On("Probe", mock.Anything).Return(errors.New("401 unauthorized"))
		st := NewGenerationService(store, generator.MustNew(), WithAI(ai)).AIStatus(context.Background())
		assert.False(t, st.Available)
	})

	t.Run("concurrent probes are coalesced", func(t *testing.T) {
		probe := &countingProbe{release: make(chan struct{})}
		svc := NewGenerationService(store, generator.MustNew(), WithAI(probe))

		const callers = 5
		var wg sync.WaitGroup
		results := make([]bool, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = svc.AIStatus(context.Background()).Available
			}(i)
		}
		require.Eventually(t, func() bool { return probe.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		close(probe.release)
		wg.Wait()

		assert.Equal(t, int32(1), probe.calls.Load())
		for _, ok := range results {
			assert.True(t, ok)
		}
	})
}

func TestLatestQuestionSet_FallsBackToCache(t *testing.T) {
	store := session.NewMemoryStore(time.Hour, nil, nil)
	result := &domain.GenerationResult{
		Questions:        []domain.Question{{Content: "Q", Answer: "A", Marks: 2}},
		TotalQuestions:   1,
		TotalMarks:       2,
		GenerationMethod: MethodRuleBased,
	}
	data, err := json.Marshal(result)
	require.NoError(t, err)
	c := &ManualMockCache{GetFunc: func(context.Context, string) (string, error) { return string(data), nil }}

	svc := NewGenerationService(store, generator.MustNew(), WithResultCache(NewResultCacheService(c, time.Hour)))
	set, err := svc.LatestQuestionSet(context.Background(), "01HZX3J5Q8M8W7K4T2C9D6B1AF")
	require.NoError(t, err)
	assert.Len(t, set.Questions, 1)

	_, err = NewGenerationService(store, generator.MustNew()).LatestQuestionSet(context.Background(), "01HZX3J5Q8M8W7K4T2C9D6B1AF")
	assert.True(t, domain.HasCode(err, domain.CodeNotFound))
}

func TestListQuestionSets(t *testing.T) {
	bank := &MockQuestionBank{}
	bank.On("ListQuestionSets", mock.Anything, "s1", defaultListLimit).Return([]*domain.QuestionSet{{ID: "a"}}, nil)
	svc := NewGenerationService(session.NewMemoryStore(time.Hour, nil, nil), generator.MustNew(),
		WithQuestionBank(bank, noopTxForTest{}))

	sets, err := svc.ListQuestionSets(context.Background(), "s1", 0)
	require.NoError(t, err)
	assert.Len(t, sets, 1)

	bank2 := &MockQuestionBank{}
	bank2.On("ListQuestionSets", mock.Anything, "s1", 5).Return(nil, errors.New("closed"))
	_, err = NewGenerationService(session.NewMemoryStore(time.Hour, nil, nil), generator.MustNew(),
		WithQuestionBank(bank2, noopTxForTest{})).ListQuestionSets(context.Background(), "s1", 5)
	assert.True(t, domain.HasCode(err, domain.CodeInternal))
}
