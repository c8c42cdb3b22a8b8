package quizgen

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bloomforge/internal/domain"
	"bloomforge/internal/generator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const notes = `Photosynthesis is a process used by plants to convert light energy into chemical energy.
Chlorophyll refers to the green pigment that absorbs light energy in plants. The chemical energy is stored
in glucose molecules! Respiration means releasing the stored energy from glucose. Why do plants need light?`

type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockTextGenerator) Name() string { return "mock/model" }

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func newOrchestrator(llm domain.TextGenerator, opts ...Option) *Orchestrator {
	return NewOrchestrator(llm, generator.MustNew(), nil, opts...)
}

func input(count int) domain.GenerationInput {
	return domain.GenerationInput{
		Content:      notes,
		Requirements: domain.Requirements{QuestionCount: count, UseAI: true},
	}
}

const twoQuestions = `{
  "questions": [
    {"type": "multiple-choice", "bloomLevel": "REMEMBER", "difficulty": "easy",
     "content": "What pigment absorbs light?", "options": ["A) Chlorophyll", "B) Glucose", "C) Water", "D) Oxygen"],
     "correctAnswer": "A", "explanation": "Chlorophyll absorbs light."},
    {"type": "essay", "bloomLevel": "evaluate", "content": "Evaluate the role of light {energy} in plants.",
     "options": [], "answer": "Light drives photosynthesis."}
  ],
  "summary": {"totalQuestions": 2}
}`

func TestOrchestrator_TopsUpShortfall(t *testing.T) {
	llm := new(MockTextGenerator)
	llm.On("Generate", mock.Anything, mock.Anything).Return(twoQuestions, nil)

	qs, err := newOrchestrator(llm).GenerateQuestions(context.Background(), input(5))
	require.NoError(t, err)
	require.Len(t, qs, 5)

	assert.Equal(t, domain.OriginAI, qs[0].Source)
	assert.Equal(t, []string{"Chlorophyll", "Glucose", "Water", "Oxygen"}, qs[0].Options)
	assert.Equal(t, "Chlorophyll", qs[0].Answer)
	assert.Equal(t, domain.Easy, qs[0].Difficulty)
	assert.Equal(t, 1, qs[0].Marks)

	assert.Equal(t, domain.Evaluate, qs[1].BloomLevel)
	assert.Equal(t, "CO5", qs[1].BloomCode)
	assert.Equal(t, "Light drives photosynthesis.", qs[1].Answer)
	assert.Equal(t, 12, qs[1].Marks, "marks come from the formula")

	// Top-up cycles the Bloom levels from REMEMBER.
	assert.Equal(t, domain.OriginRuleBased, qs[2].Source)
	assert.Equal(t, domain.Remember, qs[2].BloomLevel)
	assert.Equal(t, domain.Understand, qs[3].BloomLevel)

	ids := map[string]bool{}
	for _, q := range qs {
		assert.NoError(t, q.Validate())
		ids[q.ID] = true
	}
	assert.Len(t, ids, 5)
}

func TestOrchestrator_TrueFalseVerdictWithPunctuation(t *testing.T) {
	reply := `{"questions": [
	  {"type": "true-false", "bloomLevel": "REMEMBER", "content": "True or False: Glucose absorbs light.",
	   "correctAnswer": "False.", "answer": "False"},
	  {"type": "true-false", "bloomLevel": "REMEMBER", "content": "True or False: Chlorophyll absorbs light.",
	   "correctAnswer": "Incorrect"}
	]}`
	llm := new(MockTextGenerator)
	llm.On("Generate", mock.Anything, mock.Anything).Return(reply, nil)

	qs, err := newOrchestrator(llm).GenerateQuestions(context.Background(), input(2))
	require.NoError(t, err)
	require.Len(t, qs, 2)
	for _, q := range qs {
		assert.Equal(t, "False", q.CorrectAnswer)
		assert.Equal(t, "False", q.Answer)
		assert.Contains(t, q.Explanation, "not supported")
	}
}

func TestOrchestrator_MultipleChoiceWithoutOptionsKeepsModelAnswer(t *testing.T) {
	reply := `{"questions": [
	  {"type": "multiple-choice", "bloomLevel": "REMEMBER", "content": "Which pigment absorbs light?",
	   "correctAnswer": "Chlorophyll"},
	  {"type": "multiple-choice", "bloomLevel": "REMEMBER", "content": "Which molecule stores energy?",
	   "correctAnswer": "B"}
	]}`
	llm := new(MockTextGenerator)
	llm.On("Generate", mock.Anything, mock.Anything).Return(reply, nil)

	qs, err := newOrchestrator(llm).GenerateQuestions(context.Background(), input(2))
	require.NoError(t, err)
	require.Len(t, qs, 2)

	assert.Equal(t, "Chlorophyll", qs[0].Answer)
	assert.Contains(t, qs[0].Options, "Chlorophyll")

	require.NotEmpty(t, qs[1].Options)
	assert.Equal(t, qs[1].Options[0], qs[1].Answer)
	assert.NotEqual(t, "B", qs[1].CorrectAnswer)
}

func TestOrchestrator_AnalysesHeaderFreeText(t *testing.T) {
	llm := new(MockTextGenerator)
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "--- Document: notes.pdf ---")
	})).Return(`{"questions": []}`, nil)

	in := input(3)
	in.MultiDocument = true
	in.AnalysisContent = notes + "\n\n" + notes
	in.Content = "--- Document: notes.pdf ---\n" + notes + "\n\n--- Document: notes.pdf ---\n" + notes
	qs, err := newOrchestrator(llm).GenerateQuestions(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, qs, 3)
	for _, q := range qs {
		assert.NotContains(t, strings.ToLower(q.Content), "pdf")
		for _, opt := range q.Options {
			assert.NotContains(t, strings.ToLower(opt), "document (")
		}
	}
	llm.AssertExpectations(t)
}

func TestOrchestrator_TruncatesExcess(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"questions": [`)
	for i := 0; i < 6; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"type":"short-answer","bloomLevel":"APPLY","content":"Apply idea ` + string(rune('a'+i)) + `","answer":"x"}`)
	}
	b.WriteString(`]}`)

	llm := new(MockTextGenerator)
	llm.On("Generate", mock.Anything, mock.Anything).Return(b.String(), nil)

	qs, err := newOrchestrator(llm).GenerateQuestions(context.Background(), input(4))
	require.NoError(t, err)
	require.Len(t, qs, 4)
	assert.Equal(t, "Apply idea a", qs[0].Content)
	assert.Equal(t, "Apply idea d", qs[3].Content)
}

func TestOrchestrator_StripsThinkingAndProse(t *testing.T) {
	reply := "<think>The user wants {json}.</think>\nSure! Here you go:\n```json\n" + twoQuestions + "\n```\nHope this helps {:}"
	llm := new(MockTextGenerator)
	llm.On("Generate", mock.Anything, mock.Anything).Return(reply, nil)

	qs, err := newOrchestrator(llm).GenerateQuestions(context.Background(), input(2))
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "What pigment absorbs light?", qs[0].Content)
}

func TestOrchestrator_TextScanRepair(t *testing.T) {
	reply := `Here are your questions.

1. Which pigment absorbs light energy
   in green plants?
A) Chlorophyll
B) Glucose
C) Starch
D) Oxygen
Answer: A
Bloom Level: REMEMBER

2. Explain why plants need light.
Answer: Light provides the energy for photosynthesis.`

	llm := new(MockTextGenerator)
	llm.On("Generate", mock.Anything, mock.Anything).Return(reply, nil)

	qs, err := newOrchestrator(llm).GenerateQuestions(context.Background(), input(10))
	require.NoError(t, err)
	require.Len(t, qs, 2, "text repair path does not top up")

	assert.Equal(t, domain.OriginTextScan, qs[0].Source)
	assert.Equal(t, "Which pigment absorbs light energy in green plants?", qs[0].Content)
	assert.Equal(t, domain.MultipleChoice, qs[0].Type)
	assert.Equal(t, "Chlorophyll", qs[0].Answer)
	assert.Equal(t, domain.Remember, qs[0].BloomLevel)

	assert.Equal(t, domain.ShortAnswer, qs[1].Type)
	assert.Equal(t, "Light provides the energy for photosynthesis.", qs[1].Answer)
}

func TestOrchestrator_UnusableReplyYieldsFallbackQuestion(t *testing.T) {
	for _, reply := range []string{"", "I'm sorry, I can't help with that.", `{"questions": [`} {
		llm := new(MockTextGenerator)
		llm.On("Generate", mock.Anything, mock.Anything).Return(reply, nil)

		qs, err := newOrchestrator(llm).GenerateQuestions(context.Background(), input(5))
		require.NoError(t, err, reply)
		require.Len(t, qs, 1)
		assert.Equal(t, domain.OriginFallback, qs[0].Source)
		assert.NoError(t, qs[0].Validate())
	}
}

func TestOrchestrator_CallFailureIsTyped(t *testing.T) {
	llm := new(MockTextGenerator)
	llm.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("401 unauthorized"))

	qs, err := newOrchestrator(llm).GenerateQuestions(context.Background(), input(5))
	assert.Nil(t, qs)
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeAIGenerationFailed))
	assert.Contains(t, err.Error(), "401 unauthorized")
}

func TestOrchestrator_Timeout(t *testing.T) {
	llm := new(MockTextGenerator)
	llm.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return("", context.DeadlineExceeded)

	_, err := newOrchestrator(llm, WithTimeout(10*time.Millisecond)).GenerateQuestions(context.Background(), input(3))
	require.Error(t, err)
	assert.True(t, domain.HasCode(err, domain.CodeAIGenerationFailed))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOrchestrator_DedupeBeforeTopUp(t *testing.T) {
	reply := `{"questions":[
	  {"type":"short-answer","bloomLevel":"REMEMBER","content":"Define photosynthesis.","answer":"a"},
	  {"type":"short-answer","bloomLevel":"REMEMBER","content":"What is photosynthesis?","answer":"b"},
	  {"type":"short-answer","bloomLevel":"APPLY","content":"Apply photosynthesis to farming.","answer":"c"}
	]}`
	llm := new(MockTextGenerator)
	llm.On("Generate", mock.Anything, mock.Anything).Return(reply, nil)

	emb := new(MockEmbedder)
	emb.On("Generate", mock.Anything, "Define photosynthesis.").Return([]float32{1, 0}, nil)
	emb.On("Generate", mock.Anything, "What is photosynthesis?").Return([]float32{0.99, 0.05}, nil)
	emb.On("Generate", mock.Anything, "Apply photosynthesis to farming.").Return([]float32{0, 1}, nil)

	o := newOrchestrator(llm, WithDeduplicator(NewDeduplicator(emb, 0.9, nil)))
	qs, err := o.GenerateQuestions(context.Background(), input(3))
	require.NoError(t, err)
	require.Len(t, qs, 3)

	assert.Equal(t, "Define photosynthesis.", qs[0].Content)
	assert.Equal(t, "Apply photosynthesis to farming.", qs[1].Content)
	assert.Equal(t, domain.OriginRuleBased, qs[2].Source, "the dropped duplicate is refilled")
}

func TestDeduplicator_EmbeddingFailureKeepsAll(t *testing.T) {
	emb := new(MockEmbedder)
	emb.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("no embedder"))

	in := []domain.Question{{Content: "a"}, {Content: "a"}}
	assert.Len(t, NewDeduplicator(emb, 0.5, nil).Filter(context.Background(), in), 2)

	var nilDedupe *Deduplicator
	assert.Len(t, nilDedupe.Filter(context.Background(), in), 2)
}

func TestOrchestrator_Probe(t *testing.T) {
	llm := new(MockTextGenerator)
	llm.On("Generate", mock.Anything, mock.Anything).Return(`{"status":"ok"}`, nil)
	assert.NoError(t, newOrchestrator(llm).Probe(context.Background()))
	assert.Equal(t, "mock/model", newOrchestrator(llm).Name())
}
