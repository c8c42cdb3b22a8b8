// Package quizgen drives a remote generative model to produce exam questions
// and repairs whatever it answers with into canonical questions.
package quizgen

import (
	"context"
	"time"

	"bloomforge/internal/analysis"
	"bloomforge/internal/domain"
	"bloomforge/internal/generator"
	"bloomforge/internal/util"

	"go.uber.org/zap"
)

// Orchestrator implements domain.QuestionGenerationService.
type Orchestrator struct {
	llm     domain.TextGenerator
	synth   *generator.Synthesizer
	dedupe  *Deduplicator
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDeduplicator enables near-duplicate filtering before top-up.
func WithDeduplicator(d *Deduplicator) Option {
	return func(o *Orchestrator) { o.dedupe = d }
}

// WithTimeout bounds every model call.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

func NewOrchestrator(llm domain.TextGenerator, synth *generator.Synthesizer, logger *zap.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{llm: llm, synth: synth, logger: logger}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

var _ domain.QuestionGenerationService = (*Orchestrator)(nil)

// Name identifies the model behind the orchestrator.
func (o *Orchestrator) Name() string { return o.llm.Name() }

func (o *Orchestrator) GenerateQuestions(ctx context.Context, in domain.GenerationInput) ([]domain.Question, error) {
	req := in.Requirements
	req.Normalize()
	dist := in.Distribution
	if dist == nil {
		dist = generator.Distribution(req.BloomDistribution, req.QuestionCount)
	}

	raw, err := o.call(ctx, BuildPrompt(in.Content, req, dist, in.MultiDocument))
	if err != nil {
		return nil, domain.NewAIGenerationFailedError(err).WithContext("provider", o.llm.Name())
	}

	a := analysis.Analyze(in.AnalysisText())

	questions, perr := ParseResponse(raw, req.Difficulty, generator.Marks)
	if perr != nil {
		o.logger.Warn("Model reply is not valid JSON, scanning as text", zap.Error(perr), zap.Int("reply_length", len(raw)))
		questions = ScanText(raw, req.Difficulty)
		if len(questions) == 0 {
			o.logger.Warn("No questions recovered from model reply, using fallback question")
			questions = []domain.Question{o.fallbackQuestion(a, req, in.MultiDocument)}
		}
		return o.finish(questions, a), nil
	}

	questions = o.dedupe.Filter(ctx, questions)

	if short := req.QuestionCount - len(questions); short > 0 {
		o.logger.Info("Topping up model output with rule-based questions",
			zap.Int("returned", len(questions)), zap.Int("requested", req.QuestionCount))
		questions = append(questions, o.synth.TopUp(a, req, in.MultiDocument, short, len(questions))...)
	}
	if len(questions) > req.QuestionCount {
		questions = questions[:req.QuestionCount]
	}
	return o.finish(questions, a), nil
}

func (o *Orchestrator) call(ctx context.Context, prompt string) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	return o.llm.Generate(ctx, prompt)
}

// finish assigns ids and marks where missing and guarantees answers.
func (o *Orchestrator) finish(questions []domain.Question, a *analysis.Analysis) []domain.Question {
	for i := range questions {
		q := &questions[i]
		if q.ID == "" {
			q.ID = util.NewULID()
		}
		if q.Marks <= 0 {
			q.Marks = generator.Marks(q.BloomLevel, q.Difficulty, q.Type)
		}
		generator.CompleteAnswer(q, a)
	}
	return generator.EnsureAnswers(questions)
}

func (o *Orchestrator) fallbackQuestion(a *analysis.Analysis, req domain.Requirements, multi bool) domain.Question {
	q := o.synth.Question(a, domain.Understand, domain.ShortAnswer, req.Difficulty, multi, 0)
	q.Source = domain.OriginFallback
	return q
}

// Probe sends a trivial prompt to check the model is reachable.
func (o *Orchestrator) Probe(ctx context.Context) error {
	_, err := o.call(ctx, `Reply with the JSON object {"status":"ok"}.`)
	return err
}
