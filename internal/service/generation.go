package service

import (
	"context"
	"errors"
	"time"

	"bloomforge/internal/domain"
	"bloomforge/internal/dto"
	"bloomforge/internal/generator"
	"bloomforge/internal/logger"
	"bloomforge/internal/repository"
	"bloomforge/internal/telemetry"
	"bloomforge/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Generation methods reported to clients.
const (
	MethodAI          = "ai"
	MethodRuleBased   = "rule-based"
	MethodAIRuleBased = "ai+rule-based"
)

const (
	defaultProbeTimeout = 10 * time.Second
	defaultListLimit    = 20
)

// AIGenerator is a remote question generator that can be probed for
// availability. quizgen.Orchestrator implements it.
type AIGenerator interface {
	domain.QuestionGenerationService
	Probe(ctx context.Context) error
	Name() string
}

// GenerationService produces questions for a session.
type GenerationService interface {
	GenerateQuestions(ctx context.Context, sessionID string, req domain.Requirements) (*domain.GenerationResult, error)
	AIStatus(ctx context.Context) *dto.AIStatusResponse
	ListQuestionSets(ctx context.Context, sessionID string, limit int) ([]*domain.QuestionSet, error)
	LatestQuestionSet(ctx context.Context, sessionID string) (*domain.QuestionSet, error)
}

type generationService struct {
	sessions     domain.SessionStore
	synth        *generator.Synthesizer
	ai           AIGenerator
	bank         domain.QuestionBankRepository
	tx           domain.TransactionManager
	results      ResultCacheService
	probeTimeout time.Duration
	probes       singleflight.Group
}

// GenerationOption configures the generation service.
type GenerationOption func(*generationService)

// WithAI enables AI generation. A nil generator leaves it disabled.
func WithAI(ai AIGenerator) GenerationOption {
	return func(s *generationService) { s.ai = ai }
}

// WithQuestionBank persists every generation result.
func WithQuestionBank(bank domain.QuestionBankRepository, tx domain.TransactionManager) GenerationOption {
	return func(s *generationService) {
		s.bank = bank
		s.tx = tx
	}
}

// WithResultCache keeps the latest result of each session.
func WithResultCache(c ResultCacheService) GenerationOption {
	return func(s *generationService) { s.results = c }
}

// WithProbeTimeout bounds the ai-status probe.
func WithProbeTimeout(d time.Duration) GenerationOption {
	return func(s *generationService) { s.probeTimeout = d }
}

// NewGenerationService creates a GenerationService. Without options it runs
// rule-based only and persists nothing.
func NewGenerationService(sessions domain.SessionStore, synth *generator.Synthesizer, opts ...GenerationOption) GenerationService {
	s := &generationService{
		sessions:     sessions,
		synth:        synth,
		bank:         repository.NoopQuestionBank{},
		tx:           repository.NoopTransactionManager{},
		results:      noopResultCacheService{},
		probeTimeout: defaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *generationService) GenerateQuestions(ctx context.Context, sessionID string, req domain.Requirements) (result *domain.GenerationResult, err error) {
	ctx, span := telemetry.Start(ctx, "generation.generate",
		attribute.String("session.id", sessionID),
		attribute.Int("question.count", req.QuestionCount),
		attribute.Bool("use_ai", req.UseAI))
	defer func() { telemetry.End(span, err) }()

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	log := logger.ForSession(sessionID)

	req.Normalize()
	content := sess.Content()
	analysisText := sess.AnalysisText()
	multi := sess.IsMultiDocument()

	var questions []domain.Question
	method := MethodRuleBased

	if req.UseAI && s.ai != nil {
		aiQuestions, aiErr := s.generateWithAI(ctx, content, analysisText, req, multi)
		switch {
		case aiErr == nil:
			questions = aiQuestions
			method = aiMethod(aiQuestions)
		case domain.HasCode(aiErr, domain.CodeAIGenerationFailed):
			log.Warn("AI generation failed, falling back to rule-based generation",
				zap.String("provider", s.ai.Name()), zap.Error(aiErr))
		default:
			return nil, aiErr
		}
	} else if req.UseAI {
		log.Debug("AI generation requested but no model is configured")
	}

	if questions == nil {
		questions = s.generateRuleBased(ctx, analysisText, req, multi)
	}
	questions = generator.EnsureAnswers(questions)

	result = &domain.GenerationResult{
		Questions:        questions,
		TotalQuestions:   len(questions),
		TotalMarks:       domain.TotalMarks(questions),
		GenerationMethod: method,
		IsMultiDocument:  multi,
		DocumentCount:    len(sess.Documents),
	}
	span.SetAttributes(attribute.String("generation.method", method), attribute.Int("question.returned", len(questions)))

	s.persist(ctx, sessionID, req, result)

	log.Info("Questions generated",
		zap.String("method", method),
		zap.Int("requested", req.QuestionCount),
		zap.Int("returned", result.TotalQuestions),
		zap.Int("total_marks", result.TotalMarks))
	return result, nil
}

func (s *generationService) generateWithAI(ctx context.Context, content, analysisText string, req domain.Requirements, multi bool) (qs []domain.Question, err error) {
	ctx, span := telemetry.Start(ctx, "generation.ai", attribute.String("ai.provider", s.ai.Name()))
	defer func() { telemetry.End(span, err) }()

	return s.ai.GenerateQuestions(ctx, domain.GenerationInput{
		Content:         content,
		AnalysisContent: analysisText,
		Requirements:    req,
		Distribution:    generator.Distribution(req.BloomDistribution, req.QuestionCount),
		MultiDocument:   multi,
	})
}

func (s *generationService) generateRuleBased(ctx context.Context, content string, req domain.Requirements, multi bool) []domain.Question {
	_, span := telemetry.Start(ctx, "generation.rule_based")
	defer span.End()
	return s.synth.Generate(content, req, multi)
}

// aiMethod reports ai+rule-based when the model output was topped up or
// replaced with synthesised questions.
func aiMethod(questions []domain.Question) string {
	for _, q := range questions {
		if q.Source == domain.OriginRuleBased || q.Source == domain.OriginFallback {
			return MethodAIRuleBased
		}
	}
	return MethodAI
}

// persist stores the result in the question bank and the result cache.
// Failures are logged: the caller already has its questions.
func (s *generationService) persist(ctx context.Context, sessionID string, req domain.Requirements, result *domain.GenerationResult) {
	log := logger.ForSession(sessionID)

	set := &domain.QuestionSet{
		ID:               util.NewULID(),
		SessionID:        sessionID,
		GenerationMethod: result.GenerationMethod,
		Requirements:     req,
		Questions:        result.Questions,
		TotalMarks:       result.TotalMarks,
		CreatedAt:        time.Now(),
	}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return s.bank.SaveQuestionSet(ctx, set)
	})
	if err != nil {
		log.Error("Failed to persist question set", zap.String("question_set_id", set.ID), zap.Error(err))
	}

	if err := s.results.Put(ctx, sessionID, result); err != nil {
		log.Warn("Failed to cache generation result", zap.Error(err))
	}
}

// AIStatus probes the model with a trivial prompt. Concurrent callers share
// one probe, which runs detached from any single request's cancellation.
func (s *generationService) AIStatus(ctx context.Context) *dto.AIStatusResponse {
	if s.ai == nil {
		return &dto.AIStatusResponse{
			Available: false,
			Message:   "AI generation is not configured; rule-based generation will be used",
		}
	}

	ch := s.probes.DoChan("probe", func() (interface{}, error) {
		pctx, cancel := context.WithTimeout(context.Background(), s.probeTimeout)
		defer cancel()
		return nil, s.ai.Probe(pctx)
	})

	var err error
	select {
	case res := <-ch:
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		logger.Get().Warn("AI status probe failed", zap.String("provider", s.ai.Name()), zap.Error(err))
		return &dto.AIStatusResponse{
			Available: false,
			Message:   "AI service is unavailable; rule-based generation will be used",
			Provider:  s.ai.Name(),
		}
	}
	return &dto.AIStatusResponse{
		Available: true,
		Message:   "AI service is available",
		Provider:  s.ai.Name(),
	}
}

func (s *generationService) ListQuestionSets(ctx context.Context, sessionID string, limit int) ([]*domain.QuestionSet, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultListLimit
	}
	sets, err := s.bank.ListQuestionSets(ctx, sessionID, limit)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list question sets", err)
	}
	return sets, nil
}

func (s *generationService) LatestQuestionSet(ctx context.Context, sessionID string) (*domain.QuestionSet, error) {
	set, err := s.bank.GetLatestQuestionSet(ctx, sessionID)
	if err == nil {
		return set, nil
	}
	if !domain.HasCode(err, domain.CodeNotFound) {
		return nil, domain.NewInternalError("Failed to load question set", err)
	}

	// The bank may be disabled; the cached result still covers live sessions.
	cached, cerr := s.results.Get(ctx, sessionID)
	if cerr != nil {
		if !errors.Is(cerr, ErrResultNotFound) {
			logger.ForSession(sessionID).Warn("Failed to read cached generation result", zap.Error(cerr))
		}
		return nil, err
	}
	return &domain.QuestionSet{
		SessionID:        sessionID,
		GenerationMethod: cached.GenerationMethod,
		Questions:        cached.Questions,
		TotalMarks:       cached.TotalMarks,
	}, nil
}
