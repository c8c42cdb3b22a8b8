package service

import (
	"context"
	"time"

	"bloomforge/internal/domain"
	"bloomforge/internal/dto"
	"bloomforge/internal/exam"
	"bloomforge/internal/generator"
	"bloomforge/internal/logger"
	"bloomforge/internal/repository"
	"bloomforge/internal/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	pdfFileName      = "exam-paper.pdf"
	htmlFileName     = "exam-paper.html"
	markdownFileName = "exam-paper.md"
)

// Export is a rendered exam paper ready to be sent as an attachment.
// Fallback is set when the PDF renderer failed and Data holds HTML instead.
type Export struct {
	Data        []byte
	ContentType string
	FileName    string
	Fallback    bool
	Suggestion  string
}

// ExamService assembles and exports exam papers.
type ExamService interface {
	GenerateExamPaper(ctx context.Context, req *dto.GenerateExamPaperRequest) (*dto.ExamPaperResponse, error)
	ExportPDF(ctx context.Context, paper *domain.ExamPaper) (*Export, error)
	ExportMarkdown(ctx context.Context, paper *domain.ExamPaper) (*Export, error)
}

type examService struct {
	sessions    domain.SessionStore
	generations GenerationService
	bank        domain.QuestionBankRepository
	renderer    domain.PDFRenderer
	now         func() time.Time
}

// NewExamService creates an ExamService. renderer may be nil, in which case
// PDF export always falls back to HTML. bank may be nil when persistence is
// disabled.
func NewExamService(
	sessions domain.SessionStore,
	generations GenerationService,
	bank domain.QuestionBankRepository,
	renderer domain.PDFRenderer,
) ExamService {
	if bank == nil {
		bank = repository.NoopQuestionBank{}
	}
	return &examService{
		sessions:    sessions,
		generations: generations,
		bank:        bank,
		renderer:    renderer,
		now:         time.Now,
	}
}

func (s *examService) GenerateExamPaper(ctx context.Context, req *dto.GenerateExamPaperRequest) (resp *dto.ExamPaperResponse, err error) {
	ctx, span := telemetry.Start(ctx, "exam.assemble",
		attribute.String("session.id", req.SessionID),
		attribute.Int("question.count", len(req.Questions)))
	defer func() { telemetry.End(span, err) }()

	questions := req.Questions
	if req.SessionID != "" {
		if _, err := s.sessions.Get(ctx, req.SessionID); err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			set, err := s.generations.LatestQuestionSet(ctx, req.SessionID)
			if err != nil {
				if domain.HasCode(err, domain.CodeNotFound) {
					return nil, domain.NewInvalidInputError("No questions supplied and none generated for this session yet").
						WithContext("session_id", req.SessionID)
				}
				return nil, err
			}
			questions = set.Questions
		}
	}
	if len(questions) == 0 {
		return nil, domain.NewInvalidInputError("questions are required")
	}

	paper := exam.Assemble(normalizeQuestions(questions), req.ExamConfig, s.now())

	if req.SessionID != "" {
		if err := s.bank.SaveExamPaper(ctx, req.SessionID, paper); err != nil {
			logger.ForSession(req.SessionID).Error("Failed to persist exam paper", zap.Error(err))
		}
	}

	return &dto.ExamPaperResponse{
		SessionID:    req.SessionID,
		ExamPaper:    paper,
		SummaryTable: exam.SummaryRows(paper),
		Message:      "Exam paper generated successfully",
	}, nil
}

// normalizeQuestions repairs client supplied questions so the paper can be
// rendered: levels, codes and marks are filled in and answers guaranteed.
func normalizeQuestions(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		if !q.BloomLevel.Valid() {
			if level, ok := domain.ParseBloomLevel(string(q.BloomLevel)); ok {
				q.BloomLevel = level
			} else {
				q.BloomLevel = domain.Understand
			}
		}
		if !q.Type.Valid() {
			if t, ok := domain.ParseQuestionType(string(q.Type)); ok {
				q.Type = t
			} else {
				q.Type = domain.ShortAnswer
			}
		}
		q.BloomCode = q.BloomLevel.Code()
		q.Difficulty = domain.ParseDifficulty(string(q.Difficulty))
		if q.Marks <= 0 {
			q.Marks = generator.Marks(q.BloomLevel, q.Difficulty, q.Type)
		}
		if q.Options == nil {
			q.Options = []string{}
		}
		out[i] = q
	}
	return generator.EnsureAnswers(out)
}

// ExportPDF renders the paper through the PDF renderer. When rendering fails
// the HTML document is returned instead with a suggestion for the user.
func (s *examService) ExportPDF(ctx context.Context, paper *domain.ExamPaper) (out *Export, err error) {
	ctx, span := telemetry.Start(ctx, "exam.export_pdf")
	defer func() { telemetry.End(span, err) }()

	html, err := exam.RenderHTML(paper)
	if err != nil {
		return nil, domain.NewInternalError("Failed to render exam paper", err)
	}

	var renderErr error
	if s.renderer == nil {
		renderErr = domain.NewRenderingFailedError(nil)
	} else {
		pdf, err := s.renderer.RenderPDF(ctx, html)
		if err == nil {
			return &Export{Data: pdf, ContentType: "application/pdf", FileName: pdfFileName}, nil
		}
		renderErr = err
	}

	logger.Get().Warn("PDF rendering failed, returning HTML", zap.Error(renderErr))
	span.SetAttributes(attribute.Bool("export.fallback", true))

	suggestion := domain.NewRenderingFailedError(nil).Suggestion
	if de, ok := renderErr.(*domain.DomainError); ok && de.Suggestion != "" {
		suggestion = de.Suggestion
	}
	return &Export{
		Data:        []byte(html),
		ContentType: "text/html; charset=utf-8",
		FileName:    htmlFileName,
		Fallback:    true,
		Suggestion:  suggestion,
	}, nil
}

func (s *examService) ExportMarkdown(ctx context.Context, paper *domain.ExamPaper) (out *Export, err error) {
	_, span := telemetry.Start(ctx, "exam.export_markdown")
	defer func() { telemetry.End(span, err) }()

	md, err := exam.RenderMarkdown(paper)
	if err != nil {
		return nil, domain.NewInternalError("Failed to convert exam paper to markdown", err)
	}
	return &Export{
		Data:        []byte(md),
		ContentType: "text/markdown; charset=utf-8",
		FileName:    markdownFileName,
	}, nil
}
