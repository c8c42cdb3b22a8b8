package dto

import (
	"bloomforge/internal/domain"
	"bloomforge/internal/exam"
)

// GenerateExamPaperRequest is the body of POST /api/generate-exam-paper.
// When Questions is empty the latest persisted question set of the session
// is used.
// @Description Request body for exam paper assembly
type GenerateExamPaperRequest struct {
	SessionID  string            `json:"sessionId"`
	Questions  []domain.Question `json:"questions"`
	ExamConfig domain.ExamConfig `json:"examConfig"`
}

// ExamPaperResponse is returned by POST /api/generate-exam-paper.
type ExamPaperResponse struct {
	SessionID    string            `json:"sessionId,omitempty"`
	ExamPaper    *domain.ExamPaper `json:"examPaper"`
	SummaryTable []exam.SummaryRow `json:"summaryTable"`
	Message      string            `json:"message"`
}

// ExportRequest is the body of the export endpoints.
type ExportRequest struct {
	ExamPaper *domain.ExamPaper `json:"examPaper"`
}
