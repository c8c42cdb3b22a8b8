package handler

import (
	"bloomforge/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Documents  *DocumentHandler
	Generation *GenerationHandler
	Exam       *ExamHandler
}

// RegisterRoutes mounts every endpoint on router.
func RegisterRoutes(router fiber.Router, h Handlers) {
	vm := middleware.NewValidationMiddleware()
	session := vm.ValidateSessionParam()

	router.Post("/upload", h.Documents.Upload)
	router.Post("/upload-multiple", h.Documents.UploadMultiple)
	router.Post("/add-document/:sessionId", session, h.Documents.AddDocument)
	router.Get("/documents/:sessionId", session, h.Documents.ListDocuments)

	router.Post("/generate-questions", h.Generation.GenerateQuestions)
	router.Get("/ai-status", h.Generation.AIStatus)
	router.Get("/question-sets/:sessionId", session, h.Generation.ListQuestionSets)
	router.Get("/question-sets/:sessionId/latest", session, h.Generation.LatestQuestionSet)

	router.Post("/generate-exam-paper", h.Exam.GenerateExamPaper)
	router.Post("/export-pdf", h.Exam.ExportPDF)
	router.Post("/export-markdown", h.Exam.ExportMarkdown)
}
