package handler

import (
	"bloomforge/internal/domain"
	"bloomforge/internal/dto"
	"bloomforge/internal/service"
	"bloomforge/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Headers set when the PDF renderer was unavailable and HTML is returned.
const (
	HeaderRenderFallback   = "X-Render-Fallback"
	HeaderRenderSuggestion = "X-Render-Suggestion"
)

// ExamHandler handles exam paper HTTP requests
type ExamHandler struct {
	service   service.ExamService
	validator *validation.Validator
}

// NewExamHandler creates a new ExamHandler instance
func NewExamHandler(service service.ExamService) *ExamHandler {
	return &ExamHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// GenerateExamPaper godoc
// @Summary Assemble an exam paper
// @Description Splits questions into Part A and Part B and builds the Bloom level summary. Without questions the latest set of the session is used
// @Tags exam
// @Accept json
// @Produce json
// @Param request body dto.GenerateExamPaperRequest true "Questions and exam config"
// @Success 200 {object} dto.ExamPaperResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /generate-exam-paper [post]
func (h *ExamHandler) GenerateExamPaper(c *fiber.Ctx) error {
	var req dto.GenerateExamPaperRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateGenerateExamPaperRequest(&req); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.GenerateExamPaper(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ExportPDF godoc
// @Summary Export an exam paper as PDF
// @Description Returns a PDF attachment. When the renderer is unavailable an HTML attachment is returned with the X-Render-Fallback header
// @Tags exam
// @Accept json
// @Produce application/pdf,text/html
// @Param request body dto.ExportRequest true "Exam paper"
// @Success 200 {file} binary
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /export-pdf [post]
func (h *ExamHandler) ExportPDF(c *fiber.Ctx) error {
	paper, err := h.parseExport(c)
	if err != nil {
		return err
	}

	out, err := h.service.ExportPDF(c.UserContext(), paper)
	if err != nil {
		return err
	}
	if out.Fallback {
		c.Set(HeaderRenderFallback, "html")
		c.Set(HeaderRenderSuggestion, out.Suggestion)
	}
	return sendAttachment(c, out)
}

// ExportMarkdown godoc
// @Summary Export an exam paper as Markdown
// @Tags exam
// @Accept json
// @Produce text/markdown
// @Param request body dto.ExportRequest true "Exam paper"
// @Success 200 {file} binary
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /export-markdown [post]
func (h *ExamHandler) ExportMarkdown(c *fiber.Ctx) error {
	paper, err := h.parseExport(c)
	if err != nil {
		return err
	}

	out, err := h.service.ExportMarkdown(c.UserContext(), paper)
	if err != nil {
		return err
	}
	return sendAttachment(c, out)
}

func (h *ExamHandler) parseExport(c *fiber.Ctx) (*domain.ExamPaper, error) {
	var req dto.ExportRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateExportRequest(&req); len(errs) > 0 {
		return nil, errs
	}
	return req.ExamPaper, nil
}

func sendAttachment(c *fiber.Ctx, out *service.Export) error {
	c.Attachment(out.FileName)
	c.Set(fiber.HeaderContentType, out.ContentType)
	return c.Send(out.Data)
}
