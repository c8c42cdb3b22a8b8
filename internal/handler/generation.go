package handler

import (
	"bloomforge/internal/domain"
	"bloomforge/internal/dto"
	"bloomforge/internal/middleware"
	"bloomforge/internal/service"
	"bloomforge/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GenerationHandler handles question generation HTTP requests
type GenerationHandler struct {
	service   service.GenerationService
	validator *validation.Validator
}

// NewGenerationHandler creates a new GenerationHandler instance
func NewGenerationHandler(service service.GenerationService) *GenerationHandler {
	return &GenerationHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// GenerateQuestions godoc
// @Summary Generate questions
// @Description Generates Bloom-tagged questions from the documents of a session. Falls back to rule-based generation when the AI model fails
// @Tags generation
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuestionsRequest true "Session and requirements"
// @Success 200 {object} dto.GenerateQuestionsResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /generate-questions [post]
func (h *GenerationHandler) GenerateQuestions(c *fiber.Ctx) error {
	var req dto.GenerateQuestionsRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}

	requirements, errs := h.validator.ValidateGenerateQuestionsRequest(&req)
	if len(errs) > 0 {
		return errs
	}

	result, err := h.service.GenerateQuestions(c.UserContext(), req.SessionID, requirements)
	if err != nil {
		return err
	}
	return c.JSON(dto.GenerateQuestionsResponse{
		SessionID:        req.SessionID,
		GenerationResult: result,
	})
}

// AIStatus godoc
// @Summary AI availability
// @Description Probes the configured model with a trivial request
// @Tags generation
// @Produce json
// @Success 200 {object} dto.AIStatusResponse
// @Router /ai-status [get]
func (h *GenerationHandler) AIStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.AIStatus(c.UserContext()))
}

// ListQuestionSets godoc
// @Summary List persisted question sets
// @Tags question-bank
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param limit query int false "Maximum number of sets" default(20)
// @Success 200 {object} dto.QuestionSetListResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /question-sets/{sessionId} [get]
func (h *GenerationHandler) ListQuestionSets(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)

	sets, err := h.service.ListQuestionSets(c.UserContext(), sessionID, c.QueryInt("limit"))
	if err != nil {
		return err
	}

	resp := dto.QuestionSetListResponse{
		SessionID:    sessionID,
		QuestionSets: make([]dto.QuestionSetResponse, 0, len(sets)),
		Total:        len(sets),
	}
	for _, set := range sets {
		resp.QuestionSets = append(resp.QuestionSets, dto.NewQuestionSetResponse(set))
	}
	return c.JSON(resp)
}

// LatestQuestionSet godoc
// @Summary Latest question set
// @Tags question-bank
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} dto.QuestionSetResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /question-sets/{sessionId}/latest [get]
func (h *GenerationHandler) LatestQuestionSet(c *fiber.Ctx) error {
	set, err := h.service.LatestQuestionSet(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewQuestionSetResponse(set))
}
