package middleware

import (
	"bloomforge/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// LocalSessionID is the fiber.Ctx locals key holding a validated session id.
const LocalSessionID = "validated_session_id"

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateSessionParam validates the :sessionId path parameter
func (vm *ValidationMiddleware) ValidateSessionParam() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Params("sessionId")

		if errors := vm.validator.ValidateSessionID(sessionID); len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}

		c.Locals(LocalSessionID, sessionID)
		return c.Next()
	}
}

// SessionID returns the id stored by ValidateSessionParam, falling back to
// the raw path parameter.
func SessionID(c *fiber.Ctx) string {
	if id, ok := c.Locals(LocalSessionID).(string); ok {
		return id
	}
	return c.Params("sessionId")
}
