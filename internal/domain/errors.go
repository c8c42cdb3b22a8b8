package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeValidation   ErrorCode = "VALIDATION_FAILED"

	// Pipeline specific errors
	CodeUploadRejected         ErrorCode = "UPLOAD_REJECTED"
	CodeSessionNotFound        ErrorCode = "SESSION_NOT_FOUND"
	CodeExtractionFailed       ErrorCode = "EXTRACTION_FAILED"
	CodeImageExtractionSkipped ErrorCode = "IMAGE_EXTRACTION_SKIPPED"
	CodeAIGenerationFailed     ErrorCode = "AI_GENERATION_FAILED"
	CodeRenderingFailed        ErrorCode = "RENDERING_FAILED"

	// Field level validation codes
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Suggestion string                 `json:"suggestion,omitempty"`
	Context    map[string]interface{} `json:"details,omitempty"`
	Err        error                  `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		Suggestion string `json:"suggestion,omitempty"`
	}{
		Code:       string(e.Code),
		Message:    e.Message,
		Suggestion: e.Suggestion,
	})
}

// WithContext attaches a detail entry and returns the same error for chaining.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewUploadRejectedError(message string) *DomainError {
	return NewError(CodeUploadRejected, message, nil)
}

func NewSessionNotFoundError(sessionID string) *DomainError {
	return NewError(CodeSessionNotFound, "Session not found", nil).WithContext("session_id", sessionID)
}

func NewExtractionFailedError(fileName string, err error) *DomainError {
	return NewError(CodeExtractionFailed, fmt.Sprintf("Failed to extract content from %s", fileName), err)
}

func NewImageExtractionSkippedError(err error) *DomainError {
	return NewError(CodeImageExtractionSkipped, "Visual extraction skipped", err)
}

func NewAIGenerationFailedError(err error) *DomainError {
	return NewError(CodeAIGenerationFailed, "Failed to generate questions with AI", err)
}

func NewRenderingFailedError(err error) *DomainError {
	e := NewError(CodeRenderingFailed, "Failed to render exam paper as PDF", err)
	e.Suggestion = "Download the HTML version and print it to PDF from a browser"
	return e
}

// HasCode reports whether err is (or wraps) a DomainError carrying code.
func HasCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string    `json:"field"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects field errors for one request.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func NewMissingFieldError(field string) FieldError {
	return FieldError{Field: field, Code: CodeMissingField, Message: fmt.Sprintf("%s is required", field)}
}

func NewInvalidFormatError(field string, value interface{}) FieldError {
	return FieldError{Field: field, Code: CodeInvalidFormat, Message: fmt.Sprintf("invalid value %v", value)}
}

func NewOutOfRangeError(field string, value, min, max int) FieldError {
	return FieldError{
		Field:   field,
		Code:    CodeOutOfRange,
		Message: fmt.Sprintf("value %d must be between %d and %d", value, min, max),
	}
}
