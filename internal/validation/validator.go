package validation

import (
	"regexp"
	"strings"

	"bloomforge/internal/domain"
	"bloomforge/internal/dto"
)

const (
	MaxQuestionCount  = 100
	maxCourseOutcomes = 20
	maxTitleLength    = 200
)

var validULID = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateSessionID checks the session id is a well-formed ULID.
func (v *Validator) ValidateSessionID(sessionID string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(sessionID) == "" {
		errors = append(errors, domain.NewMissingFieldError("sessionId"))
	} else if !isValidULID(sessionID) {
		errors = append(errors, domain.NewInvalidFormatError("sessionId", sessionID))
	}

	return errors
}

// ValidateGenerateQuestionsRequest validates the body and converts it into
// domain requirements with defaults applied. An unknown distribution or
// difficulty is not an error: they fall back to balanced and medium.
func (v *Validator) ValidateGenerateQuestionsRequest(req *dto.GenerateQuestionsRequest) (domain.Requirements, domain.ValidationErrors) {
	errors := v.ValidateSessionID(req.SessionID)
	r := req.Requirements

	if r.QuestionCount < 0 || r.QuestionCount > MaxQuestionCount {
		errors = append(errors, domain.NewOutOfRangeError("requirements.questionCount", r.QuestionCount, 1, MaxQuestionCount))
	}

	types := make([]domain.QuestionType, 0, len(r.QuestionTypes))
	for _, raw := range r.QuestionTypes {
		t, ok := domain.ParseQuestionType(raw)
		if !ok {
			errors = append(errors, domain.NewInvalidFormatError("requirements.questionTypes", raw))
			continue
		}
		if !containsType(types, t) {
			types = append(types, t)
		}
	}

	if len(r.CourseOutcomes) > maxCourseOutcomes {
		errors = append(errors, domain.NewOutOfRangeError("requirements.courseOutcomes", len(r.CourseOutcomes), 0, maxCourseOutcomes))
	}

	useAI := true
	if r.UseAI != nil {
		useAI = *r.UseAI
	}

	out := domain.Requirements{
		QuestionCount:     r.QuestionCount,
		QuestionTypes:     types,
		BloomDistribution: strings.ToLower(strings.TrimSpace(r.BloomDistribution)),
		Difficulty:        domain.Difficulty(r.Difficulty),
		UseAI:             useAI,
		CourseOutcomes:    nonEmpty(r.CourseOutcomes),
	}
	out.Normalize()
	return out, errors
}

// ValidateGenerateExamPaperRequest requires either questions or a session
// whose latest question set can be used.
func (v *Validator) ValidateGenerateExamPaperRequest(req *dto.GenerateExamPaperRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if req.SessionID != "" && !isValidULID(req.SessionID) {
		errors = append(errors, domain.NewInvalidFormatError("sessionId", req.SessionID))
	}
	if len(req.Questions) == 0 && req.SessionID == "" {
		errors = append(errors, domain.NewMissingFieldError("questions"))
	}
	for _, q := range req.Questions {
		if strings.TrimSpace(q.Content) == "" {
			errors = append(errors, domain.NewMissingFieldError("questions.content"))
			break
		}
	}

	cfg := req.ExamConfig
	if cfg.MaxMarks < 0 {
		errors = append(errors, domain.NewInvalidFormatError("examConfig.maxMarks", cfg.MaxMarks))
	}
	if len(cfg.ExamTitle) > maxTitleLength {
		errors = append(errors, domain.NewOutOfRangeError("examConfig.examTitle", len(cfg.ExamTitle), 0, maxTitleLength))
	}

	return errors
}

// ValidateExportRequest checks an exam paper was supplied.
func (v *Validator) ValidateExportRequest(req *dto.ExportRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if req.ExamPaper == nil {
		errors = append(errors, domain.NewMissingFieldError("examPaper"))
	} else if len(req.ExamPaper.Parts) == 0 {
		errors = append(errors, domain.NewMissingFieldError("examPaper.parts"))
	}

	return errors
}

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	return validULID.MatchString(s)
}

func containsType(types []domain.QuestionType, t domain.QuestionType) bool {
	for _, have := range types {
		if have == t {
			return true
		}
	}
	return false
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
