package quizgen

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"bloomforge/internal/domain"
)

// MaxPromptContent bounds how much source text is sent to the model.
const MaxPromptContent = 8000

// BuildPrompt renders the single prompt sent to the model.
func BuildPrompt(content string, req domain.Requirements, dist map[domain.BloomLevel]int, multi bool) string {
	var sb strings.Builder

	sb.WriteString("You are an expert educator creating exam questions aligned with Bloom's Taxonomy.\n\n")
	if multi {
		sb.WriteString("SOURCE CONTENT (combined from several documents, each introduced by a '--- Document: name ---' line):\n")
	} else {
		sb.WriteString("SOURCE CONTENT:\n")
	}
	sb.WriteString(truncateRunes(content, MaxPromptContent))
	sb.WriteString("\n\n")

	types := make([]string, len(req.QuestionTypes))
	for i, t := range req.QuestionTypes {
		types[i] = string(t)
	}

	sb.WriteString("REQUIREMENTS:\n")
	sb.WriteString(fmt.Sprintf("- Total questions: %d\n", req.QuestionCount))
	sb.WriteString(fmt.Sprintf("- Question types: %s\n", strings.Join(types, ", ")))
	sb.WriteString(fmt.Sprintf("- Difficulty: %s\n", req.Difficulty))
	sb.WriteString("- Bloom's Taxonomy distribution:\n")
	for _, level := range domain.BloomLevels {
		n := dist[level]
		if n == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  - %s (%s): %d question(s). %s Use verbs such as: %s.\n",
			level, level.Code(), n, level.Description(), strings.Join(level.Verbs(), ", ")))
	}
	if len(req.CourseOutcomes) > 0 {
		sb.WriteString("- Course outcomes to assess:\n")
		for _, co := range req.CourseOutcomes {
			if co = strings.TrimSpace(co); co != "" {
				sb.WriteString("  - " + co + "\n")
			}
		}
	}
	if multi {
		sb.WriteString("- Draw on all documents and include questions that connect ideas across them.\n")
	}

	sb.WriteString("\nRespond ONLY with a single JSON object in exactly this format:\n")
	sb.WriteString(`{
  "questions": [
    {
      "type": "multiple-choice | true-false | short-answer | essay | fill-blank",
      "bloomLevel": "REMEMBER | UNDERSTAND | APPLY | ANALYZE | EVALUATE | CREATE",
      "difficulty": "easy | medium | hard",
      "content": "the question text",
      "options": ["option text", "option text", "option text", "option text"],
      "correctAnswer": "A",
      "answer": "the full model answer",
      "explanation": "why the answer is correct"
    }
  ],
  "summary": {"totalQuestions": 0, "bloomDistribution": {"REMEMBER": 0}}
}`)
	sb.WriteString("\n\nRules:\n")
	sb.WriteString("1. multiple-choice questions have exactly 4 options and correctAnswer is the option letter A-D, where A is the first option.\n")
	sb.WriteString("2. true-false questions use the options [\"True\", \"False\"] and correctAnswer is \"True\" or \"False\".\n")
	sb.WriteString("3. short-answer, essay and fill-blank questions have an empty options array; fill-blank content marks the gap with _____.\n")
	sb.WriteString("4. Every question must have a non-empty answer grounded in the source content.\n")
	sb.WriteString("5. Do not include any text outside the JSON object.\n")

	return sb.String()
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
