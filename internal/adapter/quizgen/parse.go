package quizgen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"bloomforge/internal/domain"
)

var (
	thinkBlock   = regexp.MustCompile(`(?s)<think>.*?</think>`)
	optionPrefix = regexp.MustCompile(`^\s*\(?[A-Ha-h][\).:]\s+`)
)

// ErrNoJSON is returned when the reply holds no balanced JSON object.
var ErrNoJSON = errors.New("no JSON object found in model response")

// looseString accepts a JSON string, number or bool.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	*s = looseString(string(b))
	return nil
}

type aiQuestion struct {
	Type          string        `json:"type"`
	BloomLevel    string        `json:"bloomLevel"`
	Difficulty    string        `json:"difficulty"`
	Content       string        `json:"content"`
	Question      string        `json:"question"`
	Options       []looseString `json:"options"`
	CorrectAnswer looseString   `json:"correctAnswer"`
	Answer        looseString   `json:"answer"`
	Explanation   string        `json:"explanation"`
}

// The summary object the model is asked for is informational and not read.
type aiResponse struct {
	Questions []aiQuestion `json:"questions"`
}

// StripThinking removes <think> blocks some reasoning models prepend.
func StripThinking(raw string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(raw, ""))
}

// ExtractJSONObject returns the first balanced {...} span of s. Braces inside
// JSON strings are ignored.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseResponse decodes the structured reply into canonical questions. Marks
// are always recomputed by the caller's formula, never taken from the model.
func ParseResponse(raw string, difficulty domain.Difficulty, marks func(domain.BloomLevel, domain.Difficulty, domain.QuestionType) int) ([]domain.Question, error) {
	obj, ok := ExtractJSONObject(StripThinking(raw))
	if !ok {
		return nil, ErrNoJSON
	}

	var resp aiResponse
	if err := json.Unmarshal([]byte(obj), &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model JSON: %w", err)
	}
	if resp.Questions == nil {
		return nil, errors.New("model JSON has no questions array")
	}

	out := make([]domain.Question, 0, len(resp.Questions))
	for i, aq := range resp.Questions {
		q, ok := normalize(aq, i, difficulty)
		if !ok {
			continue
		}
		q.Marks = marks(q.BloomLevel, q.Difficulty, q.Type)
		out = append(out, q)
	}
	return out, nil
}

func normalize(aq aiQuestion, index int, fallbackDifficulty domain.Difficulty) (domain.Question, bool) {
	content := strings.TrimSpace(aq.Content)
	if content == "" {
		content = strings.TrimSpace(aq.Question)
	}
	if content == "" {
		return domain.Question{}, false
	}

	options := make([]string, 0, len(aq.Options))
	for _, o := range aq.Options {
		if text := cleanOption(string(o)); text != "" {
			options = append(options, text)
		}
	}

	qtype, ok := domain.ParseQuestionType(aq.Type)
	if !ok {
		qtype = inferType(options)
	}
	if !qtype.HasOptions() {
		options = []string{}
	}

	level, ok := domain.ParseBloomLevel(aq.BloomLevel)
	if !ok {
		level = domain.BloomLevels[index%len(domain.BloomLevels)]
	}

	difficulty := fallbackDifficulty
	if d := domain.Difficulty(strings.ToLower(strings.TrimSpace(aq.Difficulty))); d.Valid() {
		difficulty = d
	}

	return domain.Question{
		Type:          qtype,
		BloomLevel:    level,
		BloomCode:     level.Code(),
		Difficulty:    difficulty,
		Content:       content,
		Options:       options,
		CorrectAnswer: strings.TrimSpace(string(aq.CorrectAnswer)),
		Answer:        strings.TrimSpace(string(aq.Answer)),
		Explanation:   strings.TrimSpace(aq.Explanation),
		Source:        domain.OriginAI,
	}, true
}

func cleanOption(s string) string {
	return strings.TrimSpace(optionPrefix.ReplaceAllString(strings.TrimSpace(s), ""))
}

func inferType(options []string) domain.QuestionType {
	if len(options) == 2 && strings.EqualFold(options[0], "true") && strings.EqualFold(options[1], "false") {
		return domain.TrueFalse
	}
	if len(options) >= 2 {
		return domain.MultipleChoice
	}
	return domain.ShortAnswer
}
