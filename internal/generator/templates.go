package generator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"bloomforge/internal/domain"
)

// TemplateInput parameterises a question template.
type TemplateInput struct {
	// Terms holds the four highest-frequency key terms, cycled to fill all
	// four slots when fewer are available.
	Terms         [4]string
	Section       string
	MultiDocument bool
}

func (in TemplateInput) scope() string {
	if in.MultiDocument {
		return "across the provided documents"
	}
	return "in the provided material"
}

// TemplateFunc renders question text.
type TemplateFunc func(in TemplateInput) string

// TemplateMatrix maps (level, type) to a template. Missing pairs are
// unsupported for that level.
type TemplateMatrix map[domain.BloomLevel]map[domain.QuestionType]TemplateFunc

// SupportedTypes lists, in preference order, the question types each level
// can produce.
var SupportedTypes = map[domain.BloomLevel][]domain.QuestionType{
	domain.Remember:   {domain.MultipleChoice, domain.TrueFalse, domain.FillBlank, domain.ShortAnswer},
	domain.Understand: {domain.MultipleChoice, domain.TrueFalse, domain.FillBlank, domain.ShortAnswer},
	domain.Apply:      {domain.MultipleChoice, domain.ShortAnswer, domain.Essay},
	domain.Analyze:    {domain.MultipleChoice, domain.ShortAnswer, domain.Essay},
	domain.Evaluate:   {domain.MultipleChoice, domain.ShortAnswer, domain.Essay},
	domain.Create:     {domain.ShortAnswer, domain.Essay},
}

// DefaultTemplates returns the built-in template matrix.
func DefaultTemplates() TemplateMatrix {
	return TemplateMatrix{
		domain.Remember: {
			domain.MultipleChoice: func(in TemplateInput) string {
				return fmt.Sprintf("Which of the following best defines %s %s?", in.Terms[0], in.scope())
			},
			domain.TrueFalse: func(in TemplateInput) string {
				return fmt.Sprintf("True or False: %s is directly associated with %s %s.", capitalize(in.Terms[0]), in.Terms[1], in.scope())
			},
			domain.FillBlank: func(in TemplateInput) string {
				if blanked, ok := blankOut(in.Section, in.Terms[0]); ok {
					return "Fill in the blank: " + blanked
				}
				return fmt.Sprintf("Fill in the blank: _____ is a key concept closely associated with %s %s.", in.Terms[1], in.scope())
			},
			domain.ShortAnswer: func(in TemplateInput) string {
				return fmt.Sprintf("Define %s and state two facts about %s as presented %s.", in.Terms[0], in.Terms[1], in.scope())
			},
		},
		domain.Understand: {
			domain.MultipleChoice: func(in TemplateInput) string {
				return fmt.Sprintf("Which statement best explains the relationship between %s and %s?", in.Terms[0], in.Terms[1])
			},
			domain.TrueFalse: func(in TemplateInput) string {
				return fmt.Sprintf("True or False: %s can be explained in terms of %s and %s.", capitalize(in.Terms[0]), in.Terms[1], in.Terms[2])
			},
			domain.FillBlank: func(in TemplateInput) string {
				return fmt.Sprintf("Fill in the blank: The idea of %s is best understood through its connection to _____.", in.Terms[1])
			},
			domain.ShortAnswer: func(in TemplateInput) string {
				return fmt.Sprintf("Explain in your own words how %s relates to %s %s.", in.Terms[0], in.Terms[1], in.scope())
			},
		},
		domain.Apply: {
			domain.MultipleChoice: func(in TemplateInput) string {
				return fmt.Sprintf("In a practical situation involving %s, which approach would best apply %s?", in.Terms[0], in.Terms[1])
			},
			domain.ShortAnswer: func(in TemplateInput) string {
				return fmt.Sprintf("Describe how you would apply %s to solve a problem involving %s.", in.Terms[0], in.Terms[1])
			},
			domain.Essay: func(in TemplateInput) string {
				return fmt.Sprintf("Using %s and %s, demonstrate with a worked example how %s can be applied in a real-world situation, drawing on the concepts %s.",
					in.Terms[0], in.Terms[1], in.Terms[2], in.scope())
			},
		},
		domain.Analyze: {
			domain.MultipleChoice: func(in TemplateInput) string {
				return fmt.Sprintf("Which factor most clearly distinguishes %s from %s?", in.Terms[0], in.Terms[1])
			},
			domain.ShortAnswer: func(in TemplateInput) string {
				return fmt.Sprintf("Compare and contrast %s and %s, highlighting the role of %s.", in.Terms[0], in.Terms[1], in.Terms[2])
			},
			domain.Essay: func(in TemplateInput) string {
				return fmt.Sprintf("Analyze the relationships among %s, %s, %s and %s %s. Examine how each one influences the others.",
					in.Terms[0], in.Terms[1], in.Terms[2], in.Terms[3], in.scope())
			},
		},
		domain.Evaluate: {
			domain.MultipleChoice: func(in TemplateInput) string {
				return fmt.Sprintf("Which argument gives the strongest justification for the importance of %s in relation to %s?", in.Terms[0], in.Terms[1])
			},
			domain.ShortAnswer: func(in TemplateInput) string {
				return fmt.Sprintf("Assess the strengths and limitations of %s when applied to %s.", in.Terms[0], in.Terms[1])
			},
			domain.Essay: func(in TemplateInput) string {
				return fmt.Sprintf("Critically evaluate the significance of %s and %s %s. Justify your position with evidence concerning %s.",
					in.Terms[0], in.Terms[1], in.scope(), in.Terms[2])
			},
		},
		domain.Create: {
			domain.ShortAnswer: func(in TemplateInput) string {
				return fmt.Sprintf("Propose a new approach that combines %s and %s to address a problem related to %s.", in.Terms[0], in.Terms[1], in.Terms[2])
			},
			domain.Essay: func(in TemplateInput) string {
				return fmt.Sprintf("Design an original framework that integrates %s, %s, %s and %s %s. Explain the purpose of each part and how the parts work together.",
					in.Terms[0], in.Terms[1], in.Terms[2], in.Terms[3], in.scope())
			},
		},
	}
}

// Validate checks that every supported (level, type) pair has a template.
func (m TemplateMatrix) Validate() error {
	var missing []string
	for _, level := range domain.BloomLevels {
		for _, qt := range SupportedTypes[level] {
			if fn, ok := m[level][qt]; !ok || fn == nil {
				missing = append(missing, fmt.Sprintf("%s/%s", level, qt))
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("question template matrix incomplete: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Lookup returns the template for a supported pair.
func (m TemplateMatrix) Lookup(level domain.BloomLevel, qtype domain.QuestionType) (TemplateFunc, bool) {
	fn, ok := m[level][qtype]
	return fn, ok && fn != nil
}

// genericQuestion is used when the content yields fewer than two key terms.
func genericQuestion(level domain.BloomLevel, multi bool) string {
	verb := "Discuss"
	if v := level.Verbs(); len(v) > 0 {
		verb = capitalize(v[0])
	}
	where := "the provided material"
	if multi {
		where = "the provided documents"
	}
	return fmt.Sprintf("%s the main concepts presented in %s.", verb, where)
}

// ResolveType picks the type a level will actually produce for a requested
// type: the request itself when supported, else the first requested type the
// level supports, else the level's first supported type.
func ResolveType(level domain.BloomLevel, requested domain.QuestionType, allowed []domain.QuestionType) domain.QuestionType {
	supported := SupportedTypes[level]
	if containsType(supported, requested) {
		return requested
	}
	for _, t := range allowed {
		if containsType(supported, t) {
			return t
		}
	}
	if len(supported) > 0 {
		return supported[0]
	}
	return domain.ShortAnswer
}

func containsType(types []domain.QuestionType, t domain.QuestionType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func blankOut(sentence, term string) (string, bool) {
	if sentence == "" || term == "" {
		return "", false
	}
	loc := regexp.MustCompile("(?i)" + regexp.QuoteMeta(term)).FindStringIndex(sentence)
	if loc == nil {
		return "", false
	}
	return sentence[:loc[0]] + "_____" + sentence[loc[1]:] + ".", true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
