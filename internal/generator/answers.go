package generator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"bloomforge/internal/analysis"
	"bloomforge/internal/domain"
)

var (
	letterAnswer  = regexp.MustCompile(`(?i)^(?:option\s+)?\(?([a-z])\s*[).:]?$`)
	clauseBreaker = regexp.MustCompile(`[.;,!?\n]`)
)

// CompleteAnswer fills answer, correctAnswer and explanation from type
// specific heuristics. Fields the question already carries are kept.
func CompleteAnswer(q *domain.Question, a *analysis.Analysis) {
	main := mainTopic(a)

	switch q.Type {
	case domain.MultipleChoice:
		if len(q.Options) == 0 {
			q.Options = MultipleChoiceOptions(a.KeyTerms)
			// A letter cannot index invented options. A literal answer
			// becomes the first option instead.
			if literal := literalAnswer(*q); literal != "" {
				q.Options = append([]string{literal}, q.Options[:len(q.Options)-1]...)
				q.CorrectAnswer = literal
				if _, letter := LetterIndex(q.Answer); letter {
					q.Answer = ""
				}
			} else {
				q.CorrectAnswer, q.Answer = "", ""
			}
		}
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			q.CorrectAnswer = q.Options[0]
		}
		if strings.TrimSpace(q.Answer) == "" {
			q.Answer = ResolveAnswer(*q)
		}
		if strings.TrimSpace(q.Explanation) == "" {
			q.Explanation = fmt.Sprintf("%q best reflects how %s is presented in the source material.", q.Answer, main)
		}

	case domain.TrueFalse:
		if len(q.Options) == 0 {
			q.Options = []string{"True", "False"}
		}
		verdict := normalizeBool(q.CorrectAnswer)
		if verdict == "" {
			verdict = normalizeBool(q.Answer)
		}
		if verdict == "" {
			verdict = "True"
		}
		q.CorrectAnswer = verdict
		if b := normalizeBool(q.Answer); strings.TrimSpace(q.Answer) == "" || (b != "" && b != verdict) {
			q.Answer = verdict
		}
		if strings.TrimSpace(q.Explanation) == "" {
			if q.CorrectAnswer == "True" {
				q.Explanation = fmt.Sprintf("The statement is consistent with how %s is described in the source material.", main)
			} else {
				q.Explanation = fmt.Sprintf("The statement is not supported by how %s is described in the source material.", main)
			}
		}

	case domain.FillBlank:
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			q.CorrectAnswer = main
		}
		if strings.TrimSpace(q.Answer) == "" {
			q.Answer = q.CorrectAnswer
		}
		if strings.TrimSpace(q.Explanation) == "" {
			q.Explanation = fmt.Sprintf("The missing term is %q, one of the main topics of the material.", q.CorrectAnswer)
		}

	default:
		if strings.TrimSpace(q.Answer) == "" {
			q.Answer = strings.TrimSpace(q.CorrectAnswer)
		}
		if q.Answer == "" {
			q.Answer = narrativeAnswer(a, q.Type)
		}
		if strings.TrimSpace(q.Explanation) == "" {
			q.Explanation = fmt.Sprintf("Award marks for accurate, well-supported coverage of %s.", strings.Join(supportingTerms(a, main), ", "))
		}
	}
}

// EnsureAnswers guarantees a non-empty answer wherever one can be derived.
// It never fails; a question with nothing to derive from keeps an empty answer.
func EnsureAnswers(questions []domain.Question) []domain.Question {
	for i := range questions {
		if strings.TrimSpace(questions[i].Answer) == "" {
			questions[i].Answer = ResolveAnswer(questions[i])
		}
	}
	return questions
}

// ResolveAnswer derives an answer from correctAnswer (mapping a single letter
// to the option at that position), then the first option, then the first
// clause of the explanation.
func ResolveAnswer(q domain.Question) string {
	if ca := strings.TrimSpace(q.CorrectAnswer); ca != "" {
		if len(q.Options) > 0 {
			if idx, ok := LetterIndex(ca); ok && idx < len(q.Options) {
				return q.Options[idx]
			}
		}
		return ca
	}
	if len(q.Options) > 0 {
		return q.Options[0]
	}
	if expl := strings.TrimSpace(q.Explanation); expl != "" {
		return firstClause(expl)
	}
	return ""
}

// LetterIndex maps "A", "b", "(C)", "D)" or "Option B" to a zero-based index.
// A maps to the first option.
func LetterIndex(s string) (int, bool) {
	m := letterAnswer.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	return int(strings.ToUpper(m[1])[0] - 'A'), true
}

func firstClause(s string) string {
	for _, part := range clauseBreaker.Split(s, -1) {
		if p := strings.TrimSpace(part); p != "" {
			return p
		}
	}
	return ""
}

var boolWords = map[string]string{
	"true": "True", "t": "True", "yes": "True", "y": "True", "correct": "True", "right": "True",
	"false": "False", "f": "False", "no": "False", "n": "False", "incorrect": "False", "wrong": "False",
}

// normalizeBool maps a model verdict such as "False.", "(b)" or
// "Incorrect, because ..." onto True or False. Unrecognised text yields "".
func normalizeBool(s string) string {
	if idx, ok := LetterIndex(strings.TrimSpace(s)); ok {
		switch idx {
		case 0:
			return "True"
		case 1:
			return "False"
		}
	}
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return !unicode.IsLetter(r) })
	if len(words) == 0 {
		return ""
	}
	return boolWords[words[0]]
}

// literalAnswer returns the model's answer text when it is more than an
// option letter.
func literalAnswer(q domain.Question) string {
	for _, s := range []string{q.CorrectAnswer, q.Answer} {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := LetterIndex(s); !ok {
			return s
		}
	}
	return ""
}

func mainTopic(a *analysis.Analysis) string {
	if a != nil && len(a.MainTopics) > 0 {
		return a.MainTopics[0]
	}
	return "the main topic"
}

func supportingTerms(a *analysis.Analysis, main string) []string {
	terms := []string{main}
	if a == nil {
		return terms
	}
	for _, t := range a.KeyTerms {
		if len(terms) == 4 {
			break
		}
		if t != main {
			terms = append(terms, t)
		}
	}
	return terms
}

func narrativeAnswer(a *analysis.Analysis, qtype domain.QuestionType) string {
	main := mainTopic(a)
	terms := supportingTerms(a, main)[1:]

	var b strings.Builder
	fmt.Fprintf(&b, "A complete answer explains %s", main)
	if len(terms) > 0 {
		fmt.Fprintf(&b, " and addresses %s", joinList(terms))
	}
	b.WriteString(".")
	if qtype == domain.Essay {
		b.WriteString(" It should open with a clear thesis, develop the argument with evidence from the material, and close with a reasoned conclusion.")
	}
	if a != nil && len(a.Definitions) > 0 {
		fmt.Fprintf(&b, " Key point: %s.", a.Definitions[0])
	}
	return b.String()
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
