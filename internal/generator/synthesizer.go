// Package generator is the rule-based question engine: Bloom distributions,
// the (level, type) template matrix, mark computation and answer synthesis.
package generator

import (
	"fmt"
	"strings"

	"bloomforge/internal/analysis"
	"bloomforge/internal/domain"
	"bloomforge/internal/util"
)

var optionDescriptors = [4]string{"primary concept", "related concept", "supporting concept", "peripheral concept"}

var optionPadding = []string{"None of the above", "All of the above"}

// Synthesizer fills templates with analysed key terms.
type Synthesizer struct {
	templates TemplateMatrix
	newID     func() string
}

// New returns a Synthesizer over the built-in templates.
func New() (*Synthesizer, error) {
	return NewWithTemplates(DefaultTemplates())
}

// NewWithTemplates fails when the matrix misses a supported (level, type) pair.
func NewWithTemplates(m TemplateMatrix) (*Synthesizer, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &Synthesizer{templates: m, newID: util.NewULID}, nil
}

// MustNew panics on an incomplete built-in matrix.
func MustNew() *Synthesizer {
	s, err := New()
	if err != nil {
		panic(err)
	}
	return s
}

// Question synthesises a single question. seq selects the content section so
// consecutive questions draw on different sentences.
func (s *Synthesizer) Question(a *analysis.Analysis, level domain.BloomLevel, qtype domain.QuestionType,
	difficulty domain.Difficulty, multi bool, seq int) domain.Question {
	qtype = ResolveType(level, qtype, nil)

	q := domain.Question{
		ID:         s.newID(),
		Type:       qtype,
		BloomLevel: level,
		BloomCode:  level.Code(),
		Difficulty: difficulty,
		Options:    []string{},
		Marks:      Marks(level, difficulty, qtype),
		Source:     domain.OriginRuleBased,
	}

	if len(a.KeyTerms) < 2 {
		q.Content = genericQuestion(level, multi)
	} else {
		tmpl, _ := s.templates.Lookup(level, qtype)
		q.Content = tmpl(TemplateInput{
			Terms:         topTerms(a.KeyTerms),
			Section:       section(a, seq),
			MultiDocument: multi,
		})
	}

	switch qtype {
	case domain.MultipleChoice:
		q.Options = MultipleChoiceOptions(a.KeyTerms)
	case domain.TrueFalse:
		q.Options = []string{"True", "False"}
	}

	CompleteAnswer(&q, a)
	return q
}

// Generate produces questions for every level of the requested distribution.
// The per-level ceiling is not truncated, so the result may hold more than
// req.QuestionCount questions.
func (s *Synthesizer) Generate(content string, req domain.Requirements, multi bool) []domain.Question {
	req.Normalize()
	a := analysis.Analyze(content)
	dist := Distribution(req.BloomDistribution, req.QuestionCount)

	questions := make([]domain.Question, 0, DistributionTotal(dist))
	seq := 0
	for _, level := range domain.BloomLevels {
		for i := 0; i < dist[level]; i++ {
			requested := req.QuestionTypes[i%len(req.QuestionTypes)]
			qtype := ResolveType(level, requested, req.QuestionTypes)
			questions = append(questions, s.Question(a, level, qtype, req.Difficulty, multi, seq))
			seq++
		}
	}
	return EnsureAnswers(questions)
}

// TopUp synthesises n questions cycling through the Bloom levels, starting
// from startSeq so sections keep rotating after earlier questions.
func (s *Synthesizer) TopUp(a *analysis.Analysis, req domain.Requirements, multi bool, n, startSeq int) []domain.Question {
	req.Normalize()
	out := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		level := domain.BloomLevels[i%len(domain.BloomLevels)]
		requested := req.QuestionTypes[i%len(req.QuestionTypes)]
		qtype := ResolveType(level, requested, req.QuestionTypes)
		out = append(out, s.Question(a, level, qtype, req.Difficulty, multi, startSeq+i))
	}
	return out
}

// MultipleChoiceOptions annotates the top four key terms with fixed
// descriptors, padding with generic options when fewer terms exist.
func MultipleChoiceOptions(keyTerms []string) []string {
	opts := make([]string, 0, 4)
	for i := 0; i < len(keyTerms) && i < 4; i++ {
		opts = append(opts, fmt.Sprintf("%s (%s)", capitalize(keyTerms[i]), optionDescriptors[i]))
	}
	for _, pad := range optionPadding {
		if len(opts) >= 4 {
			break
		}
		opts = append(opts, pad)
	}
	return opts
}

func topTerms(keyTerms []string) [4]string {
	var out [4]string
	for i := range out {
		out[i] = keyTerms[i%len(keyTerms)]
	}
	return out
}

func section(a *analysis.Analysis, seq int) string {
	pool := a.ImportantSentences
	if len(pool) == 0 {
		pool = a.Sentences
	}
	if len(pool) == 0 {
		return ""
	}
	return strings.TrimSpace(pool[seq%len(pool)])
}
