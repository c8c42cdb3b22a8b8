package domain

import "strings"

// BloomLevel is one of the six cognitive levels of Bloom's Taxonomy.
type BloomLevel string

const (
	Remember   BloomLevel = "REMEMBER"
	Understand BloomLevel = "UNDERSTAND"
	Apply      BloomLevel = "APPLY"
	Analyze    BloomLevel = "ANALYZE"
	Evaluate   BloomLevel = "EVALUATE"
	Create     BloomLevel = "CREATE"
)

// BloomLevels lists the levels from lowest to highest order of thinking.
var BloomLevels = []BloomLevel{Remember, Understand, Apply, Analyze, Evaluate, Create}

type bloomInfo struct {
	code        string
	baseMarks   int
	description string
	verbs       []string
}

var bloomTable = map[BloomLevel]bloomInfo{
	Remember:   {"CO1", 2, "Recall facts and basic concepts", []string{"define", "list", "identify", "recall"}},
	Understand: {"CO2", 3, "Explain ideas or concepts", []string{"explain", "describe", "summarize", "classify"}},
	Apply:      {"CO3", 4, "Use information in new situations", []string{"apply", "demonstrate", "solve", "use"}},
	Analyze:    {"CO4", 5, "Draw connections among ideas", []string{"analyze", "compare", "contrast", "examine"}},
	Evaluate:   {"CO5", 6, "Justify a stand or decision", []string{"evaluate", "justify", "critique", "assess"}},
	Create:     {"CO6", 8, "Produce new or original work", []string{"design", "construct", "develop", "formulate"}},
}

// Valid reports whether l is one of the six known levels.
func (l BloomLevel) Valid() bool {
	_, ok := bloomTable[l]
	return ok
}

// Code returns the course-outcome code (CO1..CO6) for the level.
func (l BloomLevel) Code() string {
	return bloomTable[l].code
}

// BaseMarks returns the base mark weight used by the marks formula.
func (l BloomLevel) BaseMarks() int {
	return bloomTable[l].baseMarks
}

func (l BloomLevel) Description() string {
	return bloomTable[l].description
}

// Verbs returns the action verbs associated with the level.
func (l BloomLevel) Verbs() []string {
	return bloomTable[l].verbs
}

// Index returns the position of the level in BloomLevels, or -1.
func (l BloomLevel) Index() int {
	for i, lv := range BloomLevels {
		if lv == l {
			return i
		}
	}
	return -1
}

// ParseBloomLevel accepts any casing ("apply", "Apply") and the CO code form ("CO3").
func ParseBloomLevel(s string) (BloomLevel, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if l := BloomLevel(s); l.Valid() {
		return l, true
	}
	for l, info := range bloomTable {
		if info.code == s {
			return l, true
		}
	}
	return "", false
}

// QuestionType is the answer format of a question.
type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"
	ShortAnswer    QuestionType = "short-answer"
	Essay          QuestionType = "essay"
	FillBlank      QuestionType = "fill-blank"
)

// QuestionTypes lists every supported question type.
var QuestionTypes = []QuestionType{MultipleChoice, TrueFalse, ShortAnswer, Essay, FillBlank}

var typeMultipliers = map[QuestionType]float64{
	MultipleChoice: 0.5,
	TrueFalse:      0.5,
	FillBlank:      0.75,
	ShortAnswer:    1.0,
	Essay:          2.0,
}

func (t QuestionType) Valid() bool {
	_, ok := typeMultipliers[t]
	return ok
}

// MarksMultiplier returns the type factor of the marks formula.
func (t QuestionType) MarksMultiplier() float64 {
	if m, ok := typeMultipliers[t]; ok {
		return m
	}
	return 1.0
}

// HasOptions reports whether questions of this type carry an option list.
func (t QuestionType) HasOptions() bool {
	return t == MultipleChoice || t == TrueFalse
}

// ParseQuestionType normalises the spellings produced by clients and models
// ("mcq", "multiple_choice", "True/False", "fill in the blank").
func ParseQuestionType(s string) (QuestionType, bool) {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.NewReplacer("_", "-", " ", "-", "/", "-").Replace(n)
	switch n {
	case "multiple-choice", "mcq", "multiplechoice", "choice":
		return MultipleChoice, true
	case "true-false", "truefalse", "tf", "boolean":
		return TrueFalse, true
	case "short-answer", "short", "shortanswer":
		return ShortAnswer, true
	case "essay", "long-answer", "long":
		return Essay, true
	case "fill-blank", "fill-in-the-blank", "fill-in-blank", "fillblank", "blank":
		return FillBlank, true
	}
	return "", false
}

// Difficulty scales the marks of a question.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

var difficultyMultipliers = map[Difficulty]float64{
	Easy:   0.8,
	Medium: 1.0,
	Hard:   1.2,
}

func (d Difficulty) Valid() bool {
	_, ok := difficultyMultipliers[d]
	return ok
}

// MarksMultiplier returns the difficulty factor of the marks formula.
// Unknown difficulties count as medium.
func (d Difficulty) MarksMultiplier() float64 {
	if m, ok := difficultyMultipliers[d]; ok {
		return m
	}
	return 1.0
}

// ParseDifficulty defaults to Medium for anything unrecognised.
func ParseDifficulty(s string) Difficulty {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if d.Valid() {
		return d
	}
	return Medium
}
