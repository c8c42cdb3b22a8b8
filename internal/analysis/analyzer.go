// Package analysis derives key terms, topic sentences and definitions from
// extracted document text.
package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"bloomforge/internal/domain"
)

const (
	maxKeyTerms       = 15
	maxMainTopics     = 5
	minSentenceLength = 20
	minTermLength     = 4
)

var (
	sentenceSplitter = regexp.MustCompile(`[.!?]+`)
	wordPattern      = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

var definitionMarkers = []string{"is a", "refers to", "defined as", "means"}

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`the and for are but not you all any can had her was one our out day get has
		him his how man new now old see two way who boy did its let put say she too use that with have this will
		your from they know want been good much some time very when come here just like long make many over such
		take than them well were what which while their there these those would could should about after again
		also because before being between both does doing down during each into more most other same then through
		under until upon where whom why only own shall might must used using based within without however therefore
		thus among across along around include includes including another example given first second third`) {
		stopWords[w] = struct{}{}
	}
}

// Analysis is the derived, unpersisted view of a text.
type Analysis struct {
	KeyTerms           []string `json:"keyTerms"`
	MainTopics         []string `json:"mainTopics"`
	Sentences          []string `json:"-"`
	ImportantSentences []string `json:"importantSentences"`
	Definitions        []string `json:"definitions"`
	TotalSentences     int      `json:"totalSentences"`
	TotalWords         int      `json:"totalWords"`
	UniqueWords        int      `json:"uniqueWords"`
}

// Analyze is a pure function of text. Empty input is replaced by a placeholder
// sentence so callers always get a usable result.
func Analyze(text string) *Analysis {
	if strings.TrimSpace(text) == "" {
		text = domain.PlaceholderContent
	}

	sentences := SplitSentences(text)
	words := Tokenize(text)

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}

	keyTerms := rankTerms(words, maxKeyTerms)
	mainTopics := keyTerms
	if len(mainTopics) > maxMainTopics {
		mainTopics = mainTopics[:maxMainTopics]
	}

	return &Analysis{
		KeyTerms:           keyTerms,
		MainTopics:         append([]string(nil), mainTopics...),
		Sentences:          sentences,
		ImportantSentences: sentencesContainingAny(sentences, keyTerms),
		Definitions:        sentencesContainingAny(sentences, definitionMarkers),
		TotalSentences:     len(sentences),
		TotalWords:         len(words),
		UniqueWords:        len(unique),
	}
}

// SplitSentences splits on runs of sentence terminators and keeps pieces
// longer than 20 characters.
func SplitSentences(text string) []string {
	parts := sentenceSplitter.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if utf8.RuneCountInString(p) > minSentenceLength {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// Tokenize returns every word of text lowercased, in order.
func Tokenize(text string) []string {
	raw := wordPattern.FindAllString(text, -1)
	words := make([]string, len(raw))
	for i, w := range raw {
		words[i] = strings.ToLower(w)
	}
	return words
}

// IsStopWord reports whether w is filtered out of key-term ranking.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

type termCount struct {
	term  string
	count int
}

// rankTerms orders content words by descending frequency, breaking ties by
// first occurrence so the result is deterministic.
func rankTerms(words []string, limit int) []string {
	index := make(map[string]int)
	var counts []termCount
	for _, w := range words {
		if utf8.RuneCountInString(w) < minTermLength || IsStopWord(w) {
			continue
		}
		if i, ok := index[w]; ok {
			counts[i].count++
			continue
		}
		index[w] = len(counts)
		counts = append(counts, termCount{term: w, count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})

	if len(counts) > limit {
		counts = counts[:limit]
	}
	terms := make([]string, len(counts))
	for i, c := range counts {
		terms[i] = c.term
	}
	return terms
}

func sentencesContainingAny(sentences, needles []string) []string {
	var out []string
	for _, s := range sentences {
		lower := strings.ToLower(s)
		for _, n := range needles {
			if strings.Contains(lower, strings.ToLower(n)) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}
