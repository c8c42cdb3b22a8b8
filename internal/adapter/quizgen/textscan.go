package quizgen

import (
	"bufio"
	"regexp"
	"strings"

	"bloomforge/internal/domain"
)

var (
	questionLine    = regexp.MustCompile(`(?i)^(?:\*\*)?\s*(?:q(?:uestion)?\s*)?(\d{1,3})\s*[\).:]\s*(?:\*\*)?\s*(.+)$`)
	optionLine      = regexp.MustCompile(`^\(?([A-Ha-h])[\).:]\s+(.+)$`)
	answerLine      = regexp.MustCompile(`(?i)^(?:\*\*)?(?:correct\s+)?answer(?:\*\*)?\s*[:\-]\s*(?:\*\*)?\s*(.+)$`)
	explanationLine = regexp.MustCompile(`(?i)^(?:\*\*)?explanation(?:\*\*)?\s*[:\-]\s*(.+)$`)
	bloomLine       = regexp.MustCompile(`(?i)^(?:\*\*)?bloom(?:'s)?(?:\s+(?:taxonomy\s+)?level)?(?:\*\*)?\s*[:\-]\s*(\S+)`)
)

// ScanText recovers questions from a free-text reply: numbered question
// lines, lettered option lines, and "Answer:"/"Explanation:" lines. It
// returns nil when no question line is found.
func ScanText(raw string, difficulty domain.Difficulty) []domain.Question {
	var (
		out []domain.Question
		cur *domain.Question
	)
	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Content) != "" {
			out = append(out, finishScanned(*cur, len(out), difficulty))
		}
		cur = nil
	}

	sc := bufio.NewScanner(strings.NewReader(StripThinking(raw)))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimLeft(sc.Text(), "-*• \t"))
		if line == "" {
			continue
		}

		switch {
		case answerLine.MatchString(line):
			if cur != nil {
				cur.CorrectAnswer = strings.TrimSpace(strings.Trim(answerLine.FindStringSubmatch(line)[1], "*"))
			}
		case explanationLine.MatchString(line):
			if cur != nil {
				cur.Explanation = strings.TrimSpace(explanationLine.FindStringSubmatch(line)[1])
			}
		case bloomLine.MatchString(line):
			if cur != nil {
				if level, ok := domain.ParseBloomLevel(strings.Trim(bloomLine.FindStringSubmatch(line)[1], "*.,()")); ok {
					cur.BloomLevel = level
				}
			}
		case optionLine.MatchString(line) && cur != nil:
			cur.Options = append(cur.Options, strings.TrimSpace(optionLine.FindStringSubmatch(line)[2]))
		case questionLine.MatchString(line):
			flush()
			cur = &domain.Question{Content: strings.TrimSpace(strings.Trim(questionLine.FindStringSubmatch(line)[2], "*"))}
		default:
			// Continuation of a question stem that wrapped onto several lines.
			if cur != nil && len(cur.Options) == 0 && cur.CorrectAnswer == "" {
				cur.Content += " " + line
			}
		}
	}
	flush()
	return out
}

func finishScanned(q domain.Question, index int, difficulty domain.Difficulty) domain.Question {
	q.Type = inferType(q.Options)
	if !q.Type.HasOptions() {
		q.Options = []string{}
	}
	if !q.BloomLevel.Valid() {
		q.BloomLevel = domain.BloomLevels[index%len(domain.BloomLevels)]
	}
	q.BloomCode = q.BloomLevel.Code()
	q.Difficulty = difficulty
	q.Source = domain.OriginTextScan
	return q
}
