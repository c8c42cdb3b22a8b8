// Package exam assembles question lists into exam papers and renders them
// as HTML or Markdown.
package exam

import (
	"fmt"
	"math"
	"time"

	"bloomforge/internal/domain"
)

// PartAShare is the fraction of questions placed in Part A, rounded up.
const PartAShare = 0.6

// Assemble splits questions into Part A and Part B and summarises them by
// Bloom level. The summary covers the whole list. Mark totals are not
// checked against cfg.MaxMarks.
func Assemble(questions []domain.Question, cfg domain.ExamConfig, now time.Time) *domain.ExamPaper {
	split := int(math.Ceil(float64(len(questions)) * PartAShare))
	if split > len(questions) {
		split = len(questions)
	}

	paper := &domain.ExamPaper{
		Header:      withDefaults(cfg, now),
		Summary:     Summarize(questions),
		TotalMarks:  domain.TotalMarks(questions),
		GeneratedAt: now,
	}
	paper.Parts = append(paper.Parts, newPart("Part A", questions[:split]))
	if split < len(questions) {
		paper.Parts = append(paper.Parts, newPart("Part B", questions[split:]))
	}
	return paper
}

// Summarize counts questions and marks per Bloom level.
func Summarize(questions []domain.Question) map[domain.BloomLevel]domain.LevelSummary {
	summary := make(map[domain.BloomLevel]domain.LevelSummary)
	for _, q := range questions {
		s := summary[q.BloomLevel]
		s.Count++
		s.Marks += q.Marks
		s.Code = q.BloomLevel.Code()
		if s.Code == "" {
			s.Code = q.BloomCode
		}
		summary[q.BloomLevel] = s
	}
	return summary
}

func newPart(name string, questions []domain.Question) domain.ExamPart {
	qs := make([]domain.Question, len(questions))
	copy(qs, questions)
	total := domain.TotalMarks(qs)
	return domain.ExamPart{
		Name:        name,
		Description: partDescription(len(qs), total),
		TotalMarks:  total,
		Questions:   qs,
	}
}

func partDescription(count, total int) string {
	if count == 1 {
		return fmt.Sprintf("Answer the question (%d marks)", total)
	}
	return fmt.Sprintf("Answer all %d questions (Total: %d marks)", count, total)
}

func withDefaults(cfg domain.ExamConfig, now time.Time) domain.ExamConfig {
	if cfg.ExamTitle == "" {
		cfg.ExamTitle = "Examination"
	}
	if cfg.Date == "" {
		cfg.Date = now.Format("2006-01-02")
	}
	if len(cfg.Instructions) == 0 {
		cfg.Instructions = []string{
			"Answer all questions.",
			"Marks for each question are shown in brackets.",
		}
	}
	return cfg
}
