package exam

import (
	"fmt"
	"testing"
	"time"

	"bloomforge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func sampleQuestions(n int) []domain.Question {
	qs := make([]domain.Question, n)
	for i := range qs {
		level := domain.BloomLevels[i%len(domain.BloomLevels)]
		qs[i] = domain.Question{
			ID:         fmt.Sprintf("q%d", i+1),
			Type:       domain.ShortAnswer,
			BloomLevel: level,
			BloomCode:  level.Code(),
			Content:    fmt.Sprintf("Question %d about photosynthesis?", i+1),
			Answer:     "answer",
			Marks:      i + 1,
		}
	}
	return qs
}

func TestAssemble_SplitsAtSixtyPercent(t *testing.T) {
	tests := []struct {
		n, partA, partB int
	}{
		{10, 6, 4},
		{6, 4, 2},
		{7, 5, 2},
		{3, 2, 1},
		{1, 1, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d questions", tt.n), func(t *testing.T) {
			paper := Assemble(sampleQuestions(tt.n), domain.ExamConfig{}, fixedNow)

			require.NotEmpty(t, paper.Parts)
			assert.Equal(t, "Part A", paper.Parts[0].Name)
			assert.Len(t, paper.Parts[0].Questions, tt.partA)
			if tt.partB == 0 {
				assert.Len(t, paper.Parts, 1)
				return
			}
			require.Len(t, paper.Parts, 2)
			assert.Equal(t, "Part B", paper.Parts[1].Name)
			assert.Len(t, paper.Parts[1].Questions, tt.partB)
		})
	}
}

func TestAssemble_SummaryCoversWholeList(t *testing.T) {
	qs := sampleQuestions(10)
	paper := Assemble(qs, domain.ExamConfig{MaxMarks: 100}, fixedNow)

	count, marks := 0, 0
	for _, s := range paper.Summary {
		count += s.Count
		marks += s.Marks
	}
	assert.Equal(t, 10, count)
	assert.Equal(t, 55, marks)
	assert.Equal(t, 55, paper.TotalMarks)

	// Questions 1 and 7 are REMEMBER.
	assert.Equal(t, domain.LevelSummary{Count: 2, Marks: 8, Code: "CO1"}, paper.Summary[domain.Remember])
	assert.Equal(t, domain.LevelSummary{Count: 1, Marks: 6, Code: "CO6"}, paper.Summary[domain.Create])

	assert.Equal(t, 21, paper.Parts[0].TotalMarks)
	assert.Equal(t, "Answer all 6 questions (Total: 21 marks)", paper.Parts[0].Description)
	assert.Equal(t, 34, paper.Parts[1].TotalMarks)
	assert.Equal(t, 100, paper.Header.MaxMarks, "maxMarks is carried, not validated")
}

func TestAssemble_HeaderDefaults(t *testing.T) {
	paper := Assemble(sampleQuestions(2), domain.ExamConfig{CourseName: "Biology"}, fixedNow)
	assert.Equal(t, "Examination", paper.Header.ExamTitle)
	assert.Equal(t, "2026-05-04", paper.Header.Date)
	assert.Equal(t, "Biology", paper.Header.CourseName)
	assert.NotEmpty(t, paper.Header.Instructions)
	assert.Equal(t, fixedNow, paper.GeneratedAt)
}

func TestAssemble_DoesNotAliasInput(t *testing.T) {
	qs := sampleQuestions(4)
	paper := Assemble(qs, domain.ExamConfig{}, fixedNow)
	paper.Parts[0].Questions[0].Content = "changed"
	assert.Equal(t, "Question 1 about photosynthesis?", qs[0].Content)
}

func TestRenderHTML(t *testing.T) {
	qs := sampleQuestions(5)
	qs[0].Type = domain.MultipleChoice
	qs[0].Options = []string{"Light <energy>", "Water"}

	paper := Assemble(qs, domain.ExamConfig{
		Institution: "State University",
		CourseCode:  "BIO101",
		CourseName:  "Biology",
		ExamTitle:   "Midterm",
		Duration:    "2 hours",
	}, fixedNow)

	html, err := RenderHTML(paper)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>State University</h1>")
	assert.Contains(t, html, "BIO101 - Biology")
	assert.Contains(t, html, "Maximum Marks: 15")
	assert.Contains(t, html, "Question 1 about photosynthesis?")
	assert.Contains(t, html, "Light &lt;energy&gt;", "content is escaped")
	assert.Contains(t, html, `<ol class="questions" start="4">`, "Part B continues the numbering")
	assert.Contains(t, html, "<td>REMEMBER</td><td>CO1</td><td>1</td><td>1</td>")
}

func TestRenderMarkdown(t *testing.T) {
	paper := Assemble(sampleQuestions(3), domain.ExamConfig{ExamTitle: "Quiz"}, fixedNow)
	md, err := RenderMarkdown(paper)
	require.NoError(t, err)
	assert.Contains(t, md, "Quiz")
	assert.Contains(t, md, "Part A")
	assert.Contains(t, md, "Question 3 about photosynthesis?")
	assert.NotContains(t, md, "<li>")
}

func TestSummaryRowsOrder(t *testing.T) {
	qs := sampleQuestions(6)
	paper := Assemble([]domain.Question{qs[5], qs[0], qs[3]}, domain.ExamConfig{}, fixedNow)
	rows := SummaryRows(paper)
	require.Len(t, rows, 3)
	assert.Equal(t, []domain.BloomLevel{domain.Remember, domain.Analyze, domain.Create},
		[]domain.BloomLevel{rows[0].Level, rows[1].Level, rows[2].Level})
}
