package exam

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"bloomforge/internal/domain"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

//go:embed templates/exam.html.tmpl
var templateFS embed.FS

// SummaryRow is one line of the Bloom level table, in taxonomy order.
type SummaryRow struct {
	Level domain.BloomLevel `json:"level"`
	domain.LevelSummary
}

var paperTemplate = template.Must(template.New("exam.html.tmpl").Funcs(template.FuncMap{
	"maxMarks": func(p *domain.ExamPaper) int {
		if p.Header.MaxMarks > 0 {
			return p.Header.MaxMarks
		}
		return p.TotalMarks
	},
	"partStart": func(p *domain.ExamPaper, name string) int {
		n := 1
		for _, part := range p.Parts {
			if part.Name == name {
				break
			}
			n += len(part.Questions)
		}
		return n
	},
	"levels":        SummaryRows,
	"questionCount": questionCount,
}).ParseFS(templateFS, "templates/exam.html.tmpl"))

// SummaryRows orders the summary from REMEMBER to CREATE, skipping levels
// without questions.
func SummaryRows(p *domain.ExamPaper) []SummaryRow {
	rows := make([]SummaryRow, 0, len(p.Summary))
	for _, level := range domain.BloomLevels {
		if s, ok := p.Summary[level]; ok && s.Count > 0 {
			rows = append(rows, SummaryRow{Level: level, LevelSummary: s})
		}
	}
	return rows
}

func questionCount(p *domain.ExamPaper) int {
	n := 0
	for _, part := range p.Parts {
		n += len(part.Questions)
	}
	return n
}

// RenderHTML renders a printable exam paper.
func RenderHTML(p *domain.ExamPaper) (string, error) {
	var buf bytes.Buffer
	if err := paperTemplate.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("render exam paper: %w", err)
	}
	return buf.String(), nil
}

// RenderMarkdown converts the HTML rendering to Markdown.
func RenderMarkdown(p *domain.ExamPaper) (string, error) {
	html, err := RenderHTML(p)
	if err != nil {
		return "", err
	}
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert exam paper to markdown: %w", err)
	}
	return md, nil
}
