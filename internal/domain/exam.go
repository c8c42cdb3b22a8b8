package domain

import (
	"context"
	"time"
)

// ExamConfig is the header metadata of an exam paper.
type ExamConfig struct {
	Institution  string   `json:"institution"`
	CourseName   string   `json:"courseName"`
	CourseCode   string   `json:"courseCode"`
	ExamTitle    string   `json:"examTitle"`
	Duration     string   `json:"duration"`
	MaxMarks     int      `json:"maxMarks"`
	Date         string   `json:"date"`
	Instructions []string `json:"instructions"`
}

// ExamPart is one section of the paper.
type ExamPart struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	TotalMarks  int        `json:"totalMarks"`
	Questions   []Question `json:"questions"`
}

// LevelSummary aggregates the questions of one Bloom level.
type LevelSummary struct {
	Count int    `json:"count"`
	Marks int    `json:"marks"`
	Code  string `json:"code"`
}

// ExamPaper is derived entirely from a question list plus ExamConfig.
type ExamPaper struct {
	Header      ExamConfig                  `json:"header"`
	Parts       []ExamPart                  `json:"parts"`
	Summary     map[BloomLevel]LevelSummary `json:"summary"`
	TotalMarks  int                         `json:"totalMarks"`
	GeneratedAt time.Time                   `json:"generatedAt"`
}

// PDFRenderer converts a rendered HTML page to PDF bytes.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}
