package domain

import (
	"context"
	"io"
	"strings"
	"time"
)

// FileType is the declared family of an uploaded document.
type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeDOC   FileType = "doc"
	FileTypeDOCX  FileType = "docx"
	FileTypePPT   FileType = "ppt"
	FileTypePPTX  FileType = "pptx"
	FileTypeXLS   FileType = "xls"
	FileTypeXLSX  FileType = "xlsx"
	FileTypeImage FileType = "image"
)

// PlaceholderContent stands in for documents from which no text could be read.
const PlaceholderContent = "No readable text content was found in the uploaded document."

// VisualElement is a non-text artefact pulled out of a document.
type VisualElement struct {
	Type        string `json:"type"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

// Document is one extracted upload. It is immutable after extraction.
type Document struct {
	ID             string          `json:"id"`
	FileName       string          `json:"fileName"`
	Content        string          `json:"content"`
	VisualElements []VisualElement `json:"visualElements"`
	FileType       FileType        `json:"fileType"`
	MimeType       string          `json:"mimeType"`
	Size           int64           `json:"size"`
	StoredPath     string          `json:"storedPath"`
	UploadedAt     time.Time       `json:"uploadedAt"`
}

// Upload is a raw file as received from a client.
type Upload struct {
	FileName string
	MimeType string
	Data     []byte
}

// Asset is a derived file (page preview, embedded image) produced during
// extraction. VisualElement.Path refers to Asset.Name until the asset is stored.
type Asset struct {
	Name        string
	ContentType string
	Data        []byte
}

// Extraction is the outcome of running a file through the content extractor.
type Extraction struct {
	Content        string
	VisualElements []VisualElement
	Assets         []Asset
	FileType       FileType
	MimeType       string
	PageCount      int
	Warnings       []string
}

// ContentExtractor turns a raw file into plain text plus visual elements.
type ContentExtractor interface {
	Extract(ctx context.Context, upload Upload) (*Extraction, error)
}

// OCRService reads text out of an image.
type OCRService interface {
	RecognizeText(ctx context.Context, image []byte, mimeType string) (string, error)
}

// FileStore keeps uploaded files and derived artefacts for a session.
type FileStore interface {
	Save(ctx context.Context, sessionID, name string, data []byte, contentType string) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes one stored file. A missing file is not an error.
	Delete(ctx context.Context, path string) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// CombinedContent joins the content of all documents. A single document is
// returned verbatim; several are separated by a header naming each file.
func CombinedContent(docs []Document) string {
	if len(docs) == 1 {
		return docs[0].Content
	}
	var b strings.Builder
	for i, d := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("--- Document: ")
		b.WriteString(d.FileName)
		b.WriteString(" ---\n")
		b.WriteString(d.Content)
	}
	return b.String()
}

// AnalysisContent joins document text without the per-file headers so file
// names never surface as key terms.
func AnalysisContent(docs []Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.Content)
	}
	return strings.Join(parts, "\n\n")
}
