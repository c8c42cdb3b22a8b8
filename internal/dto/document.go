package dto

import "time"

// DocumentSummary describes one extracted document without its content.
// @Description Extracted document information
type DocumentSummary struct {
	ID                  string    `json:"id"`
	FileName            string    `json:"fileName"`
	FileType            string    `json:"fileType"`
	MimeType            string    `json:"mimeType"`
	Size                int64     `json:"size"`
	ContentLength       int       `json:"contentLength"`
	VisualElementsCount int       `json:"visualElementsCount"`
	Warnings            []string  `json:"warnings,omitempty"`
	UploadedAt          time.Time `json:"uploadedAt"`
}

// UploadResponse is returned by POST /api/upload.
// @Description Result of a single document upload
type UploadResponse struct {
	SessionID           string          `json:"sessionId"`
	Message             string          `json:"message"`
	ContentLength       int             `json:"contentLength"`
	VisualElementsCount int             `json:"visualElementsCount"`
	Document            DocumentSummary `json:"document"`
}

// FailedUpload names a file of a batch that could not be processed.
type FailedUpload struct {
	FileName string `json:"fileName"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// MultiUploadResponse is returned by POST /api/upload-multiple.
// @Description Result of a multi document upload
type MultiUploadResponse struct {
	SessionID          string            `json:"sessionId"`
	Message            string            `json:"message"`
	Documents          []DocumentSummary `json:"documents"`
	TotalDocuments     int               `json:"totalDocuments"`
	TotalContentLength int               `json:"totalContentLength"`
	Failed             []FailedUpload    `json:"failed,omitempty"`
}

// AddDocumentResponse is returned by POST /api/add-document/:sessionId.
type AddDocumentResponse struct {
	SessionID          string          `json:"sessionId"`
	Message            string          `json:"message"`
	Document           DocumentSummary `json:"document"`
	TotalDocuments     int             `json:"totalDocuments"`
	TotalContentLength int             `json:"totalContentLength"`
}

// DocumentListResponse is returned by GET /api/documents/:sessionId.
type DocumentListResponse struct {
	SessionID          string            `json:"sessionId"`
	Documents          []DocumentSummary `json:"documents"`
	TotalDocuments     int               `json:"totalDocuments"`
	TotalContentLength int               `json:"totalContentLength"`
	IsMultiDocument    bool              `json:"isMultiDocument"`
	ExpiresAt          time.Time         `json:"expiresAt"`
}
