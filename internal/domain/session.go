package domain

import (
	"context"
	"time"
)

// Session associates uploaded documents with their extracted content for a
// bounded time.
type Session struct {
	ID            string     `json:"id"`
	Documents     []Document `json:"documents"`
	MultiDocument bool       `json:"multiDocument"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// NewSession creates a session holding the given documents.
func NewSession(id string, multi bool, docs ...Document) *Session {
	now := time.Now()
	return &Session{
		ID:            id,
		Documents:     docs,
		MultiDocument: multi,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Content returns the text the generators work from.
func (s *Session) Content() string {
	if len(s.Documents) == 0 {
		return ""
	}
	return CombinedContent(s.Documents)
}

// AnalysisText returns the header-free text used for term analysis.
func (s *Session) AnalysisText() string {
	return AnalysisContent(s.Documents)
}

// IsMultiDocument is true for sessions created through the multi-upload
// path or that have grown past one document.
func (s *Session) IsMultiDocument() bool {
	return s.MultiDocument || len(s.Documents) > 1
}

// ContentLength sums the extracted text length over all documents.
func (s *Session) ContentLength() int {
	n := 0
	for _, d := range s.Documents {
		n += len(d.Content)
	}
	return n
}

// Clone returns a copy that shares no slices with s.
func (s *Session) Clone() *Session {
	c := *s
	c.Documents = make([]Document, len(s.Documents))
	for i, d := range s.Documents {
		d.VisualElements = append([]VisualElement(nil), d.VisualElements...)
		c.Documents[i] = d
	}
	return &c
}

// ExpiresAt is the purge deadline. Sessions are never renewed.
func (s *Session) ExpiresAt(ttl time.Duration) time.Time {
	return s.CreatedAt.Add(ttl)
}

// SessionStore holds sessions for their TTL. Update serialises mutations of
// one session; distinct sessions never block each other.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
}
