package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bloomforge/internal/domain"
	"bloomforge/internal/dto"
	"bloomforge/internal/logger"
	"bloomforge/internal/telemetry"
	"bloomforge/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultUploadConcurrency = 4

// DocumentService turns uploads into session documents.
type DocumentService interface {
	Upload(ctx context.Context, upload domain.Upload) (*dto.UploadResponse, error)
	UploadMultiple(ctx context.Context, uploads []domain.Upload) (*dto.MultiUploadResponse, error)
	AddDocument(ctx context.Context, sessionID string, upload domain.Upload) (*dto.AddDocumentResponse, error)
	ListDocuments(ctx context.Context, sessionID string) (*dto.DocumentListResponse, error)
}

type documentService struct {
	extractor   domain.ContentExtractor
	sessions    domain.SessionStore
	files       domain.FileStore
	maxFiles    int
	sessionTTL  time.Duration
	concurrency int
}

// NewDocumentService creates a DocumentService. files may be nil, in which
// case neither originals nor previews are kept.
func NewDocumentService(
	extractor domain.ContentExtractor,
	sessions domain.SessionStore,
	files domain.FileStore,
	maxFiles int,
	sessionTTL time.Duration,
) DocumentService {
	if maxFiles <= 0 {
		maxFiles = 10
	}
	return &documentService{
		extractor:   extractor,
		sessions:    sessions,
		files:       files,
		maxFiles:    maxFiles,
		sessionTTL:  sessionTTL,
		concurrency: defaultUploadConcurrency,
	}
}

type ingested struct {
	doc      domain.Document
	warnings []string
}

func (s *documentService) Upload(ctx context.Context, upload domain.Upload) (*dto.UploadResponse, error) {
	sessionID := util.NewULID()

	in, err := s.ingest(ctx, sessionID, upload)
	if err != nil {
		s.discardFiles(ctx, sessionID)
		return nil, err
	}

	if err := s.sessions.Create(ctx, domain.NewSession(sessionID, false, in.doc)); err != nil {
		s.discardFiles(ctx, sessionID)
		return nil, domain.NewInternalError("Failed to create session", err)
	}

	logger.ForSession(sessionID).Info("Document uploaded",
		zap.String("file_name", in.doc.FileName),
		zap.String("file_type", string(in.doc.FileType)),
		zap.Int("content_length", len(in.doc.Content)),
		zap.Int("visual_elements", len(in.doc.VisualElements)))

	summary := newDocumentSummary(in.doc, in.warnings)
	return &dto.UploadResponse{
		SessionID:           sessionID,
		Message:             "Document uploaded and processed successfully",
		ContentLength:       summary.ContentLength,
		VisualElementsCount: summary.VisualElementsCount,
		Document:            summary,
	}, nil
}

// UploadMultiple extracts the files concurrently. A file that fails is
// reported in Failed and skipped; the call only fails when none succeed.
func (s *documentService) UploadMultiple(ctx context.Context, uploads []domain.Upload) (*dto.MultiUploadResponse, error) {
	if len(uploads) == 0 {
		return nil, domain.NewUploadRejectedError("No files uploaded")
	}
	if len(uploads) > s.maxFiles {
		return nil, domain.NewUploadRejectedError(fmt.Sprintf("Too many files: at most %d are accepted", s.maxFiles)).
			WithContext("file_count", len(uploads))
	}

	sessionID := util.NewULID()
	log := logger.ForSession(sessionID)

	results := make([]*ingested, len(uploads))
	failures := make([]error, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, upload := range uploads {
		g.Go(func() error {
			in, err := s.ingest(gctx, sessionID, upload)
			if err != nil {
				log.Warn("Skipping file of multi upload", zap.String("file_name", upload.FileName), zap.Error(err))
				failures[i] = err
				return nil
			}
			results[i] = &in
			return nil
		})
	}
	_ = g.Wait()

	resp := &dto.MultiUploadResponse{SessionID: sessionID, Documents: []dto.DocumentSummary{}}
	docs := make([]domain.Document, 0, len(uploads))
	for i, in := range results {
		if in == nil {
			resp.Failed = append(resp.Failed, failedUpload(uploads[i].FileName, failures[i]))
			continue
		}
		docs = append(docs, in.doc)
		summary := newDocumentSummary(in.doc, in.warnings)
		resp.Documents = append(resp.Documents, summary)
		resp.TotalContentLength += summary.ContentLength
	}

	if len(docs) == 0 {
		s.discardFiles(ctx, sessionID)
		return nil, domain.NewUploadRejectedError("None of the uploaded files could be processed").
			WithContext("failed", resp.Failed)
	}
	if err := s.sessions.Create(ctx, domain.NewSession(sessionID, true, docs...)); err != nil {
		s.discardFiles(ctx, sessionID)
		return nil, domain.NewInternalError("Failed to create session", err)
	}

	resp.TotalDocuments = len(docs)
	resp.Message = fmt.Sprintf("%d of %d documents processed successfully", len(docs), len(uploads))
	log.Info("Multi document upload completed",
		zap.Int("documents", len(docs)),
		zap.Int("failed", len(resp.Failed)),
		zap.Int("total_content_length", resp.TotalContentLength))
	return resp, nil
}

func (s *documentService) AddDocument(ctx context.Context, sessionID string, upload domain.Upload) (*dto.AddDocumentResponse, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	in, err := s.ingest(ctx, sessionID, upload)
	if err != nil {
		return nil, err
	}

	updated, err := s.sessions.Update(ctx, sessionID, func(sess *domain.Session) error {
		if len(sess.Documents) >= s.maxFiles {
			return domain.NewUploadRejectedError(fmt.Sprintf("Session already holds %d documents", len(sess.Documents)))
		}
		sess.Documents = append(sess.Documents, in.doc)
		sess.MultiDocument = true
		return nil
	})
	if err != nil {
		s.discardDocument(ctx, sessionID, in.doc)
		return nil, err
	}

	logger.ForSession(sessionID).Info("Document added to session",
		zap.String("file_name", in.doc.FileName),
		zap.Int("total_documents", len(updated.Documents)))

	return &dto.AddDocumentResponse{
		SessionID:          sessionID,
		Message:            "Document added successfully",
		Document:           newDocumentSummary(in.doc, in.warnings),
		TotalDocuments:     len(updated.Documents),
		TotalContentLength: updated.ContentLength(),
	}, nil
}

func (s *documentService) ListDocuments(ctx context.Context, sessionID string) (*dto.DocumentListResponse, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resp := &dto.DocumentListResponse{
		SessionID:          sess.ID,
		Documents:          make([]dto.DocumentSummary, 0, len(sess.Documents)),
		TotalDocuments:     len(sess.Documents),
		TotalContentLength: sess.ContentLength(),
		IsMultiDocument:    sess.IsMultiDocument(),
	}
	if s.sessionTTL > 0 {
		resp.ExpiresAt = sess.ExpiresAt(s.sessionTTL)
	}
	for _, d := range sess.Documents {
		resp.Documents = append(resp.Documents, newDocumentSummary(d, nil))
	}
	return resp, nil
}

// ingest extracts one upload and stores the original plus derived assets.
// Asset storage failures only drop the affected visual element.
func (s *documentService) ingest(ctx context.Context, sessionID string, upload domain.Upload) (in ingested, err error) {
	ctx, span := telemetry.Start(ctx, "document.ingest",
		attribute.String("session.id", sessionID),
		attribute.String("file.name", upload.FileName),
		attribute.Int("file.size", len(upload.Data)))
	defer func() { telemetry.End(span, err) }()

	extraction, err := s.extractor.Extract(ctx, upload)
	if err != nil {
		return ingested{}, err
	}

	doc := domain.Document{
		ID:             util.NewULID(),
		FileName:       upload.FileName,
		Content:        extraction.Content,
		VisualElements: extraction.VisualElements,
		FileType:       extraction.FileType,
		MimeType:       extraction.MimeType,
		Size:           int64(len(upload.Data)),
		UploadedAt:     time.Now(),
	}
	warnings := append([]string(nil), extraction.Warnings...)

	if s.files == nil {
		return ingested{doc: doc, warnings: warnings}, nil
	}

	stored, err := s.files.Save(ctx, sessionID, doc.ID+"-"+upload.FileName, upload.Data, extraction.MimeType)
	if err != nil {
		return ingested{}, domain.NewInternalError("Failed to store uploaded file", err)
	}
	doc.StoredPath = stored

	paths := make(map[string]string, len(extraction.Assets))
	for _, asset := range extraction.Assets {
		ref, err := s.files.Save(ctx, sessionID, doc.ID+"-"+asset.Name, asset.Data, asset.ContentType)
		if err != nil {
			skipped := domain.NewImageExtractionSkippedError(err)
			logger.ForSession(sessionID).Warn("Visual element not stored", zap.String("asset", asset.Name), zap.Error(skipped))
			warnings = append(warnings, skipped.Error())
			continue
		}
		paths[asset.Name] = ref
	}

	elements := make([]domain.VisualElement, 0, len(doc.VisualElements))
	for _, ve := range doc.VisualElements {
		switch {
		case ve.Path == upload.FileName:
			ve.Path = stored
		case paths[ve.Path] != "":
			ve.Path = paths[ve.Path]
		default:
			continue
		}
		elements = append(elements, ve)
	}
	doc.VisualElements = elements

	return ingested{doc: doc, warnings: warnings}, nil
}

func (s *documentService) discardFiles(ctx context.Context, sessionID string) {
	if s.files == nil {
		return
	}
	if err := s.files.DeleteSession(ctx, sessionID); err != nil {
		logger.ForSession(sessionID).Warn("Failed to remove stored files", zap.Error(err))
	}
}

// discardDocument removes the files stored for a document that never made it
// into its session.
func (s *documentService) discardDocument(ctx context.Context, sessionID string, doc domain.Document) {
	if s.files == nil || doc.StoredPath == "" {
		return
	}
	paths := []string{doc.StoredPath}
	for _, ve := range doc.VisualElements {
		if ve.Path != "" && ve.Path != doc.StoredPath {
			paths = append(paths, ve.Path)
		}
	}
	for _, p := range paths {
		if err := s.files.Delete(ctx, p); err != nil {
			logger.ForSession(sessionID).Warn("Failed to remove stored file", zap.String("path", p), zap.Error(err))
		}
	}
}

func newDocumentSummary(d domain.Document, warnings []string) dto.DocumentSummary {
	return dto.DocumentSummary{
		ID:                  d.ID,
		FileName:            d.FileName,
		FileType:            string(d.FileType),
		MimeType:            d.MimeType,
		Size:                d.Size,
		ContentLength:       len(d.Content),
		VisualElementsCount: len(d.VisualElements),
		Warnings:            warnings,
		UploadedAt:          d.UploadedAt,
	}
}

func failedUpload(fileName string, err error) dto.FailedUpload {
	f := dto.FailedUpload{FileName: fileName, Code: string(domain.CodeInternal)}
	if err != nil {
		f.Message = err.Error()
	}
	var de *domain.DomainError
	if errors.As(err, &de) {
		f.Code = string(de.Code)
		f.Message = de.Message
	}
	return f
}
