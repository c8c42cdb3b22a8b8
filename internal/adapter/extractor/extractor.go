// Package extractor turns uploaded files into plain text plus visual
// elements. The real content type is sniffed from the bytes; the declared
// type and file name are only consulted when sniffing is inconclusive.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"bloomforge/internal/domain"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

type format struct {
	fileType domain.FileType
	mimes    []string
	exts     []string
}

// allowlist in detection order. OOXML types come before their zip parent.
var allowlist = []format{
	{domain.FileTypePDF, []string{"application/pdf"}, []string{".pdf"}},
	{domain.FileTypeDOCX, []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, []string{".docx"}},
	{domain.FileTypePPTX, []string{"application/vnd.openxmlformats-officedocument.presentationml.presentation"}, []string{".pptx"}},
	{domain.FileTypeXLSX, []string{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}, []string{".xlsx"}},
	{domain.FileTypeDOC, []string{"application/msword"}, []string{".doc"}},
	{domain.FileTypePPT, []string{"application/vnd.ms-powerpoint"}, []string{".ppt"}},
	{domain.FileTypeXLS, []string{"application/vnd.ms-excel"}, []string{".xls"}},
	{domain.FileTypeImage, []string{"image/jpeg", "image/png"}, []string{".jpg", ".jpeg", ".png"}},
}

// containers are generic sniff results that the file extension may refine.
var containers = []string{"application/zip", "application/x-ole-storage", "application/octet-stream"}

// Extractor implements domain.ContentExtractor.
type Extractor struct {
	ocr         domain.OCRService
	maxFileSize int64
	logger      *zap.Logger
}

// New creates an Extractor. ocr may be nil, in which case images yield the
// placeholder content.
func New(ocr domain.OCRService, maxFileSize int64, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{ocr: ocr, maxFileSize: maxFileSize, logger: logger}
}

// Detect resolves the file type of an upload or reports UPLOAD_REJECTED.
func Detect(upload domain.Upload) (domain.FileType, string, error) {
	mtype := mimetype.Detect(upload.Data)
	for _, f := range allowlist {
		for _, m := range f.mimes {
			if mtype.Is(m) {
				return f.fileType, m, nil
			}
		}
	}

	ext := strings.ToLower(filepath.Ext(upload.FileName))
	generic := false
	for _, c := range containers {
		if mtype.Is(c) {
			generic = true
			break
		}
	}
	if generic {
		for _, f := range allowlist {
			for _, e := range f.exts {
				if e == ext && f.fileType != domain.FileTypePDF && f.fileType != domain.FileTypeImage {
					return f.fileType, f.mimes[0], nil
				}
			}
		}
	}

	return "", mtype.String(), domain.NewUploadRejectedError(
		fmt.Sprintf("Unsupported file type %s. Allowed: PDF, DOC, DOCX, PPT, PPTX, XLS, XLSX, JPEG, PNG", mtype.String())).
		WithContext("file_name", upload.FileName)
}

// Extract validates the upload and dispatches it to the matching reader.
// Only a failure to read the document body is an error; a failed page
// preview is recorded as a warning.
func (e *Extractor) Extract(ctx context.Context, upload domain.Upload) (*domain.Extraction, error) {
	if len(upload.Data) == 0 {
		return nil, domain.NewUploadRejectedError("Uploaded file is empty").WithContext("file_name", upload.FileName)
	}
	if e.maxFileSize > 0 && int64(len(upload.Data)) > e.maxFileSize {
		return nil, domain.NewUploadRejectedError(
			fmt.Sprintf("File exceeds the %d MB limit", e.maxFileSize/(1024*1024))).
			WithContext("file_name", upload.FileName).
			WithContext("size", len(upload.Data))
	}

	fileType, mime, err := Detect(upload)
	if err != nil {
		return nil, err
	}

	out := &domain.Extraction{FileType: fileType, MimeType: mime}
	switch fileType {
	case domain.FileTypePDF:
		err = e.extractPDF(upload, out)
	case domain.FileTypeDOCX:
		out.Content, err = readDOCX(upload.Data)
	case domain.FileTypePPTX:
		out.Content, out.PageCount, err = readPPTX(upload.Data)
	case domain.FileTypeXLSX:
		out.Content, out.PageCount, err = readXLSX(upload.Data)
	case domain.FileTypeDOC, domain.FileTypePPT, domain.FileTypeXLS:
		out.Content = ScanPrintableRuns(upload.Data, minLegacyRun)
	case domain.FileTypeImage:
		err = e.extractImage(ctx, upload, mime, out)
	}
	if err != nil {
		if domain.HasCode(err, domain.CodeExtractionFailed) {
			return nil, err
		}
		return nil, domain.NewExtractionFailedError(upload.FileName, err)
	}

	out.Content = strings.TrimSpace(out.Content)
	if out.Content == "" {
		out.Content = domain.PlaceholderContent
		out.Warnings = append(out.Warnings, "no readable text found")
	}
	if out.VisualElements == nil {
		out.VisualElements = []domain.VisualElement{}
	}

	e.logger.Debug("Extracted document",
		zap.String("file_name", upload.FileName),
		zap.String("file_type", string(fileType)),
		zap.Int("content_length", len(out.Content)),
		zap.Int("visual_elements", len(out.VisualElements)))
	return out, nil
}

func (e *Extractor) extractImage(ctx context.Context, upload domain.Upload, mime string, out *domain.Extraction) error {
	out.VisualElements = append(out.VisualElements, domain.VisualElement{
		Type:        "image",
		Path:        upload.FileName,
		Description: "Uploaded image " + upload.FileName,
	})
	if e.ocr == nil {
		out.Warnings = append(out.Warnings, "ocr disabled")
		return nil
	}
	text, err := e.ocr.RecognizeText(ctx, upload.Data, mime)
	if err != nil {
		return err
	}
	out.Content = text
	out.PageCount = 1
	return nil
}
