package handler

import (
	"io"
	"mime/multipart"

	"bloomforge/internal/domain"
	"bloomforge/internal/logger"
	"bloomforge/internal/middleware"
	"bloomforge/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	fieldDocument  = "document"
	fieldDocuments = "documents"
)

// DocumentHandler handles document upload HTTP requests
type DocumentHandler struct {
	service service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler instance
func NewDocumentHandler(service service.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		service: service,
	}
}

// Upload godoc
// @Summary Upload a document
// @Description Extracts the text of one document and opens a new session for it
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param document formData file true "PDF, Word, PowerPoint, Excel, JPEG or PNG file"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /upload [post]
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile(fieldDocument)
	if err != nil {
		return domain.NewUploadRejectedError("No file uploaded").WithContext("field", fieldDocument)
	}

	upload, err := readUpload(fh)
	if err != nil {
		return err
	}

	resp, err := h.service.Upload(c.UserContext(), upload)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// UploadMultiple godoc
// @Summary Upload several documents
// @Description Extracts every document into one multi-document session. Files that fail are listed in "failed"
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param documents formData file true "Documents (repeat the field for each file)"
// @Success 200 {object} dto.MultiUploadResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /upload-multiple [post]
func (h *DocumentHandler) UploadMultiple(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return domain.NewUploadRejectedError("No files uploaded").WithContext("field", fieldDocuments)
	}
	headers := form.File[fieldDocuments]
	if len(headers) == 0 {
		return domain.NewUploadRejectedError("No files uploaded").WithContext("field", fieldDocuments)
	}

	uploads := make([]domain.Upload, 0, len(headers))
	for _, fh := range headers {
		upload, err := readUpload(fh)
		if err != nil {
			return err
		}
		uploads = append(uploads, upload)
	}

	resp, err := h.service.UploadMultiple(c.UserContext(), uploads)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// AddDocument godoc
// @Summary Add a document to a session
// @Description Extracts one more document into an existing session
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param document formData file true "Document"
// @Success 200 {object} dto.AddDocumentResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /add-document/{sessionId} [post]
func (h *DocumentHandler) AddDocument(c *fiber.Ctx) error {
	sessionID := middleware.SessionID(c)

	fh, err := c.FormFile(fieldDocument)
	if err != nil {
		return domain.NewUploadRejectedError("No file uploaded").WithContext("field", fieldDocument)
	}
	upload, err := readUpload(fh)
	if err != nil {
		return err
	}

	resp, err := h.service.AddDocument(c.UserContext(), sessionID, upload)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListDocuments godoc
// @Summary List session documents
// @Tags documents
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} dto.DocumentListResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /documents/{sessionId} [get]
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	resp, err := h.service.ListDocuments(c.UserContext(), middleware.SessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func readUpload(fh *multipart.FileHeader) (domain.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		logger.Get().Error("Failed to open uploaded file", zap.String("file_name", fh.Filename), zap.Error(err))
		return domain.Upload{}, domain.NewInternalError("Failed to read uploaded file", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Upload{}, domain.NewInternalError("Failed to read uploaded file", err)
	}
	return domain.Upload{
		FileName: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}
