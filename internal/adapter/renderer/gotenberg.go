// Package renderer converts exam paper HTML to PDF through a
// Gotenberg-compatible headless Chromium endpoint.
package renderer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"bloomforge/internal/config"
	"bloomforge/internal/domain"

	"go.uber.org/zap"
)

const maxErrorBody = 2048

// Gotenberg implements domain.PDFRenderer.
type Gotenberg struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// New returns nil when no renderer URL is configured; callers then always
// take the HTML fallback.
func New(cfg config.RendererConfig, logger *zap.Logger) *Gotenberg {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gotenberg{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// RenderPDF posts the page as index.html and returns the PDF bytes. Every
// failure is a RENDERING_FAILED DomainError.
func (g *Gotenberg) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	if g == nil {
		return nil, domain.NewRenderingFailedError(fmt.Errorf("no renderer configured"))
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, domain.NewRenderingFailedError(err)
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, domain.NewRenderingFailedError(err)
	}
	_ = mw.WriteField("printBackground", "true")
	_ = mw.WriteField("preferCssPageSize", "true")
	if err := mw.Close(); err != nil {
		return nil, domain.NewRenderingFailedError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, &body)
	if err != nil {
		return nil, domain.NewRenderingFailedError(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewRenderingFailedError(fmt.Errorf("renderer request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, domain.NewRenderingFailedError(
			fmt.Errorf("renderer returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))))
	}
	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewRenderingFailedError(fmt.Errorf("read renderer response: %w", err))
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		return nil, domain.NewRenderingFailedError(fmt.Errorf("renderer response is not a PDF"))
	}

	g.logger.Info("Rendered exam paper PDF",
		zap.Int("html_bytes", len(html)),
		zap.Int("pdf_bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)))
	return pdf, nil
}
