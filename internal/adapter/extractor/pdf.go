package extractor

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"bloomforge/internal/domain"

	"github.com/fogleman/gg"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

const (
	previewWidth  = 800
	previewHeight = 1040
	previewMargin = 48
	previewChars  = 2400
)

func (e *Extractor) extractPDF(upload domain.Upload, out *domain.Extraction) (err error) {
	// ledongthuc/pdf panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(upload.Data), int64(len(upload.Data)))
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}

	pageCount := reader.NumPage()
	out.PageCount = pageCount

	var text strings.Builder
	firstPage := ""
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, perr := page.GetPlainText(nil)
		if perr != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("page %d: text extraction failed", i))
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if firstPage == "" {
			firstPage = pageText
		}
		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(pageText)
	}
	out.Content = text.String()

	if pageCount == 0 {
		return nil
	}
	png, perr := RenderPreview(upload.FileName, firstPage)
	if perr != nil {
		skipped := domain.NewImageExtractionSkippedError(perr)
		e.logger.Warn("Page preview skipped", zap.String("file_name", upload.FileName), zap.Error(skipped))
		out.Warnings = append(out.Warnings, skipped.Error())
		return nil
	}
	name := strings.TrimSuffix(upload.FileName, ".pdf") + "-page-1.png"
	out.Assets = append(out.Assets, domain.Asset{Name: name, ContentType: "image/png", Data: png})
	out.VisualElements = append(out.VisualElements, domain.VisualElement{
		Type:        "page-preview",
		Path:        name,
		Description: fmt.Sprintf("Preview of page 1 of %d", pageCount),
	})
	return nil
}

// RenderPreview draws the text of a page onto a PNG card.
func RenderPreview(title, text string) ([]byte, error) {
	dc := gg.NewContext(previewWidth, previewHeight)
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetColor(color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff})
	dc.DrawString(title, previewMargin, previewMargin)
	dc.SetLineWidth(1)
	dc.DrawLine(previewMargin, previewMargin+10, previewWidth-previewMargin, previewMargin+10)
	dc.Stroke()

	if r := []rune(text); len(r) > previewChars {
		text = string(r[:previewChars]) + "..."
	}
	dc.DrawStringWrapped(text, previewMargin, previewMargin+30, 0, 0,
		previewWidth-2*previewMargin, 1.4, gg.AlignLeft)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
