package extractor

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/unidoc/unioffice/v2/common/license"
	"github.com/unidoc/unioffice/v2/document"
	"github.com/unidoc/unioffice/v2/presentation"
	"github.com/xuri/excelize/v2"
)

// minLegacyRun is the shortest printable run kept from binary Office files.
const minLegacyRun = 12

// SetOfficeLicense registers a metered unioffice key. Without one, DOCX and
// PPTX parsing fails and those uploads are reported as extraction failures.
func SetOfficeLicense(key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	return license.SetMeteredKey(key)
}

func readDOCX(data []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX: %w", err)
	}

	var b strings.Builder
	for _, p := range doc.Paragraphs() {
		for _, r := range p.Runs() {
			b.WriteString(r.Text())
		}
		b.WriteString("\n")
	}
	for _, t := range doc.Tables() {
		for _, row := range t.Rows() {
			cells := make([]string, 0, len(row.Cells()))
			for _, c := range row.Cells() {
				var cb strings.Builder
				for _, p := range c.Paragraphs() {
					for _, r := range p.Runs() {
						cb.WriteString(r.Text())
					}
				}
				cells = append(cells, strings.TrimSpace(cb.String()))
			}
			b.WriteString(strings.Join(cells, " | "))
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func readPPTX(data []byte) (string, int, error) {
	ppt, err := presentation.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open PPTX: %w", err)
	}

	slides := ppt.Slides()
	var b strings.Builder
	for i, s := range slides {
		text := strings.TrimSpace(s.ExtractText().Text())
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "Slide %d\n%s\n\n", i+1, text)
	}
	return b.String(), len(slides), nil
}

// readXLSX renders every sheet as a markdown table.
func readXLSX(data []byte) (string, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open XLSX: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	var b strings.Builder
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		width := 0
		for _, row := range rows {
			if len(row) > width {
				width = len(row)
			}
		}
		fmt.Fprintf(&b, "## %s\n\n", sheet)
		writeRow(&b, rows[0], width)
		b.WriteString("|" + strings.Repeat(" --- |", width) + "\n")
		for _, row := range rows[1:] {
			writeRow(&b, row, width)
		}
		b.WriteString("\n")
	}
	return b.String(), len(sheets), nil
}

func writeRow(b *strings.Builder, row []string, width int) {
	cells := make([]string, width)
	copy(cells, row)
	for i := range cells {
		cells[i] = strings.ReplaceAll(strings.TrimSpace(cells[i]), "|", "\\|")
	}
	b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
}

// ScanPrintableRuns recovers text from binary Office formats by collecting
// runs of printable characters. UTF-16LE text (a printable byte followed by
// a zero byte) is read as well as single-byte text. Runs shorter than minRun
// or without any letters are dropped.
func ScanPrintableRuns(data []byte, minRun int) string {
	var runs []string
	cur := make([]byte, 0, 256)
	flush := func() {
		if len(cur) >= minRun {
			run := strings.Join(strings.Fields(string(cur)), " ")
			if len(run) >= minRun && strings.IndexFunc(run, unicode.IsLetter) >= 0 {
				runs = append(runs, run)
			}
		}
		cur = cur[:0]
	}

	for i := 0; i < len(data); i++ {
		c := data[i]
		if c == '\t' || c == '\r' || c == '\n' || (c >= 0x20 && c < 0x7f) {
			cur = append(cur, c)
			if i+1 < len(data) && data[i+1] == 0 {
				i++
			}
			continue
		}
		flush()
	}
	flush()
	return strings.Join(runs, "\n")
}
