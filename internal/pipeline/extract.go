package pipeline

import (
	"bytes"
	"fmt"
	"strings"

	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

var (
	pdfMagic = []byte("%PDF")
	zipMagic = []byte("PK\x03\x04")
)

// InputKind is the detected container of an uploaded report.
type InputKind string

const (
	InputText InputKind = "text"
	InputXLSX InputKind = "xlsx"
	InputPDF  InputKind = "pdf"
)

func DetectInput(content []byte) InputKind {
	switch {
	case bytes.HasPrefix(content, pdfMagic):
		return InputPDF
	case bytes.HasPrefix(content, zipMagic):
		return InputXLSX
	default:
		return InputText
	}
}

// NormalizeInput turns any supported report container into the plain text the
// parser works on. Text passes through untouched so re-running a file is
// idempotent.
func NormalizeInput(content []byte) ([]byte, error) {
	switch DetectInput(content) {
	case InputPDF:
		return pdfToText(content)
	case InputXLSX:
		return xlsxToText(content)
	default:
		return content, nil
	}
}

func pdfToText(content []byte) ([]byte, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	var buf bytes.Buffer
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// xlsxToText renders the first sheet back into quoted report lines so the
// same field extraction runs regardless of container. Embedded quotes are
// dropped from cells because the line format cannot escape them.
func xlsxToText(content []byte) ([]byte, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var buf bytes.Buffer
	for _, row := range rows {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			cells = append(cells, `"`+strings.ReplaceAll(c, `"`, "")+`"`)
		}
		buf.WriteString(strings.Join(cells, ","))
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}
