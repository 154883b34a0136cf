// Package report turns an uploaded PDF, or the built-in sample, into plain
// report text for analysis.
package report

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/Rrens/health-insights/internal/domain"
)

const pdfMIME = "application/pdf"

// Report is extracted report text plus the name it is recorded under
type Report struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Sample returns the built-in sample report
func Sample() Report {
	return Report{Name: domain.SampleReportType, Text: SampleText}
}

// Extractor pulls plain text out of a document
type Extractor interface {
	Extract(r io.ReaderAt, size int64) (string, error)
}

// PDFExtractor extracts text from every page of a PDF
type PDFExtractor struct{}

func (PDFExtractor) Extract(r io.ReaderAt, size int64) (text string, err error) {
	// the pdf reader panics on some malformed files
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("malformed pdf: %v", p)
		}
	}()

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	plain, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("failed to read pdf text: %w", err)
	}
	return buf.String(), nil
}

// Loader validates uploads and extracts their text
type Loader struct {
	maxBytes  int64
	extractor Extractor
}

// NewLoader creates a loader accepting PDFs up to maxBytes
func NewLoader(maxBytes int64, extractor Extractor) *Loader {
	if extractor == nil {
		extractor = PDFExtractor{}
	}
	return &Loader{maxBytes: maxBytes, extractor: extractor}
}

// MaxBytes returns the upload size limit
func (l *Loader) MaxBytes() int64 {
	return l.maxBytes
}

// Load validates an uploaded file and returns its text. Every rejection wraps
// domain.ErrReportRejected.
func (l *Loader) Load(name string, data []byte) (Report, error) {
	size := int64(len(data))
	if size == 0 {
		return Report{}, fmt.Errorf("%w: the uploaded file is empty", domain.ErrReportRejected)
	}
	if size > l.maxBytes {
		return Report{}, fmt.Errorf("%w: %w: file size (%.1fMB) exceeds the %dMB limit",
			domain.ErrReportRejected, domain.ErrReportTooLarge, float64(size)/(1<<20), l.maxBytes>>20)
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return Report{}, fmt.Errorf("%w: only PDF files are supported", domain.ErrReportRejected)
	}
	if mt := mimetype.Detect(data); !mt.Is(pdfMIME) {
		return Report{}, fmt.Errorf("%w: file content is %s, not a PDF", domain.ErrReportRejected, mt.String())
	}

	text, err := l.extractor.Extract(bytes.NewReader(data), size)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", domain.ErrReportRejected, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Report{}, fmt.Errorf("%w: the uploaded file contains no readable text", domain.ErrReportRejected)
	}

	return Report{Name: filepath.Base(name), Text: text}, nil
}
