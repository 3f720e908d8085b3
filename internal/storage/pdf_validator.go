package storage

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// PDFValidator rejects unreadable PDF proof files before they reach storage.
// A corrupted fiscal or settlement proof is worthless at audit time.
type PDFValidator struct {
	logger *zap.Logger
}

// NewPDFValidator creates a new PDF validator
func NewPDFValidator(logger *zap.Logger) *PDFValidator {
	return &PDFValidator{logger: logger}
}

// Validate checks a proof file. Non-PDF content types pass through; PDFs
// must open and contain at least one page.
func (v *PDFValidator) Validate(fileName, contentType string, content []byte) error {
	if !isPDF(fileName, contentType) {
		return nil
	}
	if len(content) == 0 {
		return fmt.Errorf("empty PDF file: %s", fileName)
	}

	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		v.logger.Warn("Rejected unreadable PDF",
			zap.String("file_name", fileName),
			zap.Error(err))
		return fmt.Errorf("unreadable PDF %s: %w", fileName, err)
	}
	defer doc.Close()

	if doc.NumPage() < 1 {
		return fmt.Errorf("PDF has no pages: %s", fileName)
	}
	return nil
}

func isPDF(fileName, contentType string) bool {
	if contentType == "application/pdf" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(fileName), ".pdf")
}
