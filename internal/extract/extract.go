// Package extract provides generic text extraction for text-bearing
// document formats. Failures never escape as errors: a failed extraction
// returns an empty-text result with the Err field set.
package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docfides/parsing-service/internal/docparse"
)

// Service dispatches text extraction by document category: PDFs go
// through the Go PDF library (optionally falling back to pdftotext),
// DOCX bodies are walked directly.
type Service struct {
	FallbackPdftotext bool
	Log               *slog.Logger
}

func (s *Service) Extract(ctx context.Context, content []byte, dt docparse.DocumentType) docparse.TextResult {
	switch dt.Category {
	case docparse.CategoryPDFNative, docparse.CategoryPDFScanned:
		return s.extractPDF(ctx, content)
	case docparse.CategoryDOCX:
		return s.extractDOCX(content)
	default:
		return docparse.TextResult{
			PageCount: 1,
			Err:       fmt.Sprintf("no text extractor for %s documents", dt.Category),
		}
	}
}

func (s *Service) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}
