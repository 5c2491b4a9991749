// Package ocr defines the OCR engine contract and its tesseract-backed
// implementations.
package ocr

import "context"

// LowConfidenceThreshold is the score below which an OCR pass is treated
// as unreliable: engines attach a warning and the pipeline consults the
// fallback engine.
const LowConfidenceThreshold = 70.0

// LowConfidenceWarning is attached to results scoring below the threshold.
const LowConfidenceWarning = "Low OCR confidence - consider re-scanning at higher DPI"

// Result is the outcome of one OCR pass. Engines never return an error:
// a failed pass surfaces as empty text, zero confidence and a warning
// describing what went wrong.
type Result struct {
	Text       string
	Confidence float64 // 0-100
	Source     string
	Language   string
	Warnings   []string
}

// Engine recognizes text in an encoded image (PNG, JPEG or TIFF).
type Engine interface {
	Name() string
	Recognize(ctx context.Context, image []byte) Result
}

func failed(source, msg string) Result {
	return Result{Source: source, Warnings: []string{msg}}
}
