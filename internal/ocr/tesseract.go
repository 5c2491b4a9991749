package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract is the primary OCR engine, backed by the in-process gosseract
// client. A fresh client is created per call: gosseract clients are not
// safe for concurrent use.
type Tesseract struct {
	Languages []string
}

// NewTesseract returns a Tesseract engine configured for the given
// language tags (e.g. "ron", "eng").
func NewTesseract(languages ...string) *Tesseract {
	return &Tesseract{Languages: languages}
}

func (t *Tesseract) Name() string { return "tesseract" }

func (t *Tesseract) Recognize(ctx context.Context, image []byte) Result {
	if err := ctx.Err(); err != nil {
		return failed(t.Name(), fmt.Sprintf("tesseract canceled: %v", err))
	}

	c := gosseract.NewClient()
	defer c.Close()

	if len(t.Languages) > 0 {
		if err := c.SetLanguage(t.Languages...); err != nil {
			return failed(t.Name(), fmt.Sprintf("tesseract set language: %v", err))
		}
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return failed(t.Name(), fmt.Sprintf("tesseract set image: %v", err))
	}

	text, err := c.Text()
	if err != nil {
		return failed(t.Name(), fmt.Sprintf("tesseract failed: %v", err))
	}

	res := Result{
		Text:       strings.TrimSpace(text),
		Confidence: wordConfidence(c),
		Source:     t.Name(),
	}
	if len(t.Languages) > 0 {
		res.Language = t.Languages[0]
	}
	if res.Confidence < LowConfidenceThreshold {
		res.Warnings = append(res.Warnings, LowConfidenceWarning)
	}
	return res
}

// wordConfidence averages per-word confidences, skipping non-positive
// entries the way tesseract reports them for layout artifacts.
func wordConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	var n int
	for _, b := range boxes {
		if b.Confidence > 0 {
			sum += b.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
