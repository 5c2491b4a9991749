package docparse

import "github.com/docfides/parsing-service/internal/ocr"

// ResolveOCR applies the two-engine fallback rule. A primary result at or
// above the confidence threshold is used unchanged. Below it, the
// secondary engine gets exactly one attempt and its result is adopted
// only when it strictly beats the primary score; otherwise the primary
// result is kept, warnings intact, despite the low score.
func ResolveOCR(primary ocr.Result, secondary func() ocr.Result) ocr.Result {
	if primary.Confidence >= ocr.LowConfidenceThreshold {
		return primary
	}
	alt := secondary()
	if alt.Confidence > primary.Confidence {
		return alt
	}
	return primary
}
