package docparse

import (
	"context"

	"github.com/docfides/parsing-service/internal/ocr"
)

// parseImage handles standalone images: preprocess, OCR with fallback,
// one full-page text block, then best-effort table recovery.
func (p *Pipeline) parseImage(ctx context.Context, content []byte) result {
	processed := p.Preprocessor.Process(content)

	primary := p.PrimaryOCR.Recognize(ctx, processed)
	// The fallback engine sees the original bytes: some engines do their
	// own preprocessing and degrade on an already-binarized image.
	final := ResolveOCR(primary, func() ocr.Result {
		return p.FallbackOCR.Recognize(ctx, content)
	})

	res := result{rawText: final.Text, pageCount: 1}
	res.blocks = append(res.blocks, ExtractionBlock{
		ID:         newBlockID(),
		Kind:       BlockText,
		Content:    final.Text,
		Source:     final.Source,
		Confidence: final.Confidence,
		Page:       1,
		Position:   FullPage(),
		Warnings:   final.Warnings,
	})

	for _, t := range p.ImageTables.Extract(ctx, processed) {
		res.addTable(t, sourceImageTable, 1)
	}

	res.language = DetectLanguage(final.Text)
	if res.language == "" {
		res.language = final.Language
	}
	return res
}
