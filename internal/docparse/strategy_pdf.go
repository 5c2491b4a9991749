package docparse

import (
	"context"
	"strings"

	"github.com/docfides/parsing-service/internal/ocr"
)

// parseNativePDF extracts text in one pass over the whole document and
// recovers tables from the text layout.
func (p *Pipeline) parseNativePDF(ctx context.Context, content []byte, dt DocumentType) result {
	tr := p.Text.Extract(ctx, content, dt)

	res := result{rawText: tr.Text, pageCount: tr.PageCount}
	if res.pageCount < 1 {
		res.pageCount = 1
	}

	conf := nativePDFConfidence
	var warnings []string
	if tr.Err != "" {
		conf = 0
		warnings = append(warnings, "text extraction failed: "+tr.Err)
	}
	res.blocks = append(res.blocks, ExtractionBlock{
		ID:         newBlockID(),
		Kind:       BlockText,
		Content:    tr.Text,
		Source:     sourcePDFText,
		Confidence: conf,
		Page:       1,
		Position:   FullPage(),
		Warnings:   warnings,
	})

	for _, t := range p.PDFTables.Extract(ctx, content) {
		page := t.Page
		if page < 1 {
			page = 1
		}
		// Trust the table extractor over the text metadata when it has
		// seen more pages.
		if page > res.pageCount {
			res.pageCount = page
		}
		res.addTable(t, sourcePDFTable, page)
	}

	res.language = DetectLanguage(tr.Text)
	return res
}

// parseScannedPDF rasterizes the document and runs the image path once
// per page, in page order. Page texts are joined with a blank line; a
// document where nothing at all was recognized still yields one empty
// zero-confidence block so the aggregate stays well-defined.
func (p *Pipeline) parseScannedPDF(ctx context.Context, content []byte) result {
	pages := p.Rasterizer.Pages(ctx, content)

	res := result{pageCount: len(pages)}
	var parts []string

	for i, pageImage := range pages {
		pageNo := i + 1
		processed := p.Preprocessor.Process(pageImage)

		primary := p.PrimaryOCR.Recognize(ctx, processed)
		final := ResolveOCR(primary, func() ocr.Result {
			return p.FallbackOCR.Recognize(ctx, pageImage)
		})

		if text := strings.TrimSpace(final.Text); text != "" {
			parts = append(parts, text)
			res.blocks = append(res.blocks, ExtractionBlock{
				ID:         newBlockID(),
				Kind:       BlockText,
				Content:    text,
				Source:     final.Source,
				Confidence: final.Confidence,
				Page:       pageNo,
				Position:   FullPage(),
				Warnings:   final.Warnings,
			})
		}

		for _, t := range p.ImageTables.Extract(ctx, processed) {
			res.addTable(t, sourceImageTable, pageNo)
		}
	}

	res.rawText = strings.Join(parts, "\n\n")
	res.language = DetectLanguage(res.rawText)

	if len(res.blocks) == 0 {
		res.blocks = append(res.blocks, ExtractionBlock{
			ID:       newBlockID(),
			Kind:     BlockText,
			Source:   p.PrimaryOCR.Name(),
			Page:     1,
			Position: FullPage(),
			Warnings: []string{"no text could be extracted from any page"},
		})
	}
	if res.pageCount < 1 {
		res.pageCount = 1
	}
	return res
}
