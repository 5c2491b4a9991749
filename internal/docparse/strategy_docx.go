package docparse

import "context"

// parseDOCX extracts text through the generic extractor and walks the
// document's own table markup for structured tables. Pagination is not
// tracked for this format; everything lands on page 1.
func (p *Pipeline) parseDOCX(ctx context.Context, content []byte, dt DocumentType) result {
	tr := p.Text.Extract(ctx, content, dt)

	res := result{rawText: tr.Text, pageCount: 1}

	conf := docxConfidence
	var warnings []string
	if tr.Err != "" {
		conf = 0
		warnings = append(warnings, "text extraction failed: "+tr.Err)
	}
	res.blocks = append(res.blocks, ExtractionBlock{
		ID:         newBlockID(),
		Kind:       BlockText,
		Content:    tr.Text,
		Source:     sourceDocx,
		Confidence: conf,
		Page:       1,
		Position:   FullPage(),
		Warnings:   warnings,
	})

	for _, t := range p.DocxTables.Tables(content) {
		res.addTable(t, sourceDocx, 1)
	}

	res.language = DetectLanguage(tr.Text)
	return res
}
