package docparse

import "context"

// parseXLSX delegates to the spreadsheet reader. Each sheet becomes one
// table block on its own "page"; the concatenated sheet text becomes a
// single leading text block. Spreadsheets carry no language signal.
func (p *Pipeline) parseXLSX(ctx context.Context, content []byte) result {
	sr := p.Sheets.Read(content)
	if sr.Err != "" {
		return result{
			rawText: sr.RawText,
			blocks: []ExtractionBlock{{
				ID:       newBlockID(),
				Kind:     BlockText,
				Content:  sr.RawText,
				Source:   sourceXLSX,
				Page:     1,
				Position: FullPage(),
				Warnings: []string{"spreadsheet read failed: " + sr.Err},
			}},
			pageCount: 1,
		}
	}

	res := result{rawText: sr.RawText}
	if sr.RawText != "" {
		res.blocks = append(res.blocks, ExtractionBlock{
			ID:         newBlockID(),
			Kind:       BlockText,
			Content:    sr.RawText,
			Source:     sourceXLSX,
			Confidence: spreadsheetConfidence,
			Page:       1,
			Position:   FullPage(),
		})
	}

	for i, sh := range sr.Sheets {
		td := sh.Table
		res.tables = append(res.tables, td)
		res.blocks = append(res.blocks, ExtractionBlock{
			ID:         newBlockID(),
			Kind:       BlockTable,
			Table:      &td,
			Source:     sourceXLSX,
			Confidence: td.Confidence,
			Page:       i + 1,
			Position:   FullPage(),
		})
	}

	// An empty workbook still counts as one page so block pages stay in
	// range.
	res.pageCount = len(sr.Sheets)
	if res.pageCount < 1 {
		res.pageCount = 1
	}
	return res
}
