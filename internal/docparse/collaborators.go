package docparse

import "context"

// DetectedTable is the raw shape table-extraction collaborators produce
// before the pipeline wraps it into a table block.
type DetectedTable struct {
	Headers    []string
	Rows       [][]string
	Confidence float64 // 0 means the collaborator had no per-table score
	Page       int     // 0 means unreported
}

// TextResult is the generic text extractor's outcome. A failed extraction
// keeps Text empty, PageCount 1 and sets Err; it is never surfaced as a
// pipeline error.
type TextResult struct {
	Text      string
	PageCount int
	Metadata  map[string]string
	Err       string
}

// SheetTable is one spreadsheet sheet flattened into a table.
type SheetTable struct {
	Name  string
	Table TableData
}

// SheetResult is the spreadsheet reader's outcome. A fatal read error
// sets Err and leaves Sheets empty.
type SheetResult struct {
	Sheets  []SheetTable
	RawText string
	Err     string
}

// Preprocessor normalizes an image ahead of OCR. Implementations return
// the input unchanged on any failure.
type Preprocessor interface {
	Process(image []byte) []byte
}

// ImageTableExtractor recovers tables from an image. Empty on failure.
type ImageTableExtractor interface {
	Extract(ctx context.Context, image []byte) []DetectedTable
}

// PDFTableExtractor recovers tables from a text-bearing PDF, trying a
// bordered-table mode before a borderless one. Empty on failure.
type PDFTableExtractor interface {
	Extract(ctx context.Context, pdf []byte) []DetectedTable
}

// Rasterizer renders a PDF into one image per page. Implementations must
// attempt a secondary backend before giving up, and as a last resort
// return the whole document as a single page so OCR always has input.
type Rasterizer interface {
	Pages(ctx context.Context, pdf []byte) [][]byte
}

// TextExtractor extracts plain text from a text-bearing document.
type TextExtractor interface {
	Extract(ctx context.Context, content []byte, dt DocumentType) TextResult
}

// SpreadsheetReader reads a workbook into per-sheet tables.
type SpreadsheetReader interface {
	Read(content []byte) SheetResult
}

// DocxTableParser walks the table markup of a DOCX body directly. Zero
// tables on malformed input.
type DocxTableParser interface {
	Tables(content []byte) []DetectedTable
}
