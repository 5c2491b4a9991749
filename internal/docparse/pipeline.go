// Package docparse implements the parsing orchestration pipeline: type
// classification, per-category extraction strategies, confidence-driven
// OCR fallback and response assembly.
package docparse

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	"github.com/docfides/parsing-service/internal/ocr"
)

// UnsupportedTypeError is the single fatal pipeline error: no extraction
// strategy exists for the document's category.
type UnsupportedTypeError struct {
	Extension string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Extension == "" {
		return "unsupported document type"
	}
	return fmt.Sprintf("unsupported document type: %s", e.Extension)
}

// Fixed confidences for structurally parsed content: native extraction is
// trusted far more than OCR.
const (
	nativePDFConfidence    = 95.0
	docxConfidence         = 98.0
	spreadsheetConfidence  = 98.0
	defaultTableConfidence = 85.0
)

// Source tags identifying the producing backend of a block.
const (
	sourcePDFText    = "pdftext"
	sourceDocx       = "docx"
	sourceXLSX       = "xlsx"
	sourceImageTable = "imgtable"
	sourcePDFTable   = "pdftable"
)

// Pipeline wires the classifier and the per-category strategies around
// the external collaborators. All fields must be set; collaborators are
// interfaces so tests can substitute deterministic doubles.
type Pipeline struct {
	PrimaryOCR   ocr.Engine
	FallbackOCR  ocr.Engine
	Preprocessor Preprocessor
	ImageTables  ImageTableExtractor
	PDFTables    PDFTableExtractor
	Rasterizer   Rasterizer
	Text         TextExtractor
	Sheets       SpreadsheetReader
	DocxTables   DocxTableParser
	Log          *slog.Logger
}

// result accumulates one strategy's output before aggregation. Each
// request owns its own accumulator exclusively.
type result struct {
	blocks    []ExtractionBlock
	tables    []TableData
	rawText   string
	language  string
	pageCount int
}

// Parse runs the full pipeline for one document: classify, dispatch to
// the category's strategy, assemble the final response. The category
// switch is exhaustive; only CategoryUnknown fails.
func (p *Pipeline) Parse(ctx context.Context, content []byte, filename, contentType string) (*ParseResponse, error) {
	start := time.Now()

	dt := Classify(content, filename, contentType)
	p.logger().Info("classified document",
		"filename", filename,
		"category", dt.Category.String(),
		"mime", dt.MIMEType,
		"size", len(content),
	)

	var res result
	switch dt.Category {
	case CategoryImage:
		res = p.parseImage(ctx, content)
	case CategoryPDFNative:
		res = p.parseNativePDF(ctx, content, dt)
	case CategoryPDFScanned:
		res = p.parseScannedPDF(ctx, content)
	case CategoryDOCX:
		res = p.parseDOCX(ctx, content, dt)
	case CategoryXLSX:
		res = p.parseXLSX(ctx, content)
	case CategoryUnknown:
		return nil, &UnsupportedTypeError{Extension: dt.Extension}
	default:
		return nil, &UnsupportedTypeError{Extension: dt.Extension}
	}

	resp := assemble(res, start)
	p.logger().Info("parsed document",
		"filename", filename,
		"blocks", len(resp.Blocks),
		"tables", len(resp.Tables),
		"confidence", resp.OverallConfidence,
		"pages", resp.PageCount,
		"duration_ms", resp.ProcessingTimeMS,
	)
	return resp, nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.Default()
}

// assemble computes the document-level aggregates: the mean block
// confidence (0 when there are no blocks) and the elapsed wall-clock
// time. It derives nothing else; every other field comes straight from
// the strategy.
func assemble(res result, start time.Time) *ParseResponse {
	if res.blocks == nil {
		res.blocks = []ExtractionBlock{}
	}
	if res.tables == nil {
		res.tables = []TableData{}
	}

	var overall float64
	if len(res.blocks) > 0 {
		var sum float64
		for _, b := range res.blocks {
			sum += b.Confidence
		}
		overall = sum / float64(len(res.blocks))
	}

	return &ParseResponse{
		Blocks:            res.blocks,
		RawText:           res.rawText,
		Tables:            res.tables,
		OverallConfidence: overall,
		Language:          res.language,
		PageCount:         res.pageCount,
		ProcessingTimeMS:  time.Since(start).Milliseconds(),
	}
}

// addTable appends one detected table both as a block and to the
// direct-access table list, keeping the two views in sync.
func (r *result) addTable(t DetectedTable, source string, page int) {
	conf := t.Confidence
	if conf <= 0 {
		conf = defaultTableConfidence
	}
	td := TableData{
		Headers:     t.Headers,
		Rows:        t.Rows,
		MergedCells: []MergedCell{},
		Confidence:  conf,
	}
	if td.Rows == nil {
		td.Rows = [][]string{}
	}
	r.tables = append(r.tables, td)
	r.blocks = append(r.blocks, ExtractionBlock{
		ID:         newBlockID(),
		Kind:       BlockTable,
		Table:      &td,
		Source:     source,
		Confidence: conf,
		Page:       page,
		Position:   FullPage(),
	})
}

func newBlockID() string {
	var b [8]byte
	rand.Read(b[:])
	return fmt.Sprintf("%x", b[:])
}
