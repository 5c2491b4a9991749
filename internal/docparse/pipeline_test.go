package docparse

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/docfides/parsing-service/internal/ocr"
)

// Fake collaborators. Each one is deterministic so strategy behavior can
// be pinned down without tesseract, poppler or real documents.

type fakeEngine struct {
	name    string
	results []ocr.Result // consumed per call, last one repeats
	calls   int
	inputs  [][]byte
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Recognize(_ context.Context, img []byte) ocr.Result {
	f.inputs = append(f.inputs, img)
	i := f.calls
	f.calls++
	if len(f.results) == 0 {
		return ocr.Result{Source: f.name}
	}
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	r := f.results[i]
	if r.Source == "" {
		r.Source = f.name
	}
	return r
}

type fakePreprocessor struct{ out []byte }

func (f fakePreprocessor) Process(in []byte) []byte {
	if f.out != nil {
		return f.out
	}
	return in
}

type fakeImageTables struct {
	perCall [][]DetectedTable
	calls   int
}

func (f *fakeImageTables) Extract(context.Context, []byte) []DetectedTable {
	i := f.calls
	f.calls++
	if i >= len(f.perCall) {
		return nil
	}
	return f.perCall[i]
}

type fakePDFTables struct{ tables []DetectedTable }

func (f *fakePDFTables) Extract(context.Context, []byte) []DetectedTable { return f.tables }

type fakeRasterizer struct{ pages [][]byte }

func (f *fakeRasterizer) Pages(context.Context, []byte) [][]byte { return f.pages }

type fakeText struct{ res TextResult }

func (f *fakeText) Extract(context.Context, []byte, DocumentType) TextResult { return f.res }

type fakeSheets struct{ res SheetResult }

func (f *fakeSheets) Read([]byte) SheetResult { return f.res }

type fakeDocxTables struct{ tables []DetectedTable }

func (f *fakeDocxTables) Tables([]byte) []DetectedTable { return f.tables }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func meanConfidence(blocks []ExtractionBlock) float64 {
	if len(blocks) == 0 {
		return 0
	}
	var sum float64
	for _, b := range blocks {
		sum += b.Confidence
	}
	return sum / float64(len(blocks))
}

func TestParse_UnknownTypeFails(t *testing.T) {
	p := &Pipeline{Log: testLogger()}
	resp, err := p.Parse(context.Background(), []byte("data"), "archive.zip", "")
	if resp != nil {
		t.Fatal("expected no response for unsupported type")
	}
	var unsupported *UnsupportedTypeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedTypeError, got %v", err)
	}
	if unsupported.Extension != ".zip" {
		t.Errorf("expected extension .zip in error, got %q", unsupported.Extension)
	}
}

func TestParse_Image_SingleTextBlock(t *testing.T) {
	primary := &fakeEngine{name: "tesseract", results: []ocr.Result{{
		Text:       "Conform contractului, societatea emite cererea pentru această lucrare.",
		Confidence: 88,
		Language:   "ron",
	}}}
	fallback := &fakeEngine{name: "tesseract-lstm"}
	p := &Pipeline{
		PrimaryOCR:   primary,
		FallbackOCR:  fallback,
		Preprocessor: fakePreprocessor{},
		ImageTables:  &fakeImageTables{},
		Log:          testLogger(),
	}

	resp, err := p.Parse(context.Background(), []byte("png bytes"), "scan.png", "image/png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(resp.Blocks))
	}
	b := resp.Blocks[0]
	if b.Kind != BlockText || b.Page != 1 || b.Source != "tesseract" {
		t.Errorf("unexpected text block: %+v", b)
	}
	if b.Position != FullPage() {
		t.Errorf("expected full-page position, got %+v", b.Position)
	}
	if len(resp.Tables) != 0 {
		t.Errorf("expected no tables, got %d", len(resp.Tables))
	}
	if resp.PageCount != 1 {
		t.Errorf("expected page count 1, got %d", resp.PageCount)
	}
	if resp.Language != "ron" {
		t.Errorf("expected language ron, got %q", resp.Language)
	}
	if resp.OverallConfidence != 88 {
		t.Errorf("expected overall confidence 88, got %v", resp.OverallConfidence)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback engine must not run at confidence 88, got %d calls", fallback.calls)
	}
}

func TestParse_Image_FallbackGetsOriginalBytes(t *testing.T) {
	original := []byte("original image")
	processed := []byte("preprocessed image")

	primary := &fakeEngine{name: "tesseract", results: []ocr.Result{{Text: "###", Confidence: 40}}}
	fallback := &fakeEngine{name: "tesseract-lstm", results: []ocr.Result{{
		Text:       "Recovered text from the slower engine pass.",
		Confidence: 60,
	}}}
	p := &Pipeline{
		PrimaryOCR:   primary,
		FallbackOCR:  fallback,
		Preprocessor: fakePreprocessor{out: processed},
		ImageTables:  &fakeImageTables{},
		Log:          testLogger(),
	}

	resp, err := p.Parse(context.Background(), original, "scan.png", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(primary.inputs[0], processed) {
		t.Error("primary engine must receive the preprocessed image")
	}
	if !bytes.Equal(fallback.inputs[0], original) {
		t.Error("fallback engine must receive the original image bytes")
	}
	if resp.Blocks[0].Source != "tesseract-lstm" {
		t.Errorf("expected fallback source on block, got %q", resp.Blocks[0].Source)
	}
	if resp.Blocks[0].Confidence != 60 {
		t.Errorf("expected adopted confidence 60, got %v", resp.Blocks[0].Confidence)
	}
}

func TestParse_Image_TableBlocks(t *testing.T) {
	primary := &fakeEngine{name: "tesseract", results: []ocr.Result{{Text: "irrelevant but long enough text", Confidence: 90}}}
	p := &Pipeline{
		PrimaryOCR:   primary,
		FallbackOCR:  &fakeEngine{name: "tesseract-lstm"},
		Preprocessor: fakePreprocessor{},
		ImageTables: &fakeImageTables{perCall: [][]DetectedTable{{
			{Headers: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}},
			{Headers: []string{"x", "y"}, Rows: [][]string{{"3", "4"}}, Confidence: 72},
		}}},
		Log: testLogger(),
	}

	resp, err := p.Parse(context.Background(), []byte("img"), "table.png", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(resp.Blocks))
	}
	if len(resp.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(resp.Tables))
	}
	if resp.Tables[0].Confidence != 85 {
		t.Errorf("expected default table confidence 85, got %v", resp.Tables[0].Confidence)
	}
	if resp.Tables[1].Confidence != 72 {
		t.Errorf("expected reported table confidence 72, got %v", resp.Tables[1].Confidence)
	}
	if resp.Blocks[1].Kind != BlockTable || resp.Blocks[2].Kind != BlockTable {
		t.Error("table blocks must follow the text block")
	}
	if got, want := resp.OverallConfidence, meanConfidence(resp.Blocks); got != want {
		t.Errorf("overall confidence %v != mean %v", got, want)
	}
}

func TestParse_Image_LanguageFallsBackToEngineTag(t *testing.T) {
	primary := &fakeEngine{name: "tesseract", results: []ocr.Result{{Text: "hi", Confidence: 95, Language: "eng"}}}
	p := &Pipeline{
		PrimaryOCR:   primary,
		FallbackOCR:  &fakeEngine{name: "tesseract-lstm"},
		Preprocessor: fakePreprocessor{},
		ImageTables:  &fakeImageTables{},
		Log:          testLogger(),
	}

	resp, err := p.Parse(context.Background(), []byte("img"), "tiny.png", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Language != "eng" {
		t.Errorf("expected engine language tag, got %q", resp.Language)
	}
}

// nativePDFContent carries enough markers to classify as pdf_native.
var nativePDFContent = []byte("%PDF-1.4\n/Type /Page\nBT (x) Tj ET\n/Font <</F1 4 0 R>>")

func TestParse_NativePDF(t *testing.T) {
	p := &Pipeline{
		Text: &fakeText{res: TextResult{
			Text:      "An ordinary report body with more than enough words to score.",
			PageCount: 3,
		}},
		PDFTables: &fakePDFTables{tables: []DetectedTable{
			{Headers: []string{"h1", "h2"}, Rows: [][]string{{"a", "b"}}, Confidence: 91, Page: 2},
		}},
		Log: testLogger(),
	}

	resp, err := p.Parse(context.Background(), nativePDFContent, "report.pdf", "application/pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(resp.Blocks))
	}
	text := resp.Blocks[0]
	if text.Kind != BlockText || text.Confidence != 95 || text.Page != 1 || text.Source != "pdftext" {
		t.Errorf("unexpected text block: %+v", text)
	}
	table := resp.Blocks[1]
	if table.Kind != BlockTable || table.Page != 2 || table.Confidence != 91 {
		t.Errorf("unexpected table block: %+v", table)
	}
	if resp.PageCount != 3 {
		t.Errorf("expected page count 3, got %d", resp.PageCount)
	}
	if len(resp.Tables) != 1 {
		t.Errorf("expected 1 table, got %d", len(resp.Tables))
	}
	if resp.Language != "ron" {
		t.Errorf("expected default language ron, got %q", resp.Language)
	}
	if got, want := resp.OverallConfidence, meanConfidence(resp.Blocks); got != want {
		t.Errorf("overall confidence %v != mean %v", got, want)
	}
	for _, b := range resp.Blocks {
		if b.Page < 1 || b.Page > resp.PageCount {
			t.Errorf("block page %d outside [1,%d]", b.Page, resp.PageCount)
		}
	}
}

func TestParse_NativePDF_ExtractionFailureDegrades(t *testing.T) {
	p := &Pipeline{
		Text:      &fakeText{res: TextResult{PageCount: 1, Err: "damaged xref"}},
		PDFTables: &fakePDFTables{},
		Log:       testLogger(),
	}

	resp, err := p.Parse(context.Background(), nativePDFContent, "broken.pdf", "")
	if err != nil {
		t.Fatalf("collaborator failure must not fail the pipeline: %v", err)
	}
	if len(resp.Blocks) != 1 {
		t.Fatalf("expected 1 degraded block, got %d", len(resp.Blocks))
	}
	b := resp.Blocks[0]
	if b.Confidence != 0 {
		t.Errorf("expected zero confidence, got %v", b.Confidence)
	}
	if len(b.Warnings) == 0 {
		t.Error("expected a warning on the degraded block")
	}
	if resp.OverallConfidence != 0 {
		t.Errorf("expected overall confidence 0, got %v", resp.OverallConfidence)
	}
}

func TestParse_ScannedPDF_PerPage(t *testing.T) {
	primary := &fakeEngine{name: "tesseract", results: []ocr.Result{
		{Text: "Pagina unu", Confidence: 80},
		{Text: "  ", Confidence: 75},
		{Text: "Pagina trei", Confidence: 76},
	}}
	p := &Pipeline{
		PrimaryOCR:   primary,
		FallbackOCR:  &fakeEngine{name: "tesseract-lstm"},
		Preprocessor: fakePreprocessor{},
		Rasterizer:   &fakeRasterizer{pages: [][]byte{[]byte("p1"), []byte("p2"), []byte("p3")}},
		ImageTables: &fakeImageTables{perCall: [][]DetectedTable{
			nil,
			nil,
			{{Headers: []string{"c1", "c2"}, Rows: [][]string{{"v1", "v2"}}, Confidence: 70}},
		}},
		Log: testLogger(),
	}

	resp, err := p.Parse(context.Background(), []byte("%PDF-1.4 scanned"), "scan.pdf", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.PageCount != 3 {
		t.Errorf("expected page count 3, got %d", resp.PageCount)
	}
	if len(resp.Blocks) != 3 {
		t.Fatalf("expected 3 blocks (2 text + 1 table), got %d", len(resp.Blocks))
	}
	if resp.Blocks[0].Page != 1 || resp.Blocks[1].Page != 3 || resp.Blocks[2].Page != 3 {
		t.Errorf("unexpected page assignment: %d %d %d",
			resp.Blocks[0].Page, resp.Blocks[1].Page, resp.Blocks[2].Page)
	}
	if resp.Blocks[1].Kind != BlockText || resp.Blocks[2].Kind != BlockTable {
		t.Error("page text must precede the same page's tables")
	}
	if resp.RawText != "Pagina unu\n\nPagina trei" {
		t.Errorf("unexpected raw text: %q", resp.RawText)
	}
	for _, b := range resp.Blocks {
		if b.Page < 1 || b.Page > resp.PageCount {
			t.Errorf("block page %d outside [1,%d]", b.Page, resp.PageCount)
		}
	}
}

func TestParse_ScannedPDF_PlaceholderBlock(t *testing.T) {
	p := &Pipeline{
		PrimaryOCR:   &fakeEngine{name: "tesseract"},
		FallbackOCR:  &fakeEngine{name: "tesseract-lstm"},
		Preprocessor: fakePreprocessor{},
		Rasterizer:   &fakeRasterizer{pages: [][]byte{[]byte("p1"), []byte("p2")}},
		ImageTables:  &fakeImageTables{},
		Log:          testLogger(),
	}

	resp, err := p.Parse(context.Background(), []byte("%PDF-1.4 scanned"), "blank.pdf", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Blocks) != 1 {
		t.Fatalf("scanned PDFs must never produce zero blocks, got %d", len(resp.Blocks))
	}
	b := resp.Blocks[0]
	if b.Kind != BlockText || b.Page != 1 || b.Confidence != 0 || b.Content != "" {
		t.Errorf("unexpected placeholder block: %+v", b)
	}
	if len(b.Warnings) == 0 {
		t.Error("placeholder block must carry a warning")
	}
	if resp.OverallConfidence != 0 {
		t.Errorf("expected overall confidence 0, got %v", resp.OverallConfidence)
	}
	if resp.PageCount != 2 {
		t.Errorf("expected page count 2, got %d", resp.PageCount)
	}
}

func TestParse_DOCX(t *testing.T) {
	p := &Pipeline{
		Text: &fakeText{res: TextResult{
			Text:      "Beneficiarul a semnat contractul pentru proiectul anual.",
			PageCount: 1,
		}},
		DocxTables: &fakeDocxTables{tables: []DetectedTable{
			{Headers: []string{"Nr", "Denumire"}, Rows: [][]string{{"1", "Servicii"}}, Confidence: 97},
		}},
		Log: testLogger(),
	}

	resp, err := p.Parse(context.Background(), []byte("PK docx bytes"), "contract.docx", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(resp.Blocks))
	}
	if resp.Blocks[0].Confidence != 98 {
		t.Errorf("expected docx text confidence 98, got %v", resp.Blocks[0].Confidence)
	}
	if resp.Blocks[1].Confidence != 97 {
		t.Errorf("expected docx table confidence 97, got %v", resp.Blocks[1].Confidence)
	}
	for _, b := range resp.Blocks {
		if b.Page != 1 {
			t.Errorf("docx blocks must always be page 1, got %d", b.Page)
		}
	}
	if resp.PageCount != 1 {
		t.Errorf("expected page count 1, got %d", resp.PageCount)
	}
	if resp.Language != "ron" {
		t.Errorf("expected language ron, got %q", resp.Language)
	}
}

func TestParse_XLSX(t *testing.T) {
	sheets := []SheetTable{
		{Name: "Q1", Table: TableData{Headers: []string{"a"}, Rows: [][]string{{"1"}}, MergedCells: []MergedCell{}, Confidence: 98}},
		{Name: "Q2", Table: TableData{Headers: []string{"b"}, Rows: [][]string{{"2"}}, MergedCells: []MergedCell{}, Confidence: 98}},
	}
	p := &Pipeline{
		Sheets: &fakeSheets{res: SheetResult{
			Sheets:  sheets,
			RawText: "--- Sheet: Q1 ---\na\n1\n--- Sheet: Q2 ---\nb\n2",
		}},
		Log: testLogger(),
	}

	resp, err := p.Parse(context.Background(), []byte("PK xlsx bytes"), "ledger.xlsx", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Blocks) != 3 {
		t.Fatalf("expected 1 text + 2 table blocks, got %d", len(resp.Blocks))
	}
	if resp.Blocks[0].Kind != BlockText || resp.Blocks[0].Confidence != 98 {
		t.Errorf("unexpected leading text block: %+v", resp.Blocks[0])
	}
	if resp.Blocks[1].Page != 1 || resp.Blocks[2].Page != 2 {
		t.Errorf("sheet tables must get ascending pages, got %d and %d",
			resp.Blocks[1].Page, resp.Blocks[2].Page)
	}
	if len(resp.Tables) != 2 {
		t.Errorf("expected 2 tables, got %d", len(resp.Tables))
	}
	if resp.PageCount != 2 {
		t.Errorf("expected page count 2, got %d", resp.PageCount)
	}
	if resp.Language != "" {
		t.Errorf("spreadsheets carry no language, got %q", resp.Language)
	}
}

func TestParse_XLSX_ReadError(t *testing.T) {
	p := &Pipeline{
		Sheets: &fakeSheets{res: SheetResult{
			RawText: "[spreadsheet parse error: not a zip]",
			Err:     "not a zip",
		}},
		Log: testLogger(),
	}

	resp, err := p.Parse(context.Background(), []byte("junk"), "broken.xlsx", "")
	if err != nil {
		t.Fatalf("reader failure must degrade, not fail: %v", err)
	}
	if len(resp.Blocks) != 1 {
		t.Fatalf("expected single degraded block, got %d", len(resp.Blocks))
	}
	b := resp.Blocks[0]
	if b.Confidence != 0 || len(b.Warnings) == 0 {
		t.Errorf("unexpected degraded block: %+v", b)
	}
	if len(resp.Tables) != 0 {
		t.Errorf("expected no tables, got %d", len(resp.Tables))
	}
	if resp.PageCount != 1 {
		t.Errorf("expected page count 1, got %d", resp.PageCount)
	}
}

func TestParse_XLSX_EmptyWorkbook(t *testing.T) {
	p := &Pipeline{
		Sheets: &fakeSheets{},
		Log:    testLogger(),
	}

	resp, err := p.Parse(context.Background(), []byte("PK"), "empty.xlsx", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Blocks) != 0 {
		t.Errorf("expected no blocks for an empty workbook, got %d", len(resp.Blocks))
	}
	if resp.OverallConfidence != 0 {
		t.Errorf("expected overall confidence 0, got %v", resp.OverallConfidence)
	}
	if resp.PageCount != 1 {
		t.Errorf("empty workbook still counts one page, got %d", resp.PageCount)
	}
}
