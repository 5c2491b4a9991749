package docparse

// Category is the processing category assigned by the classifier. It is a
// closed set: every category except CategoryUnknown has exactly one
// extraction strategy.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryImage
	CategoryPDFNative
	CategoryPDFScanned
	CategoryDOCX
	CategoryXLSX
)

func (c Category) String() string {
	switch c {
	case CategoryImage:
		return "image"
	case CategoryPDFNative:
		return "pdf_native"
	case CategoryPDFScanned:
		return "pdf_scanned"
	case CategoryDOCX:
		return "docx"
	case CategoryXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

// DocumentType describes one classified document. Produced once per
// request and never modified afterwards.
type DocumentType struct {
	Category  Category
	MIMEType  string
	Extension string
	HasText   bool
}

// BlockKind tags what an extraction block contains.
type BlockKind string

const (
	BlockText    BlockKind = "text"
	BlockTable   BlockKind = "table"
	BlockHeading BlockKind = "heading"
	BlockList    BlockKind = "list"
)

// BoundingBox is a unit-coordinate rectangle: all values lie in [0,1]
// relative to the page.
type BoundingBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// FullPage is the position of a block covering the entire page.
func FullPage() BoundingBox {
	return BoundingBox{X: 0, Y: 0, W: 1, H: 1}
}

// MergedCell records one merged region in a table. Row and Col are
// zero-based; the spans count covered rows and columns.
type MergedCell struct {
	Row     int `json:"row"`
	Col     int `json:"col"`
	RowSpan int `json:"row_span"`
	ColSpan int `json:"col_span"`
}

// TableData is one extracted table. Rows may be ragged: row length is not
// required to match the header length.
type TableData struct {
	Headers     []string     `json:"headers"`
	Rows        [][]string   `json:"rows"`
	MergedCells []MergedCell `json:"merged_cells"`
	Confidence  float64      `json:"confidence"`
}

// ExtractionBlock is one atomic extracted unit, tagged with provenance,
// confidence and page. Blocks are never mutated after creation and their
// order in the response reflects production order.
type ExtractionBlock struct {
	ID         string      `json:"id"`
	Kind       BlockKind   `json:"type"`
	Content    string      `json:"content"`
	Table      *TableData  `json:"table,omitempty"`
	Source     string      `json:"source"`
	Confidence float64     `json:"confidence"`
	Page       int         `json:"page"`
	Position   BoundingBox `json:"position"`
	Warnings   []string    `json:"warnings,omitempty"`
}

// ParseResponse is the final unified extraction result for one document.
// Tables duplicates the payload of table blocks for direct access.
type ParseResponse struct {
	Blocks            []ExtractionBlock `json:"blocks"`
	RawText           string            `json:"raw_text"`
	Tables            []TableData       `json:"tables"`
	OverallConfidence float64           `json:"overall_confidence"`
	Language          string            `json:"language,omitempty"`
	PageCount         int               `json:"page_count"`
	ProcessingTimeMS  int64             `json:"processing_time_ms"`
}
