// Package sheet reads spreadsheet workbooks into structured tables.
package sheet

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/docfides/parsing-service/internal/docparse"
)

// Native structural parsing is high-trust; every sheet table carries this
// fixed confidence.
const sheetConfidence = 98.0

// Reader flattens every sheet of a workbook into one table: first row as
// headers, remaining rows as data, plus the sheet's merged-cell spans.
type Reader struct{}

func (Reader) Read(content []byte) docparse.SheetResult {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return docparse.SheetResult{
			RawText: fmt.Sprintf("[spreadsheet parse error: %v]", err),
			Err:     err.Error(),
		}
	}
	defer f.Close()

	var sheets []docparse.SheetTable
	var raw strings.Builder

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}

		for i := range rows {
			for j := range rows[i] {
				rows[i][j] = normalizeNumeric(rows[i][j])
			}
		}

		table := docparse.TableData{
			Headers:     rows[0],
			Rows:        [][]string{},
			MergedCells: []docparse.MergedCell{},
			Confidence:  sheetConfidence,
		}
		if len(rows) > 1 {
			table.Rows = rows[1:]
		}

		if merges, err := f.GetMergeCells(name); err == nil {
			for _, m := range merges {
				if span, ok := mergeSpan(m); ok {
					table.MergedCells = append(table.MergedCells, span)
				}
			}
		}

		if raw.Len() > 0 {
			raw.WriteByte('\n')
		}
		fmt.Fprintf(&raw, "--- Sheet: %s ---", name)
		for _, row := range rows {
			raw.WriteByte('\n')
			raw.WriteString(strings.Join(row, "\t"))
		}

		sheets = append(sheets, docparse.SheetTable{Name: name, Table: table})
	}

	return docparse.SheetResult{Sheets: sheets, RawText: raw.String()}
}

// mergeSpan converts an A1-style merge range into a zero-based span.
func mergeSpan(m excelize.MergeCell) (docparse.MergedCell, bool) {
	startCol, startRow, err := excelize.CellNameToCoordinates(m.GetStartAxis())
	if err != nil {
		return docparse.MergedCell{}, false
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(m.GetEndAxis())
	if err != nil {
		return docparse.MergedCell{}, false
	}
	return docparse.MergedCell{
		Row:     startRow - 1,
		Col:     startCol - 1,
		RowSpan: endRow - startRow + 1,
		ColSpan: endCol - startCol + 1,
	}, true
}

// normalizeNumeric re-renders numeric cells in minimal form: "3.0"
// becomes "3" and "2.50" becomes "2.5". Values too large for exact
// float representation and non-numeric cells pass through unchanged.
func normalizeNumeric(cell string) string {
	if cell == "" || !strings.Contains(cell, ".") {
		return cell
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.Abs(v) >= 1e15 {
		return cell
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
