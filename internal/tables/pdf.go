package tables

import (
	"bytes"
	"context"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/docfides/parsing-service/internal/docparse"
)

// Column-gap thresholds in points. Bordered tables render their cells far
// apart; the borderless pass accepts tighter spacing.
const (
	borderedColumnGap   = 15.0
	borderlessColumnGap = 8.0
	wordJoinGap         = 2.5
)

// PDFDetector finds tables in text-bearing PDFs from row geometry alone.
// A strict pass keeps only runs of lines with identical cell counts, the
// way bordered tables lay out; when it yields nothing, a looser pass
// accepts ragged counts.
type PDFDetector struct{}

func (d *PDFDetector) Extract(ctx context.Context, content []byte) []docparse.DetectedTable {
	if ctx.Err() != nil {
		return nil
	}
	r, err := pdflib.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil
	}

	tables := scanReader(r, true)
	if len(tables) == 0 {
		tables = scanReader(r, false)
	}
	return tables
}

func scanReader(r *pdflib.Reader, strict bool) []docparse.DetectedTable {
	gap := borderlessColumnGap
	if strict {
		gap = borderedColumnGap
	}

	var out []docparse.DetectedTable
	for pageNo := 1; pageNo <= r.NumPage(); pageNo++ {
		page := r.Page(pageNo)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		var lines [][]string
		for _, row := range rows {
			lines = append(lines, lineCells(row.Content, gap))
		}

		for _, run := range tableRuns(lines, strict) {
			out = append(out, docparse.DetectedTable{
				Headers: run[0],
				Rows:    run[1:],
				Page:    pageNo,
			})
		}
	}
	return out
}

// lineCells splits one text row into cells at horizontal gaps wider than
// the column threshold. Fragments closer than the word-join gap are
// concatenated; anything in between gets a space.
func lineCells(fragments []pdflib.Text, columnGap float64) []string {
	if len(fragments) == 0 {
		return nil
	}
	sorted := make([]pdflib.Text, len(fragments))
	copy(sorted, fragments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var cells []string
	var cur strings.Builder
	prevEnd := sorted[0].X

	for i, f := range sorted {
		if i > 0 {
			gap := f.X - prevEnd
			switch {
			case gap > columnGap:
				cells = append(cells, strings.TrimSpace(cur.String()))
				cur.Reset()
			case gap > wordJoinGap:
				cur.WriteByte(' ')
			}
		}
		cur.WriteString(f.S)
		prevEnd = f.X + f.W
	}
	if s := strings.TrimSpace(cur.String()); s != "" || len(cells) > 0 {
		cells = append(cells, s)
	}
	return cells
}

// tableRuns finds maximal runs of consecutive multi-cell lines. In strict
// mode every line of a run must have the same cell count; the loose mode
// only requires at least two cells per line. Runs shorter than two lines
// are discarded.
func tableRuns(lines [][]string, strict bool) [][][]string {
	var runs [][][]string
	var cur [][]string

	flush := func() {
		if len(cur) >= 2 {
			run := make([][]string, len(cur))
			copy(run, cur)
			runs = append(runs, run)
		}
		cur = nil
	}

	for _, line := range lines {
		if len(line) < 2 {
			flush()
			continue
		}
		if strict && len(cur) > 0 && len(line) != len(cur[0]) {
			flush()
		}
		cur = append(cur, line)
	}
	flush()
	return runs
}
