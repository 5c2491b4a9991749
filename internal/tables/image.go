// Package tables holds the best-effort table detectors. Detection is
// advisory: both detectors return nothing rather than failing, and the
// pipeline treats an empty result as "no tables found".
package tables

import (
	"context"
	"sort"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/docfides/parsing-service/internal/docparse"
)

// ImageDetector recovers tabular layout from OCR word geometry: words are
// grouped into rows by vertical overlap, then snapped to recurring column
// starts. A table is reported only when at least two rows agree on at
// least two columns.
type ImageDetector struct {
	Languages []string
}

func (d *ImageDetector) Extract(ctx context.Context, img []byte) []docparse.DetectedTable {
	if ctx.Err() != nil {
		return nil
	}

	c := gosseract.NewClient()
	defer c.Close()

	if len(d.Languages) > 0 {
		if err := c.SetLanguage(d.Languages...); err != nil {
			return nil
		}
	}
	if err := c.SetImageFromBytes(img); err != nil {
		return nil
	}
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil
	}

	words := make([]wordBox, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		words = append(words, wordBox{
			text:       text,
			x:          b.Box.Min.X,
			y:          b.Box.Min.Y,
			w:          b.Box.Dx(),
			h:          b.Box.Dy(),
			confidence: b.Confidence,
		})
	}

	grid, conf := detectGrid(words)
	if len(grid) < 2 || len(grid[0]) < 2 {
		return nil
	}
	return []docparse.DetectedTable{{
		Headers:    grid[0],
		Rows:       grid[1:],
		Confidence: conf,
	}}
}

type wordBox struct {
	text       string
	x, y, w, h int
	confidence float64
}

// detectGrid clusters words into rows and snaps each row onto the column
// starts of the first row. Returns the cell grid and the mean word
// confidence.
func detectGrid(words []wordBox) ([][]string, float64) {
	rows := clusterRows(words)
	if len(rows) < 2 {
		return nil, 0
	}

	columns := columnStarts(rows[0])
	if len(columns) < 2 {
		return nil, 0
	}

	var grid [][]string
	var confSum float64
	var confN int
	for _, row := range rows {
		cells := make([]string, len(columns))
		matched := 0
		for _, w := range row {
			col := nearestColumn(columns, w.x, w.w)
			if col < 0 {
				continue
			}
			if cells[col] != "" {
				cells[col] += " "
			}
			cells[col] += w.text
			matched++
			confSum += w.confidence
			confN++
		}
		if matched < 2 {
			continue
		}
		grid = append(grid, cells)
	}
	if len(grid) < 2 || confN == 0 {
		return nil, 0
	}
	return grid, confSum / float64(confN)
}

// clusterRows groups words whose vertical centers fall within half a word
// height of each other, then orders each row left to right.
func clusterRows(words []wordBox) [][]wordBox {
	sorted := make([]wordBox, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		ci := sorted[i].y*2 + sorted[i].h
		cj := sorted[j].y*2 + sorted[j].h
		return ci < cj
	})

	var rows [][]wordBox
	for _, w := range sorted {
		placed := false
		if len(rows) > 0 {
			last := rows[len(rows)-1]
			ref := last[0]
			if abs((w.y*2+w.h)-(ref.y*2+ref.h)) <= ref.h {
				rows[len(rows)-1] = append(last, w)
				placed = true
			}
		}
		if !placed {
			rows = append(rows, []wordBox{w})
		}
	}
	for _, row := range rows {
		sort.Slice(row, func(i, j int) bool { return row[i].x < row[j].x })
	}
	return rows
}

// columnStarts takes the leading row's word positions as the column
// template.
func columnStarts(row []wordBox) []int {
	starts := make([]int, 0, len(row))
	for _, w := range row {
		starts = append(starts, w.x)
	}
	return starts
}

// nearestColumn finds the template column whose start is within half the
// word's width of the word's start. -1 when none is close enough.
func nearestColumn(columns []int, x, w int) int {
	tolerance := w/2 + 8
	best := -1
	bestDist := tolerance + 1
	for i, start := range columns {
		d := abs(start - x)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
