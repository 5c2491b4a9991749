// Package pdfpage renders PDF pages to images for OCR.
package pdfpage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const defaultDPI = 300

// Renderer shells out to poppler's pdftoppm, then to mutool, and as a
// last resort hands back the whole document as a single page so OCR
// always has input.
type Renderer struct {
	DPI            int
	MutoolFallback bool
	Log            *slog.Logger
}

func (r *Renderer) Pages(ctx context.Context, content []byte) [][]byte {
	dir, err := os.MkdirTemp("", "docparse-raster-")
	if err != nil {
		return [][]byte{content}
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(src, content, 0o600); err != nil {
		return [][]byte{content}
	}

	pages, err := r.pdftoppm(ctx, dir, src)
	if err != nil && r.MutoolFallback {
		r.logger().Warn("pdftoppm failed, trying mutool", "error", err)
		pages, err = r.mutool(ctx, dir, src)
	}
	if err != nil || len(pages) == 0 {
		r.logger().Warn("rasterization failed, treating document as one page", "error", err)
		return [][]byte{content}
	}
	return pages
}

func (r *Renderer) pdftoppm(ctx context.Context, dir, src string) ([][]byte, error) {
	out := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", strconv.Itoa(r.dpi()), "-png", src, out)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w", err)
	}
	return collectPages(dir, "page-")
}

func (r *Renderer) mutool(ctx context.Context, dir, src string) ([][]byte, error) {
	out := filepath.Join(dir, "mpage-%d.png")
	cmd := exec.CommandContext(ctx, "mutool", "draw", "-r", strconv.Itoa(r.dpi()), "-o", out, src)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("mutool draw: %w", err)
	}
	return collectPages(dir, "mpage-")
}

func (r *Renderer) dpi() int {
	if r.DPI > 0 {
		return r.DPI
	}
	return defaultDPI
}

func (r *Renderer) logger() *slog.Logger {
	if r.Log != nil {
		return r.Log
	}
	return slog.Default()
}

// collectPages reads the rendered page images back in page-number order.
// pdftoppm zero-pads its page numbers but mutool does not, so the sort is
// numeric on the trailing digits.
func collectPages(dir, prefix string) ([][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".png") {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return pageNumber(names[i]) < pageNumber(names[j])
	})

	pages := make([][]byte, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		pages = append(pages, data)
	}
	return pages, nil
}

func pageNumber(name string) int {
	name = strings.TrimSuffix(name, ".png")
	i := strings.LastIndexByte(name, '-')
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return 0
	}
	return n
}

// PageCount reads the page count through pdfcpu, falling back to counting
// page-object markers when the document cannot be parsed. Never less
// than 1.
func PageCount(content []byte) int {
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(content), model.NewDefaultConfiguration())
	if err == nil && pdfCtx.PageCount > 0 {
		return pdfCtx.PageCount
	}

	n := bytes.Count(content, []byte("/Type /Page")) - bytes.Count(content, []byte("/Type /Pages"))
	if n < 1 {
		return 1
	}
	return n
}
