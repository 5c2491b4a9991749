package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/docfides/parsing-service/internal/docparse"
	"github.com/docfides/parsing-service/internal/pdfpage"
)

func (s *Service) extractPDF(ctx context.Context, content []byte) docparse.TextResult {
	text, pages, err := readPDFText(content)
	extractor := "pdflib"
	if err != nil && s.FallbackPdftotext {
		s.logger().Warn("pdf library extraction failed, trying pdftotext", "error", err)
		text, err = pdftotext(ctx, content)
		pages = pdfpage.PageCount(content)
		extractor = "pdftotext"
	}
	if err != nil {
		return docparse.TextResult{PageCount: 1, Err: err.Error()}
	}
	if pages < 1 {
		pages = 1
	}
	return docparse.TextResult{
		Text:      strings.TrimSpace(text),
		PageCount: pages,
		Metadata:  map[string]string{"extractor": extractor},
	}
}

func readPDFText(content []byte) (string, int, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f")
		}
		buf.WriteString(text)
	}
	return buf.String(), numPages, nil
}

func pdftotext(ctx context.Context, content []byte) (string, error) {
	tmp, err := os.CreateTemp("", "docparse-pdf-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, bytes.NewReader(content)); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	out, err := exec.CommandContext(ctx, "pdftotext", "-layout", tmpPath, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
