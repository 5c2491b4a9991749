package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/docfides/parsing-service/internal/docparse"
)

func (s *Service) extractDOCX(content []byte) docparse.TextResult {
	doc, err := docx.Parse(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return docparse.TextResult{
			PageCount: 1,
			Err:       fmt.Errorf("parse docx: %w", err).Error(),
		}
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if text := paragraphText(para); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	return docparse.TextResult{
		Text:      strings.Join(paragraphs, "\n\n"),
		PageCount: 1,
		Metadata:  map[string]string{"extractor": "go-docx"},
	}
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
