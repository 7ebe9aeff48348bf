package scraper

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dgallion1/docintel/internal/document"
	"github.com/fumiama/go-docx"
)

// DOCXScraper joins the text of every paragraph, in document order, with newlines.
type DOCXScraper struct{}

func (s *DOCXScraper) Scrape(_ context.Context, path string) (*document.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &document.ScrapeError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &document.ScrapeError{Path: path, Err: err}
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, &document.ScrapeError{Path: path, Err: fmt.Errorf("parse docx: %w", err)}
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		paragraphs = append(paragraphs, docxParagraphText(para))
	}

	return &document.Record{
		Text:       strings.ToValidUTF8(strings.Join(paragraphs, "\n"), ""),
		SourcePath: path,
		Format:     document.FormatDOCX,
	}, nil
}

// docxParagraphText flattens runs and hyperlinks in order. Tabs and line
// breaks keep their whitespace.
func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRunText(&buf, c)
		case *docx.Hyperlink:
			// Word stores link text as w:t children; go-docx writes it as instrText.
			n := buf.Len()
			writeRunText(&buf, &c.Run)
			if buf.Len() == n {
				buf.WriteString(c.Run.InstrText)
			}
		}
	}
	return buf.String()
}

func writeRunText(buf *strings.Builder, run *docx.Run) {
	for _, rc := range run.Children {
		switch x := rc.(type) {
		case *docx.Text:
			buf.WriteString(x.Text)
		case *docx.Tab:
			buf.WriteByte('\t')
		case *docx.BarterRabbet:
			buf.WriteByte('\n')
		}
	}
}
