package scraper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/docintel/internal/document"
	"github.com/fumiama/go-docx"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string, rows map[string][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for cell, values := range rows {
		vals := values
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			t.Fatalf("set row %s: %v", cell, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
}

func TestXLSXScraper_SkipsEmptyFirstCell(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.xlsx")
	writeWorkbook(t, path, map[string][]any{
		"A1": {"Quarterly survey"},
		"A3": {"Topic", "Score", "Max", "Code", "Comment"},
		"A4": {"Topic A", 10, 8, "x", "ok"},
		"B5": {7, 7, "z", "ignored"},
		"A6": {"Topic B", 5, 5, "y", "good"},
	})

	rec, err := (&XLSXScraper{}).Scrape(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %v", len(rec.Rows), rec.Rows)
	}
	if rec.Rows[0][0] != "Topic A" || rec.Rows[1][0] != "Topic B" {
		t.Errorf("rows: got %v", rec.Rows)
	}
	want := "Topic A 10 8 x ok\nTopic B 5 5 y good"
	if rec.Text != want {
		t.Errorf("text:\n got %q\nwant %q", rec.Text, want)
	}
	if len(rec.Header) != 5 || rec.Header[0] != "Topic" {
		t.Errorf("header: got %v", rec.Header)
	}
	if !rec.IsTabular() {
		t.Error("expected tabular record")
	}
}

func TestXLSXScraper_PadsRowsAndDefaultsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.xlsx")
	writeWorkbook(t, path, map[string][]any{
		"A4": {"a", "b", "c"},
		"A5": {"d"},
	})

	rec, err := (&XLSXScraper{}).Scrape(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rec.Rows))
	}
	for i, row := range rec.Rows {
		if len(row) != 3 {
			t.Errorf("row %d: expected width 3, got %d", i, len(row))
		}
	}
	want := []string{"Column 1", "Column 2", "Column 3"}
	for i, w := range want {
		if i >= len(rec.Header) || rec.Header[i] != w {
			t.Errorf("header: got %v, want %v", rec.Header, want)
			break
		}
	}
}

func TestXLSXScraper_NoDataRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	writeWorkbook(t, path, map[string][]any{"A1": {"title only"}})

	rec, err := (&XLSXScraper{}).Scrape(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Text != "" || len(rec.Rows) != 0 {
		t.Errorf("expected empty record, got text=%q rows=%v", rec.Text, rec.Rows)
	}
}

func TestXLSXScraper_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := (&XLSXScraper{}).Scrape(context.Background(), path)
	var se *document.ScrapeError
	if !errors.As(err, &se) {
		t.Fatalf("expected ScrapeError, got %v", err)
	}
}

func TestDOCXScraper_JoinsParagraphs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.docx")
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().AddText("First paragraph.")
	second := doc.AddParagraph()
	second.AddText("Second ")
	second.AddText("has two runs.")
	doc.AddParagraph().AddText("Last.")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := doc.WriteTo(f); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	f.Close()

	rec, err := (&DOCXScraper{}).Scrape(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "First paragraph.\nSecond has two runs.\nLast."
	if rec.Text != want {
		t.Errorf("text:\n got %q\nwant %q", rec.Text, want)
	}
	if rec.Format != document.FormatDOCX || len(rec.ImagePaths) != 0 {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestDOCXScraper_HyperlinksAndTabs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.docx")
	doc := docx.New().WithDefaultTheme()
	para := doc.AddParagraph()
	para.AddText("See ")
	para.AddLink("the handbook", "https://example.com/handbook")
	para.AddTab()
	para.AddText("page 4")
	doc.AddParagraph().AddText("Next.")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := doc.WriteTo(f); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	f.Close()

	rec, err := (&DOCXScraper{}).Scrape(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "See the handbook\tpage 4\nNext."
	if rec.Text != want {
		t.Errorf("text:\n got %q\nwant %q", rec.Text, want)
	}
}

func TestDOCXParagraphText_WordHyperlinkRuns(t *testing.T) {
	para := &docx.Paragraph{Children: []interface{}{
		&docx.Run{Children: []interface{}{&docx.Text{Text: "Call"}, &docx.BarterRabbet{}}},
		&docx.Hyperlink{Run: docx.Run{Children: []interface{}{&docx.Text{Text: "Jane Doe"}}}},
	}}
	if got := docxParagraphText(para); got != "Call\nJane Doe" {
		t.Errorf("got %q", got)
	}
}

func TestDOCXScraper_Missing(t *testing.T) {
	_, err := (&DOCXScraper{}).Scrape(context.Background(), filepath.Join(t.TempDir(), "nope.docx"))
	var se *document.ScrapeError
	if !errors.As(err, &se) {
		t.Fatalf("expected ScrapeError, got %v", err)
	}
}
