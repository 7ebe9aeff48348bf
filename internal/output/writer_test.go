package output

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/docintel/internal/document"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report", "report"},
		{"Q3 report (final)", "Q3 report final"},
		{"a.b,c;d", "abcd"},
		{"dash-and_under score", "dash-and_under score"},
		{"trailing   ", "trailing"},
		{"bad.", "bad"},
		{"résumé 2024", "résumé 2024"},
		{"...", ""},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func TestWriter_WritesFilesAndOverwrites(t *testing.T) {
	root := t.TempDir()
	w, err := NewWriter(root)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := w.WriteText(ctx, "doc/summary.txt", "first version, longer"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.WriteText(ctx, "doc/summary.txt", "second"); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if got := readFile(t, filepath.Join(root, "doc", "summary.txt")); got != "second" {
		t.Errorf("expected overwrite, got %q", got)
	}

	if err := w.WriteLines(ctx, "doc/names.txt", []string{"John Smith", "Jane Doe"}); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(root, "doc", "names.txt")); got != "John Smith\nJane Doe\n" {
		t.Errorf("lines: got %q", got)
	}

	if err := w.WriteLines(ctx, "doc/empty.txt", nil); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(root, "doc", "empty.txt")); got != "" {
		t.Errorf("empty lines: got %q", got)
	}
}

func TestWriter_WriteCSV(t *testing.T) {
	root := t.TempDir()
	w, _ := NewWriter(root)

	header := document.Row{"Topic", "Score"}
	rows := []document.Row{{"Topic A", "10"}, {"Topic, B", "5"}}
	if err := w.WriteCSV(context.Background(), "sheet/sheet_structured.csv", header, rows); err != nil {
		t.Fatal(err)
	}
	want := "Topic,Score\nTopic A,10\n\"Topic, B\",5\n"
	if got := readFile(t, filepath.Join(root, "sheet", "sheet_structured.csv")); got != want {
		t.Errorf("csv:\n got %q\nwant %q", got, want)
	}

	if err := w.WriteCSV(context.Background(), "t.csv", nil, []document.Row{{"a", "b"}}); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, filepath.Join(root, "t.csv")); got != "a,b\n" {
		t.Errorf("headerless csv: got %q", got)
	}
}

func TestNewWriter_ResolvesRelative(t *testing.T) {
	w, err := NewWriter("out")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(w.Root()) {
		t.Errorf("expected absolute root, got %q", w.Root())
	}
}
