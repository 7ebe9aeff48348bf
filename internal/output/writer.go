// Package output persists analysis artifacts under an output root.
package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/dgallion1/docintel/internal/document"
)

// Writer writes artifact files relative to a root. Every write replaces the
// target file, so repeated runs produce identical trees.
type Writer struct {
	fs   afs.Service
	root string
}

// NewWriter roots a writer at dir. Relative dirs are resolved against the
// working directory.
func NewWriter(dir string) (*Writer, error) {
	if strings.Contains(dir, "://") {
		return &Writer{fs: afs.New(), root: dir}, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	return &Writer{fs: afs.New(), root: abs}, nil
}

// Root returns the resolved output root.
func (w *Writer) Root() string { return w.root }

// URL returns the location of rel under the root.
func (w *Writer) URL(rel ...string) string {
	return url.Join(w.root, rel...)
}

// WriteText writes content verbatim.
func (w *Writer) WriteText(ctx context.Context, rel, content string) error {
	return w.upload(ctx, rel, []byte(content))
}

// WriteLines writes each line followed by a newline.
func (w *Writer) WriteLines(ctx context.Context, rel string, lines []string) error {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	return w.upload(ctx, rel, buf.Bytes())
}

// WriteCSV writes header (when non-empty) followed by rows.
func (w *Writer) WriteCSV(ctx context.Context, rel string, header document.Row, rows []document.Row) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if len(header) > 0 {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("csv header: %w", err)
		}
	}
	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	return w.upload(ctx, rel, buf.Bytes())
}

func (w *Writer) upload(ctx context.Context, rel string, data []byte) error {
	target := w.URL(rel)
	// Remove any previous version so a shorter artifact never keeps a stale tail.
	if ok, _ := w.fs.Exists(ctx, target); ok {
		if err := w.fs.Delete(ctx, target); err != nil {
			return fmt.Errorf("replace %s: %w", target, err)
		}
	}
	if err := w.fs.Upload(ctx, target, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

// SanitizeName keeps letters, digits, spaces, underscores and hyphens of
// name and trims trailing whitespace.
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRightFunc(b.String(), unicode.IsSpace)
}
