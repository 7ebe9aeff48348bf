package document

import (
	"path/filepath"
	"strings"
)

// Format identifies the source format a Record was scraped from.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatDOCX  Format = "docx"
	FormatImage Format = "image"
	FormatXLSX  Format = "xlsx"
)

// Row is one fixed-width row of cell values.
type Row []string

// Record is the normalized output of a scraper. Agents read it and never mutate it.
type Record struct {
	Text       string   // Concatenated text, OCR output included; may be empty
	SourcePath string   // Origin file path
	Format     Format   // Source format
	ImagePaths []string // Raster images persisted under TempDir, in discovery order
	TempDir    string   // Per-document image directory owned by the caller; empty if none was created
	Header     Row      // Spreadsheet header row (spreadsheets only)
	Rows       []Row    // Spreadsheet data rows (spreadsheets only)
}

// IsTabular reports whether the record came from a spreadsheet.
func (r *Record) IsTabular() bool {
	return r.Format == FormatXLSX
}

// NormalizedText returns Text with invalid UTF-8 sequences dropped.
func (r *Record) NormalizedText() string {
	return strings.ToValidUTF8(r.Text, "")
}

// Table is one table found in a PDF. Page and Index are 1-based.
type Table struct {
	Page  int   `json:"page"`
	Index int   `json:"index"`
	Rows  []Row `json:"rows"`
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
