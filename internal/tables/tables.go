// Package tables finds tables in the native text layer of PDF pages.
//
// Detection is positional: glyphs from the page content stream are grouped into
// lines by baseline, each line is split into cells wherever the horizontal gap
// between one glyph's right edge and the next glyph exceeds MinGap, and a run of
// consecutive multi-cell lines becomes one table.
package tables

import (
	"context"
	"fmt"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/docintel/internal/document"
)

const (
	// DefaultMinGap is the horizontal gap, in PDF points, that separates two cells.
	DefaultMinGap = 12.0
	// DefaultMinRows is the smallest number of consecutive multi-cell rows treated as a table.
	DefaultMinRows = 2
	// DefaultLineTol is how far, in points, two baselines may drift and still share a line.
	DefaultLineTol = 3.0
)

// Span is one positioned run of text on a line.
type Span struct {
	X, W float64
	S    string
}

// Line is one visual row of a page, spans in any order.
type Line []Span

// Detector groups lines into tables.
type Detector struct {
	MinGap  float64
	MinRows int
	LineTol float64
}

func NewDetector() *Detector {
	return &Detector{MinGap: DefaultMinGap, MinRows: DefaultMinRows, LineTol: DefaultLineTol}
}

// DetectPage returns the tables on one page, indexed from 1 in top-to-bottom order.
func (d *Detector) DetectPage(page int, lines []Line) []document.Table {
	minRows := d.MinRows
	if minRows < 1 {
		minRows = DefaultMinRows
	}

	var tables []document.Table
	var run []document.Row
	flush := func() {
		if len(run) >= minRows {
			tables = append(tables, document.Table{
				Page:  page,
				Index: len(tables) + 1,
				Rows:  padRows(run),
			})
		}
		run = nil
	}

	for _, line := range lines {
		cells := d.splitCells(line)
		if len(cells) < 2 {
			flush()
			continue
		}
		run = append(run, cells)
	}
	flush()
	return tables
}

func (d *Detector) splitCells(line Line) document.Row {
	if len(line) == 0 {
		return nil
	}
	spans := append(Line(nil), line...)
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].X < spans[j].X })

	var cells document.Row
	var cur strings.Builder
	end := spans[0].X
	for i, s := range spans {
		if i > 0 && s.X-end > d.MinGap {
			if c := strings.TrimSpace(cur.String()); c != "" {
				cells = append(cells, c)
			}
			cur.Reset()
		}
		cur.WriteString(s.S)
		end = max(end, s.X+s.W)
	}
	if c := strings.TrimSpace(cur.String()); c != "" {
		cells = append(cells, c)
	}
	return cells
}

func padRows(rows []document.Row) []document.Row {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	out := make([]document.Row, len(rows))
	for i, r := range rows {
		padded := make(document.Row, width)
		copy(padded, r)
		out[i] = padded
	}
	return out
}

// Extractor reads a PDF file and runs the Detector over every page.
type Extractor struct {
	Detector *Detector
}

func NewExtractor() *Extractor {
	return &Extractor{Detector: NewDetector()}
}

// ExtractFile returns every table in the PDF at path in document order. Any
// page that cannot be read fails the whole call.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (tables []document.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			tables, err = nil, fmt.Errorf("read pdf %s: %v", path, r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	for page := 1; page <= reader.NumPage(); page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := reader.Page(page)
		if p.V.IsNull() {
			continue
		}
		lines := linesFromText(p.Content().Text, e.Detector.LineTol)
		tables = append(tables, e.Detector.DetectPage(page, lines)...)
	}
	return tables, nil
}

// linesFromText groups glyphs into lines top to bottom. A glyph joins the
// current line while its baseline is within tol of the line's first glyph.
func linesFromText(text []pdflib.Text, tol float64) []Line {
	if tol <= 0 {
		tol = DefaultLineTol
	}
	glyphs := append([]pdflib.Text(nil), text...)
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].Y > glyphs[j].Y })

	var lines []Line
	var cur Line
	var baseline float64
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		if len(cur) > 0 && baseline-g.Y > tol {
			lines = append(lines, cur)
			cur = nil
		}
		if len(cur) == 0 {
			baseline = g.Y
		}
		cur = append(cur, Span{X: g.X, W: g.W, S: g.S})
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}
	return lines
}
