package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgallion1/docintel/internal/document"
	"github.com/xuri/excelize/v2"
)

// DataStartRow is the 1-based row where data begins in the target
// spreadsheets. Rows above it are title and header rows. This is a fixed
// convention, not detected.
const DataStartRow = 4

// XLSXScraper reads the active sheet from DataStartRow onwards. Rows whose
// first cell is empty are dropped from both Text and Rows.
type XLSXScraper struct{}

func (s *XLSXScraper) Scrape(_ context.Context, path string) (*document.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &document.ScrapeError{Path: path, Err: fmt.Errorf("open xlsx: %w", err)}
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &document.ScrapeError{Path: path, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}

	var header document.Row
	if len(rows) >= DataStartRow-1 {
		header = document.Row(rows[DataStartRow-2])
	}

	var kept []document.Row
	var lines []string
	width := 0
	for i := DataStartRow - 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		cells := make([]string, 0, len(row))
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				cells = append(cells, c)
			}
		}
		lines = append(lines, strings.Join(cells, " "))
		kept = append(kept, document.Row(row))
		width = max(width, len(row))
	}

	// excelize trims trailing empty cells; pad back to a fixed width.
	if isBlankRow(header) {
		header = nil
	}
	width = max(width, len(header))
	for i := range kept {
		kept[i] = padRow(kept[i], width)
	}
	if header == nil && width > 0 {
		header = make(document.Row, width)
		for i := range header {
			header[i] = fmt.Sprintf("Column %d", i+1)
		}
	} else {
		header = padRow(header, width)
	}

	return &document.Record{
		Text:       strings.ToValidUTF8(strings.Join(lines, "\n"), ""),
		SourcePath: path,
		Format:     document.FormatXLSX,
		Header:     header,
		Rows:       kept,
	}, nil
}

func padRow(row document.Row, width int) document.Row {
	if len(row) >= width {
		return row
	}
	out := make(document.Row, width)
	copy(out, row)
	return out
}

func isBlankRow(row document.Row) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
