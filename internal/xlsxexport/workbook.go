// Package xlsxexport renders a batch table as an Excel workbook.
package xlsxexport

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"ogarx/internal/table"
)

const (
	DefaultSheetName      = "Données OGAR"
	DefaultMaxColumnWidth = 50

	// ContentType is the MIME type of the generated workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Options controls sheet naming and column sizing.
type Options struct {
	SheetName      string
	MaxColumnWidth int
}

// Write renders tbl on a single sheet and returns the workbook bytes.
// Each column is as wide as its longest cell plus two, capped at
// MaxColumnWidth.
func Write(tbl table.Table, opts Options) ([]byte, error) {
	if opts.SheetName == "" {
		opts.SheetName = DefaultSheetName
	}
	if opts.MaxColumnWidth <= 0 {
		opts.MaxColumnWidth = DefaultMaxColumnWidth
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := opts.SheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	widths := make([]int, len(tbl.Header))
	for i, h := range tbl.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
		widths[i] = utf8.RuneCountInString(h)
	}
	if len(tbl.Header) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(tbl.Header), 1)
		_ = f.SetCellStyle(sheet, "A1", last, headerStyle)
	}

	for r, row := range tbl.Rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("writing %s: %w", cell, err)
			}
			if c < len(widths) {
				if n := utf8.RuneCountInString(fmt.Sprint(v)); n > widths[c] {
					widths[c] = n
				}
			}
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := w + 2
		if width > opts.MaxColumnWidth {
			width = opts.MaxColumnWidth
		}
		if err := f.SetColWidth(sheet, col, col, float64(width)); err != nil {
			return nil, fmt.Errorf("sizing column %s: %w", col, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildFilename returns the download name for an export made at t,
// e.g. ogar_extraction_20250304_050607.xlsx.
func BuildFilename(t time.Time) string {
	return fmt.Sprintf("ogar_extraction_%s.xlsx", t.Format("20060102_150405"))
}
