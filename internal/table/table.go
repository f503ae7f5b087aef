// Package table lays out batch records as header + rows for the exporters.
package table

import (
	"ogarx/internal/domain"
)

// Column headers.
const (
	ColCategory       = "Category"
	ColFieldName      = "Field Name"
	ColFieldValue     = "Field Value"
	ColSourceFile     = "Source File"
	ColPage           = "Page"
	ColExtractionDate = "Extraction Date"
)

// DateLayout formats the extraction date column.
const DateLayout = "2006-01-02 15:04:05"

// Table is a rendered sheet. Cells are strings except Page, which is an
// int when set and "" otherwise.
type Table struct {
	Header []string
	Rows   [][]interface{}
}

// Build lays out records for the given layout. The Page column is present
// only when at least one record carries a page tag.
func Build(records []domain.FlatRecord, layout domain.RecordLayout) Table {
	withPage := false
	for _, r := range records {
		if r.HasPage() {
			withPage = true
			break
		}
	}

	var header []string
	if layout == domain.LayoutTwoColumn {
		header = []string{ColFieldName, ColFieldValue, ColSourceFile}
	} else {
		header = []string{ColCategory, ColFieldName, ColFieldValue, ColSourceFile}
	}
	if withPage {
		header = append(header, ColPage)
	}
	if layout == domain.LayoutTwoColumn {
		header = append(header, ColExtractionDate)
	}

	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		var row []interface{}
		if layout == domain.LayoutTwoColumn {
			row = []interface{}{r.Field, r.Value, r.SourceFile}
		} else {
			row = []interface{}{r.Category, r.Field, r.Value, r.SourceFile}
		}
		if withPage {
			if r.HasPage() {
				row = append(row, r.Page)
			} else {
				row = append(row, "")
			}
		}
		if layout == domain.LayoutTwoColumn {
			date := ""
			if !r.ExtractedAt.IsZero() {
				date = r.ExtractedAt.Format(DateLayout)
			}
			row = append(row, date)
		}
		rows = append(rows, row)
	}
	return Table{Header: header, Rows: rows}
}
