package xlsxexport_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ogarx/internal/domain"
	"ogarx/internal/table"
	"ogarx/internal/xlsxexport"
)

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWrite_StructuredSheet(t *testing.T) {
	records := []domain.FlatRecord{
		{Category: "Vehicule", Field: "marque", Value: "Toyota", SourceFile: "scan.png"},
		{Category: "Police", Field: "police_numero", Value: "P-001", SourceFile: "police.pdf", Page: 2},
	}

	data, err := xlsxexport.Write(table.Build(records, domain.LayoutStructured), xlsxexport.Options{})
	require.NoError(t, err)

	f := open(t, data)
	assert.Equal(t, []string{"Données OGAR"}, f.GetSheetList())

	rows, err := f.GetRows("Données OGAR")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Category", "Field Name", "Field Value", "Source File", "Page"}, rows[0])
	assert.Equal(t, []string{"Vehicule", "marque", "Toyota", "scan.png"}, rows[1])
	assert.Equal(t, []string{"Police", "police_numero", "P-001", "police.pdf", "2"}, rows[2])
}

func TestWrite_ColumnWidths(t *testing.T) {
	records := []domain.FlatRecord{
		{Category: "C", Field: "f", Value: strings.Repeat("x", 80), SourceFile: "a.png"},
	}

	data, err := xlsxexport.Write(table.Build(records, domain.LayoutStructured), xlsxexport.Options{SheetName: "Export"})
	require.NoError(t, err)

	f := open(t, data)
	// "Category" is the longest cell of column A
	w, err := f.GetColWidth("Export", "A")
	require.NoError(t, err)
	assert.Equal(t, float64(10), w)

	// capped
	w, err = f.GetColWidth("Export", "C")
	require.NoError(t, err)
	assert.Equal(t, float64(50), w)
}

func TestWrite_HeaderOnlyForEmptyTable(t *testing.T) {
	data, err := xlsxexport.Write(table.Build(nil, domain.LayoutStructured), xlsxexport.Options{})
	require.NoError(t, err)

	rows, err := open(t, data).GetRows(xlsxexport.DefaultSheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestBuildFilename(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "ogar_extraction_20250304_050607.xlsx", xlsxexport.BuildFilename(at))
}
