package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"ogarx/internal/table"
)

// ContentType is the MIME type of the generated file.
const ContentType = "text/csv; charset=utf-8"

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer wraps csv.Writer for exporting batch tables as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteTable writes the header row followed by every row of tbl.
func (w *Writer) WriteTable(tbl table.Table) error {
	if err := w.csv.Write(tbl.Header); err != nil {
		return err
	}
	for _, row := range tbl.Rows {
		if err := w.csv.Write(toStrings(row)); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Write renders tbl as a BOM-prefixed CSV document.
func Write(out io.Writer, tbl table.Table) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteTable(tbl); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch c := v.(type) {
		case string:
			out[i] = c
		case nil:
		default:
			out[i] = fmt.Sprint(c)
		}
	}
	return out
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition or an object key.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns the download name for an export made at t.
// Format: ogar_extraction_{YYYYmmdd_HHMMSS}.csv
func BuildFilename(t time.Time) string {
	return fmt.Sprintf("ogar_extraction_%s.csv", t.Format("20060102_150405"))
}
