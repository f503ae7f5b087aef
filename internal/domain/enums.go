package domain

import (
	"path/filepath"
	"strings"
)

// MediaType is the declared type of an uploaded document.
type MediaType string

const (
	MediaTypePDF  MediaType = "pdf"
	MediaTypePNG  MediaType = "png"
	MediaTypeJPEG MediaType = "jpeg"
)

// AllowedExtensions maps file extensions (without dot) to MediaType.
var AllowedExtensions = map[string]MediaType{
	"pdf":  MediaTypePDF,
	"png":  MediaTypePNG,
	"jpg":  MediaTypeJPEG,
	"jpeg": MediaTypeJPEG,
}

// IsImage reports whether the media type is a single-frame image format.
func (m MediaType) IsImage() bool {
	return m == MediaTypePNG || m == MediaTypeJPEG
}

// MediaTypeFromName resolves the declared media type of a document from its
// file extension. Content is not inspected here; a document whose bytes do
// not match is rejected when it is rasterized.
func MediaTypeFromName(filename string) (MediaType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	mt, ok := AllowedExtensions[ext]
	if !ok {
		return "", ErrUnsupportedFileType
	}
	return mt, nil
}

// RecordLayout selects how extraction results are flattened for export.
type RecordLayout string

const (
	// LayoutStructured emits Category, Field Name, Field Value rows.
	LayoutStructured RecordLayout = "structured"
	// LayoutTwoColumn emits dotted field paths with the extraction date.
	LayoutTwoColumn RecordLayout = "two_column"
)

// ExportFormat is the file format of a batch export.
type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

// IssueKind classifies a per-document or per-page failure in a batch run.
type IssueKind string

const (
	IssueRasterization IssueKind = "rasterization"
	IssueInvocation    IssueKind = "invocation"
	IssueParse         IssueKind = "parse"
	IssueLoad          IssueKind = "load"
)
