package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ogarx/internal/batch"
	"ogarx/internal/config"
	"ogarx/internal/csvexport"
	"ogarx/internal/domain"
	"ogarx/internal/flatten"
	"ogarx/internal/port"
	"ogarx/internal/table"
	"ogarx/internal/xlsxexport"
)

// ExportFile is a rendered batch ready for download or upload.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// PublishInput identifies who a published export belongs to.
type PublishInput struct {
	Owner string
	Email string
	Name  string
}

// PublishedExport points at an uploaded export.
type PublishedExport struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in"`
}

// ExportService renders a batch as a spreadsheet, CSV or JSON document and
// can publish the result to object storage.
type ExportService interface {
	Render(b *batch.Batch, format domain.ExportFormat, layout domain.RecordLayout) (*ExportFile, error)
	Publish(ctx context.Context, file *ExportFile, input PublishInput) (*PublishedExport, error)
}

type exportService struct {
	storage     port.ObjectStorage
	emailSender port.EmailSender
	bucket      string
	cfg         config.ExportConfig
	now         func() time.Time
}

// NewExportService creates a new ExportService. storage and emailSender may
// be nil.
func NewExportService(
	storage port.ObjectStorage,
	emailSender port.EmailSender,
	bucket string,
	cfg config.ExportConfig,
) ExportService {
	return &exportService{
		storage:     storage,
		emailSender: emailSender,
		bucket:      bucket,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (s *exportService) Render(b *batch.Batch, format domain.ExportFormat, layout domain.RecordLayout) (*ExportFile, error) {
	if layout == "" {
		layout = domain.LayoutStructured
	}
	stamp := s.now()

	if format == domain.ExportJSON {
		results := b.Results()
		if len(results) == 0 {
			return nil, domain.ErrEmptyBatch
		}
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return nil, fmt.Errorf("encoding results: %w", err)
		}
		return &ExportFile{
			Name:        fmt.Sprintf("ogar_extraction_%s.json", stamp.Format("20060102_150405")),
			ContentType: "application/json",
			Data:        buf.Bytes(),
		}, nil
	}

	records := s.records(b, layout)
	if len(records) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	tbl := table.Build(records, layout)

	switch format {
	case domain.ExportXLSX, "":
		data, err := xlsxexport.Write(tbl, xlsxexport.Options{
			SheetName:      s.cfg.SheetName,
			MaxColumnWidth: s.cfg.MaxColumnWidth,
		})
		if err != nil {
			return nil, fmt.Errorf("exportService.Render: %w", err)
		}
		return &ExportFile{Name: xlsxexport.BuildFilename(stamp), ContentType: xlsxexport.ContentType, Data: data}, nil
	case domain.ExportCSV:
		var buf bytes.Buffer
		if err := csvexport.Write(&buf, tbl); err != nil {
			return nil, fmt.Errorf("exportService.Render: %w", err)
		}
		return &ExportFile{Name: csvexport.BuildFilename(stamp), ContentType: csvexport.ContentType, Data: buf.Bytes()}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// records returns the batch records for the layout. The two-column layout
// is rebuilt from the recovered results with dotted field paths.
func (s *exportService) records(b *batch.Batch, layout domain.RecordLayout) []domain.FlatRecord {
	if layout != domain.LayoutTwoColumn {
		return b.Snapshot()
	}

	var out []domain.FlatRecord
	for _, res := range b.Results() {
		for _, r := range flatten.Paths(res.Data, "") {
			r.SourceFile = res.SourceFile
			r.Page = res.Page
			r.ExtractedAt = res.ExtractedAt
			out = append(out, r)
		}
	}
	return out
}

func (s *exportService) Publish(ctx context.Context, file *ExportFile, input PublishInput) (*PublishedExport, error) {
	if s.storage == nil || s.bucket == "" {
		return nil, domain.ErrStorageDisabled
	}

	key := fmt.Sprintf("%s/%s/%s", s.cfg.KeyPrefix, csvexport.SanitizeFilename(input.Owner), file.Name)
	if s.cfg.KeyPrefix == "" {
		key = fmt.Sprintf("%s/%s", csvexport.SanitizeFilename(input.Owner), file.Name)
	}

	log.Printf("exportService.Publish: uploading %s (%d bytes) to %s", file.Name, len(file.Data), key)
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         key,
		Body:        bytes.NewReader(file.Data),
		ContentType: file.ContentType,
		Size:        int64(len(file.Data)),
	}); err != nil {
		log.Printf("exportService.Publish: upload failed for %s: %v", key, err)
		return nil, domain.ErrUploadFailed
	}

	expiry := s.cfg.PresignExpiry
	if expiry <= 0 {
		expiry = 3600
	}
	url, err := s.storage.GetPresignedURL(ctx, s.bucket, key, expiry)
	if err != nil {
		return nil, fmt.Errorf("presigning %s: %w", key, err)
	}

	if s.emailSender != nil && input.Email != "" {
		if err := s.emailSender.SendExportReadyEmail(ctx, input.Email, input.Name, file.Name, url); err != nil {
			log.Printf("exportService.Publish: failed to send export email to %s: %v", input.Email, err)
		}
	}

	return &PublishedExport{Key: key, URL: url, ExpiresIn: expiry}, nil
}
