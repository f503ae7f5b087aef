package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/google/uuid"

	"ogarx/internal/batch"
	"ogarx/internal/config"
	"ogarx/internal/domain"
	"ogarx/internal/flatten"
	"ogarx/internal/port"
	"ogarx/internal/prompt"
	"ogarx/internal/reply"
)

// RunOptions tunes a single extraction run.
type RunOptions struct {
	// Prompt replaces the configured extraction prompt when non-empty.
	Prompt string
	// Append keeps the records already in the batch instead of clearing it.
	Append bool
}

// ExtractionService drives documents through rasterization, model
// invocation, reply recovery and flattening into a batch.
type ExtractionService interface {
	Run(ctx context.Context, docs []domain.RawDocument, opts RunOptions, b *batch.Batch) (*domain.BatchReport, error)
	LoadDocument(name string, content []byte) (domain.RawDocument, error)
	FromStorage(keys []string) ([]domain.RawDocument, error)
}

type extractionService struct {
	rasterizer port.Rasterizer
	invoker    port.ModelInvoker
	storage    port.ObjectStorage
	bucket     string
	prompt     string
	cfg        config.ExtractionConfig
	now        func() time.Time
}

// NewExtractionService creates a new ExtractionService. storage may be nil,
// in which case FromStorage returns ErrStorageDisabled. An empty
// defaultPrompt falls back to the built-in OGAR prompt.
func NewExtractionService(
	rasterizer port.Rasterizer,
	invoker port.ModelInvoker,
	storage port.ObjectStorage,
	bucket string,
	defaultPrompt string,
	cfg config.ExtractionConfig,
) ExtractionService {
	return &extractionService{
		rasterizer: rasterizer,
		invoker:    invoker,
		storage:    storage,
		bucket:     bucket,
		prompt:     prompt.Resolve(defaultPrompt),
		cfg:        cfg,
		now:        time.Now,
	}
}

// Run processes docs strictly in order, one page at a time. A failing
// document or page is recorded in the report and skipped. The run is not
// interrupted by cancellation of ctx once it has started.
func (s *extractionService) Run(ctx context.Context, docs []domain.RawDocument, opts RunOptions, b *batch.Batch) (*domain.BatchReport, error) {
	if len(docs) == 0 {
		return nil, domain.ErrNoDocuments
	}
	if s.invoker == nil {
		return nil, domain.ErrNoModelClient
	}
	if err := b.BeginRun(); err != nil {
		return nil, err
	}
	defer b.EndRun()

	if !opts.Append {
		b.Clear()
	}
	ctx = context.WithoutCancel(ctx)
	text := opts.Prompt
	if text == "" {
		text = s.prompt
	}

	report := &domain.BatchReport{
		RunID:     uuid.New(),
		Files:     len(docs),
		Issues:    []domain.BatchIssue{},
		StartedAt: s.now(),
	}
	log.Printf("extractionService.Run: run %s started with %d files (model %s)", report.RunID, len(docs), s.invoker.Name())

	for _, doc := range docs {
		if doc.Key != "" && doc.Content == nil {
			content, err := s.fetch(ctx, doc.Key)
			if err != nil {
				s.recordIssue(report, &domain.LoadError{Document: doc.Name, Err: err}, doc.Name, 0)
				continue
			}
			doc.Content = content
		}

		pages, err := s.rasterizer.Rasterize(ctx, doc)
		if err != nil {
			var rErr *domain.RasterizationError
			if !errors.As(err, &rErr) {
				err = &domain.RasterizationError{Document: doc.Name, Err: err}
			}
			s.recordIssue(report, err, doc.Name, 0)
			continue
		}
		report.PagesTotal += len(pages)

		for _, page := range pages {
			added, err := s.extractPage(ctx, doc.Name, page, len(pages), text, b)
			if err != nil {
				s.recordIssue(report, err, doc.Name, page.Page)
				continue
			}
			report.PagesExtracted++
			report.RecordsAdded += added
		}
	}

	report.BatchSize = b.Len()
	report.FinishedAt = s.now()
	log.Printf("extractionService.Run: run %s finished: %d/%d pages, %d records added, %d issues",
		report.RunID, report.PagesExtracted, report.PagesTotal, report.RecordsAdded, len(report.Issues))
	return report, nil
}

func (s *extractionService) extractPage(
	ctx context.Context, docName string, page domain.PageImage, pageCount int, text string, b *batch.Batch,
) (int, error) {
	out, err := s.invoker.Invoke(ctx, page, text)
	if err != nil {
		return 0, &domain.InvocationError{Document: docName, Page: page.Page, Err: err}
	}

	rec, err := reply.Parse(out.Text)
	if err != nil {
		return 0, &domain.ParseError{Document: docName, Page: page.Page, Err: err}
	}
	if rec.Source == reply.SourceRawText {
		log.Printf("extractionService.extractPage: no JSON in reply for %s page %d, kept as %s",
			docName, page.Page, reply.RawTextKey)
	}

	at := s.now()
	tag := batch.PageTag(page.Page, pageCount)
	b.AddResult(domain.ExtractionResult{
		SourceFile:  docName,
		Page:        tag,
		ExtractedAt: at,
		Model:       out.Model,
		Data:        rec.Value,
	})

	records := flatten.Flatten(rec.Value, "", "")
	for i := range records {
		records[i].ExtractedAt = at
	}
	return b.Append(records, docName, tag), nil
}

func (s *extractionService) recordIssue(report *domain.BatchReport, err error, docName string, page int) {
	issue := domain.BatchIssue{SourceFile: docName, Page: page, Message: err.Error()}

	var lErr *domain.LoadError
	var rErr *domain.RasterizationError
	var iErr *domain.InvocationError
	var pErr *domain.ParseError
	switch {
	case errors.As(err, &lErr):
		issue.Kind = domain.IssueLoad
	case errors.As(err, &rErr):
		issue.Kind = domain.IssueRasterization
	case errors.As(err, &iErr):
		issue.Kind = domain.IssueInvocation
	case errors.As(err, &pErr):
		issue.Kind = domain.IssueParse
	}

	log.Printf("extractionService.Run: skipping %s: %v", issue.Kind, err)
	report.Issues = append(report.Issues, issue)
}

// LoadDocument validates an uploaded file's size and extension. Content
// that does not match the extension is left to the rasterizer, which skips
// the document during the run.
func (s *extractionService) LoadDocument(name string, content []byte) (domain.RawDocument, error) {
	if s.tooLarge(content) {
		return domain.RawDocument{}, domain.ErrFileTooLarge
	}
	mt, err := domain.MediaTypeFromName(name)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("%s: %w", name, err)
	}
	return domain.RawDocument{Name: name, Content: content, MediaType: mt}, nil
}

// FromStorage turns object keys into documents, in order. The document name
// is the last path segment of the key. Content is downloaded by Run when it
// reaches the document, so a missing object only skips that document.
func (s *extractionService) FromStorage(keys []string) ([]domain.RawDocument, error) {
	if s.storage == nil || s.bucket == "" {
		return nil, domain.ErrStorageDisabled
	}
	if len(keys) == 0 {
		return nil, domain.ErrNoDocuments
	}
	if s.cfg.MaxFiles > 0 && len(keys) > s.cfg.MaxFiles {
		return nil, domain.ErrTooManyFiles
	}

	docs := make([]domain.RawDocument, 0, len(keys))
	for _, key := range keys {
		name := path.Base(key)
		mt, err := domain.MediaTypeFromName(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		docs = append(docs, domain.RawDocument{Name: name, MediaType: mt, Key: key})
	}
	return docs, nil
}

func (s *extractionService) fetch(ctx context.Context, key string) ([]byte, error) {
	if s.storage == nil || s.bucket == "" {
		return nil, domain.ErrStorageDisabled
	}
	content, err := s.storage.Download(ctx, s.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", key, err)
	}
	if s.tooLarge(content) {
		return nil, domain.ErrFileTooLarge
	}
	log.Printf("extractionService.fetch: downloaded %s from bucket %s (%d bytes)", key, s.bucket, len(content))
	return content, nil
}

func (s *extractionService) tooLarge(content []byte) bool {
	limit := s.cfg.MaxFileSizeMB * 1024 * 1024
	return limit > 0 && int64(len(content)) > limit
}
