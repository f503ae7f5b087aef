package domain

import (
	"image"
	"time"

	"github.com/google/uuid"

	"ogarx/internal/jsonvalue"
)

// User is an account of the identity store.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// RawDocument is an uploaded file. It is not modified after upload.
// Documents taken from object storage carry their Key and no Content until
// the run reaches them.
type RawDocument struct {
	Name      string
	Content   []byte
	MediaType MediaType
	Key       string
}

// PageImage is one rasterized page of a document. Page is 1-based.
type PageImage struct {
	DocumentName string
	Page         int
	Image        image.Image
}

// ModelReply is the raw text a model returned for one page.
type ModelReply struct {
	Text  string
	Model string
}

// ExtractionResult is the JSON object recovered for one page.
type ExtractionResult struct {
	SourceFile  string          `json:"source_file"`
	Page        int             `json:"page,omitempty"`
	ExtractedAt time.Time       `json:"extracted_at"`
	Model       string          `json:"model,omitempty"`
	Data        jsonvalue.Value `json:"data"`
}

// FlatRecord is one exported row. Page is 0 when the source had a single page.
type FlatRecord struct {
	Category    string    `json:"category"`
	Field       string    `json:"field"`
	Value       string    `json:"value"`
	SourceFile  string    `json:"source_file"`
	Page        int       `json:"page,omitempty"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// HasPage reports whether the record carries a page tag.
func (r FlatRecord) HasPage() bool {
	return r.Page > 0
}

// BatchIssue describes one isolated failure during a run.
type BatchIssue struct {
	Kind       IssueKind `json:"kind"`
	SourceFile string    `json:"source_file"`
	Page       int       `json:"page,omitempty"`
	Message    string    `json:"message"`
}

// BatchReport summarizes an extraction run.
type BatchReport struct {
	RunID          uuid.UUID    `json:"run_id"`
	Files          int          `json:"files"`
	PagesTotal     int          `json:"pages_total"`
	PagesExtracted int          `json:"pages_extracted"`
	RecordsAdded   int          `json:"records_added"`
	BatchSize      int          `json:"batch_size"`
	Issues         []BatchIssue `json:"issues"`
	StartedAt      time.Time    `json:"started_at"`
	FinishedAt     time.Time    `json:"finished_at"`
}
