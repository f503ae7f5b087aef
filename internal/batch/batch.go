// Package batch accumulates flattened records across an extraction run.
package batch

import (
	"sync"

	"ogarx/internal/domain"
)

// Batch is an ordered, append-only set of records with an explicit reset.
// Records appear in the order they were appended.
type Batch struct {
	mu      sync.Mutex
	records []domain.FlatRecord
	results []domain.ExtractionResult
	running bool
	touch   func() // set by the Registry; resets the idle timer
}

// New returns an empty batch.
func New() *Batch {
	return &Batch{}
}

// PageTag returns the page index to stamp on records of a document with
// pageCount pages: 0 (no tag) for single-page sources, page otherwise.
func PageTag(page, pageCount int) int {
	if pageCount > 1 {
		return page
	}
	return 0
}

// Append stamps records with the source file and, when page > 0, the page
// index, then adds them to the end of the batch.
func (b *Batch) Append(records []domain.FlatRecord, sourceFile string, page int) int {
	b.mu.Lock()
	for _, r := range records {
		r.SourceFile = sourceFile
		r.Page = 0
		if page > 0 {
			r.Page = page
		}
		b.records = append(b.records, r)
	}
	touch := b.touch
	b.mu.Unlock()

	if touch != nil {
		touch()
	}
	return len(records)
}

// AddResult keeps the recovered JSON of one page for the raw results view.
func (b *Batch) AddResult(result domain.ExtractionResult) {
	b.mu.Lock()
	b.results = append(b.results, result)
	touch := b.touch
	b.mu.Unlock()

	if touch != nil {
		touch()
	}
}

// Snapshot returns a copy of the records in append order.
func (b *Batch) Snapshot() []domain.FlatRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.FlatRecord, len(b.records))
	copy(out, b.records)
	return out
}

// Results returns a copy of the recovered page results in append order.
func (b *Batch) Results() []domain.ExtractionResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.ExtractionResult, len(b.results))
	copy(out, b.results)
	return out
}

// Len reports the number of records.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// Clear drops every record and result.
func (b *Batch) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = nil
	b.results = nil
}

// BeginRun marks the batch as owned by a running extraction. Only one run
// may drive a batch at a time.
func (b *Batch) BeginRun() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return domain.ErrBatchInProgress
	}
	b.running = true
	return nil
}

// EndRun releases the batch taken by BeginRun.
func (b *Batch) EndRun() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = false
}

// Running reports whether a run currently owns the batch.
func (b *Batch) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func (b *Batch) setTouch(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.touch = fn
}
