package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDuplicateUsername   = errors.New("username already exists")
	ErrMissingFields       = errors.New("username, email and password are required")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrTooManyFiles        = errors.New("too many files in one batch")
	ErrNoDocuments         = errors.New("no documents to process")
	ErrEmptyBatch          = errors.New("batch has no records")
	ErrBatchInProgress     = errors.New("an extraction run is already in progress for this batch")
	ErrStorageDisabled     = errors.New("object storage is not configured")
	ErrNoModelClient       = errors.New("no model client configured")
	ErrUploadFailed        = errors.New("file upload to storage failed")
)

// LoadError means a document's content could not be fetched. The whole
// document is skipped.
type LoadError struct {
	Document string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Document, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// RasterizationError means a document could not be decoded into pages.
// The whole document is skipped.
type RasterizationError struct {
	Document string
	Err      error
}

func (e *RasterizationError) Error() string {
	return fmt.Sprintf("rasterizing %s: %v", e.Document, e.Err)
}

func (e *RasterizationError) Unwrap() error { return e.Err }

// InvocationError means the model call for one page failed. Only that page
// is skipped.
type InvocationError struct {
	Document string
	Page     int
	Err      error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invoking model for %s page %d: %v", e.Document, e.Page, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// ParseError means a fenced block was found in the model reply but did not
// hold a JSON object. Only that page is skipped.
type ParseError struct {
	Document string
	Page     int
	Err      error
}

func (e *ParseError) Error() string {
	if e.Document == "" {
		return fmt.Sprintf("parsing model reply: %v", e.Err)
	}
	return fmt.Sprintf("parsing model reply for %s page %d: %v", e.Document, e.Page, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
