package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ogarx/internal/batch"
	"ogarx/internal/domain"
	"ogarx/internal/service"
)

// StorageExtractionInput is the DTO for extracting documents already in the bucket.
type StorageExtractionInput struct {
	Keys   []string `json:"keys" binding:"required,min=1"`
	Prompt string   `json:"prompt"`
	Append bool     `json:"append"`
}

// ExtractionHandler runs extraction batches for the caller's session.
type ExtractionHandler struct {
	extractionService service.ExtractionService
	registry          *batch.Registry
	maxFiles          int
}

// NewExtractionHandler creates a new ExtractionHandler. maxFiles <= 0 means
// no limit.
func NewExtractionHandler(extractionService service.ExtractionService, registry *batch.Registry, maxFiles int) *ExtractionHandler {
	return &ExtractionHandler{
		extractionService: extractionService,
		registry:          registry,
		maxFiles:          maxFiles,
	}
}

// Upload handles POST /api/v1/extractions
func (h *ExtractionHandler) Upload(c *gin.Context) {
	owner, ok := sessionOwner(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "multipart form is required")
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		RespondError(c, http.StatusBadRequest, "MISSING_FILES", "at least one file is required in 'files' field")
		return
	}
	if h.maxFiles > 0 && len(fileHeaders) > h.maxFiles {
		HandleError(c, domain.ErrTooManyFiles)
		return
	}

	docs := make([]domain.RawDocument, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		content, err := readFormFile(fh)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "FILE_READ_ERROR", "failed to read uploaded file")
			return
		}
		doc, err := h.extractionService.LoadDocument(fh.Filename, content)
		if err != nil {
			HandleError(c, err)
			return
		}
		docs = append(docs, doc)
	}

	appendMode, _ := strconv.ParseBool(c.DefaultPostForm("append", "false"))
	opts := service.RunOptions{Prompt: c.PostForm("prompt"), Append: appendMode}

	h.run(c, owner, docs, opts)
}

// FromStorage handles POST /api/v1/extractions/storage
func (h *ExtractionHandler) FromStorage(c *gin.Context) {
	owner, ok := sessionOwner(c)
	if !ok {
		return
	}

	var input StorageExtractionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	docs, err := h.extractionService.FromStorage(input.Keys)
	if err != nil {
		HandleError(c, err)
		return
	}

	h.run(c, owner, docs, service.RunOptions{Prompt: input.Prompt, Append: input.Append})
}

func (h *ExtractionHandler) run(c *gin.Context, owner string, docs []domain.RawDocument, opts service.RunOptions) {
	report, err := h.extractionService.Run(c.Request.Context(), docs, opts, h.registry.Get(owner))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, report)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}
