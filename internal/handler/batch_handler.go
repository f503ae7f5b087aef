package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"ogarx/internal/batch"
	"ogarx/internal/domain"
	"ogarx/internal/middleware"
	"ogarx/internal/service"
)

// RecordsOutput is the flat record view of a batch.
type RecordsOutput struct {
	Records []domain.FlatRecord `json:"records"`
	Count   int                 `json:"count"`
}

// PublishRequest selects what to publish. Both fields are optional.
type PublishRequest struct {
	Format domain.ExportFormat `json:"format"`
	Layout domain.RecordLayout `json:"layout"`
}

// BatchHandler exposes the caller's session batch.
type BatchHandler struct {
	exportService service.ExportService
	registry      *batch.Registry
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(exportService service.ExportService, registry *batch.Registry) *BatchHandler {
	return &BatchHandler{exportService: exportService, registry: registry}
}

// Records handles GET /api/v1/batch/records
func (h *BatchHandler) Records(c *gin.Context) {
	owner, ok := sessionOwner(c)
	if !ok {
		return
	}

	records := []domain.FlatRecord{}
	if b, found := h.registry.Peek(owner); found {
		records = b.Snapshot()
	}
	RespondOK(c, RecordsOutput{Records: records, Count: len(records)})
}

// Results handles GET /api/v1/batch/results
func (h *BatchHandler) Results(c *gin.Context) {
	owner, ok := sessionOwner(c)
	if !ok {
		return
	}

	results := []domain.ExtractionResult{}
	if b, found := h.registry.Peek(owner); found {
		results = b.Results()
	}
	RespondOK(c, results)
}

// Clear handles DELETE /api/v1/batch
func (h *BatchHandler) Clear(c *gin.Context) {
	owner, ok := sessionOwner(c)
	if !ok {
		return
	}

	if b, found := h.registry.Peek(owner); found {
		if b.Running() {
			HandleError(c, domain.ErrBatchInProgress)
			return
		}
		b.Clear()
	}
	RespondOK(c, gin.H{"message": "batch cleared"})
}

// Export handles GET /api/v1/batch/export?format=xlsx|csv|json&layout=structured|two_column
func (h *BatchHandler) Export(c *gin.Context) {
	owner, ok := sessionOwner(c)
	if !ok {
		return
	}

	format, layout, ok := parseExportOptions(c, c.Query("format"), c.Query("layout"))
	if !ok {
		return
	}

	b, found := h.registry.Peek(owner)
	if !found {
		HandleError(c, domain.ErrEmptyBatch)
		return
	}

	file, err := h.exportService.Render(b, format, layout)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Publish handles POST /api/v1/batch/export/publish
func (h *BatchHandler) Publish(c *gin.Context) {
	owner, ok := sessionOwner(c)
	if !ok {
		return
	}

	var req PublishRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}
	format, layout, ok := parseExportOptions(c, string(req.Format), string(req.Layout))
	if !ok {
		return
	}

	b, found := h.registry.Peek(owner)
	if !found {
		HandleError(c, domain.ErrEmptyBatch)
		return
	}

	file, err := h.exportService.Render(b, format, layout)
	if err != nil {
		HandleError(c, err)
		return
	}

	published, err := h.exportService.Publish(c.Request.Context(), file, service.PublishInput{
		Owner: middleware.GetUsername(c),
		Email: middleware.GetEmail(c),
		Name:  middleware.GetUsername(c),
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, published)
}

// EndSession handles DELETE /api/v1/session
func (h *BatchHandler) EndSession(c *gin.Context) {
	owner, ok := sessionOwner(c)
	if !ok {
		return
	}

	if b, found := h.registry.Peek(owner); found && b.Running() {
		HandleError(c, domain.ErrBatchInProgress)
		return
	}
	h.registry.Drop(owner)
	RespondOK(c, gin.H{"message": "session ended"})
}

func parseExportOptions(c *gin.Context, format, layout string) (domain.ExportFormat, domain.RecordLayout, bool) {
	f := domain.ExportFormat(format)
	switch f {
	case "":
		f = domain.ExportXLSX
	case domain.ExportXLSX, domain.ExportCSV, domain.ExportJSON:
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be one of: xlsx, csv, json")
		return "", "", false
	}

	l := domain.RecordLayout(layout)
	switch l {
	case "":
		l = domain.LayoutStructured
	case domain.LayoutStructured, domain.LayoutTwoColumn:
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_LAYOUT", "layout must be one of: structured, two_column")
		return "", "", false
	}
	return f, l, true
}
