package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ogarx/internal/batch"
	"ogarx/internal/domain"
	"ogarx/internal/handler"
	"ogarx/internal/service"
	"ogarx/mocks"
)

func seededRegistry(userID uuid.UUID) (*batch.Registry, *batch.Batch) {
	registry := batch.NewRegistry(time.Hour, time.Hour)
	b := registry.Get(userID.String())
	b.Append([]domain.FlatRecord{
		{Category: "Police", Field: "numero", Value: "P-1"},
		{Category: "Police", Field: "date_effet", Value: "2025-01-01"},
	}, "police.pdf", 0)
	return registry, b
}

func TestBatchHandler_Records(t *testing.T) {
	userID := uuid.New()
	registry, _ := seededRegistry(userID)
	h := handler.NewBatchHandler(new(mocks.MockExportService), registry)

	w := httptest.NewRecorder()
	c := authedContext(w, userID)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/batch/records", http.NoBody)

	h.Records(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data handler.RecordsOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Count)
	assert.Equal(t, "numero", resp.Data.Records[0].Field)
	assert.Equal(t, "police.pdf", resp.Data.Records[1].SourceFile)
}

func TestBatchHandler_Records_NoSession(t *testing.T) {
	h := handler.NewBatchHandler(new(mocks.MockExportService), batch.NewRegistry(time.Hour, time.Hour))

	w := httptest.NewRecorder()
	c := authedContext(w, uuid.New())
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/batch/records", http.NoBody)

	h.Records(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"records":[]`)
}

func TestBatchHandler_Results(t *testing.T) {
	userID := uuid.New()
	registry, b := seededRegistry(userID)
	b.AddResult(domain.ExtractionResult{SourceFile: "police.pdf"})
	h := handler.NewBatchHandler(new(mocks.MockExportService), registry)

	w := httptest.NewRecorder()
	c := authedContext(w, userID)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/batch/results", http.NoBody)

	h.Results(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source_file":"police.pdf"`)
}

func TestBatchHandler_Clear(t *testing.T) {
	userID := uuid.New()
	registry, b := seededRegistry(userID)
	h := handler.NewBatchHandler(new(mocks.MockExportService), registry)

	w := httptest.NewRecorder()
	c := authedContext(w, userID)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/api/v1/batch", http.NoBody)

	h.Clear(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, b.Len())
}

func TestBatchHandler_Clear_WhileRunning(t *testing.T) {
	userID := uuid.New()
	registry, b := seededRegistry(userID)
	require.NoError(t, b.BeginRun())
	h := handler.NewBatchHandler(new(mocks.MockExportService), registry)

	w := httptest.NewRecorder()
	c := authedContext(w, userID)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/api/v1/batch", http.NoBody)

	h.Clear(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 2, b.Len())
}

func TestBatchHandler_Export(t *testing.T) {
	userID := uuid.New()
	registry, b := seededRegistry(userID)
	exportSvc := new(mocks.MockExportService)
	h := handler.NewBatchHandler(exportSvc, registry)

	exportSvc.On("Render", b, domain.ExportCSV, domain.LayoutTwoColumn).Return(&service.ExportFile{
		Name:        "ogar_extraction_20250101_000000.csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        []byte("a,b\n"),
	}, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, userID)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/batch/export?format=csv&layout=two_column", http.NoBody)

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="ogar_extraction_20250101_000000.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", w.Body.String())
}

func TestBatchHandler_Export_Defaults(t *testing.T) {
	userID := uuid.New()
	registry, b := seededRegistry(userID)
	exportSvc := new(mocks.MockExportService)
	h := handler.NewBatchHandler(exportSvc, registry)

	exportSvc.On("Render", b, domain.ExportXLSX, domain.LayoutStructured).
		Return(&service.ExportFile{Name: "x.xlsx", ContentType: "application/octet-stream"}, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, userID)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/batch/export", http.NoBody)

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	exportSvc.AssertExpectations(t)
}

func TestBatchHandler_Export_InvalidOptions(t *testing.T) {
	userID := uuid.New()
	registry, _ := seededRegistry(userID)
	h := handler.NewBatchHandler(new(mocks.MockExportService), registry)

	for query, code := range map[string]string{
		"format=pdf":     "INVALID_FORMAT",
		"layout=columns": "INVALID_LAYOUT",
	} {
		w := httptest.NewRecorder()
		c := authedContext(w, userID)
		c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/batch/export?"+query, http.NoBody)

		h.Export(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
		assert.Equal(t, code, decode(t, w).Error.Code, query)
	}
}

func TestBatchHandler_Export_NoBatch(t *testing.T) {
	h := handler.NewBatchHandler(new(mocks.MockExportService), batch.NewRegistry(time.Hour, time.Hour))

	w := httptest.NewRecorder()
	c := authedContext(w, uuid.New())
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/batch/export", http.NoBody)

	h.Export(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMPTY_BATCH", decode(t, w).Error.Code)
}

func TestBatchHandler_Publish(t *testing.T) {
	userID := uuid.New()
	registry, b := seededRegistry(userID)
	exportSvc := new(mocks.MockExportService)
	h := handler.NewBatchHandler(exportSvc, registry)

	file := &service.ExportFile{Name: "x.json"}
	exportSvc.On("Render", b, domain.ExportJSON, domain.LayoutStructured).Return(file, nil)
	exportSvc.On("Publish", mock.Anything, file, service.PublishInput{
		Owner: "alice", Email: "alice@example.com", Name: "alice",
	}).Return(&service.PublishedExport{Key: "exports/alice/x.json", URL: "https://signed"}, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, userID)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/batch/export/publish", bytes.NewReader([]byte(`{"format":"json"}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Publish(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "https://signed")
	exportSvc.AssertExpectations(t)
}

func TestBatchHandler_EndSession(t *testing.T) {
	userID := uuid.New()
	registry, _ := seededRegistry(userID)
	h := handler.NewBatchHandler(new(mocks.MockExportService), registry)

	w := httptest.NewRecorder()
	c := authedContext(w, userID)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/api/v1/session", http.NoBody)

	h.EndSession(c)

	assert.Equal(t, http.StatusOK, w.Code)
	_, found := registry.Peek(userID.String())
	assert.False(t, found)
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{domain.ErrMissingFields, http.StatusBadRequest, "MISSING_FIELDS"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrNoModelClient, http.StatusServiceUnavailable, "NO_MODEL_CLIENT"},
		{assert.AnError, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		status, code, _ := handler.MapDomainError(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}
