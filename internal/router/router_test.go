package router_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ogarx/internal/batch"
	"ogarx/internal/config"
	"ogarx/internal/domain"
	"ogarx/internal/handler"
	"ogarx/internal/repository/memory"
	"ogarx/internal/router"
	"ogarx/internal/service"
	"ogarx/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type app struct {
	engine *gin.Engine
	raster *mocks.MockRasterizer
	model  *mocks.MockModelInvoker
}

func newApp() *app {
	registry := batch.NewRegistry(time.Hour, time.Hour)
	raster := new(mocks.MockRasterizer)
	model := new(mocks.MockModelInvoker)

	identity := service.NewIdentityService(memory.NewUserRepo(), nil)
	authSvc := service.NewAuthService(identity, config.JWTConfig{
		Secret:            "router-test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "ogarx",
	})
	extraction := service.NewExtractionService(raster, model, nil, "", "", config.ExtractionConfig{MaxFiles: 5})
	export := service.NewExportService(nil, nil, "", config.ExportConfig{})

	engine := router.Setup(
		authSvc,
		handler.NewAuthHandler(authSvc, identity),
		handler.NewExtractionHandler(extraction, registry, 5),
		handler.NewBatchHandler(export, registry),
		handler.NewHealthHandler(nil, registry, "mock"),
		nil,
		0,
	)
	return &app{engine: engine, raster: raster, model: model}
}

func (a *app) do(t *testing.T, method, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthEndpoints(t *testing.T) {
	a := newApp()

	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/healthz", "", nil, "").Code)
	w := a.do(t, http.MethodGet, "/readyz", "", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"model":"mock"`)
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	a := newApp()

	for _, path := range []string{"/api/v1/batch/records", "/api/v1/batch/results", "/api/v1/batch/export"} {
		assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, path, "", nil, "").Code, path)
	}
}

func TestRouter_RegisterUploadExport(t *testing.T) {
	a := newApp()

	body, _ := json.Marshal(service.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "secret"})
	w := a.do(t, http.MethodPost, "/api/v1/auth/register", "", bytes.NewBuffer(body), "application/json")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body, _ = json.Marshal(service.LoginInput{Username: "alice", Password: "secret"})
	w = a.do(t, http.MethodPost, "/api/v1/auth/login", "", bytes.NewBuffer(body), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Data service.Token `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	token := login.Data.AccessToken
	require.NotEmpty(t, token)

	a.model.On("Name").Return("mock")
	a.raster.On("Rasterize", mock.Anything, mock.Anything).
		Return([]domain.PageImage{{DocumentName: "scan.png", Page: 1}}, nil)
	a.model.On("Invoke", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ModelReply{Text: "```json\n{\"souscripteur\": {\"nom\": \"Mbida\", \"ville\": \"Douala\"}}\n```"}, nil)

	upload := &bytes.Buffer{}
	mw := multipart.NewWriter(upload)
	part, err := mw.CreateFormFile("files", "scan.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\nrest"))
	require.NoError(t, mw.Close())

	w = a.do(t, http.MethodPost, "/api/v1/extractions", token, upload, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var run struct {
		Data domain.BatchReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, 2, run.Data.RecordsAdded)

	w = a.do(t, http.MethodGet, "/api/v1/batch/export?format=csv", token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(w.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Category", "Field Name", "Field Value", "Source File"},
		{"Souscripteur", "nom", "Mbida", "scan.png"},
		{"Souscripteur", "ville", "Douala", "scan.png"},
	}, rows)

	w = a.do(t, http.MethodDelete, "/api/v1/session", token, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/batch/records", token, nil, "")
	assert.Contains(t, w.Body.String(), `"count":0`)
}
