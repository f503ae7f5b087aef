package handler_test

import (
	"bytes"
	"encoding/json"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ogarx/internal/batch"
	"ogarx/internal/config"
	"ogarx/internal/domain"
	"ogarx/internal/handler"
	"ogarx/internal/raster"
	"ogarx/internal/service"
	"ogarx/mocks"
)

type upload struct {
	name    string
	content []byte
}

// orderedMultipart writes the files part by part in the given order.
func orderedMultipart(t *testing.T, files []upload) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(12, 8, color.White), imaging.PNG))
	return buf.Bytes()
}

func decodeReport(t *testing.T, w *httptest.ResponseRecorder) domain.BatchReport {
	t.Helper()
	var resp struct {
		Success bool               `json:"success"`
		Data    domain.BatchReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp.Data
}

func answerFor(doc, text string) (interface{}, domain.ModelReply) {
	return mock.MatchedBy(func(p domain.PageImage) bool { return p.DocumentName == doc }),
		domain.ModelReply{Text: text}
}

func TestExtractionHandler_Upload_CorruptMiddleFileIsReported(t *testing.T) {
	inv := new(mocks.MockModelInvoker)
	svc := service.NewExtractionService(raster.New(raster.Config{}), inv, nil, "", "",
		config.ExtractionConfig{MaxFiles: 5, MaxFileSizeMB: 1})
	registry := batch.NewRegistry(time.Hour, time.Hour)
	h := handler.NewExtractionHandler(svc, registry, 5)

	inv.On("Name").Return("mock")
	page, reply := answerFor("first.png", `{"police": "P-1"}`)
	inv.On("Invoke", mock.Anything, page, mock.Anything).Return(reply, nil)
	page, reply = answerFor("third.png", `{"police": "P-3"}`)
	inv.On("Invoke", mock.Anything, page, mock.Anything).Return(reply, nil)

	img := pngBytes(t)
	body, contentType := orderedMultipart(t, []upload{
		{"first.png", img},
		{"second.pdf", []byte("\x00\x00garbage not a pdf")},
		{"third.png", img},
	})
	userID := uuid.New()
	w := httptest.NewRecorder()
	c := authedContext(w, userID)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/extractions", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	require.Equal(t, http.StatusOK, w.Code)
	report := decodeReport(t, w)
	assert.Equal(t, 3, report.Files)
	assert.Equal(t, 2, report.PagesExtracted)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, domain.IssueRasterization, report.Issues[0].Kind)
	assert.Equal(t, "second.pdf", report.Issues[0].SourceFile)

	b, ok := registry.Peek(userID.String())
	require.True(t, ok)
	snap := b.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "first.png", snap[0].SourceFile)
	assert.Equal(t, "third.png", snap[1].SourceFile)
	inv.AssertExpectations(t)
}

func TestExtractionHandler_FromStorage_MissingKeyIsReported(t *testing.T) {
	inv := new(mocks.MockModelInvoker)
	st := new(mocks.MockObjectStorage)
	svc := service.NewExtractionService(raster.New(raster.Config{}), inv, st, "docs", "",
		config.ExtractionConfig{MaxFiles: 5, MaxFileSizeMB: 1})
	h := handler.NewExtractionHandler(svc, batch.NewRegistry(time.Hour, time.Hour), 5)

	img := pngBytes(t)
	st.On("Download", mock.Anything, "docs", "in/a.png").Return(img, nil)
	st.On("Download", mock.Anything, "docs", "in/gone.png").Return(nil, domain.ErrNotFound)
	st.On("Download", mock.Anything, "docs", "in/c.png").Return(img, nil)
	inv.On("Name").Return("mock")
	page, reply := answerFor("a.png", `{"n": "A"}`)
	inv.On("Invoke", mock.Anything, page, mock.Anything).Return(reply, nil)
	page, reply = answerFor("c.png", `{"n": "C"}`)
	inv.On("Invoke", mock.Anything, page, mock.Anything).Return(reply, nil)

	body, _ := json.Marshal(map[string]interface{}{"keys": []string{"in/a.png", "in/gone.png", "in/c.png"}})
	w := httptest.NewRecorder()
	c := authedContext(w, uuid.New())
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/extractions/storage", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	h.FromStorage(c)

	require.Equal(t, http.StatusOK, w.Code)
	report := decodeReport(t, w)
	assert.Equal(t, 2, report.PagesExtracted)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, domain.IssueLoad, report.Issues[0].Kind)
	assert.Equal(t, "gone.png", report.Issues[0].SourceFile)
	st.AssertExpectations(t)
}
