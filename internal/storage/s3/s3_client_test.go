package s3_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ogarx/internal/config"
	"ogarx/internal/domain"
	"ogarx/internal/port"
	s3store "ogarx/internal/storage/s3"
)

func newStore(t *testing.T, endpoint string) port.ObjectStorage {
	t.Helper()
	store, err := s3store.NewS3Client(&config.S3Config{
		Region:    "us-east-1",
		Bucket:    "docs",
		Endpoint:  endpoint,
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)
	return store
}

func TestS3Client_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/docs/inbox/a.png", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer server.Close()

	data, err := newStore(t, server.URL).Download(context.Background(), "docs", "inbox/a.png")
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestS3Client_Download_NoSuchKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message><Key>missing.png</Key></Error>`))
	}))
	defer server.Close()

	_, err := newStore(t, server.URL).Download(context.Background(), "docs", "missing.png")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestS3Client_GetPresignedURL(t *testing.T) {
	store := newStore(t, "http://localhost:9000")

	url, err := store.GetPresignedURL(context.Background(), "docs", "exports/alice/out.xlsx", 600)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/docs/exports/alice/out.xlsx?"), url)
	assert.Contains(t, url, "X-Amz-Expires=600")
	assert.Contains(t, url, "X-Amz-Signature=")
}
