package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/maillots/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	body   string
}

func newFakeS3(t *testing.T) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func testStorageConfig(endpoint string) config.StorageConfig {
	return config.StorageConfig{
		S3Region:       "us-east-1",
		S3Endpoint:     endpoint,
		S3AccessKey:    "test-access",
		S3SecretKey:    "test-secret",
		S3UsePathStyle: true,
	}
}

func TestNewS3Store_Validation(t *testing.T) {
	_, err := NewS3Store(context.Background(), testStorageConfig("http://localhost:9000"), "")
	assert.Error(t, err)

	cfg := testStorageConfig("http://localhost:9000")
	cfg.S3SecretKey = ""
	_, err = NewS3Store(context.Background(), cfg, "exports")
	assert.Error(t, err)
}

func TestS3Store_Put(t *testing.T) {
	srv, recorded := newFakeS3(t)
	store, err := NewS3Store(context.Background(), testStorageConfig(srv.URL), "exports")
	require.NoError(t, err)

	location, err := store.Put(context.Background(), "sync/report.xlsx", "application/octet-stream", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, "s3://exports/sync/report.xlsx", location)

	reqs := recorded()
	require.NotEmpty(t, reqs)
	last := reqs[len(reqs)-1]
	assert.Equal(t, http.MethodPut, last.method)
	assert.Equal(t, "/exports/sync/report.xlsx", last.path)
	assert.Contains(t, last.body, "payload")
}

func TestS3Store_EnsureBucketExisting(t *testing.T) {
	srv, recorded := newFakeS3(t)
	store, err := NewS3Store(context.Background(), testStorageConfig(srv.URL), "exports")
	require.NoError(t, err)

	require.NoError(t, store.EnsureBucket(context.Background()))
	reqs := recorded()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodHead, reqs[0].method)
}

func TestS3Store_DownloadURL(t *testing.T) {
	store, err := NewS3Store(context.Background(), testStorageConfig("localhost:9000"), "exports")
	require.NoError(t, err)

	link, err := store.DownloadURL(context.Background(), "sync/report.xlsx")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://localhost:9000/exports/sync/report.xlsx?"))
	assert.Contains(t, link, "X-Amz-Signature=")
	assert.Equal(t, "exports", store.Bucket())
}
