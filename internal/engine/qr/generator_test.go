package qr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fakeImage = []byte("\x89PNG\r\n\x1a\nfake-image-body")

// fakeEndpoint answers every request with fakeImage and remembers the last query.
func fakeEndpoint(t *testing.T) (*httptest.Server, *atomic.Int32, *atomic.Value) {
	t.Helper()
	var hits atomic.Int32
	var lastQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		lastQuery.Store(r.URL.Query())
		w.Header().Set("Content-Type", "image/png")
		w.Write(fakeImage)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits, &lastQuery
}

func TestGenerator_Generate(t *testing.T) {
	srv, hits, lastQuery := fakeEndpoint(t)
	dir := t.TempDir()
	rec := &mockRecorder{}

	gen := NewGenerator(NewHTTPRenderer(5*time.Second), srv.URL, WithRecorder(rec))
	res, err := gen.Generate(context.Background(), Request{
		URL:       "example.com/products/shoes",
		Size:      "512x512",
		Format:    "png",
		OutputDir: dir,
		Source:    "cli",
	})
	require.NoError(t, err)

	assert.Equal(t, "example_com_products_shoes.png", res.Filename)
	assert.Equal(t, filepath.Join(dir, "example_com_products_shoes.png"), res.Path)
	assert.Equal(t, "https://example.com/products/shoes", res.URL)
	assert.Equal(t, "512x512", res.Size)
	assert.Equal(t, FormatPNG, res.Format)
	assert.Equal(t, int64(len(fakeImage)), res.BytesWritten)
	assert.False(t, res.Cached)
	assert.NotEmpty(t, res.ID)

	got, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, fakeImage, got)

	assert.Equal(t, int32(1), hits.Load())
	q := lastQuery.Load().(url.Values)
	assert.Equal(t, []string{"https://example.com/products/shoes"}, q["data"])
	assert.Equal(t, []string{"512x512"}, q["size"])
	assert.Equal(t, []string{"png"}, q["format"])

	require.Len(t, rec.records, 1)
	assert.Equal(t, "cli", rec.records[0].source)
	assert.Equal(t, res.ID, rec.records[0].result.ID)
}

func TestGenerator_ValidationBeforeNetwork(t *testing.T) {
	srv, hits, _ := fakeEndpoint(t)
	dir := filepath.Join(t.TempDir(), "never-created")
	gen := NewGenerator(NewHTTPRenderer(time.Second), srv.URL)

	tests := []struct {
		name string
		req  Request
		kind error
	}{
		{name: "Empty URL", req: Request{Size: "512", Format: "png"}, kind: ErrGenerationFailed},
		{name: "Bad Size", req: Request{URL: "example.com", Size: "5000", Format: "png"}, kind: ErrInvalidSize},
		{name: "Bad Format", req: Request{URL: "example.com", Size: "512", Format: "gif"}, kind: ErrInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.OutputDir = dir
			res, err := gen.Generate(context.Background(), tt.req)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	assert.Equal(t, int32(0), hits.Load())
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "output folder should not be created on validation failure")
}

func TestGenerator_NetworkErrors(t *testing.T) {
	t.Run("Non 2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream down", http.StatusBadGateway)
		}))
		defer srv.Close()

		dir := t.TempDir()
		gen := NewGenerator(NewHTTPRenderer(time.Second), srv.URL)
		_, err := gen.Generate(context.Background(), Request{URL: "example.com", Size: "200", Format: "png", OutputDir: dir})
		assert.ErrorIs(t, err, ErrNetwork)
		assert.Contains(t, err.Error(), "502")

		entries, _ := os.ReadDir(dir)
		assert.Empty(t, entries)
	})

	t.Run("Timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		dir := t.TempDir()
		gen := NewGenerator(NewHTTPRenderer(50*time.Millisecond), srv.URL)
		_, err := gen.Generate(context.Background(), Request{URL: "example.com", Size: "200", Format: "png", OutputDir: dir})
		assert.ErrorIs(t, err, ErrNetwork)

		entries, _ := os.ReadDir(dir)
		assert.Empty(t, entries)
	})

	t.Run("Unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		endpoint := srv.URL
		srv.Close()

		gen := NewGenerator(NewHTTPRenderer(time.Second), endpoint)
		_, err := gen.Generate(context.Background(), Request{URL: "example.com", Size: "200", Format: "png", OutputDir: t.TempDir()})
		assert.ErrorIs(t, err, ErrNetwork)
	})
}

func TestGenerator_Cache(t *testing.T) {
	srv, hits, _ := fakeEndpoint(t)
	cache := newMemoryCache()
	gen := NewGenerator(NewHTTPRenderer(time.Second), srv.URL, WithCache(cache))

	req := Request{URL: "https://example.com", Size: "128", Format: "svg", OutputDir: t.TempDir()}

	first, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "example_com.svg", second.Filename)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 1, cache.sets)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestGenerator_RecorderFailureIsNotFatal(t *testing.T) {
	srv, _, _ := fakeEndpoint(t)
	gen := NewGenerator(NewHTTPRenderer(time.Second), srv.URL, WithRecorder(&mockRecorder{fail: true}))

	res, err := gen.Generate(context.Background(), Request{URL: "example.com", Size: "64", Format: "pdf", OutputDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "example_com.pdf", res.Filename)
}

func TestGenerator_FilesystemError(t *testing.T) {
	srv, _, _ := fakeEndpoint(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	gen := NewGenerator(NewHTTPRenderer(time.Second), srv.URL)
	_, err := gen.Generate(context.Background(), Request{URL: "example.com", Size: "64", Format: "png", OutputDir: blocker})
	assert.True(t, errors.Is(err, ErrFilesystem), "got %v", err)
}

func TestCacheKey(t *testing.T) {
	a := cacheKey("http://x/?data=a")
	b := cacheKey("http://x/?data=b")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, cacheKey("http://x/?data=a"))
	assert.Len(t, a, len(cacheKeyPrefix)+64)
}
