package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrgen/internal/api/flash"
	"qrgen/internal/api/handlers"
	"qrgen/internal/api/middleware"
	"qrgen/internal/engine/qr"
	"qrgen/internal/platform/config"
	"qrgen/internal/platform/metrics"
)

type staticRenderer struct{}

func (staticRenderer) Render(context.Context, string) ([]byte, error) {
	return []byte("png-bytes"), nil
}

func newTestRouter(t *testing.T, perMinute int) (http.Handler, config.StorageConfig) {
	t.Helper()
	base := t.TempDir()
	static := filepath.Join(base, "static")
	storage := config.StorageConfig{
		PreviewDir:   filepath.Join(static, "qr_codes"),
		DownloadDirs: []string{filepath.Join(static, "qr_codes"), filepath.Join(base, "downloads")},
		TempRoot:     filepath.Join(base, "tmp"),
	}

	store, err := flash.NewStore("router-secret")
	require.NoError(t, err)
	m := metrics.New()
	rl := middleware.NewRateLimiter()
	t.Cleanup(rl.Stop)

	gen := qr.NewGenerator(staticRenderer{}, "")
	deps := &Dependencies{
		PageHandler:       handlers.NewPageHandler(storage, store),
		QRHandler:         handlers.NewQRHandler(gen, storage, store, m),
		FileHandler:       handlers.NewFileHandler(storage, store),
		HealthHandler:     handlers.NewHealthHandler(nil, nil, storage.DefaultDir()),
		MetricsHandler:    handlers.NewMetricsHandler(m),
		HistoryHandler:    handlers.NewHistoryHandler(nil),
		RateLimiter:       rl,
		GeneratePerMinute: perMinute,
		Metrics:           m,
		StaticDir:         static,
	}
	return NewRouter(deps), storage
}

func TestRouter_Routes(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/", http.StatusOK},
		{"GET", "/files", http.StatusOK},
		{"GET", "/health", http.StatusOK},
		{"GET", "/metrics", http.StatusOK},
		{"GET", "/history", http.StatusNotFound},
		{"GET", "/tmp/qr_codes/nothing.png", http.StatusNotFound},
		{"GET", "/download/../../etc/passwd", http.StatusFound},
		{"GET", "/no/such/route", http.StatusNotFound},
		{"GET", "/generate", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, rr.Code)
			assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestRouter_PreviewThenStatic(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	form := url.Values{"url": {"example.com/products/shoes"}}
	req := httptest.NewRequest("POST", "/preview", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"filename":"example_com_products_shoes.png"`)

	img := httptest.NewRecorder()
	router.ServeHTTP(img, httptest.NewRequest("GET", "/static/qr_codes/example_com_products_shoes.png", nil))
	assert.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, "png-bytes", img.Body.String())

	dl := httptest.NewRecorder()
	router.ServeHTTP(dl, httptest.NewRequest("GET", "/download/example_com_products_shoes.png", nil))
	assert.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, "attachment; filename=example_com_products_shoes.png", dl.Header().Get("Content-Disposition"))
}

func TestRouter_RateLimit(t *testing.T) {
	router, _ := newTestRouter(t, 1)

	send := func() int {
		form := url.Values{"url": {"example.com"}}
		req := httptest.NewRequest("POST", "/preview", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestRouter_NotFoundEnvelope(t *testing.T) {
	router, _ := newTestRouter(t, 0)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/nope", nil))

	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `"code":"NOT_FOUND"`)
}

func TestRouter_TempPreview(t *testing.T) {
	router, storage := newTestRouter(t, 0)
	require.NoError(t, os.MkdirAll(storage.TempPreviewDir(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(storage.TempPreviewDir(), "x.png"), []byte("img"), 0644))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/tmp/qr_codes/x.png", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "img", rr.Body.String())
}
