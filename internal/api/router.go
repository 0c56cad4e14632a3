package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	apiContext "qrgen/internal/api/context"
	"qrgen/internal/api/handlers"
	"qrgen/internal/api/middleware"
	"qrgen/internal/pkg/errors"
	"qrgen/internal/platform/metrics"
)

type Dependencies struct {
	PageHandler    *handlers.PageHandler
	QRHandler      *handlers.QRHandler
	FileHandler    *handlers.FileHandler
	HealthHandler  *handlers.HealthHandler
	MetricsHandler *handlers.MetricsHandler
	HistoryHandler *handlers.HistoryHandler

	RateLimiter       *middleware.RateLimiter
	GeneratePerMinute int
	Metrics           *metrics.Metrics
	StaticDir         string
}

func NewRouter(deps *Dependencies) http.Handler {
	router := httprouter.New()

	limit := func(scope string) func(http.HandlerFunc) http.HandlerFunc {
		return middleware.RateLimit(deps.RateLimiter, scope, deps.GeneratePerMinute, deps.Metrics)
	}

	// Pages
	router.GET("/", wrap(deps.PageHandler.Index))
	router.GET("/files", wrap(deps.PageHandler.Files))

	// Generation
	router.POST("/generate", chain(deps.QRHandler.Generate, limit("generate")))
	router.POST("/preview", chain(deps.QRHandler.Preview, limit("preview")))

	// Generated files
	router.GET("/download/*filepath", wrap(deps.FileHandler.Download))
	router.GET("/tmp/qr_codes/:name", wrap(deps.FileHandler.TempPreview))
	if deps.StaticDir != "" {
		router.ServeFiles("/static/*filepath", http.Dir(deps.StaticDir))
	}

	// Operations
	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))
	router.GET("/history", wrap(deps.HistoryHandler.List))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Route not found", nil)
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		log.Error().Str("path", r.URL.Path).Str("panic", fmt.Sprint(v)).Msg("handler panicked")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error", nil)
	}

	return middleware.RequestID(middleware.AccessLog(deps.Metrics)(router))
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
