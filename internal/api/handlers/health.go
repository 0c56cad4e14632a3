package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"strings"
	"time"
)

// Pinger is anything that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	historyDB    *sql.DB
	cache        Pinger
	outputDir    string
	checkTimeout time.Duration
}

// NewHealthHandler accepts nil for the optional history database and cache.
func NewHealthHandler(historyDB *sql.DB, cache Pinger, outputDir string) *HealthHandler {
	return &HealthHandler{
		historyDB:    historyDB,
		cache:        cache,
		outputDir:    outputDir,
		checkTimeout: 2 * time.Second,
	}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.checkTimeout)
	defer cancel()

	checks := make(map[string]string)

	if h.historyDB == nil {
		checks["history_db"] = "disabled"
	} else if err := h.historyDB.PingContext(ctx); err != nil {
		checks["history_db"] = "unhealthy: " + err.Error()
	} else {
		checks["history_db"] = "healthy"
	}

	if h.cache == nil {
		checks["render_cache"] = "disabled"
	} else if err := h.cache.Ping(ctx); err != nil {
		checks["render_cache"] = "unhealthy: " + err.Error()
	} else {
		checks["render_cache"] = "healthy"
	}

	if err := os.MkdirAll(h.outputDir, 0755); err != nil {
		checks["output_dir"] = "unhealthy: " + err.Error()
	} else {
		checks["output_dir"] = "healthy"
	}

	status := "healthy"
	for _, check := range checks {
		if strings.HasPrefix(check, "unhealthy") {
			status = "degraded"
			break
		}
	}

	response := struct {
		Status    string            `json:"status"`
		Timestamp int64             `json:"timestamp"`
		Checks    map[string]string `json:"checks"`
	}{
		Status:    status,
		Timestamp: time.Now().Unix(),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, response)
}
