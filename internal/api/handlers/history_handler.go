package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"qrgen/internal/platform/audit"
	"qrgen/internal/pkg/errors"
)

type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]audit.Entry, error)
}

type HistoryHandler struct {
	history HistoryReader
}

// NewHistoryHandler accepts a nil reader when history is disabled.
func NewHistoryHandler(history HistoryReader) *HistoryHandler {
	return &HistoryHandler{history: history}
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Generation history is disabled", nil)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > audit.DefaultHistoryLimit {
		limit = audit.DefaultHistoryLimit
	}

	entries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Str("request_id", requestID(r)).Msg("failed to read generation history")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to read generation history", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"generations": entries,
		"count":       len(entries),
	})
}
