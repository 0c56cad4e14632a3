package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"qrgen/internal/api/flash"
	"qrgen/internal/api/templates"
	"qrgen/internal/engine/files"
	"qrgen/internal/engine/qr"
	"qrgen/internal/platform/config"
)

var sizeChoices = []string{"128x128", "256x256", "512x512", "768x768", "1000x1000"}

type PageHandler struct {
	storage config.StorageConfig
	flash   *flash.Store
}

func NewPageHandler(storage config.StorageConfig, store *flash.Store) *PageHandler {
	return &PageHandler{storage: storage, flash: store}
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Title":       "QR Code Generator",
		"Flashes":     h.flash.Pop(w, r),
		"Sizes":       sizeChoices,
		"DefaultSize": "512x512",
		"Formats":     qr.Formats,
	}

	if err := templates.Render(w, "index.html", data); err != nil {
		log.Error().Err(err).Str("request_id", requestID(r)).Msg("failed to render index")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// Files lists generated files, newest first.
func (h *PageHandler) Files(w http.ResponseWriter, r *http.Request) {
	entries, err := files.List(h.storage.ListDirs())
	if err != nil {
		redirectWithFlash(w, r, h.flash, flash.CategoryError, "Error listing files: "+err.Error())
		return
	}

	data := map[string]interface{}{
		"Title":   "Generated QR Codes",
		"Flashes": h.flash.Pop(w, r),
		"Files":   entries,
	}

	if err := templates.Render(w, "files.html", data); err != nil {
		log.Error().Err(err).Str("request_id", requestID(r)).Msg("failed to render file list")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
