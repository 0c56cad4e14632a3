package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"qrgen/internal/api/flash"
	"qrgen/internal/engine/files"
	"qrgen/internal/platform/config"
)

type FileHandler struct {
	storage config.StorageConfig
	flash   *flash.Store
}

func NewFileHandler(storage config.StorageConfig, store *flash.Store) *FileHandler {
	return &FileHandler{storage: storage, flash: store}
}

// Download sends a generated file as an attachment, provided it lives inside one of the
// allowed folders.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	requested := params(r).ByName("filepath")

	path, err := files.Resolve(requested, h.storage.AllowedDirs())
	if err != nil {
		log.Info().Str("request_id", requestID(r)).Str("requested", requested).Msg("download refused")
		redirectWithFlash(w, r, h.flash, flash.CategoryError, "File not found or access denied")
		return
	}

	if err := serveFile(w, r, path, filepath.Base(path), true); err != nil {
		redirectWithFlash(w, r, h.flash, flash.CategoryError, "Error downloading file: "+err.Error())
	}
}

// TempPreview serves preview images written to the fixed temp folder.
func (h *FileHandler) TempPreview(w http.ResponseWriter, r *http.Request) {
	name := params(r).ByName("name")

	path, err := files.Resolve(name, []string{h.storage.TempPreviewDir()})
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	if err := serveFile(w, r, path, name, false); err != nil {
		http.Error(w, "Error serving file: "+err.Error(), http.StatusInternalServerError)
	}
}
