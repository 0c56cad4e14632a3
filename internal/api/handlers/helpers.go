package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	apiContext "qrgen/internal/api/context"
	"qrgen/internal/api/flash"
)

func params(r *http.Request) httprouter.Params {
	ps, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return ps
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(apiContext.RequestID).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// redirectWithFlash queues a message and sends the browser back to the form.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, store *flash.Store, category, text string) {
	store.Add(w, r, category, text)
	http.Redirect(w, r, "/", http.StatusFound)
}

// serveFile streams path with range and conditional request support. With attachment set the
// browser is told to save it as name.
func serveFile(w http.ResponseWriter, r *http.Request, path, name string, attachment bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	if attachment {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	}
	if ct := contentType(name); ct != "" {
		w.Header().Set("Content-Type", ct)
	}

	log.Debug().Str("request_id", requestID(r)).Str("path", path).Msg("serving file")
	http.ServeContent(w, r, name, info.ModTime(), f)
	return nil
}

func contentType(name string) string {
	switch filepath.Ext(name) {
	case ".png":
		return "image/png"
	case ".svg":
		return "image/svg+xml"
	case ".eps":
		return "application/postscript"
	case ".pdf":
		return "application/pdf"
	}
	return ""
}
