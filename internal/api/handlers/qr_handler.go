package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"qrgen/internal/api/flash"
	"qrgen/internal/engine/qr"
	apierrors "qrgen/internal/pkg/errors"
	"qrgen/internal/platform/config"
	"qrgen/internal/platform/metrics"
)

const (
	SourceWebGenerate = "web-generate"
	SourceWebPreview  = "web-preview"

	defaultFormSize       = "512x512"
	defaultFormFormat     = "png"
	defaultFormColor      = "#000000"
	defaultFormLocation   = "browser"
	defaultFormServerPath = "./downloads"
)

// Generator is the pipeline the web handlers drive.
type Generator interface {
	Generate(ctx context.Context, req qr.Request) (*qr.Result, error)
}

type QRHandler struct {
	generator Generator
	storage   config.StorageConfig
	flash     *flash.Store
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewQRHandler(gen Generator, storage config.StorageConfig, store *flash.Store, m *metrics.Metrics) *QRHandler {
	return &QRHandler{
		generator: gen,
		storage:   storage,
		flash:     store,
		metrics:   m,
		now:       time.Now,
	}
}

type qrForm struct {
	URL              string
	Size             string
	Format           string
	Background       bool
	Color            string
	DownloadLocation string
	ServerPath       string
}

func parseForm(r *http.Request) qrForm {
	r.ParseForm()
	return qrForm{
		URL:              strings.TrimSpace(r.PostFormValue("url")),
		Size:             formValue(r, "size", defaultFormSize),
		Format:           formValue(r, "format", defaultFormFormat),
		Background:       r.PostFormValue("background") == "on",
		Color:            formValue(r, "qr_color", defaultFormColor),
		DownloadLocation: formValue(r, "download_location", defaultFormLocation),
		ServerPath:       formValue(r, "server_path", defaultFormServerPath),
	}
}

func formValue(r *http.Request, key, fallback string) string {
	if _, ok := r.PostForm[key]; !ok {
		return fallback
	}
	return strings.TrimSpace(r.PostFormValue(key))
}

// savesOnServer reports whether the form asks for a server-side folder. Values starting with
// "selected" come from the browser folder picker and mean a normal download.
func (f qrForm) savesOnServer() bool {
	return f.DownloadLocation == "server" && f.ServerPath != "" && !strings.HasPrefix(f.ServerPath, "selected")
}

func (f qrForm) request(dir, source string) qr.Request {
	return qr.Request{
		URL:        f.URL,
		Size:       f.Size,
		Format:     f.Format,
		Background: f.Background,
		Color:      f.Color,
		OutputDir:  dir,
		Source:     source,
	}
}

func (h *QRHandler) run(r *http.Request, req qr.Request) (*qr.Result, error) {
	started := h.now()
	res, err := h.generator.Generate(r.Context(), req)
	if h.metrics != nil {
		h.metrics.ObserveGeneration(req.Source, started, res, err)
	}
	if err != nil {
		log.Warn().Err(err).
			Str("request_id", requestID(r)).
			Str("source", req.Source).
			Str("url", req.URL).
			Msg("QR generation failed")
	}
	return res, err
}

// Generate writes the QR code either into a server folder, answering with a flash message,
// or into the default folder and sends it back as a download. Clients asking for JSON get
// the result or an error envelope instead of the flash redirect.
func (h *QRHandler) Generate(w http.ResponseWriter, r *http.Request) {
	form := parseForm(r)
	asJSON := wantsJSON(r)
	if form.URL == "" {
		if asJSON {
			apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput, "Please enter a URL", nil)
			return
		}
		redirectWithFlash(w, r, h.flash, flash.CategoryError, "Please enter a URL")
		return
	}

	onServer := form.savesOnServer()
	dir := h.storage.DefaultDir()
	if onServer {
		var err error
		if dir, err = h.storage.ServerDir(form.ServerPath); err != nil {
			if asJSON {
				apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrCodeInternal, "Error generating QR code: "+err.Error(), nil)
				return
			}
			redirectWithFlash(w, r, h.flash, flash.CategoryError, "Error generating QR code: "+err.Error())
			return
		}
	}

	res, err := h.run(r, form.request(dir, SourceWebGenerate))
	if err != nil {
		if asJSON {
			writeGenerationError(w, err)
			return
		}
		redirectWithFlash(w, r, h.flash, flash.CategoryError, "Error generating QR code: "+err.Error())
		return
	}

	if onServer {
		if asJSON {
			writeJSON(w, http.StatusCreated, res)
			return
		}
		redirectWithFlash(w, r, h.flash, flash.CategorySuccess, "QR code saved successfully to: "+res.Path)
		return
	}

	if err := serveFile(w, r, res.Path, res.Filename, true); err != nil {
		redirectWithFlash(w, r, h.flash, flash.CategoryError, "Error generating QR code: "+err.Error())
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// writeGenerationError maps a generation failure to its HTTP status and error code.
func writeGenerationError(w http.ResponseWriter, err error) {
	msg := "Error generating QR code: " + err.Error()
	switch {
	case errors.Is(err, qr.ErrInvalidSize), errors.Is(err, qr.ErrInvalidFormat):
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrCodeInvalidInput, msg, nil)
	case errors.Is(err, qr.ErrNetwork):
		apierrors.WriteError(w, http.StatusBadGateway, apierrors.ErrCodeUpstream, msg, nil)
	default:
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrCodeInternal, msg, nil)
	}
}

type previewResponse struct {
	Success    bool   `json:"success"`
	PreviewURL string `json:"preview_url,omitempty"`
	Filename   string `json:"filename,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Preview writes the QR code into the default folder and returns where the browser can load it.
func (h *QRHandler) Preview(w http.ResponseWriter, r *http.Request) {
	form := parseForm(r)
	if form.URL == "" {
		writeJSON(w, http.StatusOK, previewResponse{Error: "Please enter a URL"})
		return
	}

	res, err := h.run(r, form.request(h.storage.DefaultDir(), SourceWebPreview))
	if err != nil {
		writeJSON(w, http.StatusOK, previewResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, previewResponse{
		Success:    true,
		PreviewURL: h.storage.PreviewURL(res.Filename, h.now()),
		Filename:   res.Filename,
	})
}
