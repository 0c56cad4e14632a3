package qr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultOutputDir = "./qr-codes"
	cacheKeyPrefix   = "qrcache:"
)

// Request is one generation as submitted by a front-end.
type Request struct {
	URL        string
	Size       string
	Format     string
	Background bool
	Color      string
	OutputDir  string
	Source     string // web-generate, web-preview, cli
}

// Result describes the file produced by a generation.
type Result struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Size         string `json:"size"`
	Format       Format `json:"format"`
	Path         string `json:"path"`
	Filename     string `json:"filename"`
	BytesWritten int64  `json:"bytes_written"`
	Cached       bool   `json:"cached"`
}

// Cache stores rendered images keyed by their request URL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte)
}

// Recorder keeps a log of successful generations.
type Recorder interface {
	Record(ctx context.Context, source string, res *Result) error
}

type Generator struct {
	renderer Renderer
	endpoint string
	margin   int
	cache    Cache
	recorder Recorder
}

type Option func(*Generator)

func WithCache(c Cache) Option {
	return func(g *Generator) { g.cache = c }
}

func WithRecorder(r Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

func WithMargin(margin int) Option {
	return func(g *Generator) { g.margin = margin }
}

func NewGenerator(renderer Renderer, endpoint string, opts ...Option) *Generator {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	g := &Generator{
		renderer: renderer,
		endpoint: endpoint,
		margin:   DefaultMargin,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs normalize, validate, derive, render and write for req.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	res, err := g.generate(ctx, req)
	return res, classify(err)
}

func (g *Generator) generate(ctx context.Context, req Request) (*Result, error) {
	if req.URL == "" {
		return nil, errors.New("url is required")
	}
	target := NormalizeURL(req.URL)

	size, err := ValidateSize(req.Size)
	if err != nil {
		return nil, err
	}
	format, err := ValidateFormat(req.Format)
	if err != nil {
		return nil, err
	}

	filename := DeriveBaseName(target) + format.Extension()

	requestURL, err := BuildRequestURL(g.endpoint, target, Options{
		Size:       size,
		Format:     format,
		Margin:     g.margin,
		Background: req.Background,
		Color:      req.Color,
	})
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("url", target).
		Str("size", size).
		Str("format", string(format)).
		Str("request_url", requestURL).
		Msg("Generating QR code")

	data, cached, err := g.render(ctx, requestURL)
	if err != nil {
		return nil, err
	}

	dir := req.OutputDir
	if dir == "" {
		dir = DefaultOutputDir
	}
	path, n, err := WriteFile(dir, filename, data)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ID:           uuid.New().String(),
		URL:          target,
		Size:         size,
		Format:       format,
		Path:         path,
		Filename:     filename,
		BytesWritten: n,
		Cached:       cached,
	}

	if g.recorder != nil {
		if err := g.recorder.Record(ctx, req.Source, res); err != nil {
			log.Warn().Err(err).Str("filename", filename).Msg("failed to record generation")
		}
	}

	log.Info().Str("path", path).Bool("cached", cached).Msg("QR code created")
	return res, nil
}

func (g *Generator) render(ctx context.Context, requestURL string) ([]byte, bool, error) {
	key := cacheKey(requestURL)
	if g.cache != nil {
		if data, ok := g.cache.Get(ctx, key); ok {
			return data, true, nil
		}
	}

	data, err := g.renderer.Render(ctx, requestURL)
	if err != nil {
		return nil, false, err
	}

	if g.cache != nil {
		g.cache.Set(ctx, key, data)
	}
	return data, false, nil
}

func cacheKey(requestURL string) string {
	sum := sha256.Sum256([]byte(requestURL))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
