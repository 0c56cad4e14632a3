package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qrgen/internal/engine/qr"
)

const namespace = "qrgen"

type Metrics struct {
	registry *prometheus.Registry

	Generations        *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	CacheHits          prometheus.Counter
	HTTPRequests       *prometheus.CounterVec
	RateLimited        prometheus.Counter
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Generations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "QR code generations by source and outcome.",
		}, []string{"source", "outcome"}),
		GenerationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time spent producing a QR code file.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_cache_hits_total",
			Help:      "Generations served from the render cache.",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}
}

// ObserveGeneration records the outcome of one Generate call.
func (m *Metrics) ObserveGeneration(source string, started time.Time, res *qr.Result, err error) {
	m.GenerationDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	m.Generations.WithLabelValues(source, Outcome(err)).Inc()
	if res != nil && res.Cached {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) ObserveRequest(method string, status int) {
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Outcome maps a generation error onto a short label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, qr.ErrInvalidSize), errors.Is(err, qr.ErrInvalidFormat):
		return "invalid"
	case errors.Is(err, qr.ErrNetwork):
		return "network_error"
	case errors.Is(err, qr.ErrFilesystem):
		return "filesystem_error"
	default:
		return "failed"
	}
}
