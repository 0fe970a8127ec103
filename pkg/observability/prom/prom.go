// Package prom backs the observability hooks with Prometheus collectors.
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/stackflex/pkg/observability"
)

// Hooks implements every observability hook interface.
type Hooks struct {
	LayoutsTotal   *prometheus.CounterVec
	LayoutDuration *prometheus.HistogramVec
	LayoutNodes    *prometheus.HistogramVec
	CacheEvents    *prometheus.CounterVec
	CacheBytes     prometheus.Counter
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Hooks {
	f := promauto.With(reg)
	return &Hooks{
		LayoutsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stackflex_layouts_total",
			Help: "Layout passes, labelled by algorithm and status.",
		}, []string{"algorithm", "status"}),
		LayoutDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stackflex_layout_duration_ms",
			Help:    "Layout pass latency in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"algorithm"}),
		LayoutNodes: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stackflex_layout_nodes",
			Help:    "Nodes per layout request.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"algorithm"}),
		CacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stackflex_cache_events_total",
			Help: "Cache lookups and writes, labelled by key type and event.",
		}, []string{"key_type", "event"}),
		CacheBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "stackflex_cache_written_bytes_total",
			Help: "Bytes written to the cache.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stackflex_http_requests_total",
			Help: "HTTP requests, labelled by method, route and status code.",
		}, []string{"method", "route", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stackflex_http_request_duration_ms",
			Help:    "HTTP request latency in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"method", "route"}),
	}
}

// Install registers h for every hook category.
func (h *Hooks) Install() {
	observability.SetLayoutHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h *Hooks) OnLayoutStart(_ context.Context, algorithm string, nodeCount int) {
	h.LayoutNodes.WithLabelValues(algorithm).Observe(float64(nodeCount))
}

func (h *Hooks) OnLayoutComplete(_ context.Context, algorithm string, _ int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	h.LayoutsTotal.WithLabelValues(algorithm, status).Inc()
	h.LayoutDuration.WithLabelValues(algorithm).Observe(ms(d))
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.CacheEvents.WithLabelValues(keyType, "set").Inc()
	h.CacheBytes.Add(float64(size))
}

func (h *Hooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.HTTPDuration.WithLabelValues(method, route).Observe(ms(d))
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

var (
	_ observability.LayoutHooks = (*Hooks)(nil)
	_ observability.CacheHooks  = (*Hooks)(nil)
	_ observability.HTTPHooks   = (*Hooks)(nil)
)
