// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	POST /v1/layout      lay out a graph, respond with positions
//	POST /v1/tree        the flexbox hierarchy of a graph as DOT or SVG
//	GET  /v1/algorithms  engines, box backends and supported attributes
//	GET  /healthz        liveness probe
//	GET  /metrics        Prometheus metrics, when a handler is configured
//
// A layout request carries the graph and optional options:
//
//	{
//	  "graph":   {"nodes": [{"key": "a"}, {"key": "a,b", "attrs": {"width": 50}}]},
//	  "options": {"algorithm": "flexbox", "width": 200, "height": 100}
//	}
//
// Options left out of a request fall back to the server defaults, which
// the serve command reloads when its config file changes.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stackflex/pkg/core/address"
	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/core/layout/flexbox"
	"github.com/matzehuels/stackflex/pkg/core/solver"
	"github.com/matzehuels/stackflex/pkg/core/tree"
	"github.com/matzehuels/stackflex/pkg/errors"
	"github.com/matzehuels/stackflex/pkg/graph"
	"github.com/matzehuels/stackflex/pkg/pipeline"
)

// Defaults for [Config] fields left zero.
const (
	DefaultMaxBodyBytes = 4 << 20
	DefaultTimeout      = 30 * time.Second
)

// Config configures a [Server].
type Config struct {
	Runner       *pipeline.Runner
	Defaults     pipeline.Options
	Logger       *log.Logger
	MaxBodyBytes int64
	Timeout      time.Duration // per-request layout deadline
	Metrics      http.Handler  // served at /metrics when non-nil
}

// Server handles layout requests.
type Server struct {
	runner  *pipeline.Runner
	logger  *log.Logger
	maxBody int64
	timeout time.Duration
	metrics http.Handler

	mu       sync.RWMutex
	defaults pipeline.Options
}

// New creates a server. A nil runner means an uncached runner.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Server{
		runner:   cfg.Runner,
		logger:   cfg.Logger,
		maxBody:  cfg.MaxBodyBytes,
		timeout:  cfg.Timeout,
		metrics:  cfg.Metrics,
		defaults: cfg.Defaults,
	}
}

// SetDefaults replaces the options applied to requests that leave fields
// empty. It is safe to call while serving.
func (s *Server) SetDefaults(opts pipeline.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = opts
}

func (s *Server) currentDefaults() pipeline.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(instrument(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.layout)
		r.Post("/tree", s.tree)
		r.Get("/algorithms", s.algorithms)
	})
	return r
}

// LayoutRequest is the body of POST /v1/layout and POST /v1/tree.
type LayoutRequest struct {
	Graph   graph.Graph      `json:"graph"`
	Options pipeline.Options `json:"options"`
}

// LayoutResponse is the body of a successful POST /v1/layout.
type LayoutResponse struct {
	Layout     graph.Layout `json:"layout"`
	GraphHash  string       `json:"graph_hash"`
	CacheHit   bool         `json:"cache_hit"`
	DurationMS float64      `json:"duration_ms"`
	RequestID  string       `json:"request_id"`
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (LayoutRequest, error) {
	var req LayoutRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON: %s", err)
	}
	if len(req.Graph.Nodes) == 0 {
		return req, errors.New(errors.ErrCodeInvalidInput, "graph has no nodes")
	}
	req.Options = req.Options.Overlay(s.currentDefaults())
	return req, nil
}

// POST /v1/layout
func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	req, err := s.decode(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Options.ID == "" {
		req.Options.ID = RequestID(r.Context())
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	res, err := s.runner.Run(ctx, req.Graph, req.Options)
	if err != nil {
		s.logger.Debug("layout failed", "request_id", RequestID(r.Context()), "err", err)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LayoutResponse{
		Layout:     res.Layout,
		GraphHash:  res.GraphHash,
		CacheHit:   res.CacheHit,
		DurationMS: float64(res.Stats.LayoutTime.Microseconds()) / 1000,
		RequestID:  RequestID(r.Context()),
	})
}

// POST /v1/tree?format=dot|svg
func (s *Server) tree(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "dot"
	}
	if format != "dot" && format != "svg" {
		writeError(w, r, errors.New(errors.ErrCodeInvalidOption, "invalid format: %q (must be one of: dot, svg)", format))
		return
	}
	req, err := s.decode(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req.Options.SetDefaults()
	if err := errors.ValidateDelimiter(req.Options.Delimiter); err != nil {
		writeError(w, r, err)
		return
	}
	nodes, _, err := req.Graph.ToEngine()
	if err != nil {
		writeError(w, r, err)
		return
	}
	codec := address.Delimited{Sep: req.Options.Delimiter}
	root, err := tree.Build(nodes, codec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tree.EnsureInteriorNodes(root)
	dot := tree.ToDOT(root, codec)

	if format == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
		return
	}
	svg, err := tree.RenderSVG(r.Context(), dot)
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render tree"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// AlgorithmsResponse is the body of GET /v1/algorithms.
type AlgorithmsResponse struct {
	Algorithms       []string `json:"algorithms"`
	Backends         []string `json:"backends"`
	LengthStrategies []string `json:"length_strategies"`
	Attributes       []string `json:"attributes"`
	Internal         []string `json:"internal_attributes"`
}

// GET /v1/algorithms
func (s *Server) algorithms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AlgorithmsResponse{
		Algorithms:       []string{layout.AlgorithmFlexbox, layout.AlgorithmForce},
		Backends:         []string{layout.AlgoCSSLayout, layout.AlgoYogaLayout},
		LengthStrategies: []string{layout.LengthSymmetric, layout.LengthJaccard, layout.LengthIndividual, layout.LengthNone},
		Attributes:       solver.SupportedAttributes,
		Internal:         flexbox.InternalAttrs,
	})
}

// GET /healthz
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}
	s.logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
