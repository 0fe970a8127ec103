// Package pipeline turns a [graph.Graph] into a [graph.Layout].
//
// It is the one place where the CLI and the HTTP API meet the layout
// engines: options are defaulted and validated, the engine named by
// Options.Algorithm runs a pass, and results are memoized in a
// [cache.Cache] under a key derived from the graph content and every option
// that affects positions.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Run(ctx, g, pipeline.Options{
//	    Algorithm: layout.AlgorithmFlexbox,
//	    Width:     1024,
//	    Height:    768,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, p := range result.Layout.Nodes {
//	    fmt.Println(p.Key, p.X, p.Y)
//	}
//
// A layout pass without caching:
//
//	l, err := pipeline.GenerateLayout(ctx, g, opts)
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackflex/pkg/cache"
	"github.com/matzehuels/stackflex/pkg/core/address"
	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/errors"
	"github.com/matzehuels/stackflex/pkg/graph"
)

// DefaultAlgorithm is the engine used when Options.Algorithm is empty.
const DefaultAlgorithm = layout.AlgorithmFlexbox

// ValidAlgorithms is the set of supported engines.
var ValidAlgorithms = map[string]bool{
	layout.AlgorithmFlexbox: true,
	layout.AlgorithmForce:   true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run. It supports JSON for API requests.
type Options struct {
	ID        string  `json:"id,omitempty"`
	Algorithm string  `json:"algorithm,omitempty"`
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`

	// Flexbox options
	Algo      string         `json:"algo,omitempty"`
	Delimiter string         `json:"delimiter,omitempty"`
	Defaults  map[string]any `json:"defaults,omitempty"` // overridden by Graph.Defaults

	// Force options
	BaseLength     float64 `json:"base_length,omitempty"`
	LengthStrategy string  `json:"length_strategy,omitempty"`
	Iterations     int     `json:"iterations,omitempty"`
	Seed           uint64  `json:"seed,omitempty"`
	Relayout       bool    `json:"relayout,omitempty"` // follow the pass with a collision pass

	Refresh bool `json:"refresh,omitempty"` // bypass the cache read

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result is the outcome of a pipeline run.
type Result struct {
	Layout    graph.Layout
	GraphHash string
	CacheHit  bool
	Stats     Stats
}

// Stats holds timing and size information.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LayoutTime time.Duration
}

// ValidateAlgorithm checks that algorithm names a supported engine.
func ValidateAlgorithm(algorithm string) error {
	if !ValidAlgorithms[algorithm] {
		return errors.New(errors.ErrCodeInvalidAlgorithm,
			"invalid algorithm: %q (must be one of: %s, %s)", algorithm, layout.AlgorithmFlexbox, layout.AlgorithmForce)
	}
	return nil
}

// SetDefaults fills zero-valued options.
func (o *Options) SetDefaults() {
	if o.Algorithm == "" {
		o.Algorithm = DefaultAlgorithm
	}
	if o.Delimiter == "" {
		o.Delimiter = address.DefaultSep
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	lo := o.engineOptions(nil)
	lo.SetDefaults()
	o.Width, o.Height = lo.Width, lo.Height
	o.Algo = lo.Algo
	o.BaseLength, o.LengthStrategy = lo.BaseLength, lo.LengthStrategy
	o.Iterations, o.Seed = lo.Iterations, lo.Seed
}

// Validate checks option values. Call SetDefaults first.
func (o *Options) Validate() error {
	if err := ValidateAlgorithm(o.Algorithm); err != nil {
		return err
	}
	if err := errors.ValidateDelimiter(o.Delimiter); err != nil {
		return err
	}
	lo := o.engineOptions(nil)
	return lo.Validate()
}

// LayoutOptions returns engine options for g. Graph defaults take
// precedence over Options.Defaults.
func (o *Options) LayoutOptions(g graph.Graph) layout.Options {
	return o.engineOptions(o.mergedDefaults(g))
}

func (o *Options) engineOptions(defaults map[string]any) layout.Options {
	lo := layout.Options{
		Width:          o.Width,
		Height:         o.Height,
		Algo:           o.Algo,
		Codec:          address.Delimited{Sep: o.Delimiter},
		BaseLength:     o.BaseLength,
		LengthStrategy: o.LengthStrategy,
		Iterations:     o.Iterations,
		Seed:           o.Seed,
		Logger:         o.Logger,
	}
	if len(defaults) > 0 {
		lo.Defaults = layout.AttrsOf(defaults)
	}
	return lo
}

func (o *Options) mergedDefaults(g graph.Graph) map[string]any {
	if len(o.Defaults) == 0 {
		return g.Defaults
	}
	merged := make(map[string]any, len(o.Defaults)+len(g.Defaults))
	for k, v := range o.Defaults {
		merged[k] = v
	}
	for k, v := range g.Defaults {
		merged[k] = v
	}
	return merged
}

// Overlay returns o with every zero-valued field taken from base. Defaults
// maps are merged with o's entries winning. Flags and request bodies are
// overlaid on config values this way.
func (o Options) Overlay(base Options) Options {
	out := o
	fill := func(dst *string, fallback string) {
		if *dst == "" {
			*dst = fallback
		}
	}
	fill(&out.ID, base.ID)
	fill(&out.Algorithm, base.Algorithm)
	fill(&out.Algo, base.Algo)
	fill(&out.Delimiter, base.Delimiter)
	fill(&out.LengthStrategy, base.LengthStrategy)
	if out.Width == 0 {
		out.Width = base.Width
	}
	if out.Height == 0 {
		out.Height = base.Height
	}
	if out.BaseLength == 0 {
		out.BaseLength = base.BaseLength
	}
	if out.Iterations == 0 {
		out.Iterations = base.Iterations
	}
	if out.Seed == 0 {
		out.Seed = base.Seed
	}
	out.Relayout = o.Relayout || base.Relayout
	out.Refresh = o.Refresh || base.Refresh
	if len(base.Defaults) > 0 {
		merged := make(map[string]any, len(base.Defaults)+len(o.Defaults))
		for k, v := range base.Defaults {
			merged[k] = v
		}
		for k, v := range o.Defaults {
			merged[k] = v
		}
		out.Defaults = merged
	}
	if out.Logger == nil {
		out.Logger = base.Logger
	}
	return out
}

// LayoutKeyOpts returns cache key options for a layout of g. Force options
// only enter the key for the force engine and the box backend only for
// flexbox, so irrelevant options never split cache entries.
//
// It fails when a default has no stable encoding (a derived value or a
// comparator); such a layout cannot be keyed and must bypass the cache.
func (o *Options) LayoutKeyOpts(g graph.Graph) (cache.LayoutKeyOpts, error) {
	k := cache.LayoutKeyOpts{
		Algorithm: o.Algorithm,
		Width:     o.Width,
		Height:    o.Height,
	}
	switch o.Algorithm {
	case layout.AlgorithmFlexbox:
		k.Algo = o.Algo
		k.Delimiter = o.Delimiter
		if d := o.mergedDefaults(g); len(d) > 0 {
			h, err := defaultsHash(d)
			if err != nil {
				return cache.LayoutKeyOpts{}, err
			}
			k.DefaultsHash = h
		}
	case layout.AlgorithmForce:
		k.BaseLength = o.BaseLength
		k.LengthStrategy = o.LengthStrategy
		k.Iterations = o.Iterations
		k.Seed = o.Seed
		k.Relayout = o.Relayout
	}
	return k, nil
}

func defaultsHash(d map[string]any) (string, error) {
	for name, v := range d {
		if val, ok := v.(layout.Value); ok && val.IsDerived() {
			return "", fmt.Errorf("default %q is derived", name)
		}
	}
	// map keys are marshaled sorted, so the hash is stable
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode defaults: %w", err)
	}
	return cache.Hash(data), nil
}
