package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackflex/pkg/cache"
	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/graph"
	"github.com/matzehuels/stackflex/pkg/observability"
)

// cacheKeyType labels layout entries in cache metrics.
const cacheKeyType = "layout"

// Runner runs layout passes with caching.
//
// The Runner holds no per-run state, so one Runner can serve concurrent
// requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration // entry lifetime, cache.TTLLayout when zero
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means [cache.DefaultKeyer] and a nil logger means the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Run lays out g, serving the result from the cache when an identical
// request was computed before. Cache errors are logged and never fail a
// run. Requests whose defaults cannot be keyed are computed uncached.
func (r *Runner) Run(ctx context.Context, g graph.Graph, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	result := &Result{Stats: Stats{NodeCount: len(g.Nodes), EdgeCount: len(g.Edges)}}
	graphData, err := graph.MarshalGraph(g)
	if err != nil {
		return nil, err
	}
	result.GraphHash = cache.Hash(graphData)
	var key string
	if keyOpts, err := opts.LayoutKeyOpts(g); err != nil {
		r.Logger.Debug("layout bypasses the cache", "err", err)
	} else {
		key = r.Keyer.LayoutKey(result.GraphHash, keyOpts)
	}

	if key != "" && !opts.Refresh {
		if l, ok := r.cached(ctx, key); ok {
			l.ID = layout.NewID(opts.ID)
			result.Layout, result.CacheHit = l, true
			r.Logger.Debug("layout cache hit", "key", key, "layout", l.ID)
			return result, nil
		}
	}

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, opts.Algorithm, len(g.Nodes))
	start := time.Now()
	l, err := generateLayout(ctx, g, opts)
	result.Stats.LayoutTime = time.Since(start)
	hooks.OnLayoutComplete(ctx, opts.Algorithm, len(g.Nodes), result.Stats.LayoutTime, err)
	if err != nil {
		return nil, err
	}
	result.Layout = l

	r.Logger.Info("computed layout",
		"layout", l.ID,
		"algorithm", opts.Algorithm,
		"nodes", len(l.Nodes),
		"placeholders", len(l.Placeholders),
		"duration", result.Stats.LayoutTime)

	if key != "" {
		r.store(ctx, key, l)
	}
	return result, nil
}

func (r *Runner) cached(ctx context.Context, key string) (graph.Layout, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		return graph.Layout{}, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return graph.Layout{}, false
	}
	l, err := graph.UnmarshalLayout(data)
	if err != nil {
		r.Logger.Warn("discarding unreadable cache entry", "key", key, "err", err)
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return graph.Layout{}, false
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	return l, true
}

func (r *Runner) store(ctx context.Context, key string, l graph.Layout) {
	data, err := graph.MarshalLayout(l)
	if err != nil {
		r.Logger.Warn("encode layout for cache", "err", err)
		return
	}
	ttl := r.TTL
	if ttl == 0 {
		ttl = cache.TTLLayout
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
