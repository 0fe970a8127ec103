package pipeline

import (
	"context"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackflex/pkg/cache"
	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/errors"
	"github.com/matzehuels/stackflex/pkg/graph"
	"github.com/matzehuels/stackflex/pkg/observability"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key], c.ttls[key] = data, ttl
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func scenario() graph.Graph {
	return graph.Graph{Nodes: []graph.Node{
		{Key: "a", Attrs: map[string]any{"flexDirection": "row", "flex": 1.0, "padding": 10.0}},
		{Key: "a,b", Attrs: map[string]any{"width": 50.0}},
		{Key: "a,c", Attrs: map[string]any{"width": 30.0}},
	}}
}

func quiet() *log.Logger { return log.New(io.Discard) }

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestOptionsDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()
	if o.Algorithm != layout.AlgorithmFlexbox || o.Width != layout.DefaultWidth || o.Delimiter != "," {
		t.Errorf("defaults = %+v", o)
	}
	if o.Iterations != layout.DefaultIterations || o.Seed != layout.DefaultSeed {
		t.Errorf("force defaults = %+v", o)
	}
	if err := o.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"algorithm", Options{Algorithm: "grid"}, errors.ErrCodeInvalidAlgorithm},
		{"algo", Options{Algo: "dagre"}, errors.ErrCodeInvalidOption},
		{"dimensions", Options{Width: -1}, errors.ErrCodeInvalidDimensions},
		{"length strategy", Options{LengthStrategy: "random"}, errors.ErrCodeInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.opts
			o.SetDefaults()
			if err := o.Validate(); !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	g := scenario()
	key := func(o Options) string {
		o.SetDefaults()
		k, err := o.LayoutKeyOpts(g)
		if err != nil {
			t.Fatal(err)
		}
		return cache.NewDefaultKeyer().LayoutKey("h", k)
	}

	base := key(Options{})
	if key(Options{Seed: 7}) != base {
		t.Error("force seed changed a flexbox key")
	}
	if key(Options{Algo: layout.AlgoYogaLayout}) == base {
		t.Error("backend did not change the key")
	}
	if key(Options{Defaults: map[string]any{"alignItems": "center"}}) == base {
		t.Error("defaults did not change the key")
	}
	force := key(Options{Algorithm: layout.AlgorithmForce})
	if key(Options{Algorithm: layout.AlgorithmForce, Seed: 7}) == force {
		t.Error("seed did not change a force key")
	}
	if key(Options{Algorithm: layout.AlgorithmForce, Relayout: true}) == force {
		t.Error("relayout did not change a force key")
	}
}

func TestLayoutKeyOptsRejectsUnencodableDefaults(t *testing.T) {
	g := scenario()
	tests := []struct {
		name  string
		value any
	}{
		{"comparator", layout.Comparator(layout.ByOrder)},
		{"derived", layout.Derived(func(*layout.Node) any { return 0.0 })},
		{"function", func(a, b *layout.Node) int { return 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Options{Defaults: map[string]any{"sort": tt.value}}
			o.SetDefaults()
			if _, err := o.LayoutKeyOpts(g); err == nil {
				t.Error("LayoutKeyOpts() accepted a default with no stable encoding")
			}
		})
	}
}

// Two requests whose defaults differ only in a comparator or a derived value
// must not share a cache entry, so neither is cached.
func TestRunnerBypassesCacheForUnencodableDefaults(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, quiet())
	ctx := context.Background()
	reverse := layout.Comparator(func(a, b *layout.Node) int { return -layout.ByKey(a, b) })
	margin := layout.Derived(func(*layout.Node) any { return 2.0 })

	for _, defaults := range []map[string]any{
		{"sort": layout.Comparator(layout.ByKey)},
		{"sort": reverse},
		{"marginTop": margin},
	} {
		res, err := r.Run(ctx, scenario(), Options{Width: 200, Height: 100, Defaults: defaults})
		if err != nil {
			t.Fatal(err)
		}
		if res.CacheHit {
			t.Errorf("defaults %v served from the cache", defaults)
		}
	}
	if c.sets != 0 || len(c.data) != 0 {
		t.Errorf("cache written %d times, want 0", c.sets)
	}

	res, err := r.Run(ctx, scenario(), Options{Width: 200, Height: 100, Defaults: map[string]any{"sort": reverse}})
	if err != nil {
		t.Fatal(err)
	}
	p, _ := res.Layout.Position("a,c")
	if !near(p.X, 25) {
		t.Errorf("reversed a,c.X = %v, want 25", p.X)
	}
}

func TestGraphDefaultsOverrideOptions(t *testing.T) {
	o := Options{Defaults: map[string]any{"alignItems": "center", "flexWrap": "wrap"}}
	g := graph.Graph{Defaults: map[string]any{"alignItems": "flex-start"}}
	lo := o.LayoutOptions(g)
	if got := lo.Defaults["alignItems"].Resolve(nil); got != "flex-start" {
		t.Errorf("alignItems = %v, want graph value", got)
	}
	if got := lo.Defaults["flexWrap"].Resolve(nil); got != "wrap" {
		t.Errorf("flexWrap = %v, want option value", got)
	}
}

func TestGenerateLayoutFlexbox(t *testing.T) {
	l, err := GenerateLayout(context.Background(), scenario(), Options{Width: 200, Height: 100, ID: "fixed"})
	if err != nil {
		t.Fatal(err)
	}
	if l.ID != "fixed" || l.Algorithm != layout.AlgorithmFlexbox || l.Algo != layout.AlgoCSSLayout {
		t.Errorf("metadata = %+v", l)
	}
	want := map[string][2]float64{"a": {100, 50}, "a,b": {35, 50}, "a,c": {75, 50}}
	for key, w := range want {
		p, ok := l.Position(key)
		if !ok || !near(p.X, w[0]) || !near(p.Y, w[1]) {
			t.Errorf("%s = %+v, want %v", key, p, w)
		}
	}
	if len(l.Placeholders) != 0 {
		t.Errorf("placeholders = %v, want none", l.Placeholders)
	}
}

func TestGenerateLayoutPlaceholders(t *testing.T) {
	g := graph.Graph{Nodes: []graph.Node{{Key: "x/y/z"}}}
	l, err := GenerateLayout(context.Background(), g, Options{Delimiter: "/"})
	if err != nil {
		t.Fatal(err)
	}
	var keys []string
	for _, p := range l.Placeholders {
		keys = append(keys, p.Key)
	}
	if len(keys) != 2 || keys[0] != "x" || keys[1] != "x/y" {
		t.Errorf("placeholders = %v, want [x x/y]", keys)
	}
	if len(l.Nodes) != 1 || l.Nodes[0].Key != "x/y/z" {
		t.Errorf("nodes = %v", l.Nodes)
	}
}

func TestGenerateLayoutForce(t *testing.T) {
	g := graph.Graph{
		Nodes: []graph.Node{{Key: "a"}, {Key: "b"}, {Key: "c"}},
		Edges: []graph.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "c"}},
	}
	opts := Options{Algorithm: layout.AlgorithmForce, Width: 400, Height: 300, Relayout: true}
	first, err := GenerateLayout(context.Background(), g, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := GenerateLayout(context.Background(), g, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range first.Nodes {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			t.Errorf("%s has NaN position", p.Key)
		}
		if q := second.Nodes[i]; p != q {
			t.Errorf("%s not deterministic: %+v vs %+v", p.Key, p, q)
		}
	}
	if len(first.Edges) != 2 || first.Edges[0].Key != "a->b" {
		t.Errorf("edges = %v", first.Edges)
	}
}

func TestGenerateLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		g    graph.Graph
		code errors.Code
	}{
		{"unknown attribute", graph.Graph{Nodes: []graph.Node{{Key: "a", Attrs: map[string]any{"flexFoo": 1}}}}, errors.ErrCodeUnknownAttribute},
		{"duplicate key", graph.Graph{Nodes: []graph.Node{{Key: "a,b"}, {Key: "a,b"}}}, errors.ErrCodeDuplicateKey},
		{"unknown edge end", graph.Graph{Nodes: []graph.Node{{Key: "a"}}, Edges: []graph.Edge{{Source: "a", Target: "b"}}}, errors.ErrCodeUnknownNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateLayout(context.Background(), tt.g, Options{})
			if !errors.Is(err, tt.code) {
				t.Errorf("GenerateLayout() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestGenerateLayoutCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := graph.Graph{Nodes: []graph.Node{{Key: "a"}, {Key: "b"}}}
	for _, algo := range []string{layout.AlgorithmFlexbox, layout.AlgorithmForce} {
		if _, err := GenerateLayout(ctx, g, Options{Algorithm: algo}); err == nil {
			t.Errorf("%s: canceled context accepted", algo)
		}
	}

	deadline, stop := context.WithDeadline(context.Background(), time.Unix(0, 0))
	defer stop()
	if _, err := GenerateLayout(deadline, g, Options{}); !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("expired deadline = %v, want TIMEOUT", err)
	}
}

type layoutRecorder struct {
	starts, completes int
	lastErr           error
}

func (r *layoutRecorder) OnLayoutStart(context.Context, string, int) { r.starts++ }
func (r *layoutRecorder) OnLayoutComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	r.completes++
	r.lastErr = err
}

type cacheRecorder struct{ hits, misses, sets int }

func (r *cacheRecorder) OnCacheHit(context.Context, string)      { r.hits++ }
func (r *cacheRecorder) OnCacheMiss(context.Context, string)     { r.misses++ }
func (r *cacheRecorder) OnCacheSet(context.Context, string, int) { r.sets++ }

func TestRunnerCaches(t *testing.T) {
	lh, ch := &layoutRecorder{}, &cacheRecorder{}
	observability.SetLayoutHooks(lh)
	observability.SetCacheHooks(ch)
	defer observability.Reset()

	c := newMemCache()
	r := NewRunner(c, nil, quiet())
	r.TTL = time.Minute
	ctx := context.Background()
	opts := Options{Width: 200, Height: 100}

	first, err := r.Run(ctx, scenario(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit || c.sets != 1 || first.GraphHash == "" {
		t.Fatalf("first run = %+v, sets = %d", first, c.sets)
	}
	for _, ttl := range c.ttls {
		if ttl != time.Minute {
			t.Errorf("ttl = %v, want 1m", ttl)
		}
	}

	second, err := r.Run(ctx, scenario(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheHit {
		t.Error("second run missed the cache")
	}
	if second.Layout.ID == first.Layout.ID {
		t.Error("cached layout reused the previous layout id")
	}
	p, _ := second.Layout.Position("a,b")
	if !near(p.X, 35) {
		t.Errorf("cached a,b.X = %v, want 35", p.X)
	}

	if _, err := r.Run(ctx, scenario(), Options{Width: 200, Height: 100, Refresh: true}); err != nil {
		t.Fatal(err)
	}
	if c.sets != 2 {
		t.Errorf("refresh did not recompute, sets = %d", c.sets)
	}

	if lh.starts != 2 || lh.completes != 2 || lh.lastErr != nil {
		t.Errorf("layout hooks = %+v", lh)
	}
	if ch.hits != 1 || ch.misses != 1 || ch.sets != 2 {
		t.Errorf("cache hooks = %+v", ch)
	}
}

func TestRunnerDiscardsCorruptEntry(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, quiet())
	opts := Options{}
	opts.SetDefaults()
	g := scenario()
	data, _ := graph.MarshalGraph(g)
	k, err := opts.LayoutKeyOpts(g)
	if err != nil {
		t.Fatal(err)
	}
	c.data[r.Keyer.LayoutKey(cache.Hash(data), k)] = []byte("{broken")

	res, err := r.Run(context.Background(), g, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit {
		t.Error("corrupt entry served as a hit")
	}
}

func TestRunnerReportsFailure(t *testing.T) {
	lh := &layoutRecorder{}
	observability.SetLayoutHooks(lh)
	defer observability.Reset()

	r := NewRunner(nil, nil, quiet())
	g := graph.Graph{Nodes: []graph.Node{{Key: "a", Attrs: map[string]any{"width": -5.0}}}}
	if _, err := r.Run(context.Background(), g, Options{}); err == nil {
		t.Fatal("negative width accepted")
	}
	if lh.completes != 1 || lh.lastErr == nil {
		t.Errorf("failure not reported: %+v", lh)
	}
}

func TestOverlay(t *testing.T) {
	base := Options{
		Algorithm: layout.AlgorithmForce,
		Width:     300,
		Seed:      9,
		Relayout:  true,
		Defaults:  map[string]any{"alignItems": "center", "flexWrap": "wrap"},
	}
	got := Options{Width: 120, Defaults: map[string]any{"alignItems": "flex-end"}}.Overlay(base)
	if got.Algorithm != layout.AlgorithmForce || got.Width != 120 || got.Seed != 9 || !got.Relayout {
		t.Errorf("overlay = %+v", got)
	}
	if got.Defaults["alignItems"] != "flex-end" || got.Defaults["flexWrap"] != "wrap" {
		t.Errorf("overlay defaults = %v", got.Defaults)
	}
	if base.Defaults["alignItems"] != "center" {
		t.Error("overlay modified the base defaults")
	}
}
