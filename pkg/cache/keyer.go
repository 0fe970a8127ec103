package cache

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies the layout of the graph with the given content
	// hash under opts.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts lists every option that changes a layout result.
type LayoutKeyOpts struct {
	Algorithm      string  `json:"algorithm"`
	Algo           string  `json:"algo,omitempty"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Delimiter      string  `json:"delimiter,omitempty"`
	DefaultsHash   string  `json:"defaults_hash,omitempty"`
	BaseLength     float64 `json:"base_length,omitempty"`
	LengthStrategy string  `json:"length_strategy,omitempty"`
	Iterations     int     `json:"iterations,omitempty"`
	Seed           uint64  `json:"seed,omitempty"`
	Relayout       bool    `json:"relayout,omitempty"`
}

// DefaultKeyer hashes the graph hash and options into "layout:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix, for example to separate entries
// written by different releases.
//
//	keyer := cache.NewScopedKeyer(nil, "v1.2.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey implements [Keyer].
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}
