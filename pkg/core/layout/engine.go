package layout

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/stackflex/pkg/core/address"
	"github.com/matzehuels/stackflex/pkg/errors"
)

// Algorithm identifiers accepted by [Options].Algorithm.
const (
	AlgorithmFlexbox = "flexbox"
	AlgorithmForce   = "force"
)

// Box solver backends for the flexbox engine.
const (
	AlgoCSSLayout  = "css-layout"
	AlgoYogaLayout = "yoga-layout"
)

// Length strategies for the force engine.
const (
	LengthSymmetric  = "symmetric"
	LengthJaccard    = "jaccard"
	LengthIndividual = "individual"
	LengthNone       = "none"
)

// Defaults shared by the CLI, the API and library callers.
const (
	DefaultWidth          = 800.0
	DefaultHeight         = 600.0
	DefaultBaseLength     = 30.0
	DefaultIterations     = 300
	DefaultSeed           = uint64(42)
	DefaultAlgo           = AlgoCSSLayout
	DefaultLengthStrategy = LengthSymmetric
)

// Engine is the contract shared by every layout discipline.
//
// Calls on one engine must be serialized. Start runs a complete pass on the
// caller's goroutine and dispatches tick and end events synchronously.
type Engine interface {
	// LayoutAlgorithm names the discipline ("flexbox" or "force").
	LayoutAlgorithm() string
	// LayoutID identifies this engine instance.
	LayoutID() string

	// Init applies configuration. It is called once before Data.
	Init(opts Options) error
	// Data supplies the node and edge set for the next pass.
	Data(nodes []*Node, edges []*Edge, constraints []Constraint) error
	// Start runs a pass and writes X/Y onto the nodes passed to Data.
	Start() error
	// Stop prevents further ticks or passes from being scheduled.
	Stop()

	// On subscribes h to an event.
	On(event Event, h Handler)

	// PopulateLayoutNode copies layout-relevant fields from src into dst.
	PopulateLayoutNode(dst, src *Node)
	// PopulateLayoutEdge copies layout-relevant fields from src into dst.
	PopulateLayoutEdge(dst, src *Edge)
}

// Constraint is a layout-time constraint. Neither built-in engine consumes
// constraints; they are accepted so callers can share one Data call across
// engines.
type Constraint struct {
	Type  string
	Nodes []string
	Gap   float64
}

// Options configures an engine. Zero values select defaults.
type Options struct {
	Width  float64
	Height float64

	// Flexbox options.
	Algo       string        // solver backend: css-layout or yoga-layout
	Codec      address.Codec // key/address mapping
	Defaults   Attrs         // attributes inherited by every node
	Comparator Comparator    // sibling order when no "sort" attribute applies

	// Force options.
	BaseLength     float64
	LengthStrategy string
	Iterations     int
	Seed           uint64

	Logger *log.Logger
}

// SetDefaults fills zero-valued options.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Algo == "" {
		o.Algo = DefaultAlgo
	}
	if o.Codec == nil {
		o.Codec = address.Default
	}
	if o.Comparator == nil {
		o.Comparator = ByKey
	}
	if o.BaseLength == 0 {
		o.BaseLength = DefaultBaseLength
	}
	if o.LengthStrategy == "" {
		o.LengthStrategy = DefaultLengthStrategy
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values after defaults are applied.
func (o *Options) Validate() error {
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	switch o.Algo {
	case AlgoCSSLayout, AlgoYogaLayout:
	default:
		return errors.New(errors.ErrCodeInvalidOption,
			"invalid algo: %q (must be one of: %s, %s)", o.Algo, AlgoCSSLayout, AlgoYogaLayout)
	}
	switch o.LengthStrategy {
	case LengthSymmetric, LengthJaccard, LengthIndividual, LengthNone:
	default:
		return errors.New(errors.ErrCodeInvalidOption,
			"invalid lengthStrategy: %q", o.LengthStrategy)
	}
	if o.BaseLength < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "baseLength must not be negative")
	}
	if o.Iterations < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "iterations must not be negative")
	}
	return nil
}

// NewID returns id, or a fresh random identifier when id is empty.
func NewID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
