package layout

import (
	"encoding/json"
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/stackflex/pkg/errors"
)

func TestValueResolve(t *testing.T) {
	n := NewNode("a,b")

	lit := Literal(12.0)
	if lit.IsDerived() {
		t.Error("literal should not be derived")
	}
	if got := lit.Resolve(n); got != 12.0 {
		t.Errorf("Resolve() = %v, want 12", got)
	}

	der := Derived(func(n *Node) any { return len(n.Key) })
	if !der.IsDerived() {
		t.Error("derived should be derived")
	}
	if got := der.Resolve(n); got != 3 {
		t.Errorf("Resolve() = %v, want 3", got)
	}
}

func TestValueJSON(t *testing.T) {
	var attrs Attrs
	if err := json.Unmarshal([]byte(`{"width": 40, "flexDirection": "row"}`), &attrs); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got := attrs["width"].Resolve(nil); got != 40.0 {
		t.Errorf("width = %v, want 40", got)
	}
	if got := attrs["flexDirection"].Resolve(nil); got != "row" {
		t.Errorf("flexDirection = %v, want row", got)
	}

	attrs["derived"] = Derived(func(*Node) any { return 1 })
	data, err := json.Marshal(attrs)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"derived":null,"flexDirection":"row","width":40}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestAttrsClone(t *testing.T) {
	a := Attrs{"width": Literal(1)}
	b := a.Clone()
	b["height"] = Literal(2)
	if _, ok := a["height"]; ok {
		t.Error("Clone should not share storage")
	}
	if got := Attrs(nil).Clone(); got == nil {
		t.Error("Clone of nil should be empty, not nil")
	}
	if names := b.Names(); !slices.Equal(names, []string{"height", "width"}) {
		t.Errorf("Names() = %v", names)
	}
}

func TestComparators(t *testing.T) {
	a := NewNode("a").Set("order", 2)
	b := NewNode("b").Set("order", 1)
	c := NewNode("c")

	nodes := []*Node{c, a, b}
	slices.SortStableFunc(nodes, ByKey)
	if keys := keysOf(nodes); !slices.Equal(keys, []string{"a", "b", "c"}) {
		t.Errorf("ByKey order = %v", keys)
	}

	slices.SortStableFunc(nodes, ByOrder)
	if keys := keysOf(nodes); !slices.Equal(keys, []string{"b", "a", "c"}) {
		t.Errorf("ByOrder order = %v", keys)
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		in      any
		want    float64
		wantErr bool
	}{
		{1, 1, false},
		{int64(2), 2, false},
		{float32(1.5), 1.5, false},
		{2.25, 2.25, false},
		{json.Number("3"), 3, false},
		{"4.5", 4.5, false},
		{"wide", 0, true},
		{nil, 0, true},
		{true, 0, true},
		{math.NaN(), 0, true},
		{"NaN", 0, true},
		{math.Inf(-1), 0, true},
		{"+Inf", 0, true},
		{json.Number("NaN"), 0, true},
	}
	for _, tt := range tests {
		got, err := ToFloat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ToFloat(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ToFloat(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestToFloatNonFiniteCode(t *testing.T) {
	for _, v := range []any{math.NaN(), "nan", float32(math.Inf(1))} {
		if _, err := ToFloat(v); !errors.Is(err, errors.ErrCodeInvalidDimensions) {
			t.Errorf("ToFloat(%v) = %v, want INVALID_DIMENSIONS", v, err)
		}
	}
}

func TestDispatcher(t *testing.T) {
	var d Dispatcher
	var calls []string

	d.On(EventTick, func([]*Node, []EdgeRef) { calls = append(calls, "first") })
	d.On(EventTick, func([]*Node, []EdgeRef) { calls = append(calls, "second") })
	d.On(EventEnd, nil)

	d.Dispatch(EventTick, nil, nil)
	d.Dispatch(EventEnd, nil, nil)

	if !slices.Equal(calls, []string{"first", "second"}) {
		t.Errorf("calls = %v", calls)
	}
	if d.Len(EventEnd) != 0 {
		t.Error("nil handler should be ignored")
	}

	d.Off(EventTick)
	d.Dispatch(EventTick, nil, nil)
	if len(calls) != 2 {
		t.Error("Off should remove listeners")
	}
}

func TestDispatchersAreIndependent(t *testing.T) {
	var a, b Dispatcher
	hits := 0
	a.On(EventEnd, func([]*Node, []EdgeRef) { hits++ })
	b.Dispatch(EventEnd, nil, nil)
	if hits != 0 {
		t.Error("dispatchers must not share listeners")
	}
}

func TestParseEvent(t *testing.T) {
	for _, s := range []string{"start", "tick", "end"} {
		if _, err := ParseEvent(s); err != nil {
			t.Errorf("ParseEvent(%q) error = %v", s, err)
		}
	}
	if _, err := ParseEvent("drag"); err == nil {
		t.Error("ParseEvent(drag) should fail")
	}
}

func TestOptionsDefaultsAndValidate(t *testing.T) {
	var o Options
	o.SetDefaults()
	if o.Width != DefaultWidth || o.Height != DefaultHeight {
		t.Errorf("size = %vx%v", o.Width, o.Height)
	}
	if o.Algo != AlgoCSSLayout || o.Codec == nil || o.Comparator == nil || o.Logger == nil {
		t.Error("defaults not applied")
	}
	if err := o.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}

	bad := o
	bad.Algo = "grid"
	if err := bad.Validate(); !errors.Is(err, errors.ErrCodeInvalidOption) {
		t.Errorf("Validate(algo) = %v, want INVALID_OPTION", err)
	}

	bad = o
	bad.Width = -1
	if err := bad.Validate(); !errors.Is(err, errors.ErrCodeInvalidDimensions) {
		t.Errorf("Validate(width) = %v, want INVALID_DIMENSIONS", err)
	}

	bad = o
	bad.LengthStrategy = "random"
	if err := bad.Validate(); err == nil {
		t.Error("Validate(lengthStrategy) should fail")
	}
}

func TestNewID(t *testing.T) {
	if NewID("fixed") != "fixed" {
		t.Error("NewID should keep an explicit id")
	}
	a, b := NewID(""), NewID("")
	if a == "" || a == b {
		t.Errorf("NewID should generate unique ids, got %q and %q", a, b)
	}
}

func keysOf(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Key
	}
	return out
}
