package solver

import (
	"strings"
	"testing"

	"github.com/matzehuels/stackflex/pkg/errors"
)

func TestSetterName(t *testing.T) {
	tests := map[string]string{
		"width":          "setWidth",
		"flexDirection":  "setFlexDirection",
		"borderTopWidth": "setBorderTopWidth",
		"":               "set",
	}
	for attr, want := range tests {
		if got := SetterName(attr); got != want {
			t.Errorf("SetterName(%q) = %q, want %q", attr, got, want)
		}
	}
}

func TestCheckSupported(t *testing.T) {
	for _, attr := range SupportedAttributes {
		if err := CheckSupported(attr); err != nil {
			t.Errorf("CheckSupported(%q) = %v", attr, err)
		}
	}
	for _, attr := range []string{"sort", "order", "color", "Width"} {
		err := CheckSupported(attr)
		if !errors.Is(err, errors.ErrCodeUnknownAttribute) {
			t.Errorf("CheckSupported(%q) = %v, want UNKNOWN_ATTRIBUTE", attr, err)
		}
	}
}

type leaf struct{ name string }

func (l leaf) Name() string { return l.name }
func (leaf) Set(string, any) error { return nil }
func (leaf) InsertChild(Node, int) error { return nil }
func (leaf) ChildCount() int { return 0 }
func (leaf) Layout() Box { return Box{Width: 1, Height: 2} }

func TestDumpLeaf(t *testing.T) {
	got := Dump(leaf{})
	if !strings.HasPrefix(got, "(root): {left:0 top:0 width:1 height:2}") {
		t.Errorf("Dump() = %q", got)
	}
}
