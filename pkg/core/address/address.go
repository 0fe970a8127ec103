// Package address maps flat node keys to tree addresses and back.
//
// An address is the ordered list of path segments that places a node in the
// implicit hierarchy used by the flexbox layout. The key "app,api,db" decodes
// to the address [app api db]; the node sits under "api", which sits under
// "app", which sits under the root (the empty address).
//
// # Codecs
//
// [Codec] is the pluggable contract. [Delimited] is the default and splits or
// joins on a separator:
//
//	codec := address.Delimited{Sep: ","}
//	codec.Decode("a,b")        // [a b]
//	codec.Encode([]string{"a"}) // "a"
//
// [Funcs] adapts plain functions so callers can replace either direction.
//
// # Caller obligations
//
// Segments must not contain the separator. The codec does not escape or
// validate segments; a segment holding the separator decodes as two segments
// and lands the node in a different tree slot.
package address

import "strings"

// DefaultSep is the separator used by [Default].
const DefaultSep = ","

// Codec converts between node keys and addresses.
//
// Decode(Encode(a)) need not equal a, but Encode(Decode(k)) must produce a key
// that decodes to the same address as k.
type Codec interface {
	Encode(address []string) string
	Decode(key string) []string
}

// Default is the comma-separated codec.
var Default Codec = Delimited{Sep: DefaultSep}

// Delimited joins and splits addresses on Sep.
// An empty Sep behaves like [DefaultSep].
type Delimited struct {
	Sep string
}

// Encode joins the address segments with the separator.
func (d Delimited) Encode(address []string) string {
	return strings.Join(address, d.sep())
}

// Decode splits the key on the separator. The empty key decodes to a single
// empty segment, not to the root address.
func (d Delimited) Decode(key string) []string {
	return strings.Split(key, d.sep())
}

func (d Delimited) sep() string {
	if d.Sep == "" {
		return DefaultSep
	}
	return d.Sep
}

// Funcs builds a Codec from functions. A nil function falls back to [Default].
type Funcs struct {
	EncodeFunc func(address []string) string
	DecodeFunc func(key string) []string
}

// Encode calls EncodeFunc.
func (f Funcs) Encode(address []string) string {
	if f.EncodeFunc == nil {
		return Default.Encode(address)
	}
	return f.EncodeFunc(address)
}

// Decode calls DecodeFunc.
func (f Funcs) Decode(key string) []string {
	if f.DecodeFunc == nil {
		return Default.Decode(key)
	}
	return f.DecodeFunc(key)
}

// Equal reports whether two addresses have the same segments.
func Equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Last returns the final segment of the address, or "" for the root.
func Last(address []string) string {
	if len(address) == 0 {
		return ""
	}
	return address[len(address)-1]
}

var (
	_ Codec = Delimited{}
	_ Codec = Funcs{}
)
