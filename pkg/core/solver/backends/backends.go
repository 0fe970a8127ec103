// Package backends provides the complete list of box-layout solver backends.
//
// This package exists to break import cycles: the backend packages import
// pkg/core/solver, so pkg/core/solver cannot import them back. Consumers that
// select a backend by name import this package instead.
//
//	s, err := backends.New("yoga-layout")
package backends

import (
	"github.com/matzehuels/stackflex/pkg/core/solver"
	"github.com/matzehuels/stackflex/pkg/core/solver/csslayout"
	"github.com/matzehuels/stackflex/pkg/core/solver/yoga"
	"github.com/matzehuels/stackflex/pkg/errors"
)

// Names lists the registered backends, default first.
var Names = []string{csslayout.Name, yoga.Name}

// New returns a fresh solver for the named backend.
func New(name string) (solver.Solver, error) {
	switch name {
	case csslayout.Name:
		return csslayout.New(), nil
	case yoga.Name:
		return yoga.New(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidOption,
		"unknown layout solver %q (must be one of: %s, %s)", name, csslayout.Name, yoga.Name)
}
