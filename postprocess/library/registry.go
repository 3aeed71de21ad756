package library

import (
	"fmt"
	"sort"

	"github.com/notargets/DGPost/postprocess"
)

// Constructor builds a postprocessor for a source field of ncomp components
// in dim spatial dimensions.
type Constructor func(dim, ncomp int) (postprocess.Postprocessor, error)

var registry = map[string]Constructor{
	"magnitude": func(dim, ncomp int) (postprocess.Postprocessor, error) {
		return NewMagnitude(), nil
	},
	"norm": func(dim, ncomp int) (postprocess.Postprocessor, error) {
		return NewNorm(""), nil
	},
	"components": func(dim, ncomp int) (postprocess.Postprocessor, error) {
		if ncomp < 1 {
			return nil, fmt.Errorf("components: invalid component count %d", ncomp)
		}
		return NewComponents("u", ncomp), nil
	},
	"grad_magnitude": func(dim, ncomp int) (postprocess.Postprocessor, error) {
		return NewGradientMagnitude(), nil
	},
	"laplacian": func(dim, ncomp int) (postprocess.Postprocessor, error) {
		return NewLaplacian(), nil
	},
	"divergence": func(dim, ncomp int) (postprocess.Postprocessor, error) {
		return NewDivergence(), nil
	},
	"vorticity": func(dim, ncomp int) (postprocess.Postprocessor, error) {
		if dim != 2 && dim != 3 {
			return nil, fmt.Errorf("vorticity: unsupported dimension %d", dim)
		}
		return NewVorticity(dim), nil
	},
	"normal_flux": func(dim, ncomp int) (postprocess.Postprocessor, error) {
		if ncomp < 1 {
			return nil, fmt.Errorf("normal_flux: invalid component count %d", ncomp)
		}
		return NewNormalFlux(ncomp), nil
	},
}

// Lookup builds the named postprocessor
func Lookup(name string, dim, ncomp int) (postprocess.Postprocessor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown postprocessor %q", name)
	}
	return ctor(dim, ncomp)
}

// Names lists the registered postprocessors in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
