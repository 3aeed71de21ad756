package library

import (
	"fmt"
	"math"

	"github.com/notargets/DGPost/postprocess"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Magnitude writes |u| of a scalar field
type Magnitude struct {
	postprocess.UnimplementedPostprocessor
}

func NewMagnitude() *Magnitude {
	return &Magnitude{postprocess.UnimplementedPostprocessor{Name: "magnitude"}}
}

func (m *Magnitude) Names() []string                            { return []string{"magnitude"} }
func (m *Magnitude) NOutputVariables() int                      { return 1 }
func (m *Magnitude) NeededUpdateFlags() postprocess.UpdateFlags { return postprocess.UpdateValues }

func (m *Magnitude) ComputeDerivedQuantitiesScalar(out *mat.Dense, in *postprocess.ScalarInputs) error {
	for i, u := range in.Values {
		out.Set(i, 0, math.Abs(u))
	}
	return nil
}

// Norm writes the Euclidean norm of a vector field's components
type Norm struct {
	postprocess.UnimplementedPostprocessor
	name string
}

// NewNorm labels the output name, "norm" when empty
func NewNorm(name string) *Norm {
	if name == "" {
		name = "norm"
	}
	return &Norm{postprocess.UnimplementedPostprocessor{Name: name}, name}
}

func (n *Norm) Names() []string                            { return []string{n.name} }
func (n *Norm) NOutputVariables() int                      { return 1 }
func (n *Norm) NeededUpdateFlags() postprocess.UpdateFlags { return postprocess.UpdateValues }

func (n *Norm) ComputeDerivedQuantitiesVector(out *mat.Dense, in *postprocess.VectorInputs) error {
	M, _ := in.Values.Dims()
	for i := 0; i < M; i++ {
		out.Set(i, 0, floats.Norm(in.Values.RawRowView(i), 2))
	}
	return nil
}

// Components copies each component of a vector field to its own output
// named prefix_0, prefix_1, ...
type Components struct {
	postprocess.UnimplementedPostprocessor
	names []string
}

func NewComponents(prefix string, ncomp int) *Components {
	if ncomp < 1 {
		panic(fmt.Sprintf("components: need at least one component, got %d", ncomp))
	}
	names := make([]string, ncomp)
	for c := range names {
		names[c] = fmt.Sprintf("%s_%d", prefix, c)
	}
	return &Components{postprocess.UnimplementedPostprocessor{Name: "components"}, names}
}

func (c *Components) Names() []string                            { return append([]string(nil), c.names...) }
func (c *Components) NOutputVariables() int                      { return len(c.names) }
func (c *Components) NeededUpdateFlags() postprocess.UpdateFlags { return postprocess.UpdateValues }

func (c *Components) ComputeDerivedQuantitiesVector(out *mat.Dense, in *postprocess.VectorInputs) error {
	M, ncomp := in.Values.Dims()
	if ncomp != len(c.names) {
		return &postprocess.ContractError{Invariant: "components: source components", Expected: len(c.names), Actual: ncomp}
	}
	for i := 0; i < M; i++ {
		out.SetRow(i, in.Values.RawRowView(i))
	}
	return nil
}
