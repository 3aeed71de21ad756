package library

import (
	"fmt"

	"github.com/notargets/DGPost/postprocess"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// GradientMagnitude writes ‖∇u‖ of a scalar field
type GradientMagnitude struct {
	postprocess.UnimplementedPostprocessor
}

func NewGradientMagnitude() *GradientMagnitude {
	return &GradientMagnitude{postprocess.UnimplementedPostprocessor{Name: "grad_magnitude"}}
}

func (g *GradientMagnitude) Names() []string       { return []string{"grad_magnitude"} }
func (g *GradientMagnitude) NOutputVariables() int { return 1 }
func (g *GradientMagnitude) NeededUpdateFlags() postprocess.UpdateFlags {
	return postprocess.UpdateGradients
}

func (g *GradientMagnitude) ComputeDerivedQuantitiesScalar(out *mat.Dense, in *postprocess.ScalarInputs) error {
	M, _ := in.Gradients.Dims()
	for i := 0; i < M; i++ {
		out.Set(i, 0, floats.Norm(in.Gradients.RawRowView(i), 2))
	}
	return nil
}

// Laplacian writes trace(∇∇u) of a scalar field
type Laplacian struct {
	postprocess.UnimplementedPostprocessor
}

func NewLaplacian() *Laplacian {
	return &Laplacian{postprocess.UnimplementedPostprocessor{Name: "laplacian"}}
}

func (l *Laplacian) Names() []string                            { return []string{"laplacian"} }
func (l *Laplacian) NOutputVariables() int                      { return 1 }
func (l *Laplacian) NeededUpdateFlags() postprocess.UpdateFlags { return postprocess.UpdateHessians }

func (l *Laplacian) ComputeDerivedQuantitiesScalar(out *mat.Dense, in *postprocess.ScalarInputs) error {
	for i, H := range in.Hessians {
		out.Set(i, 0, mat.Trace(H))
	}
	return nil
}

// Divergence writes ∇·u of a vector field with as many components as
// spatial dimensions
type Divergence struct {
	postprocess.UnimplementedPostprocessor
}

func NewDivergence() *Divergence {
	return &Divergence{postprocess.UnimplementedPostprocessor{Name: "divergence"}}
}

func (d *Divergence) Names() []string       { return []string{"divergence"} }
func (d *Divergence) NOutputVariables() int { return 1 }
func (d *Divergence) NeededUpdateFlags() postprocess.UpdateFlags {
	return postprocess.UpdateGradients
}

func (d *Divergence) ComputeDerivedQuantitiesVector(out *mat.Dense, in *postprocess.VectorInputs) error {
	for i, G := range in.Gradients {
		ncomp, dim := G.Dims()
		if ncomp != dim {
			return &postprocess.ContractError{Invariant: "divergence: components == dim", Expected: dim, Actual: ncomp}
		}
		out.Set(i, 0, mat.Trace(G))
	}
	return nil
}

// Vorticity writes the curl of a velocity field: one output in 2D, three in 3D
type Vorticity struct {
	postprocess.UnimplementedPostprocessor
	dim int
}

func NewVorticity(dim int) *Vorticity {
	if dim != 2 && dim != 3 {
		panic(fmt.Sprintf("vorticity is defined for dim 2 or 3, got %d", dim))
	}
	return &Vorticity{postprocess.UnimplementedPostprocessor{Name: "vorticity"}, dim}
}

func (v *Vorticity) Names() []string {
	if v.dim == 2 {
		return []string{"vorticity"}
	}
	return []string{"vorticity_x", "vorticity_y", "vorticity_z"}
}

func (v *Vorticity) NOutputVariables() int {
	if v.dim == 2 {
		return 1
	}
	return 3
}

func (v *Vorticity) NeededUpdateFlags() postprocess.UpdateFlags { return postprocess.UpdateGradients }

func (v *Vorticity) ComputeDerivedQuantitiesVector(out *mat.Dense, in *postprocess.VectorInputs) error {
	for i, G := range in.Gradients {
		// G.At(c, d) = ∂u_c/∂x_d
		ncomp, dim := G.Dims()
		if ncomp != v.dim {
			return &postprocess.ContractError{Invariant: "vorticity: components == dim", Expected: v.dim, Actual: ncomp}
		}
		if dim != v.dim {
			return &postprocess.ContractError{Invariant: "vorticity: gradient columns == dim", Expected: v.dim, Actual: dim}
		}
		if v.dim == 2 {
			out.Set(i, 0, G.At(1, 0)-G.At(0, 1))
			continue
		}
		out.Set(i, 0, G.At(2, 1)-G.At(1, 2))
		out.Set(i, 1, G.At(0, 2)-G.At(2, 0))
		out.Set(i, 2, G.At(1, 0)-G.At(0, 1))
	}
	return nil
}

// NormalFlux writes the flux through a face: ∇u·n for scalar fields and u·n
// for vector fields. Only meaningful on face batches. An instance serves the
// arity it was built for and requests only the data that form reads.
type NormalFlux struct {
	postprocess.UnimplementedPostprocessor
	arity postprocess.Arity
}

// NewNormalFlux builds the flux for a source field of ncomp components
func NewNormalFlux(ncomp int) *NormalFlux {
	arity, err := postprocess.ArityOf(ncomp)
	if err != nil {
		panic(fmt.Sprintf("normal_flux: %v", err))
	}
	return &NormalFlux{postprocess.UnimplementedPostprocessor{Name: "normal_flux"}, arity}
}

func (n *NormalFlux) Names() []string       { return []string{"normal_flux"} }
func (n *NormalFlux) NOutputVariables() int { return 1 }

func (n *NormalFlux) NeededUpdateFlags() postprocess.UpdateFlags {
	if n.arity == postprocess.ScalarArity {
		return postprocess.UpdateGradients | postprocess.UpdateNormals
	}
	return postprocess.UpdateValues | postprocess.UpdateNormals
}

func (n *NormalFlux) ComputeDerivedQuantitiesScalar(out *mat.Dense, in *postprocess.ScalarInputs) error {
	if n.arity != postprocess.ScalarArity {
		return n.UnimplementedPostprocessor.ComputeDerivedQuantitiesScalar(out, in)
	}
	M, _ := in.Normals.Dims()
	for i := 0; i < M; i++ {
		out.Set(i, 0, floats.Dot(in.Gradients.RawRowView(i), in.Normals.RawRowView(i)))
	}
	return nil
}

func (n *NormalFlux) ComputeDerivedQuantitiesVector(out *mat.Dense, in *postprocess.VectorInputs) error {
	if n.arity != postprocess.VectorArity {
		return n.UnimplementedPostprocessor.ComputeDerivedQuantitiesVector(out, in)
	}
	M, ncomp := in.Values.Dims()
	_, dim := in.Normals.Dims()
	if ncomp != dim {
		return &postprocess.ContractError{Invariant: "normal_flux: components == dim", Expected: dim, Actual: ncomp}
	}
	for i := 0; i < M; i++ {
		out.Set(i, 0, floats.Dot(in.Values.RawRowView(i), in.Normals.RawRowView(i)))
	}
	return nil
}
