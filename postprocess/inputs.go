package postprocess

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Arity is the shape of the source field being postprocessed
type Arity uint8

const (
	ScalarArity Arity = iota // one solution component
	VectorArity              // several solution components
)

func (a Arity) String() string {
	switch a {
	case ScalarArity:
		return "scalar"
	case VectorArity:
		return "vector"
	default:
		return fmt.Sprintf("Arity(%d)", uint8(a))
	}
}

// ArityOf selects the calling convention for a source field with ncomp
// components.
func ArityOf(ncomp int) (Arity, error) {
	switch {
	case ncomp == 1:
		return ScalarArity, nil
	case ncomp > 1:
		return VectorArity, nil
	default:
		return 0, violation("source field component count", 1, ncomp)
	}
}

// ScalarInputs holds raw data of a single-component field at the M points of
// one batch. Members that were not requested are nil when they reach a
// postprocessor.
type ScalarInputs struct {
	Values    []float64    // [M]
	Gradients *mat.Dense   // [M × dim], row i is the gradient at point i
	Hessians  []*mat.Dense // [M] of [dim × dim]
	Normals   *mat.Dense   // [M × dim], faces only
}

// VectorInputs holds raw data of a multi-component field at the M points of
// one batch. Same nil convention as ScalarInputs.
type VectorInputs struct {
	Values    *mat.Dense     // [M × ncomp]
	Gradients []*mat.Dense   // [M] of [ncomp × dim], row c is the gradient of component c
	Hessians  [][]*mat.Dense // [M][ncomp] of [dim × dim]
	Normals   *mat.Dense     // [M × dim], faces only
}

func denseRows(m *mat.Dense) int {
	if m == nil {
		return 0
	}
	r, _ := m.Dims()
	return r
}

// masked returns a shallow copy carrying only the requested members
func (in *ScalarInputs) masked(flags UpdateFlags) *ScalarInputs {
	out := &ScalarInputs{}
	if flags.Has(UpdateValues) {
		out.Values = in.Values
	}
	if flags.Has(UpdateGradients) {
		out.Gradients = in.Gradients
	}
	if flags.Has(UpdateHessians) {
		out.Hessians = in.Hessians
	}
	if flags.Has(UpdateNormals) {
		out.Normals = in.Normals
	}
	return out
}

// check verifies every requested member covers exactly M points and that
// all inner shapes agree on one spatial dimension
func (in *ScalarInputs) check(flags UpdateFlags, M int) error {
	if flags.Has(UpdateValues) && len(in.Values) != M {
		return violation("scalar values length", M, len(in.Values))
	}
	if flags.Has(UpdateGradients) && denseRows(in.Gradients) != M {
		return violation("scalar gradients length", M, denseRows(in.Gradients))
	}
	if flags.Has(UpdateHessians) && len(in.Hessians) != M {
		return violation("scalar hessians length", M, len(in.Hessians))
	}
	if flags.Has(UpdateNormals) && denseRows(in.Normals) != M {
		return violation("normals length", M, denseRows(in.Normals))
	}
	if M == 0 {
		return nil
	}

	var dim int
	if flags.Has(UpdateGradients) {
		if err := agree("scalar gradient columns == dim", &dim, denseCols(in.Gradients)); err != nil {
			return err
		}
	}
	if flags.Has(UpdateNormals) {
		if err := agree("normal columns == dim", &dim, denseCols(in.Normals)); err != nil {
			return err
		}
	}
	if flags.Has(UpdateHessians) {
		for i, H := range in.Hessians {
			if err := checkHessian(fmt.Sprintf("scalar hessian %d", i), &dim, H); err != nil {
				return err
			}
		}
	}
	return nil
}

func (in *VectorInputs) masked(flags UpdateFlags) *VectorInputs {
	out := &VectorInputs{}
	if flags.Has(UpdateValues) {
		out.Values = in.Values
	}
	if flags.Has(UpdateGradients) {
		out.Gradients = in.Gradients
	}
	if flags.Has(UpdateHessians) {
		out.Hessians = in.Hessians
	}
	if flags.Has(UpdateNormals) {
		out.Normals = in.Normals
	}
	return out
}

func (in *VectorInputs) check(flags UpdateFlags, M int) error {
	if flags.Has(UpdateValues) && denseRows(in.Values) != M {
		return violation("vector values length", M, denseRows(in.Values))
	}
	if flags.Has(UpdateGradients) && len(in.Gradients) != M {
		return violation("vector gradients length", M, len(in.Gradients))
	}
	if flags.Has(UpdateHessians) && len(in.Hessians) != M {
		return violation("vector hessians length", M, len(in.Hessians))
	}
	if flags.Has(UpdateNormals) && denseRows(in.Normals) != M {
		return violation("normals length", M, denseRows(in.Normals))
	}
	if M == 0 {
		return nil
	}

	var ncomp, dim int
	if flags.Has(UpdateValues) {
		if err := agree("vector value columns == ncomp", &ncomp, denseCols(in.Values)); err != nil {
			return err
		}
	}
	if flags.Has(UpdateNormals) {
		if err := agree("normal columns == dim", &dim, denseCols(in.Normals)); err != nil {
			return err
		}
	}
	if flags.Has(UpdateGradients) {
		for i, G := range in.Gradients {
			if err := agree(fmt.Sprintf("vector gradient %d rows == ncomp", i), &ncomp, denseRows(G)); err != nil {
				return err
			}
			if err := agree(fmt.Sprintf("vector gradient %d columns == dim", i), &dim, denseCols(G)); err != nil {
				return err
			}
		}
	}
	if flags.Has(UpdateHessians) {
		for i, Hs := range in.Hessians {
			if err := agree(fmt.Sprintf("vector hessian %d components == ncomp", i), &ncomp, len(Hs)); err != nil {
				return err
			}
			for c, H := range Hs {
				if err := checkHessian(fmt.Sprintf("vector hessian %d component %d", i, c), &dim, H); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func denseCols(m *mat.Dense) int {
	if m == nil {
		return 0
	}
	_, c := m.Dims()
	return c
}

// agree pins *n to the first extent seen in a batch and rejects any later
// extent that differs. A zero extent is always a violation.
func agree(invariant string, n *int, got int) error {
	if got < 1 {
		return violation(invariant, max(*n, 1), got)
	}
	if *n == 0 {
		*n = got
		return nil
	}
	if got != *n {
		return violation(invariant, *n, got)
	}
	return nil
}

// checkHessian requires H to be present and dim × dim
func checkHessian(name string, dim *int, H *mat.Dense) error {
	if err := agree(name+" rows == dim", dim, denseRows(H)); err != nil {
		return err
	}
	return agree(name+" columns == dim", dim, denseCols(H))
}
