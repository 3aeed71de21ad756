package element

import (
	"fmt"

	"github.com/notargets/DGPost/element/library/gonudg"
	"gonum.org/v1/gonum/mat"
)

// LineElement is the nodal reference line [-1,1] of order N with
// Gauss-Lobatto nodes
type LineElement struct {
	N     int
	Np    int
	R     []float64
	V     *mat.Dense
	Vinv  *mat.Dense
	M     *mat.Dense
	Dr    *mat.Dense
	Drr   *mat.Dense
	Fmask [][]int // left node, right node
}

// NewLineElement builds the reference operators of order N
func NewLineElement(N int) (*LineElement, error) {
	if N < 1 {
		return nil, fmt.Errorf("line element order must be >= 1, got %d", N)
	}
	le := &LineElement{
		N:     N,
		Np:    N + 1,
		R:     gonudg.JacobiGL(0, 0, N),
		Fmask: [][]int{{0}, {N}},
	}
	le.V = gonudg.Vandermonde1D(N, le.R)

	le.Vinv = mat.NewDense(le.Np, le.Np, nil)
	if err := le.Vinv.Inverse(le.V); err != nil {
		return nil, fmt.Errorf("failed to invert Vandermonde matrix: %w", err)
	}

	// M = (V V^T)^{-1} = V^{-T} V^{-1}
	le.M = mat.NewDense(le.Np, le.Np, nil)
	le.M.Mul(le.Vinv.T(), le.Vinv)

	var err error
	if le.Dr, err = gonudg.Dmatrix1D(N, le.R, le.V); err != nil {
		return nil, fmt.Errorf("failed to build Dr: %w", err)
	}
	le.Drr = mat.NewDense(le.Np, le.Np, nil)
	le.Drr.Mul(le.Dr, le.Dr)
	return le, nil
}

func (le *LineElement) GetProperties() ElementProperties {
	return ElementProperties{
		Name:       fmt.Sprintf("Lagrange Line Order %d", le.N),
		ShortName:  fmt.Sprintf("Line%d", le.N),
		Type:       Line,
		Order:      le.N,
		Np:         le.Np,
		NFp:        1,
		NFaces:     2,
		Dimensions: D1,
	}
}

func (le *LineElement) GetReferenceGeometry() ReferenceGeometry {
	return ReferenceGeometry{R: le.R, Fmask: le.Fmask}
}

func (le *LineElement) GetNodalModal() NodalModalMatrices {
	return NodalModalMatrices{V: le.V, Vinv: le.Vinv, M: le.M}
}

func (le *LineElement) GetReferenceOperators() ReferenceOperators {
	return ReferenceOperators{Dr: le.Dr, Drr: le.Drr}
}
