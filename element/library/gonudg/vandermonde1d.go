package gonudg

import (
	"gonum.org/v1/gonum/mat"
)

// Vandermonde1D builds V with V_ij = P_j(r_i), the orthonormal Legendre
// modes evaluated at r
func Vandermonde1D(N int, r []float64) *mat.Dense {
	V := mat.NewDense(len(r), N+1, nil)
	for j := 0; j <= N; j++ {
		V.SetCol(j, JacobiP(r, 0, 0, j))
	}
	return V
}

// GradVandermonde1D builds Vr with Vr_ij = dP_j/dr at r_i
func GradVandermonde1D(N int, r []float64) *mat.Dense {
	Vr := mat.NewDense(len(r), N+1, nil)
	for j := 0; j <= N; j++ {
		Vr.SetCol(j, GradJacobiP(r, 0, 0, j))
	}
	return Vr
}

// Dmatrix1D computes the nodal differentiation matrix Dr = Vr * V^{-1}
func Dmatrix1D(N int, r []float64, V *mat.Dense) (*mat.Dense, error) {
	var Vinv mat.Dense
	if err := Vinv.Inverse(V); err != nil {
		return nil, err
	}
	var Dr mat.Dense
	Dr.Mul(GradVandermonde1D(N, r), &Vinv)
	return &Dr, nil
}
