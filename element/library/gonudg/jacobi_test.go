package gonudg

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestJacobiGQ_IntegratesPolynomials(t *testing.T) {
	// N+1 Gauss points integrate degree 2N+1 exactly
	for N := 0; N <= 6; N++ {
		t.Run(fmt.Sprintf("N=%d", N), func(t *testing.T) {
			x, w := JacobiGQ(0, 0, N)
			require.Len(t, x, N+1)
			require.Len(t, w, N+1)
			assert.InDelta(t, 2.0, floats.Sum(w), 1e-12)
			for p := 0; p <= 2*N+1; p++ {
				var got float64
				for i := range x {
					got += w[i] * math.Pow(x[i], float64(p))
				}
				want := 0.0
				if p%2 == 0 {
					want = 2.0 / float64(p+1)
				}
				assert.InDelta(t, want, got, 1e-12, "degree %d", p)
			}
		})
	}
}

func TestJacobiGL_Nodes(t *testing.T) {
	for N := 1; N <= 8; N++ {
		r := JacobiGL(0, 0, N)
		require.Len(t, r, N+1)
		assert.Equal(t, -1.0, r[0])
		assert.Equal(t, 1.0, r[N])
		assert.False(t, floats.HasNaN(r))
		for i := 1; i <= N; i++ {
			assert.Greater(t, r[i], r[i-1])
			// symmetric about zero
			assert.InDelta(t, -r[i], r[N-i], 1e-12)
		}
	}
	assert.Equal(t, []float64{0}, JacobiGL(0, 0, 0))
}

func TestJacobiP_Orthonormal(t *testing.T) {
	N := 5
	x, w := JacobiGQ(0, 0, N+1)
	for m := 0; m <= N; m++ {
		Pm := JacobiP(x, 0, 0, m)
		for n := 0; n <= N; n++ {
			Pn := JacobiP(x, 0, 0, n)
			var ip float64
			for i := range x {
				ip += w[i] * Pm[i] * Pn[i]
			}
			want := 0.0
			if m == n {
				want = 1.0
			}
			assert.InDelta(t, want, ip, 1e-12, "<P%d,P%d>", m, n)
		}
	}
}

func TestGradJacobiP_MatchesFiniteDifference(t *testing.T) {
	x := []float64{-0.7, -0.1, 0.3, 0.9}
	h := 1e-6
	for n := 0; n <= 5; n++ {
		dP := GradJacobiP(x, 0, 0, n)
		for i, xi := range x {
			p := JacobiP([]float64{xi - h, xi + h}, 0, 0, n)
			assert.InDelta(t, (p[1]-p[0])/(2*h), dP[i], 1e-6)
		}
	}
}

func TestDmatrix1D_ExactForPolynomials(t *testing.T) {
	for N := 1; N <= 6; N++ {
		t.Run(fmt.Sprintf("N=%d", N), func(t *testing.T) {
			r := JacobiGL(0, 0, N)
			V := Vandermonde1D(N, r)
			Dr, err := Dmatrix1D(N, r, V)
			require.NoError(t, err)

			for p := 0; p <= N; p++ {
				u := make([]float64, len(r))
				du := make([]float64, len(r))
				for i, ri := range r {
					u[i] = math.Pow(ri, float64(p))
					if p > 0 {
						du[i] = float64(p) * math.Pow(ri, float64(p-1))
					}
				}
				var got mat.VecDense
				got.MulVec(Dr, mat.NewVecDense(len(u), u))
				for i := range du {
					assert.InDelta(t, du[i], got.AtVec(i), 1e-9, "d/dr r^%d at node %d", p, i)
				}
			}
		})
	}
}
