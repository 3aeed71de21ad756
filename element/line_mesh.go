package element

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LineMesh is a 1D mesh of K affine line elements sharing a reference element
type LineMesh struct {
	*LineElement
	K  int
	VX []float64  // Vertex coordinates, length K+1, strictly increasing
	X  *mat.Dense // Node coordinates [Np × K]
	Rx *mat.Dense // ∂r/∂x [Np × K]
	J  *mat.Dense // ∂x/∂r [Np × K]
	Nx *mat.Dense // Outward face normals [2 × K]: -1 at the left end, +1 at the right
}

// NewLineMesh builds an order N mesh over the vertices VX
func NewLineMesh(N int, VX []float64) (*LineMesh, error) {
	if len(VX) < 2 {
		return nil, fmt.Errorf("line mesh needs at least 2 vertices, got %d", len(VX))
	}
	for k := 1; k < len(VX); k++ {
		if VX[k] <= VX[k-1] {
			return nil, fmt.Errorf("vertices must be strictly increasing: VX[%d]=%g, VX[%d]=%g",
				k-1, VX[k-1], k, VX[k])
		}
	}
	le, err := NewLineElement(N)
	if err != nil {
		return nil, err
	}
	K := len(VX) - 1
	lm := &LineMesh{
		LineElement: le,
		K:           K,
		VX:          append([]float64(nil), VX...),
		X:           mat.NewDense(le.Np, K, nil),
		Rx:          mat.NewDense(le.Np, K, nil),
		J:           mat.NewDense(le.Np, K, nil),
		Nx:          mat.NewDense(2, K, nil),
	}
	for k := 0; k < K; k++ {
		h := VX[k+1] - VX[k]
		for i, r := range le.R {
			lm.X.Set(i, k, VX[k]+0.5*(1+r)*h)
			lm.J.Set(i, k, 0.5*h)
			lm.Rx.Set(i, k, 2/h)
		}
		lm.Nx.Set(0, k, -1)
		lm.Nx.Set(1, k, 1)
	}
	return lm, nil
}

// NewUniformLineMesh builds K equal elements over [xmin, xmax]
func NewUniformLineMesh(N, K int, xmin, xmax float64) (*LineMesh, error) {
	if K < 1 {
		return nil, fmt.Errorf("line mesh needs at least one element, got %d", K)
	}
	if xmax <= xmin {
		return nil, fmt.Errorf("empty interval [%g, %g]", xmin, xmax)
	}
	return NewLineMesh(N, floats.Span(make([]float64, K+1), xmin, xmax))
}

// Interpolate evaluates f at every node, returning a nodal field [Np × K]
func (lm *LineMesh) Interpolate(f func(x float64) float64) *mat.Dense {
	U := mat.NewDense(lm.Np, lm.K, nil)
	for k := 0; k < lm.K; k++ {
		for i := 0; i < lm.Np; i++ {
			U.Set(i, k, f(lm.X.At(i, k)))
		}
	}
	return U
}

var _ MeshElement = (*LineMesh)(nil)

func (lm *LineMesh) GetMeshProperties() MeshProperties {
	return MeshProperties{
		NumElements: lm.K,
		NumVertices: len(lm.VX),
		NumFaces:    2 * lm.K,
	}
}

func (lm *LineMesh) GetReferenceElement() ReferenceElement { return lm.LineElement }

func (lm *LineMesh) GetGeometricTransform() GeometricTransform {
	return GeometricTransform{Rx: lm.Rx, J: lm.J}
}

func (lm *LineMesh) GetSurfaceGeometry() SurfaceGeometry {
	return SurfaceGeometry{Nx: lm.Nx}
}

// String returns a summary of the mesh
func (lm *LineMesh) String() string {
	var sb strings.Builder
	props := lm.GetProperties()
	mp := lm.GetMeshProperties()

	sb.WriteString("=== LineMesh Summary ===\n")
	sb.WriteString(fmt.Sprintf("  Element: %s (%s)\n", props.Name, props.ShortName))
	sb.WriteString(fmt.Sprintf("  Nodes per element (Np): %d\n", props.Np))
	sb.WriteString(fmt.Sprintf("  Number of elements: %d\n", mp.NumElements))
	sb.WriteString(fmt.Sprintf("  Number of vertices: %d\n", mp.NumVertices))
	sb.WriteString(fmt.Sprintf("  Total degrees of freedom: %d\n", mp.NumElements*props.Np))
	sb.WriteString(fmt.Sprintf("  Domain: [%.4g, %.4g]\n", lm.VX[0], lm.VX[len(lm.VX)-1]))
	gt := lm.GetGeometricTransform()
	sb.WriteString(fmt.Sprintf("  Jacobian range: [%.4e, %.4e]\n", mat.Min(gt.J), mat.Max(gt.J)))
	return sb.String()
}
