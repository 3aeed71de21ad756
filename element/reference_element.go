package element

import (
	"gonum.org/v1/gonum/mat"
)

// Dimensionality represents the spatial dimension of an element
type Dimensionality uint8

const (
	D1 Dimensionality = iota + 1 // 1D elements (lines, edges)
)

// GeometryType is the shape of an element
type GeometryType uint8

const (
	Line GeometryType = iota
)

func (g GeometryType) String() string {
	switch g {
	case Line:
		return "Line"
	default:
		return "Unknown"
	}
}

// ElementProperties contains metadata describing an element type
type ElementProperties struct {
	Name       string         // Full descriptive name (e.g., "Lagrange Line Order 3")
	ShortName  string         // Abbreviated name (e.g., "Line3")
	Type       GeometryType   // Element shape
	Order      int            // Polynomial order
	Np         int            // Total number of nodes/points in element
	NFp        int            // Number of nodes per face
	NFaces     int            // Number of faces in each element
	Dimensions Dimensionality // Spatial dimension
}

// ReferenceGeometry defines the layout of nodes in reference space [-1,1]^d
type ReferenceGeometry struct {
	// Node coordinates in reference space, length Np
	R []float64

	// Fmask[f] lists the nodes lying on face f
	Fmask [][]int
}

// NodalModalMatrices contains transformation matrices between nodal and modal representations
type NodalModalMatrices struct {
	V    mat.Matrix // Vandermonde matrix: modal to nodal transformation [Np × Np]
	Vinv mat.Matrix // Inverse Vandermonde: nodal to modal transformation [Np × Np]
	M    mat.Matrix // Mass matrix in nodal space [Np × Np]
}

// ReferenceOperators contains differential operators in reference space
type ReferenceOperators struct {
	Dr  mat.Matrix // First derivative with respect to r [Np × Np]
	Drr mat.Matrix // Second derivative with respect to r [Np × Np]
}

// ReferenceElement defines element properties and operators in reference space
type ReferenceElement interface {
	GetProperties() ElementProperties
	GetReferenceGeometry() ReferenceGeometry
	GetNodalModal() NodalModalMatrices
	GetReferenceOperators() ReferenceOperators
}
