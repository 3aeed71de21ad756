package element

import "gonum.org/v1/gonum/mat"

// GeometricTransform maps between reference space and physical space.
// All data is stored for the entire mesh (K elements) in column-major layout:
// column k holds element k, row i holds node i.
type GeometricTransform struct {
	// ∂r/∂x [Np × K]
	Rx mat.Matrix

	// Jacobian determinant ∂x/∂r [Np × K]
	J mat.Matrix
}

// SurfaceGeometry contains geometric information for element faces
type SurfaceGeometry struct {
	// Unit outward normals at face nodes [NFaces*NFp × K], rows ordered
	// face by face
	Nx mat.Matrix
}

type MeshProperties struct {
	NumElements int
	NumVertices int
	NumFaces    int
}

// MeshElement represents a physical mesh with complete geometric information
type MeshElement interface {
	GetMeshProperties() MeshProperties
	GetReferenceElement() ReferenceElement
	GetGeometricTransform() GeometricTransform
	GetSurfaceGeometry() SurfaceGeometry
	String() string // Summary of key stats
}
