package evaluation

import (
	"github.com/notargets/DGPost/postprocess"
)

// Source produces raw solution data of one field, batch by batch. Batches
// are independent (typically one mesh cell or face each) and may be
// evaluated concurrently.
type Source interface {
	Name() string
	// Components of the field; 1 selects the scalar calling convention
	NComponents() int
	// Spatial dimension of gradients and normals
	Dim() int
	NumBatches() int
	// Number of evaluation points in a batch
	BatchLen(batch int) int

	// EvaluateScalar computes at least the data selected by flags for a
	// single-component field
	EvaluateScalar(batch int, flags postprocess.UpdateFlags) (*postprocess.ScalarInputs, error)
	// EvaluateVector computes at least the data selected by flags for a
	// multi-component field
	EvaluateVector(batch int, flags postprocess.UpdateFlags) (*postprocess.VectorInputs, error)
}
