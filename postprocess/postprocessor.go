package postprocess

import "gonum.org/v1/gonum/mat"

// Postprocessor computes derived quantities from raw solution data.
//
// The declaration methods must be pure and return the same answers for the
// lifetime of the instance. The compute methods are called concurrently for
// independent batches, so an implementation must either hold no mutable state
// or synchronize it.
//
// Each compute method receives an output matrix sized M × N (one row per
// point, one column per declared name) and must fill it in place without
// retaining out or in beyond the call. Members of in that were not requested
// through NeededUpdateFlags are nil.
type Postprocessor interface {
	// Names of the computed quantities, len == NOutputVariables()
	Names() []string
	// Number of computed quantities per point
	NOutputVariables() int
	// Raw data the computation reads
	NeededUpdateFlags() UpdateFlags

	// Called when the source field has a single component
	ComputeDerivedQuantitiesScalar(out *mat.Dense, in *ScalarInputs) error
	// Called when the source field has several components
	ComputeDerivedQuantitiesVector(out *mat.Dense, in *VectorInputs) error
}

// UnimplementedPostprocessor supplies both compute methods returning an
// *ArityError. Embed it and override the arity the postprocessor supports.
type UnimplementedPostprocessor struct {
	// Name reported in the ArityError
	Name string
}

func (u UnimplementedPostprocessor) ComputeDerivedQuantitiesScalar(*mat.Dense, *ScalarInputs) error {
	return &ArityError{Postprocessor: u.Name, Arity: ScalarArity}
}

func (u UnimplementedPostprocessor) ComputeDerivedQuantitiesVector(*mat.Dense, *VectorInputs) error {
	return &ArityError{Postprocessor: u.Name, Arity: VectorArity}
}
