package evaluation

import (
	"fmt"

	"github.com/notargets/DGPost/postprocess"
	"gonum.org/v1/gonum/mat"
)

// AnalyticSource samples a closed-form field at given points. Value returns
// the ncomp components at x, Gradient the [ncomp × dim] Jacobian and Hessian
// one [dim × dim] matrix per component. Gradient and Hessian may be nil when
// no postprocessor asks for them.
type AnalyticSource struct {
	FieldName string
	NComp     int
	Points    [][][]float64 // [batch][point][dim]
	Normals   [][][]float64 // [batch][point][dim], nil for cell batches
	Value     func(x []float64) []float64
	Gradient  func(x []float64) *mat.Dense
	Hessian   func(x []float64) []*mat.Dense
}

func (a *AnalyticSource) Name() string     { return a.FieldName }
func (a *AnalyticSource) NComponents() int { return a.NComp }
func (a *AnalyticSource) NumBatches() int  { return len(a.Points) }

func (a *AnalyticSource) Dim() int {
	for _, batch := range a.Points {
		if len(batch) > 0 {
			return len(batch[0])
		}
	}
	return 0
}

func (a *AnalyticSource) BatchLen(batch int) int { return len(a.Points[batch]) }

func (a *AnalyticSource) normals(batch int, flags postprocess.UpdateFlags) *mat.Dense {
	if !flags.Has(postprocess.UpdateNormals) || batch >= len(a.Normals) || len(a.Normals[batch]) == 0 {
		return nil
	}
	ns := a.Normals[batch]
	N := mat.NewDense(len(ns), len(ns[0]), nil)
	for i, n := range ns {
		N.SetRow(i, n)
	}
	return N
}

func (a *AnalyticSource) check(batch int, flags postprocess.UpdateFlags) error {
	if batch < 0 || batch >= len(a.Points) {
		return fmt.Errorf("field %s: batch %d out of range [0, %d)", a.FieldName, batch, len(a.Points))
	}
	if flags.Has(postprocess.UpdateGradients) && a.Gradient == nil {
		return fmt.Errorf("field %s: gradients requested but not available", a.FieldName)
	}
	if flags.Has(postprocess.UpdateHessians) && a.Hessian == nil {
		return fmt.Errorf("field %s: hessians requested but not available", a.FieldName)
	}
	return nil
}

func (a *AnalyticSource) EvaluateScalar(batch int, flags postprocess.UpdateFlags) (*postprocess.ScalarInputs, error) {
	if err := a.check(batch, flags); err != nil {
		return nil, err
	}
	pts := a.Points[batch]
	in := &postprocess.ScalarInputs{Normals: a.normals(batch, flags)}
	if flags.Has(postprocess.UpdateValues) {
		in.Values = make([]float64, len(pts))
		for i, x := range pts {
			in.Values[i] = a.Value(x)[0]
		}
	}
	if flags.Has(postprocess.UpdateGradients) && len(pts) > 0 {
		in.Gradients = mat.NewDense(len(pts), len(pts[0]), nil)
		for i, x := range pts {
			in.Gradients.SetRow(i, a.Gradient(x).RawRowView(0))
		}
	}
	if flags.Has(postprocess.UpdateHessians) {
		in.Hessians = make([]*mat.Dense, len(pts))
		for i, x := range pts {
			in.Hessians[i] = a.Hessian(x)[0]
		}
	}
	return in, nil
}

func (a *AnalyticSource) EvaluateVector(batch int, flags postprocess.UpdateFlags) (*postprocess.VectorInputs, error) {
	if err := a.check(batch, flags); err != nil {
		return nil, err
	}
	pts := a.Points[batch]
	in := &postprocess.VectorInputs{Normals: a.normals(batch, flags)}
	if flags.Has(postprocess.UpdateValues) && len(pts) > 0 {
		in.Values = mat.NewDense(len(pts), a.NComp, nil)
		for i, x := range pts {
			in.Values.SetRow(i, a.Value(x))
		}
	}
	if flags.Has(postprocess.UpdateGradients) {
		in.Gradients = make([]*mat.Dense, len(pts))
		for i, x := range pts {
			in.Gradients[i] = a.Gradient(x)
		}
	}
	if flags.Has(postprocess.UpdateHessians) {
		in.Hessians = make([][]*mat.Dense, len(pts))
		for i, x := range pts {
			in.Hessians[i] = a.Hessian(x)
		}
	}
	return in, nil
}
