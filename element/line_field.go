package element

import (
	"fmt"

	"github.com/notargets/DGPost/postprocess"
	"gonum.org/v1/gonum/mat"
)

// LineField evaluates raw solution data of a nodal field on a mesh of 1D
// elements. Batch k is element k: all Np nodes in cell mode, or the face
// nodes with their outward normals in face mode. Only requested data are
// computed.
type LineField struct {
	mesh       MeshElement
	name       string
	components []*mat.Dense // one [Np × K] nodal field per component
	onFaces    bool

	props ElementProperties
	ref   ReferenceGeometry
	ops   ReferenceOperators
	geom  GeometricTransform
	surf  SurfaceGeometry
}

// NewLineField wraps nodal solution components defined on mesh
func NewLineField(name string, mesh MeshElement, onFaces bool, components ...*mat.Dense) (*LineField, error) {
	if len(components) == 0 {
		return nil, fmt.Errorf("field %s: no components", name)
	}
	re := mesh.GetReferenceElement()
	lf := &LineField{
		mesh:       mesh,
		name:       name,
		components: components,
		onFaces:    onFaces,
		props:      re.GetProperties(),
		ref:        re.GetReferenceGeometry(),
		ops:        re.GetReferenceOperators(),
		geom:       mesh.GetGeometricTransform(),
		surf:       mesh.GetSurfaceGeometry(),
	}
	if lf.props.Dimensions != D1 {
		return nil, fmt.Errorf("field %s: %s elements are not one dimensional", name, lf.props.ShortName)
	}
	K := mesh.GetMeshProperties().NumElements
	for c, U := range components {
		r, k := U.Dims()
		if r != lf.props.Np || k != K {
			return nil, fmt.Errorf("field %s: component %d is %d×%d, mesh needs %d×%d",
				name, c, r, k, lf.props.Np, K)
		}
	}
	return lf, nil
}

func (lf *LineField) Name() string      { return lf.name }
func (lf *LineField) NComponents() int  { return len(lf.components) }
func (lf *LineField) Dim() int          { return int(lf.props.Dimensions) }
func (lf *LineField) NumBatches() int   { return lf.mesh.GetMeshProperties().NumElements }
func (lf *LineField) OnFaces() bool     { return lf.onFaces }
func (lf *LineField) Mesh() MeshElement { return lf.mesh }

func (lf *LineField) BatchLen(batch int) int {
	if lf.onFaces {
		return lf.props.NFaces * lf.props.NFp
	}
	return lf.props.Np
}

// nodes returns the element-local node indices of a batch, face by face in
// face mode
func (lf *LineField) nodes() []int {
	if lf.onFaces {
		var idx []int
		for _, f := range lf.ref.Fmask {
			idx = append(idx, f...)
		}
		return idx
	}
	idx := make([]int, lf.props.Np)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

type nodalData struct {
	u, ux, uxx []float64 // per batch point
}

// evaluate computes the requested data of one component at the batch nodes
func (lf *LineField) evaluate(c, k int, nodes []int, flags postprocess.UpdateFlags) nodalData {
	var (
		U  = mat.Col(nil, k, lf.components[c])
		u  = mat.NewVecDense(len(U), U)
		rx = lf.geom.Rx
		nd nodalData
	)
	if flags.Has(postprocess.UpdateValues) {
		nd.u = make([]float64, len(nodes))
		for p, i := range nodes {
			nd.u[p] = U[i]
		}
	}
	if flags.Has(postprocess.UpdateGradients) {
		var ur mat.VecDense
		ur.MulVec(lf.ops.Dr, u)
		nd.ux = make([]float64, len(nodes))
		for p, i := range nodes {
			nd.ux[p] = rx.At(i, k) * ur.AtVec(i)
		}
	}
	if flags.Has(postprocess.UpdateHessians) {
		// affine elements: ∂²u/∂x² = rx² ∂²u/∂r²
		var urr mat.VecDense
		urr.MulVec(lf.ops.Drr, u)
		nd.uxx = make([]float64, len(nodes))
		for p, i := range nodes {
			r := rx.At(i, k)
			nd.uxx[p] = r * r * urr.AtVec(i)
		}
	}
	return nd
}

func (lf *LineField) normals(k int, flags postprocess.UpdateFlags) *mat.Dense {
	if !lf.onFaces || !flags.Has(postprocess.UpdateNormals) {
		return nil
	}
	nf := lf.props.NFaces * lf.props.NFp
	N := mat.NewDense(nf, 1, nil)
	for p := 0; p < nf; p++ {
		N.Set(p, 0, lf.surf.Nx.At(p, k))
	}
	return N
}

func (lf *LineField) checkBatch(batch int) error {
	if nb := lf.NumBatches(); batch < 0 || batch >= nb {
		return fmt.Errorf("field %s: batch %d out of range [0, %d)", lf.name, batch, nb)
	}
	return nil
}

// EvaluateScalar computes the requested raw data of a single-component field
func (lf *LineField) EvaluateScalar(batch int, flags postprocess.UpdateFlags) (*postprocess.ScalarInputs, error) {
	if err := lf.checkBatch(batch); err != nil {
		return nil, err
	}
	if len(lf.components) != 1 {
		return nil, fmt.Errorf("field %s: scalar evaluation of %d components", lf.name, len(lf.components))
	}
	nodes := lf.nodes()
	nd := lf.evaluate(0, batch, nodes, flags)
	in := &postprocess.ScalarInputs{
		Values:  nd.u,
		Normals: lf.normals(batch, flags),
	}
	if nd.ux != nil {
		in.Gradients = mat.NewDense(len(nodes), 1, nd.ux)
	}
	if nd.uxx != nil {
		in.Hessians = make([]*mat.Dense, len(nodes))
		for p := range nodes {
			in.Hessians[p] = mat.NewDense(1, 1, []float64{nd.uxx[p]})
		}
	}
	return in, nil
}

// EvaluateVector computes the requested raw data of a multi-component field
func (lf *LineField) EvaluateVector(batch int, flags postprocess.UpdateFlags) (*postprocess.VectorInputs, error) {
	if err := lf.checkBatch(batch); err != nil {
		return nil, err
	}
	var (
		nodes = lf.nodes()
		M     = len(nodes)
		ncomp = len(lf.components)
		in    = &postprocess.VectorInputs{Normals: lf.normals(batch, flags)}
	)
	if flags.Has(postprocess.UpdateValues) {
		in.Values = mat.NewDense(M, ncomp, nil)
	}
	if flags.Has(postprocess.UpdateGradients) {
		in.Gradients = make([]*mat.Dense, M)
		for p := range in.Gradients {
			in.Gradients[p] = mat.NewDense(ncomp, 1, nil)
		}
	}
	if flags.Has(postprocess.UpdateHessians) {
		in.Hessians = make([][]*mat.Dense, M)
		for p := range in.Hessians {
			in.Hessians[p] = make([]*mat.Dense, ncomp)
		}
	}
	for c := 0; c < ncomp; c++ {
		nd := lf.evaluate(c, batch, nodes, flags)
		for p := 0; p < M; p++ {
			if nd.u != nil {
				in.Values.Set(p, c, nd.u[p])
			}
			if nd.ux != nil {
				in.Gradients[p].Set(c, 0, nd.ux[p])
			}
			if nd.uxx != nil {
				in.Hessians[p][c] = mat.NewDense(1, 1, []float64{nd.uxx[p]})
			}
		}
	}
	return in, nil
}
