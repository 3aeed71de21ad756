package postprocess

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// fakePostprocessor declares whatever the test asks for and records what it
// was handed.
type fakePostprocessor struct {
	UnimplementedPostprocessor
	names   []string
	n       int
	flags   UpdateFlags
	calls   int
	scalars []*ScalarInputs
}

func (f *fakePostprocessor) Names() []string                { return f.names }
func (f *fakePostprocessor) NOutputVariables() int          { return f.n }
func (f *fakePostprocessor) NeededUpdateFlags() UpdateFlags { return f.flags }

func (f *fakePostprocessor) ComputeDerivedQuantitiesScalar(out *mat.Dense, in *ScalarInputs) error {
	f.calls++
	f.scalars = append(f.scalars, in)
	M, N := out.Dims()
	for i := 0; i < M; i++ {
		for j := 0; j < N; j++ {
			v := float64(j)
			if in.Values != nil {
				v += in.Values[i]
			}
			out.Set(i, j, v)
		}
	}
	return nil
}

func TestUpdateFlags(t *testing.T) {
	f := UpdateValues | UpdateNormals
	assert.True(t, f.Has(UpdateValues))
	assert.True(t, f.Has(UpdateNormals))
	assert.False(t, f.Has(UpdateGradients))
	assert.False(t, f.Has(UpdateValues|UpdateHessians))
	assert.Equal(t, "values|normals", f.String())
	assert.Equal(t, "none", UpdateDefault.String())

	seen := map[UpdateFlags]bool{}
	for _, fn := range flagNames {
		assert.NotEqual(t, UpdateDefault, fn.flag)
		assert.False(t, seen[fn.flag], "duplicate flag bit for %s", fn.name)
		seen[fn.flag] = true
	}
}

func TestArityOf(t *testing.T) {
	a, err := ArityOf(1)
	require.NoError(t, err)
	assert.Equal(t, ScalarArity, a)

	a, err = ArityOf(3)
	require.NoError(t, err)
	assert.Equal(t, VectorArity, a)

	_, err = ArityOf(0)
	assert.ErrorIs(t, err, ErrContractViolation)
}

func TestBind_DeclarationMismatch(t *testing.T) {
	// n_output_variables says 2, names has one entry
	pp := &fakePostprocessor{names: []string{"a"}, n: 2, flags: UpdateValues}

	b, err := Bind(pp)
	require.Error(t, err)
	assert.Nil(t, b)
	assert.ErrorIs(t, err, ErrContractViolation)

	var ce *ContractError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 2, ce.Expected)
	assert.Equal(t, 1, ce.Actual)
	assert.Contains(t, err.Error(), "len(names) == n_output_variables")
	assert.Zero(t, pp.calls, "no point may be processed after a failed bind")

	assert.Panics(t, func() { MustBind(pp) })
}

func TestBind_NegativeCount(t *testing.T) {
	_, err := Bind(&fakePostprocessor{n: -1})
	assert.ErrorIs(t, err, ErrContractViolation)
}

func TestBind_CachesDeclaration(t *testing.T) {
	pp := &fakePostprocessor{names: []string{"a", "b"}, n: 2, flags: UpdateValues}
	b := MustBind(pp)
	assert.Equal(t, Bound, b.State())

	names := b.Names()
	names[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, b.Names())

	pp.names[1] = "changed"
	assert.Equal(t, []string{"a", "b"}, b.Declaration().Names)
	assert.Equal(t, 2, b.NOutputVariables())
	assert.Equal(t, UpdateValues, b.Flags())

	require.NoError(t, b.CheckWidth(2))
	assert.ErrorIs(t, b.CheckWidth(3), ErrContractViolation)
}

func TestBinding_Lifecycle(t *testing.T) {
	var unbound *Binding
	assert.Equal(t, Unbound, unbound.State())

	pp := &fakePostprocessor{names: []string{"a"}, n: 1, flags: UpdateValues}
	b := MustBind(pp)
	out := b.NewOutput(2)
	require.NoError(t, b.EvaluateScalar(out, 2, &ScalarInputs{Values: []float64{1, 2}}))

	// a live binding must be retired before it can start a new run
	err := b.Rebind()
	assert.ErrorIs(t, err, ErrContractViolation)
	assert.Contains(t, err.Error(), "binding is bound, not retired")
	assert.Equal(t, Bound, b.State())

	b.Retire()
	assert.Equal(t, Retired, b.State())
	err = b.EvaluateScalar(out, 2, &ScalarInputs{Values: []float64{1, 2}})
	assert.ErrorIs(t, err, ErrRetired)
	assert.ErrorIs(t, err, ErrContractViolation)

	require.NoError(t, b.Rebind())
	assert.Equal(t, Bound, b.State())
	require.NoError(t, b.EvaluateScalar(out, 2, &ScalarInputs{Values: []float64{1, 2}}))

	b.Retire()
	pp.names = []string{"a", "b"}
	pp.n = 2
	err = b.Rebind()
	assert.ErrorIs(t, err, ErrContractViolation)
	assert.Contains(t, err.Error(), "rebinding *postprocess.fakePostprocessor")
	var ce *ContractError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 1, ce.Expected)
	assert.Equal(t, 2, ce.Actual)
	assert.Equal(t, Retired, b.State())

	pp.names = []string{"z"}
	pp.n = 1
	assert.ErrorIs(t, b.Rebind(), ErrContractViolation)
}

func TestBinding_OutputShape(t *testing.T) {
	b := MustBind(&fakePostprocessor{names: []string{"a", "b"}, n: 2, flags: UpdateValues})
	in := &ScalarInputs{Values: []float64{1, 2, 3}}

	out := b.NewOutput(3)
	r, c := out.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	require.NoError(t, b.EvaluateScalar(out, 3, in))
	for i := 0; i < 3; i++ {
		assert.Len(t, out.RawRowView(i), b.NOutputVariables())
	}

	err := b.EvaluateScalar(mat.NewDense(3, 1, nil), 3, in)
	assert.ErrorIs(t, err, ErrContractViolation)
	assert.Contains(t, err.Error(), "output width")

	err = b.EvaluateScalar(mat.NewDense(2, 2, nil), 3, in)
	assert.ErrorIs(t, err, ErrContractViolation)

	err = b.EvaluateScalar(nil, 3, in)
	assert.ErrorIs(t, err, ErrContractViolation)

	assert.Nil(t, b.NewOutput(0))
	require.NoError(t, b.EvaluateScalar(nil, 0, nil))
}

func TestBinding_ZeroOutputs(t *testing.T) {
	pp := &fakePostprocessor{names: nil, n: 0, flags: UpdateValues}
	b := MustBind(pp)
	assert.Nil(t, b.NewOutput(4))
	require.NoError(t, b.EvaluateScalar(nil, 4, &ScalarInputs{Values: make([]float64, 4)}))
	assert.Zero(t, pp.calls)
}

func TestBinding_InputLengthMismatch(t *testing.T) {
	b := MustBind(&fakePostprocessor{names: []string{"a"}, n: 1,
		flags: UpdateValues | UpdateGradients | UpdateHessians})
	good := &ScalarInputs{
		Values:    []float64{1, 2},
		Gradients: mat.NewDense(2, 2, nil),
		Hessians:  []*mat.Dense{mat.NewDense(2, 2, nil), mat.NewDense(2, 2, nil)},
	}
	require.NoError(t, b.EvaluateScalar(b.NewOutput(2), 2, good))

	cases := map[string]*ScalarInputs{
		"values":    {Values: []float64{1}, Gradients: good.Gradients, Hessians: good.Hessians},
		"gradients": {Values: good.Values, Gradients: mat.NewDense(3, 2, nil), Hessians: good.Hessians},
		"hessians":  {Values: good.Values, Gradients: good.Gradients},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			err := b.EvaluateScalar(b.NewOutput(2), 2, in)
			assert.ErrorIs(t, err, ErrContractViolation)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestBinding_MissingNormals(t *testing.T) {
	pp := &fakePostprocessor{names: []string{"a"}, n: 1, flags: UpdateValues | UpdateNormals}
	b := MustBind(pp)
	// interior cell data: no normals for two points
	err := b.EvaluateScalar(b.NewOutput(2), 2, &ScalarInputs{Values: []float64{1, 2}})
	var ce *ContractError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "normals length", ce.Invariant)
	assert.Equal(t, 2, ce.Expected)
	assert.Equal(t, 0, ce.Actual)
	assert.Zero(t, pp.calls)
}

func TestBinding_MasksUnrequested(t *testing.T) {
	pp := &fakePostprocessor{names: []string{"a"}, n: 1, flags: UpdateValues}
	b := MustBind(pp)
	nan := math.NaN()
	poisoned := &ScalarInputs{
		Values:    []float64{3, 4},
		Gradients: mat.NewDense(2, 2, []float64{nan, nan, nan, nan}),
		Hessians:  []*mat.Dense{mat.NewDense(1, 1, []float64{nan})},
		Normals:   mat.NewDense(1, 1, []float64{nan}),
	}
	out := b.NewOutput(2)
	require.NoError(t, b.EvaluateScalar(out, 2, poisoned))
	require.Len(t, pp.scalars, 1)
	seen := pp.scalars[0]
	assert.Equal(t, []float64{3, 4}, seen.Values)
	assert.Nil(t, seen.Gradients)
	assert.Nil(t, seen.Hessians)
	assert.Nil(t, seen.Normals)
	assert.Equal(t, []float64{3, 4}, mat.Col(nil, 0, out))
}

func TestBinding_ArityExclusivity(t *testing.T) {
	// fakePostprocessor only implements the scalar form
	b := MustBind(&fakePostprocessor{names: []string{"a"}, n: 1, flags: UpdateValues})
	in := &VectorInputs{Values: mat.NewDense(1, 2, []float64{1, 2})}

	err := b.EvaluateVector(b.NewOutput(1), 1, in)
	assert.ErrorIs(t, err, ErrUnsupportedArity)
	var ae *ArityError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, VectorArity, ae.Arity)

	err = b.Evaluate(VectorArity, b.NewOutput(1), 1, nil, in)
	assert.ErrorIs(t, err, ErrUnsupportedArity)
	require.NoError(t, b.Evaluate(ScalarArity, b.NewOutput(1), 1, &ScalarInputs{Values: []float64{1}}, nil))
}

func TestUnimplementedPostprocessor(t *testing.T) {
	u := UnimplementedPostprocessor{Name: "thing"}
	err := u.ComputeDerivedQuantitiesScalar(nil, nil)
	assert.ErrorIs(t, err, ErrUnsupportedArity)
	assert.Equal(t, "thing: postprocess arity not implemented for scalar source fields", err.Error())

	err = UnimplementedPostprocessor{}.ComputeDerivedQuantitiesVector(nil, nil)
	assert.ErrorIs(t, err, ErrUnsupportedArity)
	assert.Contains(t, err.Error(), "vector")
}
