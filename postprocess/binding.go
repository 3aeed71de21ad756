package postprocess

import (
	"fmt"
	"slices"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"
)

// Declaration is the capability declaration of a postprocessor captured at
// bind time. It is never modified afterwards and may be shared by workers.
type Declaration struct {
	Names []string
	N     int
	Flags UpdateFlags
}

// Declare queries p once and validates that names and output count agree
func Declare(p Postprocessor) (Declaration, error) {
	d := Declaration{
		Names: slices.Clone(p.Names()),
		N:     p.NOutputVariables(),
		Flags: p.NeededUpdateFlags(),
	}
	if d.N < 0 {
		return Declaration{}, violation("n_output_variables >= 0", 0, d.N)
	}
	if len(d.Names) != d.N {
		return Declaration{}, violation("len(names) == n_output_variables", d.N, len(d.Names))
	}
	return d, nil
}

// Equal reports whether two declarations describe the same output layout
func (d Declaration) Equal(o Declaration) bool {
	return d.N == o.N && d.Flags == o.Flags && slices.Equal(d.Names, o.Names)
}

// BindingState is the lifecycle stage of a Binding
type BindingState int32

const (
	Unbound BindingState = iota
	Bound
	Retired
)

func (s BindingState) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Bound:
		return "bound"
	case Retired:
		return "retired"
	default:
		return fmt.Sprintf("BindingState(%d)", int32(s))
	}
}

// Binding ties a postprocessor to its validated declaration for the span of
// one output run. All dispatch into the postprocessor goes through it.
type Binding struct {
	pp    Postprocessor
	decl  Declaration
	state atomic.Int32
}

// Bind validates p's declaration and returns a bound Binding. No point-level
// work should start before Bind succeeds.
func Bind(p Postprocessor) (*Binding, error) {
	decl, err := Declare(p)
	if err != nil {
		return nil, fmt.Errorf("binding %T: %w", p, err)
	}
	b := &Binding{pp: p, decl: decl}
	b.state.Store(int32(Bound))
	return b, nil
}

// MustBind is Bind for postprocessors whose declaration is known to be valid
func MustBind(p Postprocessor) *Binding {
	b, err := Bind(p)
	if err != nil {
		panic(err)
	}
	return b
}

func (b *Binding) Postprocessor() Postprocessor { return b.pp }
func (b *Binding) Declaration() Declaration     { return b.decl }
func (b *Binding) Names() []string              { return slices.Clone(b.decl.Names) }
func (b *Binding) NOutputVariables() int        { return b.decl.N }
func (b *Binding) Flags() UpdateFlags           { return b.decl.Flags }

func (b *Binding) State() BindingState {
	if b == nil {
		return Unbound
	}
	return BindingState(b.state.Load())
}

// Retire ends the run. Dispatch fails until Rebind succeeds.
func (b *Binding) Retire() {
	b.state.Store(int32(Retired))
}

// Rebind re-queries the postprocessor of a retired binding for a new run and
// requires the declaration to be unchanged.
func (b *Binding) Rebind() error {
	if st := b.State(); st != Retired {
		return fmt.Errorf("rebinding %T: %w: binding is %s, not retired", b.pp, ErrContractViolation, st)
	}
	decl, err := Declare(b.pp)
	if err != nil {
		return fmt.Errorf("rebinding %T: %w", b.pp, err)
	}
	if !decl.Equal(b.decl) {
		if decl.N != b.decl.N {
			return fmt.Errorf("rebinding %T: %w", b.pp,
				violation("declaration unchanged across runs (n_output_variables)", b.decl.N, decl.N))
		}
		return fmt.Errorf("rebinding %T: %w: declaration changed across runs: %v/%s -> %v/%s",
			b.pp, ErrContractViolation, b.decl.Names, b.decl.Flags, decl.Names, decl.Flags)
	}
	b.state.Store(int32(Bound))
	return nil
}

// CheckWidth validates the per-point width a writer allocates
func (b *Binding) CheckWidth(width int) error {
	if width != b.decl.N {
		return violation("writer width == n_output_variables", b.decl.N, width)
	}
	return nil
}

// NewOutput allocates the output matrix for a batch of M points. It returns
// nil when the batch holds no data (M == 0 or N == 0).
func (b *Binding) NewOutput(M int) *mat.Dense {
	if M <= 0 || b.decl.N == 0 {
		return nil
	}
	return mat.NewDense(M, b.decl.N, nil)
}

func (b *Binding) checkOutput(out *mat.Dense, M int) error {
	if b.State() != Bound {
		return ErrRetired
	}
	if out == nil {
		if M == 0 || b.decl.N == 0 {
			return nil
		}
		return violation("output rows", M, 0)
	}
	r, c := out.Dims()
	if r != M {
		return violation("output rows", M, r)
	}
	if c != b.decl.N {
		return violation("output width == n_output_variables", b.decl.N, c)
	}
	return nil
}

// EvaluateScalar dispatches one batch of M points of a scalar source field.
// out must come from NewOutput(M).
func (b *Binding) EvaluateScalar(out *mat.Dense, M int, in *ScalarInputs) error {
	if err := b.checkOutput(out, M); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if in == nil {
		in = &ScalarInputs{}
	}
	if err := in.check(b.decl.Flags, M); err != nil {
		return err
	}
	return b.pp.ComputeDerivedQuantitiesScalar(out, in.masked(b.decl.Flags))
}

// EvaluateVector dispatches one batch of M points of a vector source field
func (b *Binding) EvaluateVector(out *mat.Dense, M int, in *VectorInputs) error {
	if err := b.checkOutput(out, M); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if in == nil {
		in = &VectorInputs{}
	}
	if err := in.check(b.decl.Flags, M); err != nil {
		return err
	}
	return b.pp.ComputeDerivedQuantitiesVector(out, in.masked(b.decl.Flags))
}

// Evaluate dispatches to the entry point matching arity. Exactly one of sc
// and vc is read.
func (b *Binding) Evaluate(arity Arity, out *mat.Dense, M int, sc *ScalarInputs, vc *VectorInputs) error {
	switch arity {
	case ScalarArity:
		return b.EvaluateScalar(out, M, sc)
	case VectorArity:
		return b.EvaluateVector(out, M, vc)
	default:
		return fmt.Errorf("%w: unknown arity %v", ErrContractViolation, arity)
	}
}
