package postprocess

import (
	"errors"
	"fmt"
)

var (
	// ErrContractViolation marks a mismatch between what a postprocessor
	// declares and what it is given or produces. It is never transient.
	ErrContractViolation = errors.New("postprocess contract violation")
	// ErrUnsupportedArity marks a call to an entry point the postprocessor
	// does not implement.
	ErrUnsupportedArity = errors.New("postprocess arity not implemented")
	// ErrRetired marks dispatch through a binding whose run has completed.
	ErrRetired = fmt.Errorf("%w: binding is retired", ErrContractViolation)
)

// ContractError identifies which invariant failed
type ContractError struct {
	Invariant string
	Expected  int
	Actual    int
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%v: %s: expected %d, got %d",
		ErrContractViolation, e.Invariant, e.Expected, e.Actual)
}

func (e *ContractError) Unwrap() error { return ErrContractViolation }

func violation(invariant string, expected, actual int) error {
	return &ContractError{Invariant: invariant, Expected: expected, Actual: actual}
}

// ArityError is returned by an entry point that is not implemented for the
// arity of the source field it was called with.
type ArityError struct {
	Postprocessor string
	Arity         Arity
}

func (e *ArityError) Error() string {
	name := e.Postprocessor
	if name == "" {
		name = "postprocessor"
	}
	return fmt.Sprintf("%s: %v for %s source fields", name, ErrUnsupportedArity, e.Arity)
}

func (e *ArityError) Unwrap() error { return ErrUnsupportedArity }
