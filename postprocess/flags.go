package postprocess

import "strings"

// UpdateFlags selects which raw solution data a postprocessor needs at each
// evaluation point. Producers compute only what is selected.
type UpdateFlags int

const (
	// Nothing requested
	UpdateDefault UpdateFlags = 0
	// Solution values
	UpdateValues UpdateFlags = 1 << iota
	// First derivatives
	UpdateGradients
	// Second derivatives
	UpdateHessians
	// Outward unit normals, only available on faces
	UpdateNormals
)

var flagNames = []struct {
	flag UpdateFlags
	name string
}{
	{UpdateValues, "values"},
	{UpdateGradients, "gradients"},
	{UpdateHessians, "hessians"},
	{UpdateNormals, "normals"},
}

// Has reports whether every bit of f is set
func (u UpdateFlags) Has(f UpdateFlags) bool {
	return u&f == f
}

func (u UpdateFlags) String() string {
	if u == UpdateDefault {
		return "none"
	}
	var parts []string
	for _, fn := range flagNames {
		if u.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}
