package coupling

import (
	"fmt"
)

// WeightMode selects how a raw directed strength is scaled by vertex degrees
// before entering the adjustment law. Modes are mutually exclusive.
type WeightMode int

const (
	// Unweighted applies the raw strength as-is.
	Unweighted WeightMode = iota
	// DegreeWeighted divides by the degree of the adjusted vertex.
	DegreeWeighted
	// DoubleDegreeWeighted additionally scales by the partner's degree
	// relative to the network average.
	DoubleDegreeWeighted
)

// String returns the configuration name of the mode.
func (m WeightMode) String() string {
	switch m {
	case Unweighted:
		return "unweighted"
	case DegreeWeighted:
		return "degree"
	case DoubleDegreeWeighted:
		return "double-degree"
	default:
		return "unknown"
	}
}

// ParseWeightMode converts a configuration string to a WeightMode.
func ParseWeightMode(s string) (WeightMode, error) {
	switch s {
	case "unweighted", "":
		return Unweighted, nil
	case "degree":
		return DegreeWeighted, nil
	case "double-degree":
		return DoubleDegreeWeighted, nil
	default:
		return Unweighted, fmt.Errorf("%w: %q", ErrUnknownWeightMode, s)
	}
}
