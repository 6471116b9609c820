package coupling

import "errors"

// Common sentinel errors
var (
	ErrUnknownWeightMode  = errors.New("unknown weight mode")
	ErrZeroDegreeVertex   = errors.New("zero-degree vertex under degree weighting")
	ErrInvalidProbability = errors.New("probability must be in (0,1]")
)
