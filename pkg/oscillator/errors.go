package oscillator

import "errors"

// Common sentinel errors
var (
	ErrStateMismatch = errors.New("state initialization mismatch")
	ErrInvalidPeriod = errors.New("period must be positive")
	ErrInvalidClock  = errors.New("clock must be non-negative")
	ErrSamplerFailed = errors.New("period sampling failed")
)
