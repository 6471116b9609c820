package topology

import "errors"

// Common sentinel errors
var (
	ErrInvalidTopology = errors.New("invalid topology")
	ErrVertexNotFound  = errors.New("vertex not found")
	ErrDuplicateEdge   = errors.New("duplicate edge")
	ErrTooDense        = errors.New("requested edge count cannot be placed")
)
