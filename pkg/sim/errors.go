package sim

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrBadTransition = errors.New("invalid lifecycle transition")
	ErrUnknownPolicy = errors.New("unknown coupling policy")
)

// SimError carries the lifecycle operation and run id alongside the cause, so
// a wrapped setup failure still says which run and which phase rejected it.
type SimError struct {
	Op    string
	RunID string
	Err   error
}

func (e *SimError) Error() string {
	if e.RunID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s (run %s): %v", e.Op, e.RunID, e.Err)
}

func (e *SimError) Unwrap() error {
	return e.Err
}

func wrapErr(op, runID string, err error) error {
	if err == nil {
		return nil
	}
	return &SimError{Op: op, RunID: runID, Err: err}
}
