package tree

import (
	"errors"
	"fmt"
)

var (
	ErrCycleDetected = errors.New("cycle detected")
	ErrDepthExceeded = errors.New("maximum depth exceeded")
	ErrNotNumeric    = errors.New("identifier is not numeric")
)

// TraversalError reports where a walk over the hierarchy stopped.
type TraversalError struct {
	Op    string // "tree", "plane tree" or "path"
	ID    ID
	Depth int
	Err   error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("%s: node %q at depth %d: %v", e.Op, e.ID, e.Depth, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

// IsCycleOrDepth reports whether err is a cycle or depth-bound failure.
func IsCycleOrDepth(err error) bool {
	return errors.Is(err, ErrCycleDetected) || errors.Is(err, ErrDepthExceeded)
}
