package visualization

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyViewport   = errors.New("viewport has zero area")
	ErrDuplicateNode   = errors.New("duplicate node id")
	ErrUnknownEndpoint = errors.New("edge endpoint not in graph")
	ErrInvalidRadius   = errors.New("node radius must be positive")
	ErrUnknownNode     = errors.New("unknown node")
	ErrNotDragging     = errors.New("node is not being dragged")
)

// GraphError provides structured error information for graph and simulator operations.
type GraphError struct {
	Op    string // Operation that failed (e.g., "NewGraph", "OnDragMove")
	ID    string // Node ID (if applicable)
	Cause error
}

func (e *GraphError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}
