// Package optimizer provides the iterative page-fit loop that shrinks a
// resume until its compiled PDF occupies exactly one page.
package optimizer

import "fmt"

// Error represents a fatal optimization failure: a renderer/toolchain error
// or a degenerate document. Reducer failures are not fatal and never surface
// through this type.
type Error struct {
	Message   string
	Iteration int
	PageCount int
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("optimization error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("optimization error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ReductionError represents a failed AI content reduction: a network or API
// failure, an unparseable response, or a response that violates the resume's
// structural invariants. The optimizer recovers from it by falling back to
// the heuristic reducer.
type ReductionError struct {
	Message string
	Cause   error
}

func (e *ReductionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("reduction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("reduction error: %s", e.Message)
}

func (e *ReductionError) Unwrap() error {
	return e.Cause
}
