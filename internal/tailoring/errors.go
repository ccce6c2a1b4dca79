package tailoring

import "fmt"

// Error represents a failure while tailoring or reducing resume content.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tailoring error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("tailoring error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
