package tailoring

import "fmt"

// TailoringError is returned when the rewritten CV cannot be produced.
type TailoringError struct {
	Message string
	Cause   error
}

func (e *TailoringError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("CV tailoring failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("CV tailoring failed: %s", e.Message)
}

func (e *TailoringError) Unwrap() error {
	return e.Cause
}
