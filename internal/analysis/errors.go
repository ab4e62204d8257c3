package analysis

import "fmt"

// AnalysisError is returned when the model's match analysis cannot be obtained or trusted.
type AnalysisError struct {
	Message string
	// Raw holds the model output that failed validation, if any.
	Raw   string
	Cause error
}

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("analysis failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("analysis failed: %s", e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}
