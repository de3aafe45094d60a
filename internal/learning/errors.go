package learning

import "fmt"

// ValidationError reports a record field that is out of range and cannot
// be repaired by clamping.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid learning record: %s: %s", e.Field, e.Message)
}
