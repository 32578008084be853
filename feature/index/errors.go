package index

import "fmt"

// ValidationError reports an attempt to insert a row that violates a
// required-field invariant. It is recoverable at the call site: the
// offending unit is dropped and the run continues.
type ValidationError struct {
	// Table is the table the row was destined for.
	Table string
	// Field is the required field that was missing.
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s.%s is required", e.Table, e.Field)
}
