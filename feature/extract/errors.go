package extract

import "fmt"

// ParseError wraps a malformed-XML failure for one input file. It is
// recoverable: the scanner logs it, counts the file as skipped, and the
// ingestion run continues. Errors never bubble past the file boundary.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
