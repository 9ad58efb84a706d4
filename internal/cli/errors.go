// internal/cli/errors.go
package cli

import "fmt"

// UsageError marks bad arguments or flags (exit 2).
type UsageError struct{ Err error }

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// IOError marks a failure reading or writing files (exit 3).
type IOError struct{ Err error }

func (e *IOError) Error() string { return e.Err.Error() }
func (e *IOError) Unwrap() error { return e.Err }

// ViolationError reports that check found non-compliant strands (exit 1).
type ViolationError struct{ Count int }

func (e *ViolationError) Error() string {
	return fmt.Sprintf("%d strand(s) violate the synthesis rules", e.Count)
}
