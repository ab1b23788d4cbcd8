package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a malformed import row or an invalid stop.
// Line is the 1-based sheet line, 0 when not tied to a sheet.
type ValidationError struct {
	Line  int    `json:"line,omitempty"`
	Field string `json:"field,omitempty"`
	Msg   string `json:"message"`
}

func (e *ValidationError) Error() string {
	switch {
	case e.Line > 0 && e.Field != "":
		return fmt.Sprintf("row %d: %s: %s", e.Line, e.Field, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("row %d: %s", e.Line, e.Msg)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return e.Msg
}

// LookupError wraps a failure of the address directory (database, search, cache).
type LookupError struct {
	Op  string
	Err error
}

func (e *LookupError) Error() string { return "lookup " + e.Op + ": " + e.Err.Error() }
func (e *LookupError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsLookup reports whether err carries a LookupError.
func IsLookup(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}
