package inp

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// FileAccessError is reported when an INP file can't be opened or read.
// Decoding yields an empty collection together with this error as a diagnostic.
type FileAccessError struct {
	Filename string
	Cause    error
}

func (e *FileAccessError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("Can't read source: %s", e.Cause)
	}
	return fmt.Sprintf("Can't open '%s': %s", e.Filename, e.Cause)
}

func (e *FileAccessError) Unwrap() error { return e.Cause }

// UnrecognizedTokenError is reported when the leading keyword of a line is not part of the section grammar.
// It is never fatal: the line is skipped and decoding continues with the same current record.
type UnrecognizedTokenError struct {
	Section string
	Token   string
}

func (e *UnrecognizedTokenError) Error() string {
	return fmt.Sprintf("Unrecognized token '%s' in section '%s'", e.Token, e.Section)
}

// FormatError is reported when a line doesn't carry a positionally required field.
type FormatError struct {
	Keyword string
	// Index is the token position which could not be read. -1 if the error is not about a position
	Index int
	// Have is the number of tokens found on the line
	Have   int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("Bad '%s' line: %s", e.Keyword, e.Reason)
	}
	if e.Reason != "" {
		return fmt.Sprintf("Bad '%s' line: token #%d %s", e.Keyword, e.Index, e.Reason)
	}
	return fmt.Sprintf("Bad '%s' line: need token #%d, but line has %d tokens", e.Keyword, e.Index, e.Have)
}

// MissingIdError is returned by a factory called on an empty collection without an explicit id.
type MissingIdError struct {
	Entity string
}

func (e *MissingIdError) Error() string {
	return fmt.Sprintf("Can't derive id for new %s: collection is empty and no explicit id has been provided", e.Entity)
}

// ConsistencyError is returned when a record can't be rendered or finalized because its parts disagree.
type ConsistencyError struct {
	Entity string
	ID     int
	Reason string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("Inconsistent %s %d: %s", e.Entity, e.ID, e.Reason)
}

// Diagnostic ties a decode error to the line it came from.
type Diagnostic struct {
	Line    int
	Section string
	Err     error
}

func (d Diagnostic) String() string {
	if d.Line == 0 {
		return d.Err.Error()
	}
	return fmt.Sprintf("line %d: %s", d.Line, d.Err)
}

// Diagnostics is the list of problems met during a decode pass, in file order.
type Diagnostics []Diagnostic

// Fatal reports whether any diagnostic is a FormatError or a FileAccessError.
// Unrecognized tokens and dropped records are warnings.
func (diags Diagnostics) Fatal() bool {
	for _, d := range diags {
		var formatErr *FormatError
		var accessErr *FileAccessError
		if errors.As(d.Err, &formatErr) || errors.As(d.Err, &accessErr) {
			return true
		}
	}
	return false
}

// Err folds diagnostics into one error. Returns nil for an empty list.
func (diags Diagnostics) Err() error {
	if len(diags) == 0 {
		return nil
	}
	msgs := make([]string, len(diags))
	for i, d := range diags {
		msgs[i] = d.String()
	}
	return errors.New(strings.Join(msgs, "; "))
}
