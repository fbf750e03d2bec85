package loader

import (
	"fmt"

	"github.com/albapepper/scoracle-sheets/internal/match"
)

// FileError records a team document that could not be read or decoded.
// The document is skipped; loading continues.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Result tracks what a load produced and which documents failed.
type Result struct {
	Documents int
	Loaded    int
	Records   []match.Raw
	Failures  []*FileError
}

// Add appends the records of one successfully decoded document.
func (r *Result) Add(records []match.Raw) {
	r.Documents++
	r.Loaded++
	r.Records = append(r.Records, records...)
}

// Fail records a document that was skipped.
func (r *Result) Fail(path string, err error) {
	r.Documents++
	r.Failures = append(r.Failures, &FileError{Path: path, Err: err})
}

// Summary returns a human-readable summary of the load.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"documents=%d loaded=%d failed=%d records=%d",
		r.Documents, r.Loaded, len(r.Failures), len(r.Records),
	)
}
