package engine

import (
	"fmt"
	"io"
)

// fmtPtr gives a stable, comparable string for a pointer's identity, used
// only to produce a deterministic (not meaningful) total order among
// reference-typed terms that have no other natural ordering.
func fmtPtr(p interface{}) string {
	return fmt.Sprintf("%p", p)
}

// writeFprintf is fmt.Fprintf with the format-and-discard-n result shape
// every WriteTerm method wants: an error alone.
func writeFprintf(w io.Writer, format string, args ...interface{}) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
