// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"slices"
)

// StrandWriterFunc writes a whole pool in one format.
type StrandWriterFunc func(w io.Writer, strands []string) error

// StrandWriters maps a format name to its writer. Formats register
// themselves in init blocks; last registration wins.
var StrandWriters = map[string]StrandWriterFunc{}

func Register(format string, fn StrandWriterFunc) { StrandWriters[format] = fn }

// Formats lists the registered format names, sorted.
func Formats() []string {
	out := make([]string, 0, len(StrandWriters))
	for k := range StrandWriters {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// WriteStrands dispatches to the writer registered for format.
func WriteStrands(format string, w io.Writer, strands []string) error {
	fn, ok := StrandWriters[format]
	if !ok {
		return fmt.Errorf("unknown strand format %q (no writer registered)", format)
	}
	return fn(w, strands)
}
