// internal/app/primers.go
package app

import (
	"context"
	"fmt"
	"io"

	"dnastore-core/codec"
	"dnastore/internal/cli"
)

// primers prints the pair as a TSV row that --primers can read back.
func (r *runner) primers(_ context.Context, o cli.PrimersOptions) error {
	c, err := codec.New(o.Config, codec.WithLogger(r.log))
	if err != nil {
		return err
	}
	p, _ := c.Primers()
	return r.writeOutput("-", func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Forward, p.Reverse)
		return err
	})
}
