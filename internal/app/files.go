// internal/app/files.go
package app

import (
	"errors"
	"io"

	"github.com/spf13/afero"

	"dnastore/internal/cli"
	"dnastore/internal/poolfile"
)

func (r *runner) readInput(path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(r.env.Stdin)
	} else {
		data, err = afero.ReadFile(r.env.FS, path)
	}
	if err != nil {
		return nil, &cli.IOError{Err: err}
	}
	return data, nil
}

func (r *runner) readPool(path string) ([]string, error) {
	strands, err := poolfile.Load(r.env.FS, path, r.env.Stdin)
	switch {
	case errors.Is(err, poolfile.ErrMalformedPool):
		return nil, &cli.UsageError{Err: err}
	case err != nil:
		return nil, &cli.IOError{Err: err}
	}
	return strands, nil
}

// writeOutput streams write to path, or to stdout for "-". A file is
// written beside path and renamed into place, so a failed write leaves
// path untouched.
func (r *runner) writeOutput(path string, write func(io.Writer) error) error {
	if path == "-" || path == "" {
		return write(r.out)
	}
	tmp := path + ".partial"
	fh, err := r.env.FS.Create(tmp)
	if err != nil {
		return &cli.IOError{Err: err}
	}
	err = write(fh)
	if cerr := fh.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = r.env.FS.Rename(tmp, path)
	}
	if err != nil {
		_ = r.env.FS.Remove(tmp)
		return &cli.IOError{Err: err}
	}
	return nil
}
