// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"dnastore-core/codec"
	"dnastore/internal/cli"
	"dnastore/internal/cmdutil"
	"dnastore/internal/writers"
	"dnastore/pkg/api"
)

// Env is everything a run touches outside its arguments.
type Env struct {
	FS    afero.Fs
	Stdin io.Reader
}

// runner carries per-invocation state between the command tree and the
// handlers.
type runner struct {
	env     Env
	out     *bufio.Writer
	errw    io.Writer
	g       cli.Globals
	log     *slog.Logger
	started bool

	// errFormat selects an ErrorV1 document on stdout for failed runs.
	errFormat string
}

// RunEnv executes argv against env and returns the process exit code:
// 0 ok, 1 codec failure, 2 usage or configuration, 3 I/O, 130 interrupted.
func RunEnv(ctx context.Context, env Env, argv []string, stdout, stderr io.Writer) int {
	r := &runner{env: env, out: bufio.NewWriter(stdout), errw: stderr}
	root := cli.NewRootCommand(env.FS, &r.g, r.setup, cli.Handlers{
		Encode:  r.encode,
		Decode:  r.decode,
		Check:   r.check,
		Stats:   r.stats,
		Primers: r.primers,
	})
	root.SetArgs(argv)
	root.SetOut(r.out)
	root.SetErr(stderr)
	root.SetIn(env.Stdin)

	err := root.ExecuteContext(ctx)
	code := r.exitCode(ctx, err)
	if err != nil && code != 130 {
		r.report(err)
	}
	if e := r.out.Flush(); writers.IsBrokenPipe(e) {
		return code
	} else if e != nil {
		_, _ = fmt.Fprintln(stderr, e)
		return 3
	}
	return code
}

// RunContext runs against the real filesystem and stdin.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	return RunEnv(ctx, Env{FS: afero.NewOsFs(), Stdin: os.Stdin}, argv, stdout, stderr)
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func (r *runner) setup() error {
	l, err := cmdutil.NewLogger(r.errw, r.g.LogLevel, r.g.LogFormat, r.g.Quiet)
	if err != nil {
		return &cli.UsageError{Err: err}
	}
	r.log = l
	r.started = true
	return nil
}

func (r *runner) exitCode(ctx context.Context, err error) int {
	var (
		usage *cli.UsageError
		ioErr *cli.IOError
		pErr  *fs.PathError
	)
	switch {
	case err == nil:
		return 0
	case ctx.Err() != nil || errors.Is(err, context.Canceled):
		return 130
	case errors.As(err, &usage), !r.started, errors.Is(err, codec.ErrInvalidConfiguration):
		return 2
	case errors.As(err, &ioErr), errors.As(err, &pErr):
		return 3
	default:
		return 1
	}
}

func (r *runner) report(err error) {
	_, _ = fmt.Fprintf(r.errw, "error: %v\n", err)
	var usage *cli.UsageError
	if errors.As(err, &usage) || !r.started {
		_, _ = fmt.Fprintln(r.errw, "Run 'dnastore --help' for usage.")
	}
	if r.errFormat == "json" || r.errFormat == "jsonl" {
		e := api.ErrorV1{Error: err.Error(), Kind: errorKind(err)}
		var ms *codec.MissingStrandsError
		if errors.As(err, &ms) {
			e.Missing = ms.Indices
		}
		_ = writers.WriteError(r.out, e)
	}
}

// errorKind names the error class in machine-readable output.
func errorKind(err error) string {
	var violations *cli.ViolationError
	switch {
	case errors.Is(err, codec.ErrInvalidConfiguration):
		return "invalid_configuration"
	case errors.Is(err, codec.ErrMissingStrands):
		return "missing_strands"
	case errors.Is(err, codec.ErrUncorrectableBlock):
		return "uncorrectable_block"
	case errors.Is(err, codec.ErrConstraintUnsatisfiable):
		return "constraint_unsatisfiable"
	case errors.Is(err, codec.ErrMalformedContainer):
		return "malformed_container"
	case errors.Is(err, codec.ErrMalformedSymbolStream):
		return "malformed_symbol_stream"
	case errors.As(err, &violations):
		return "constraint_violation"
	}
	var ioErr *cli.IOError
	var pErr *fs.PathError
	if errors.As(err, &ioErr) || errors.As(err, &pErr) {
		return "io"
	}
	return "internal"
}

// await runs fn and returns early with ctx's error when ctx is done first.
// The codec has no cancellation points, so an abandoned fn finishes in the
// background; the process exits right after.
func await(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
