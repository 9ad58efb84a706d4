// internal/app/decode.go
package app

import (
	"context"
	"io"

	"dnastore-core/codec"
	"dnastore/internal/cli"
	"dnastore/internal/cmdutil"
	"dnastore/internal/writers"
)

func (r *runner) decode(ctx context.Context, o cli.DecodeOptions) error {
	r.errFormat = o.Format
	c, err := codec.New(o.Config, codec.WithLogger(r.log))
	if err != nil {
		return err
	}
	strands, err := r.readPool(o.Input)
	if err != nil {
		return err
	}
	r.log.Debug("pool loaded", "input", o.Input, "reads", len(strands))

	var res *codec.DecodeResult
	err = await(ctx, func() error {
		var e error
		res, e = c.Decode(strands)
		return e
	})
	if err != nil {
		return err
	}

	if err := r.writeOutput(o.Output, func(w io.Writer) error {
		_, err := w.Write(res.Payload)
		return err
	}); err != nil {
		return err
	}
	if o.Report != "" {
		if err := r.writeOutput(o.Report, func(w io.Writer) error {
			return writers.WriteReport(w, reportV1("decode", res.Report))
		}); err != nil {
			return err
		}
	}
	rep := res.Report
	if rejected := rep.Received - rep.Accepted; rejected > 0 {
		cmdutil.Warnf(r.log, "%d of %d reads rejected: %v", rejected, rep.Received, rep.Rejected)
	}
	r.log.Info("decode finished",
		"bytes", rep.PayloadBytes, "accepted", rep.Accepted, "received", rep.Received,
		"repaired", rep.RepairedStrands, "corrected", rep.CorrectedSymbols)
	return nil
}
