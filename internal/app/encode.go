// internal/app/encode.go
package app

import (
	"context"
	"io"

	"gopkg.in/yaml.v3"

	"dnastore-core/codec"
	"dnastore/internal/cli"
	"dnastore/internal/writers"
	"dnastore/pkg/api"
)

const manifestVersion = 1

func (r *runner) encode(ctx context.Context, o cli.EncodeOptions) error {
	r.errFormat = o.Format
	c, err := codec.New(o.Config, codec.WithLogger(r.log))
	if err != nil {
		return err
	}
	payload, err := r.readInput(o.Input)
	if err != nil {
		return err
	}

	var res *codec.EncodeResult
	err = await(ctx, func() error {
		var e error
		res, e = c.Encode(payload)
		return e
	})
	if err != nil {
		return err
	}

	if err := r.writeOutput(o.Output, func(w io.Writer) error {
		return writers.WriteStrands(o.Format, w, res.Strands)
	}); err != nil {
		return err
	}
	if o.Manifest != "" {
		if err := r.writeManifest(o, c, res.Report); err != nil {
			return err
		}
	}
	if o.Report != "" {
		if err := r.writeOutput(o.Report, func(w io.Writer) error {
			return writers.WriteReport(w, reportV1("encode", res.Report))
		}); err != nil {
			return err
		}
	}
	r.log.Info("encode finished", "input", o.Input, "strands", len(res.Strands), "format", o.Format)
	return nil
}

func (r *runner) writeManifest(o cli.EncodeOptions, c *codec.Codec, rep codec.Report) error {
	m := api.ManifestV1{
		ManifestVersion: manifestVersion,
		Source:          o.Input,
		Config:          c.Config(),
		Strands:         rep.Strands,
		PayloadBytes:    rep.PayloadBytes,
		ContainerBytes:  rep.ContainerBytes,
		Stored:          rep.Compression,
	}
	if p, ok := c.Primers(); ok {
		m.PrimerForward, m.PrimerReverse = p.Forward, p.Reverse
	}
	return r.writeOutput(o.Manifest, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	})
}

func reportV1(op string, rep codec.Report) api.ReportV1 {
	return api.ReportV1{
		Operation:         op,
		PayloadBytes:      rep.PayloadBytes,
		ContainerBytes:    rep.ContainerBytes,
		Compression:       rep.Compression,
		SequenceLength:    rep.SequenceLength,
		FramePayload:      rep.FramePayload,
		Blocks:            rep.Blocks,
		DataStrands:       rep.DataStrands,
		ParityStrands:     rep.ParityStrands,
		RedundancyStrands: rep.RedundancyStrands,
		Strands:           rep.Strands,
		MaxSeed:           rep.MaxSeed,
		Received:          rep.Received,
		Accepted:          rep.Accepted,
		Rejected:          rep.Rejected,
		Duplicates:        rep.Duplicates,
		Flipped:           rep.Flipped,
		HeaderFixes:       rep.HeaderFixes,
		RepairedStrands:   rep.RepairedStrands,
		CorrectedSymbols:  rep.CorrectedSymbols,
	}
}
