// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"dnastore/internal/version"
	"dnastore/internal/writers"
)

// Handlers run the commands once flags and configuration are resolved.
type Handlers struct {
	Encode  func(context.Context, EncodeOptions) error
	Decode  func(context.Context, DecodeOptions) error
	Check   func(context.Context, CheckOptions) error
	Stats   func(context.Context, StatsOptions) error
	Primers func(context.Context, PrimersOptions) error
}

// NewRootCommand builds the dnastore command tree. setup runs after flag
// parsing and before any handler, with g filled in.
func NewRootCommand(fs afero.Fs, g *Globals, setup func() error, h Handlers) *cobra.Command {
	root := &cobra.Command{
		Use:           "dnastore",
		Short:         "Encode files into synthesizable DNA strands and back",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return setup()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return &UsageError{Err: err} })

	pf := root.PersistentFlags()
	pf.StringVarP(&g.ConfigFile, "config", "c", "", "YAML configuration or manifest file")
	pf.StringVar(&g.LogLevel, "log-level", "info", "log level: debug, info, warn or error")
	pf.StringVar(&g.LogFormat, "log-format", "text", "log format: text or json")
	pf.BoolVarP(&g.Quiet, "quiet", "q", false, "only log errors")
	addCodecFlags(pf)

	root.AddCommand(
		newEncodeCommand(fs, g, h.Encode),
		newDecodeCommand(fs, g, h.Decode),
		newCheckCommand(fs, g, h.Check),
		newStatsCommand(fs, g, h.Stats),
		newPrimersCommand(fs, g, h.Primers),
	)
	return root
}

func inputArg(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}

func optionalInput(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		return &UsageError{Err: err}
	}
	return nil
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return &UsageError{Err: fmt.Errorf("invalid --format %q (want %s)", format, strings.Join(allowed, ", "))}
}

func newEncodeCommand(fs afero.Fs, g *Globals, run func(context.Context, EncodeOptions) error) *cobra.Command {
	var o EncodeOptions
	cmd := &cobra.Command{
		Use:   "encode [file|-]",
		Short: "Encode a file into DNA strands",
		Args:  optionalInput,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(o.Format, writers.Formats()...); err != nil {
				return err
			}
			cfg, err := LoadConfig(fs, g, cmd.Flags())
			if err != nil {
				return err
			}
			o.Config, o.Input = cfg, inputArg(args)
			return run(cmd.Context(), o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.Output, "output", "o", "-", "strand output file or - for stdout")
	f.StringVarP(&o.Format, "format", "f", "json", "output format: "+strings.Join(writers.Formats(), ", "))
	f.StringVarP(&o.Manifest, "manifest", "m", "", "write a YAML manifest of the configuration")
	f.StringVar(&o.Report, "report", "", "write a JSON run report")
	return cmd
}

func newDecodeCommand(fs afero.Fs, g *Globals, run func(context.Context, DecodeOptions) error) *cobra.Command {
	var o DecodeOptions
	cmd := &cobra.Command{
		Use:   "decode [strands|-]",
		Short: "Recover a file from a strand pool (text, JSON, JSONL or FASTA, optionally gzipped)",
		Args:  optionalInput,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(o.Format, "text", "json"); err != nil {
				return err
			}
			cfg, err := LoadConfig(fs, g, cmd.Flags())
			if err != nil {
				return err
			}
			o.Config, o.Input = cfg, inputArg(args)
			return run(cmd.Context(), o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.Output, "output", "o", "-", "payload output file or - for stdout")
	f.StringVarP(&o.Format, "format", "f", "text", "error format on failure: text or json")
	f.StringVar(&o.Report, "report", "", "write a JSON run report")
	return cmd
}

func newCheckCommand(fs afero.Fs, g *Globals, run func(context.Context, CheckOptions) error) *cobra.Command {
	var o CheckOptions
	cmd := &cobra.Command{
		Use:   "check [strands|-]",
		Short: "Report strands that violate the length, homopolymer or GC rules",
		Args:  optionalInput,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(o.Format, "text", "json"); err != nil {
				return err
			}
			cfg, err := LoadConfig(fs, g, cmd.Flags())
			if err != nil {
				return err
			}
			o.Config, o.Input = cfg, inputArg(args)
			return run(cmd.Context(), o)
		},
	}
	cmd.Flags().StringVarP(&o.Format, "format", "f", "text", "output format: text or json")
	return cmd
}

func newStatsCommand(fs afero.Fs, g *Globals, run func(context.Context, StatsOptions) error) *cobra.Command {
	var o StatsOptions
	cmd := &cobra.Command{
		Use:   "stats [strands|-]",
		Short: "Summarize length, GC content and homopolymer runs of a strand pool",
		Args:  optionalInput,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(o.Format, "text", "json"); err != nil {
				return err
			}
			cfg, err := LoadConfig(fs, g, cmd.Flags())
			if err != nil {
				return err
			}
			o.Config, o.Input = cfg, inputArg(args)
			return run(cmd.Context(), o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.Format, "format", "f", "text", "output format: text or json")
	f.StringVar(&o.Chart, "chart", "", "render a GC histogram to this PNG file")
	return cmd
}

func newPrimersCommand(fs afero.Fs, g *Globals, run func(context.Context, PrimersOptions) error) *cobra.Command {
	return &cobra.Command{
		Use:   "primers",
		Short: "Print the primer pair the configuration resolves to, as TSV",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return &UsageError{Err: err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(fs, g, cmd.Flags())
			if err != nil {
				return err
			}
			cfg.AddPrimer = true
			return run(cmd.Context(), PrimersOptions{Config: cfg})
		},
	}
}
