// internal/cli/options.go
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"dnastore-core/codec"
	"dnastore-core/primer"
)

// Globals are the flags shared by every command.
type Globals struct {
	ConfigFile string
	LogLevel   string
	LogFormat  string
	Quiet      bool
}

// EncodeOptions drive `dnastore encode`.
type EncodeOptions struct {
	Config   codec.Config
	Input    string
	Output   string
	Format   string
	Manifest string
	Report   string
}

// DecodeOptions drive `dnastore decode`.
type DecodeOptions struct {
	Config codec.Config
	Input  string
	Output string
	Format string // error document format on failure
	Report string
}

// CheckOptions drive `dnastore check`.
type CheckOptions struct {
	Config codec.Config
	Input  string
	Format string
}

// StatsOptions drive `dnastore stats`.
type StatsOptions struct {
	Config codec.Config
	Input  string
	Format string
	Chart  string
}

// PrimersOptions drive `dnastore primers`.
type PrimersOptions struct {
	Config codec.Config
}

// binding ties a viper key (the YAML name in config files and manifests)
// to its flag. Environment variables are DNASTORE_<KEY>.
type binding struct {
	key, flag string
}

var bindings = []binding{
	{"sequence_length", "sequence-length"},
	{"max_homopolymer", "max-homopolymer"},
	{"rs_num", "rs-num"},
	{"add_primer", "add-primer"},
	{"primer_length", "primer-length"},
	{"forward_primer", "forward-primer"},
	{"reverse_primer", "reverse-primer"},
	{"primer_mismatches", "primer-mismatches"},
	{"add_redundancy", "add-redundancy"},
	{"block_size", "block-size"},
	{"stripe_width", "stripe-width"},
	{"stripe_parity", "stripe-parity"},
	{"compression", "compression"},
	{"workers", "workers"},
}

// addCodecFlags registers the configuration flags. GC limits are given in
// percent, as in the original form.
func addCodecFlags(f *pflag.FlagSet) {
	d := codec.DefaultConfig()
	f.IntP("sequence-length", "l", d.SequenceLength, "strand length in nucleotides, primers included")
	f.Int("max-homopolymer", d.MaxHomopolymer, "longest allowed run of one base")
	f.Float64("min-gc", d.MinGC*100, "minimum GC content in percent")
	f.Float64("max-gc", d.MaxGC*100, "maximum GC content in percent")
	f.Int("rs-num", d.RSNum, "Reed-Solomon parity strands per block")
	f.Bool("add-primer", d.AddPrimer, "flank every strand with a primer pair")
	f.Int("primer-length", d.PrimerLength, "primer length in nucleotides")
	f.String("forward-primer", "", "explicit forward primer (default: generated)")
	f.String("reverse-primer", "", "explicit reverse primer (default: generated)")
	f.String("primers", "", "primer TSV (id fwd rev); implies --add-primer")
	f.String("primer-id", "", "row of --primers to use (default: first)")
	f.Int("primer-mismatches", d.PrimerMismatches, "primer mismatches tolerated when decoding (-1 = primer length / 4)")
	f.Bool("add-redundancy", d.AddRedundancy, "add strand-level parity strands")
	f.Int("block-size", d.BlockSize, "data strands per error-correction block")
	f.Int("stripe-width", d.StripeWidth, "strands per redundancy stripe")
	f.Int("stripe-parity", d.StripeParity, "parity strands per redundancy stripe")
	f.String("compression", d.Compression, "payload compression: none, lz4, zstd or auto")
	f.Int("workers", d.Workers, "parallel workers (0 = all CPUs)")
}

// LoadConfig merges, lowest precedence first: defaults, the --config
// file, DNASTORE_* environment variables and explicitly set flags. The
// result is not validated; codec.New does that.
func LoadConfig(fs afero.Fs, g *Globals, f *pflag.FlagSet) (codec.Config, error) {
	v := viper.New()
	v.SetFs(fs)
	d := codec.DefaultConfig()
	v.SetDefault("min_gc", d.MinGC)
	v.SetDefault("max_gc", d.MaxGC)
	defaults := map[string]any{
		"sequence_length": d.SequenceLength, "max_homopolymer": d.MaxHomopolymer,
		"rs_num": d.RSNum, "add_primer": d.AddPrimer, "primer_length": d.PrimerLength,
		"forward_primer": "", "reverse_primer": "", "primer_mismatches": d.PrimerMismatches,
		"add_redundancy": d.AddRedundancy, "block_size": d.BlockSize,
		"stripe_width": d.StripeWidth, "stripe_parity": d.StripeParity,
		"compression": d.Compression, "workers": d.Workers,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix("DNASTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if g != nil && g.ConfigFile != "" {
		v.SetConfigFile(g.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return codec.Config{}, &IOError{Err: fmt.Errorf("read config %s: %w", g.ConfigFile, err)}
		}
	}

	for _, b := range bindings {
		if fl := f.Lookup(b.flag); fl != nil {
			if err := v.BindPFlag(b.key, fl); err != nil {
				return codec.Config{}, err
			}
		}
	}

	var cfg codec.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return codec.Config{}, &UsageError{Err: fmt.Errorf("configuration: %w", err)}
	}
	for key, dst := range map[string]*float64{"min-gc": &cfg.MinGC, "max-gc": &cfg.MaxGC} {
		if f.Changed(key) {
			pct, err := f.GetFloat64(key)
			if err != nil {
				return codec.Config{}, err
			}
			*dst = pct / 100
		}
	}

	if path, _ := f.GetString("primers"); path != "" {
		id, _ := f.GetString("primer-id")
		if err := applyPrimerFile(fs, path, id, &cfg); err != nil {
			return codec.Config{}, err
		}
	}
	return cfg, nil
}

func applyPrimerFile(fs afero.Fs, path, id string, cfg *codec.Config) error {
	fh, err := fs.Open(path)
	if err != nil {
		return &IOError{Err: err}
	}
	defer fh.Close()
	pairs, err := primer.ParseTSV(fh, path)
	if err != nil {
		return &UsageError{Err: err}
	}
	p, ok := primer.Find(pairs, id)
	if !ok {
		return &UsageError{Err: fmt.Errorf("%s: no primer pair %q", path, id)}
	}
	cfg.AddPrimer = true
	cfg.ForwardPrimer, cfg.ReversePrimer = p.Forward, p.Reverse
	cfg.PrimerLength = len(p.Forward)
	return nil
}
