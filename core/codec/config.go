// core/codec/config.go
package codec

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"dnastore-core/constraint"
	"dnastore-core/container"
	"dnastore-core/ecc"
	"dnastore-core/primer"
	"dnastore-core/strand"
)

// Config holds every knob of an encoding job. Decoding needs the same
// configuration that produced the strands; it is never recovered from them.
type Config struct {
	SequenceLength   int     `mapstructure:"sequence_length" yaml:"sequence_length" validate:"min=1"`
	MaxHomopolymer   int     `mapstructure:"max_homopolymer" yaml:"max_homopolymer" validate:"min=1"`
	MinGC            float64 `mapstructure:"min_gc" yaml:"min_gc" validate:"min=0,max=1"`
	MaxGC            float64 `mapstructure:"max_gc" yaml:"max_gc" validate:"min=0,max=1"`
	RSNum            int     `mapstructure:"rs_num" yaml:"rs_num" validate:"min=0,max=254"`
	AddPrimer        bool    `mapstructure:"add_primer" yaml:"add_primer"`
	PrimerLength     int     `mapstructure:"primer_length" yaml:"primer_length" validate:"min=0"`
	ForwardPrimer    string  `mapstructure:"forward_primer" yaml:"forward_primer,omitempty" validate:"omitempty,dna"`
	ReversePrimer    string  `mapstructure:"reverse_primer" yaml:"reverse_primer,omitempty" validate:"omitempty,dna"`
	PrimerMismatches int     `mapstructure:"primer_mismatches" yaml:"primer_mismatches" validate:"min=-1"`
	AddRedundancy    bool    `mapstructure:"add_redundancy" yaml:"add_redundancy"`
	BlockSize        int     `mapstructure:"block_size" yaml:"block_size" validate:"min=1,max=255"`
	StripeWidth      int     `mapstructure:"stripe_width" yaml:"stripe_width" validate:"min=1,max=255"`
	StripeParity     int     `mapstructure:"stripe_parity" yaml:"stripe_parity" validate:"min=1,max=255"`
	Compression      string  `mapstructure:"compression" yaml:"compression" validate:"oneof=none lz4 zstd auto"`
	Workers          int     `mapstructure:"workers" yaml:"workers" validate:"min=0"`
}

// AutoPrimerMismatches sets the decode tolerance to a quarter of the
// primer length.
const AutoPrimerMismatches = -1

// DefaultConfig returns the defaults of the original web form plus the
// engine's own tuning knobs.
func DefaultConfig() Config {
	return Config{
		SequenceLength:   200,
		MaxHomopolymer:   6,
		MinGC:            0.4,
		MaxGC:            0.6,
		RSNum:            0,
		PrimerLength:     20,
		PrimerMismatches: AutoPrimerMismatches,
		BlockSize:        32,
		StripeWidth:      8,
		StripeParity:     1,
		Compression:      "none",
	}
}

// Rules returns the synthesis constraints of c.
func (c Config) Rules() constraint.Rules {
	return constraint.Rules{MaxHomopolymer: c.MaxHomopolymer, MinGC: c.MinGC, MaxGC: c.MaxGC}
}

// Layout returns the strand layout of c.
func (c Config) Layout() (strand.Layout, error) {
	return strand.NewLayout(c.SequenceLength, c.primerLength(), c.Rules())
}

// Geometry returns the frame numbering of c.
func (c Config) Geometry() strand.Geometry {
	g := strand.Geometry{Data: c.BlockSize, Parity: c.RSNum, Width: c.StripeWidth}
	if c.AddRedundancy {
		g.StripeParity = c.StripeParity
	}
	return g
}

// MaxPrimerMismatches is the number of mismatched primer bases, over both
// primers, a read may carry and still be decoded.
func (c Config) MaxPrimerMismatches() int {
	if c.PrimerMismatches == AutoPrimerMismatches {
		return c.PrimerLength / 4
	}
	return c.PrimerMismatches
}

func (c Config) primerLength() int {
	if c.AddPrimer {
		return c.PrimerLength
	}
	return 0
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("dna", func(fl validator.FieldLevel) bool {
		return primer.IsConcrete([]byte(strings.ToUpper(fl.Field().String())))
	})
	return v
}

// Validate checks c before any work is done. Every problem found is
// reported as a *ConfigError; the result matches ErrInvalidConfiguration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &ConfigError{Field: "config", Reason: err.Error()}
		}
		errs := make([]error, 0, len(verrs))
		for _, fe := range verrs {
			errs = append(errs, &ConfigError{Field: fe.Field(), Reason: reason(fe)})
		}
		return errors.Join(errs...)
	}
	return c.validateCustom()
}

func (c Config) validateCustom() error {
	if c.MinGC > c.MaxGC {
		return &ConfigError{Field: "min_gc", Reason: fmt.Sprintf("%.3f is above max_gc %.3f", c.MinGC, c.MaxGC)}
	}
	if c.BlockSize+c.RSNum > 255 {
		return &ConfigError{Field: "rs_num", Reason: fmt.Sprintf("block_size + rs_num = %d exceeds 255", c.BlockSize+c.RSNum)}
	}
	if c.AddRedundancy && c.StripeWidth+c.StripeParity > ecc.MaxShards {
		return &ConfigError{Field: "stripe_parity", Reason: fmt.Sprintf("stripe_width + stripe_parity = %d exceeds %d", c.StripeWidth+c.StripeParity, ecc.MaxShards)}
	}
	if c.AddPrimer {
		if c.PrimerLength < 1 {
			return &ConfigError{Field: "primer_length", Reason: "must be >= 1 when add_primer is set"}
		}
		if c.SequenceLength <= 2*c.PrimerLength {
			return &ConfigError{Field: "sequence_length", Reason: fmt.Sprintf("%d leaves no room between two %d-base primers", c.SequenceLength, c.PrimerLength)}
		}
		if (c.ForwardPrimer == "") != (c.ReversePrimer == "") {
			return &ConfigError{Field: "forward_primer", Reason: "forward_primer and reverse_primer must be given together"}
		}
		if c.ForwardPrimer != "" {
			p := primer.Pair{Forward: strings.ToUpper(c.ForwardPrimer), Reverse: strings.ToUpper(c.ReversePrimer)}
			if err := p.Validate(c.PrimerLength); err != nil {
				return &ConfigError{Field: "forward_primer", Reason: err.Error()}
			}
		}
	}
	if core := c.SequenceLength - 2*c.primerLength(); core > 0 && !c.Rules().Feasible(core) {
		lo, hi := c.Rules().GCBounds(core)
		return &ConfigError{Field: "min_gc", Reason: fmt.Sprintf("GC band %.3f-%.3f admits no count over %d symbols (need %d..%d)", c.MinGC, c.MaxGC, core, lo, hi)}
	}
	if _, err := c.Layout(); err != nil {
		return &ConfigError{Field: "sequence_length", Reason: err.Error()}
	}
	if _, err := container.ParseCompression(c.Compression); err != nil {
		return &ConfigError{Field: "compression", Reason: err.Error()}
	}
	return nil
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("must be <= %s, got %v", fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of %s, got %q", fe.Param(), fe.Value())
	case "dna":
		return fmt.Sprintf("only A C G T allowed, got %q", fe.Value())
	}
	return fmt.Sprintf("failed %q", fe.Tag())
}
