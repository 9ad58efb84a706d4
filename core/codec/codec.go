// Package codec encodes payloads into constrained DNA strands and decodes
// (unordered, lossy, noisy) strand pools back into payloads.
package codec

import (
	"io"
	"log/slog"
	"runtime"

	"dnastore-core/container"
	"dnastore-core/ecc"
	"dnastore-core/primer"
	"dnastore-core/strand"
)

// Codec is a validated configuration ready to encode and decode. It holds
// no per-call state and is safe for concurrent use.
type Codec struct {
	cfg         Config
	log         *slog.Logger
	layout      strand.Layout
	geo         strand.Geometry
	asm         *strand.Assembler
	code        *ecc.Code
	striper     *strand.Striper
	pair        *primer.Pair
	compression container.Compression
	workers     int
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger routes progress messages to l. The default discards them.
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) {
		if l != nil {
			c.log = l
		}
	}
}

// New validates cfg and prepares a codec for it.
func New(cfg Config, opts ...Option) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Codec{
		cfg:     cfg,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		geo:     cfg.Geometry(),
		workers: cfg.Workers,
	}
	for _, o := range opts {
		o(c)
	}
	if c.workers <= 0 {
		c.workers = runtime.GOMAXPROCS(0)
	}

	var err error
	if c.layout, err = cfg.Layout(); err != nil {
		return nil, &ConfigError{Field: "sequence_length", Reason: err.Error()}
	}
	if c.compression, err = container.ParseCompression(cfg.Compression); err != nil {
		return nil, &ConfigError{Field: "compression", Reason: err.Error()}
	}
	if cfg.AddPrimer {
		p, err := primer.Resolve(cfg.ForwardPrimer, cfg.ReversePrimer, cfg.PrimerLength, cfg.Rules())
		if err != nil {
			return nil, &ConfigError{Field: "forward_primer", Reason: err.Error()}
		}
		c.pair = &p
	}
	if c.asm, err = strand.NewAssembler(c.layout, cfg.Rules(), c.pair, cfg.MaxPrimerMismatches()); err != nil {
		return nil, &ConfigError{Field: "sequence_length", Reason: err.Error()}
	}
	if c.code, err = ecc.New(cfg.BlockSize, cfg.RSNum); err != nil {
		return nil, &ConfigError{Field: "rs_num", Reason: err.Error()}
	}
	if cfg.AddRedundancy {
		if c.striper, err = strand.NewStriper(c.geo); err != nil {
			return nil, &ConfigError{Field: "stripe_width", Reason: err.Error()}
		}
	}
	c.log.Debug("codec ready",
		"sequence_length", c.layout.SequenceLength, "core", c.layout.Core,
		"scheme", c.layout.Scheme, "seed", c.layout.Seed, "payload_bytes", c.layout.Payload,
		"block_size", cfg.BlockSize, "rs_num", cfg.RSNum, "redundancy", cfg.AddRedundancy)
	return c, nil
}

// Config returns the codec's configuration.
func (c *Codec) Config() Config { return c.cfg }

// Layout returns the strand layout.
func (c *Codec) Layout() strand.Layout { return c.layout }

// Primers returns the primer pair attached to strands, if any.
func (c *Codec) Primers() (primer.Pair, bool) {
	if c.pair == nil {
		return primer.Pair{}, false
	}
	return *c.pair, true
}

// Encode is a one-shot convenience around New and (*Codec).Encode.
func Encode(payload []byte, cfg Config) ([]string, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	res, err := c.Encode(payload)
	if err != nil {
		return nil, err
	}
	return res.Strands, nil
}

// Decode is a one-shot convenience around New and (*Codec).Decode.
func Decode(strands []string, cfg Config) ([]byte, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	res, err := c.Decode(strands)
	if err != nil {
		return nil, err
	}
	return res.Payload, nil
}
