// core/strand/frame.go
package strand

import (
	"errors"
	"fmt"

	"dnastore-core/base"
	"dnastore-core/constraint"
	"dnastore-core/primer"
)

var (
	// ErrWrongLength means a read does not have the configured strand length.
	ErrWrongLength = errors.New("wrong strand length")

	// ErrPrimerMismatch means neither orientation of a read matches the primers.
	ErrPrimerMismatch = errors.New("primer mismatch")
)

// Frame is the content of one strand.
type Frame struct {
	Index     int  // global strand index within its kind
	Redundant bool // strand-level parity rather than a data or ECC frame
	Span      int  // data frames in the frame's block
	Payload   []byte

	// Set by Parse.
	Seed        int
	HeaderFixes int
	Flipped     bool
}

// Assembler renders frames as strands and parses reads back into frames.
// It is safe for concurrent use.
type Assembler struct {
	layout  Layout
	enf     *constraint.Enforcer
	pair    *primer.Pair
	primeMM int
}

// NewAssembler returns an assembler for layout. When pair is non-nil its
// primers flank every strand and reads are oriented by them, allowing up
// to maxPrimerMismatches mismatched primer bases.
func NewAssembler(layout Layout, rules constraint.Rules, pair *primer.Pair, maxPrimerMismatches int) (*Assembler, error) {
	if pair != nil {
		if err := pair.Validate(layout.PrimerLength); err != nil {
			return nil, err
		}
	} else if layout.PrimerLength != 0 {
		return nil, fmt.Errorf("strand: layout reserves %d primer symbols but no primer pair was given", layout.PrimerLength)
	}
	enf, err := constraint.NewEnforcer(rules, layout.Core)
	if err != nil {
		return nil, err
	}
	if enf.BodyLength() != layout.Body {
		return nil, fmt.Errorf("strand: layout body of %d symbols does not match the rules (%d)", layout.Body, enf.BodyLength())
	}
	return &Assembler{layout: layout, enf: enf, pair: pair, primeMM: maxPrimerMismatches}, nil
}

func (a *Assembler) Layout() Layout { return a.layout }

// Assemble returns the strand carrying f and the seed that made it
// compliant (always 0 under the enumerative scheme).
func (a *Assembler) Assemble(f Frame) ([]byte, int, error) {
	if len(f.Payload) != a.layout.Payload {
		return nil, 0, fmt.Errorf("strand: payload has %d bytes, want %d", len(f.Payload), a.layout.Payload)
	}
	hdr, err := encodeHeader(f.Index, f.Redundant, f.Span)
	if err != nil {
		return nil, 0, err
	}
	body := make([]byte, 0, a.layout.Body)
	body = append(body, base.Encode(hdr)...)
	body = append(body, base.Encode(f.Payload)...)
	for i := 0; i < a.layout.Pad; i++ {
		body = append(body, base.Alphabet[0])
	}
	core, seed, err := a.enf.Constrain(body)
	if err != nil {
		return nil, 0, fmt.Errorf("strand %d: %w", f.Index, err)
	}
	if a.pair != nil {
		return a.pair.Attach(core), seed, nil
	}
	return core, seed, nil
}

// Parse recovers the frame carried by read. Reads may be in either
// orientation. Without primers the reverse complement is tried when the
// read fails to parse or needed header repairs, and the cleaner result wins.
func (a *Assembler) Parse(read []byte) (Frame, error) {
	if len(read) != a.layout.SequenceLength {
		return Frame{}, fmt.Errorf("%w: %d symbols, want %d", ErrWrongLength, len(read), a.layout.SequenceLength)
	}
	if a.pair != nil {
		o, ok := a.pair.Orient(read, a.primeMM)
		if !ok {
			return Frame{}, ErrPrimerMismatch
		}
		f, err := a.parseCore(o.Core)
		f.Flipped = o.Flipped
		return f, err
	}

	f, err := a.parseCore(read)
	if err == nil && f.HeaderFixes == 0 {
		return f, nil
	}
	rf, rerr := a.parseCore(primer.RevComp(read))
	switch {
	case rerr != nil:
		return f, err
	case err != nil || rf.HeaderFixes < f.HeaderFixes:
		rf.Flipped = true
		return rf, nil
	}
	return f, nil
}

func (a *Assembler) parseCore(core []byte) (Frame, error) {
	body, seed, err := a.enf.Relax(core)
	if err != nil {
		return Frame{}, err
	}
	hdr, err := base.Decode(body[:HeaderSymbols])
	if err != nil {
		return Frame{}, err
	}
	index, redundant, span, fixes, err := decodeHeader(hdr)
	if err != nil {
		return Frame{}, err
	}
	payload, err := base.Decode(body[HeaderSymbols : HeaderSymbols+a.layout.Payload*base.SymbolsPerByte])
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Index:       index,
		Redundant:   redundant,
		Span:        span,
		Payload:     payload,
		Seed:        seed,
		HeaderFixes: fixes,
	}, nil
}
