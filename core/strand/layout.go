// Package strand turns frames into fixed-length oligonucleotides and back.
//
// A strand is
//
//	[forward primer] seed | scrambled(header | payload | pad) [revcomp(reverse primer)]
//
// where the part between the primers (the core) is produced by the
// constraint enforcer and is the only part subject to the synthesis rules.
// Under the enumerative scheme there is no seed and the core is the rank
// of header | payload | pad among compliant cores.
package strand

import (
	"fmt"

	"dnastore-core/base"
	"dnastore-core/constraint"
)

// Layout is the symbol budget of one strand for a configuration.
type Layout struct {
	SequenceLength int
	PrimerLength   int // per side; 0 when primers are off
	Core           int // symbols between the primers
	Scheme         constraint.Scheme
	Seed           int // seed prefix symbols
	Body           int // symbols handed to the enforcer
	Payload        int // payload bytes per frame
	Pad            int // filler symbols after the payload
}

// NewLayout computes the layout for strands of sequenceLength symbols with
// primerLength symbols of primer on each side. How much a core carries
// depends on the rules it must satisfy.
func NewLayout(sequenceLength, primerLength int, rules constraint.Rules) (Layout, error) {
	l := Layout{SequenceLength: sequenceLength, PrimerLength: primerLength}
	l.Core = sequenceLength - 2*primerLength
	if l.Core < MinSequenceLength(0) {
		return Layout{}, fmt.Errorf("strand core of %d symbols cannot hold seed, header (%d) and one payload byte; need sequence length >= %d",
			l.Core, HeaderSymbols, MinSequenceLength(primerLength))
	}
	enf, err := constraint.NewEnforcer(rules, l.Core)
	if err != nil {
		return Layout{}, err
	}
	l.Scheme, l.Seed, l.Body = enf.Scheme(), enf.SeedLength(), enf.BodyLength()
	avail := l.Body - HeaderSymbols
	if avail < base.SymbolsPerByte {
		return Layout{}, fmt.Errorf("strand core of %d symbols carries %d %s body symbols, too few for the header (%d) and one payload byte",
			l.Core, l.Body, l.Scheme, HeaderSymbols)
	}
	l.Payload = avail / base.SymbolsPerByte
	l.Pad = avail % base.SymbolsPerByte
	return l, nil
}

// MinSequenceLength is the shortest strand accepted: room for the
// smallest seed, the header and one payload byte.
func MinSequenceLength(primerLength int) int {
	return 2*primerLength + constraint.SeedTrits(0) + HeaderSymbols + base.SymbolsPerByte
}
