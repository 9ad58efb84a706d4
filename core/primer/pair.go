// core/primer/pair.go
package primer

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/zeebo/blake3"

	"dnastore-core/base"
	"dnastore-core/constraint"
)

const (
	primerDomain = "dnastore/primer"
	maxAttempts  = 1 << 14
)

// Pair is the primer pair flanking every strand of one encoding job.
// Forward is prepended as written; the reverse complement of Reverse is
// appended, so both read 5'→3' on their own strand.
type Pair struct {
	ID      string
	Forward string
	Reverse string
}

// Resolve returns the pair for a job: the explicit sequences when both are
// given, otherwise a deterministic pair generated for length and rules.
func Resolve(fwd, rev string, length int, rules constraint.Rules) (Pair, error) {
	fwd, rev = strings.ToUpper(strings.TrimSpace(fwd)), strings.ToUpper(strings.TrimSpace(rev))
	if fwd != "" || rev != "" {
		p := Pair{ID: "custom", Forward: fwd, Reverse: rev}
		return p, p.Validate(length)
	}
	f, err := Generate("forward", length, rules)
	if err != nil {
		return Pair{}, err
	}
	r, err := Generate("reverse", length, rules)
	if err != nil {
		return Pair{}, err
	}
	for attempt := 1; string(r) == string(f); attempt++ {
		if r, err = Generate(fmt.Sprintf("reverse/%d", attempt), length, rules); err != nil {
			return Pair{}, err
		}
	}
	return Pair{ID: "generated", Forward: string(f), Reverse: string(r)}, nil
}

// Validate checks that both primers are concrete and length symbols long.
func (p Pair) Validate(length int) error {
	for _, s := range []struct{ name, seq string }{{"forward", p.Forward}, {"reverse", p.Reverse}} {
		if len(s.seq) != length {
			return fmt.Errorf("%s primer has %d bases, want %d", s.name, len(s.seq), length)
		}
		if !IsConcrete([]byte(s.seq)) {
			return fmt.Errorf("%s primer %q: only A C G T allowed", s.name, s.seq)
		}
	}
	return nil
}

// Generate draws candidate primers from the BLAKE3 XOF of label and returns
// the first one that meets rules. When the GC band cannot be met at this
// length only the homopolymer limit applies.
func Generate(label string, length int, rules constraint.Rules) ([]byte, error) {
	if length <= 0 {
		return nil, nil
	}
	if !rules.Feasible(length) {
		rules.MinGC, rules.MaxGC = 0, 1
	}
	cand := make([]byte, length)
	raw := make([]byte, (length+3)/4)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		h := blake3.New()
		var hdr [8]byte
		binary.BigEndian.PutUint32(hdr[:4], uint32(length))
		binary.BigEndian.PutUint32(hdr[4:], uint32(attempt))
		_, _ = h.Write([]byte(primerDomain))
		_, _ = h.Write([]byte(label))
		_, _ = h.Write(hdr[:])
		_, _ = h.Digest().Read(raw)
		for i := range cand {
			cand[i] = base.Symbol(int(raw[i/4] >> (6 - 2*uint(i%4))))
		}
		if rules.Satisfied(cand) {
			return cand, nil
		}
	}
	return nil, fmt.Errorf("%w: no %d-base %s primer with max homopolymer %d",
		constraint.ErrConstraintUnsatisfiable, length, label, rules.MaxHomopolymer)
}
