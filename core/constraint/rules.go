// core/constraint/rules.go
package constraint

import (
	"fmt"
	"math"

	"dnastore-core/base"
)

const gcEpsilon = 1e-9

// Rules are the synthesis constraints a strand core must satisfy.
type Rules struct {
	MaxHomopolymer int
	MinGC          float64
	MaxGC          float64
}

// GCBounds returns the inclusive range of G+C counts allowed in n symbols.
func (r Rules) GCBounds(n int) (lo, hi int) {
	lo = int(math.Ceil(r.MinGC*float64(n) - gcEpsilon))
	hi = int(math.Floor(r.MaxGC*float64(n) + gcEpsilon))
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	return lo, hi
}

// Feasible reports whether any sequence of n symbols can meet the GC band.
func (r Rules) Feasible(n int) bool {
	lo, hi := r.GCBounds(n)
	return lo <= hi
}

// Violation describes the first rule a sequence breaks.
type Violation struct {
	Kind string // "homopolymer" | "gc" | "base"
	Pos  int    // 1-based start of the run or offending base
	Run  int
	GC   float64
}

func (v *Violation) Error() string {
	switch v.Kind {
	case "homopolymer":
		return fmt.Sprintf("homopolymer run of %d at %d", v.Run, v.Pos)
	case "gc":
		return fmt.Sprintf("GC fraction %.3f out of range", v.GC)
	default:
		return fmt.Sprintf("invalid base at %d", v.Pos)
	}
}

// Check returns a *Violation for the first broken rule, or nil.
func (r Rules) Check(seq []byte) error {
	run, start := 0, 0
	gc := 0
	for i, b := range seq {
		if base.Value(b) < 0 {
			return &Violation{Kind: "base", Pos: i + 1}
		}
		if i > 0 && seq[i-1] == b {
			run++
		} else {
			run, start = 1, i
		}
		if run > r.MaxHomopolymer {
			for j := i + 1; j < len(seq) && seq[j] == b; j++ {
				run++
			}
			return &Violation{Kind: "homopolymer", Pos: start + 1, Run: run}
		}
		if base.IsGC(b) {
			gc++
		}
	}
	lo, hi := r.GCBounds(len(seq))
	if gc < lo || gc > hi {
		return &Violation{Kind: "gc", GC: GCFraction(seq)}
	}
	return nil
}

// Satisfied is the allocation-free form of Check used in the seed search.
func (r Rules) Satisfied(seq []byte) bool {
	lo, hi := r.GCBounds(len(seq))
	run, gc := 0, 0
	var prev byte
	for i, b := range seq {
		if i > 0 && b == prev {
			run++
			if run > r.MaxHomopolymer {
				return false
			}
		} else {
			run = 1
		}
		if b == 'G' || b == 'C' {
			gc++
			if gc > hi {
				return false
			}
		}
		prev = b
	}
	return gc >= lo
}

// LongestRun returns the length of the longest homopolymer in seq.
func LongestRun(seq []byte) int {
	best, run := 0, 0
	for i := range seq {
		if i > 0 && seq[i] == seq[i-1] {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// GCFraction returns the share of G and C in seq (0 for empty input).
func GCFraction(seq []byte) float64 {
	if len(seq) == 0 {
		return 0
	}
	n := 0
	for _, b := range seq {
		if base.IsGC(b) {
			n++
		}
	}
	return float64(n) / float64(len(seq))
}
