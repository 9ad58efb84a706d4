// core/oligo/oligo.go
package oligo

import "dnastore-core/constraint"

// Stats summarizes the synthesis-relevant properties of one strand region.
type Stats struct {
	Length     int
	GC         float64
	LongestRun int
}

// Describe computes Stats for seq.
func Describe(seq []byte) Stats {
	return Stats{
		Length:     len(seq),
		GC:         constraint.GCFraction(seq),
		LongestRun: constraint.LongestRun(seq),
	}
}

// Trim returns the region of seq between lead and trail symbols, or nil when
// seq is too short.
func Trim(seq []byte, lead, trail int) []byte {
	if lead < 0 || trail < 0 || lead+trail > len(seq) {
		return nil
	}
	return seq[lead : len(seq)-trail]
}
