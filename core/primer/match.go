// core/primer/match.go
package primer

// Mismatches counts positions where read disagrees with primer. A read
// shorter than the primer counts every missing base as a mismatch.
func Mismatches(read, primer []byte) int {
	mm := 0
	for j := range primer {
		if j >= len(read) || !BaseMatch(read[j], primer[j]) {
			mm++
		}
	}
	return mm
}

// Orientation is the result of matching a read against a primer pair.
type Orientation struct {
	Core       []byte // read with both primer regions removed, 5'→3' as written
	Flipped    bool   // read was reverse-complemented
	Mismatches int    // total primer mismatches in the chosen orientation
}

// Orient strips the pair from read, trying the read as given and its
// reverse complement, and keeps the orientation with fewer primer
// mismatches. ok is false when neither is within maxMM.
func (p Pair) Orient(read []byte, maxMM int) (Orientation, bool) {
	fl, rl := len(p.Forward), len(p.Reverse)
	if len(read) < fl+rl {
		return Orientation{}, false
	}
	tail := RevComp([]byte(p.Reverse))
	score := func(s []byte) int {
		return Mismatches(s[:fl], []byte(p.Forward)) + Mismatches(s[len(s)-rl:], tail)
	}

	best := Orientation{Core: read[fl : len(read)-rl], Mismatches: score(read)}
	rc := RevComp(read)
	if mm := score(rc); mm < best.Mismatches {
		best = Orientation{Core: rc[fl : len(rc)-rl], Flipped: true, Mismatches: mm}
	}
	if best.Mismatches > maxMM {
		return Orientation{}, false
	}
	return best, true
}

// Attach frames core with the forward primer and the reverse complement
// of the reverse primer.
func (p Pair) Attach(core []byte) []byte {
	out := make([]byte, 0, len(p.Forward)+len(core)+len(p.Reverse))
	out = append(out, p.Forward...)
	out = append(out, core...)
	return append(out, RevComp([]byte(p.Reverse))...)
}
