// core/constraint/enumerative.go
package constraint

import (
	"errors"
	"fmt"
	"math/big"

	"dnastore-core/base"
)

// ErrNotCodeword means a core is not one the enumerative code produces.
var ErrNotCodeword = errors.New("core is not a constrained codeword")

const (
	// corridor bounds how far the running GC count of an enumerative core
	// may stray from the straight line to the band's midpoint.
	corridor = 6

	// maxTrackedRun caps the run lengths the enumerative code tracks. A
	// larger limit is met by staying under the cap.
	maxTrackedRun = 8
)

// ranker numbers the compliant cores of one length in lexicographic order
// and maps body values to cores by rank. Every value below 2^bits has a
// core, so encoding cannot fail.
type ranker struct {
	n, h   int
	lo, hi int
	sum    int // lo+hi; the corridor centre after i symbols is i*sum/2n

	// counts[slot(i, class, run, gc)] is the number of ways to complete a
	// core whose first i symbols end in a run of run symbols of class
	// with gc G/C symbols so far.
	counts []big.Int
	bits   int
}

func newRanker(rules Rules, n int) (*ranker, error) {
	lo, hi := rules.GCBounds(n)
	k := &ranker{n: n, h: min(rules.MaxHomopolymer, maxTrackedRun, n), lo: lo, hi: hi, sum: lo + hi}
	k.counts = make([]big.Int, (n+1)*2*k.h*(2*corridor+1))

	for c := 0; c < 2; c++ {
		for run := 1; run <= k.h; run++ {
			for g := lo; g <= hi; g++ {
				if s, ok := k.slot(n, c, run, g); ok {
					k.counts[s].SetInt64(1)
				}
			}
		}
	}
	for i := n - 1; i >= 1; i-- {
		for c := 0; c < 2; c++ {
			for run := 1; run <= k.h; run++ {
				for d := 0; d <= 2*corridor; d++ {
					g := k.centre(i) + d - corridor
					if g < 0 || g > i {
						continue
					}
					s, _ := k.slot(i, c, run, g)
					dst := &k.counts[s]
					if run < k.h {
						dst.Add(dst, k.count(i+1, c, run+1, g+c))
					}
					dst.Add(dst, k.count(i+1, c, 1, g+c))
					o := 1 - c
					dst.Add(dst, k.count(i+1, o, 1, g+o))
					dst.Add(dst, k.count(i+1, o, 1, g+o))
				}
			}
		}
	}

	total := new(big.Int)
	for v := 0; v < 4; v++ {
		c := class(v)
		total.Add(total, k.count(1, c, 1, c))
	}
	k.bits = total.BitLen() - 1
	if k.bits < 2 {
		return nil, fmt.Errorf("%w: %d compliant cores of %d symbols with max homopolymer %d and GC %.2f-%.2f",
			ErrConstraintUnsatisfiable, total, n, rules.MaxHomopolymer, rules.MinGC, rules.MaxGC)
	}
	return k, nil
}

func class(v int) int {
	if v == 1 || v == 2 { // C, G
		return 1
	}
	return 0
}

func (k *ranker) centre(i int) int { return (i*k.sum + k.n) / (2 * k.n) }

func (k *ranker) slot(i, c, run, g int) (int, bool) {
	d := g - k.centre(i) + corridor
	if d < 0 || d > 2*corridor {
		return 0, false
	}
	return ((i*2+c)*k.h+run-1)*(2*corridor+1) + d, true
}

var zero big.Int

func (k *ranker) count(i, c, run, g int) *big.Int {
	s, ok := k.slot(i, c, run, g)
	if !ok {
		return &zero
	}
	return &k.counts[s]
}

// bodySymbols is the number of 2-bit body symbols one core carries.
func (k *ranker) bodySymbols() int { return k.bits / 2 }

// step returns the state after appending symbol v to a prefix of i
// symbols ending in prev with the given run, or ok=false when v would
// break the run limit.
func (k *ranker) step(i, prev, run, g, v int) (nrun, ng int, ok bool) {
	nrun = 1
	if i > 0 && v == prev {
		nrun = run + 1
		if nrun > k.h {
			return 0, 0, false
		}
	}
	return nrun, g + class(v), true
}

// unrank returns the core of the given rank.
func (k *ranker) unrank(rank *big.Int) []byte {
	r := new(big.Int).Set(rank)
	core := make([]byte, k.n)
	prev, run, g := -1, 0, 0
	for i := 0; i < k.n; i++ {
		for v := 0; v < 4; v++ {
			nrun, ng, ok := k.step(i, prev, run, g, v)
			if !ok {
				continue
			}
			cnt := k.count(i+1, class(v), nrun, ng)
			if r.Cmp(cnt) < 0 {
				core[i] = base.Alphabet[v]
				prev, run, g = v, nrun, ng
				break
			}
			r.Sub(r, cnt)
		}
	}
	return core
}

// rank inverts unrank. Cores the code never produces are rejected.
func (k *ranker) rank(core []byte) (*big.Int, error) {
	r := new(big.Int)
	prev, run, g := -1, 0, 0
	for i, b := range core {
		sym := base.Value(b)
		if sym < 0 {
			return nil, fmt.Errorf("%w: invalid base %q at %d", base.ErrMalformedSymbolStream, b, i+1)
		}
		for v := 0; v < sym; v++ {
			if nrun, ng, ok := k.step(i, prev, run, g, v); ok {
				r.Add(r, k.count(i+1, class(v), nrun, ng))
			}
		}
		nrun, ng, ok := k.step(i, prev, run, g, sym)
		if !ok || k.count(i+1, class(sym), nrun, ng).Sign() == 0 {
			return nil, fmt.Errorf("%w: no completion at %d", ErrNotCodeword, i+1)
		}
		prev, run, g = sym, nrun, ng
	}
	if r.BitLen() > 2*k.bodySymbols() {
		return nil, fmt.Errorf("%w: rank beyond body range", ErrNotCodeword)
	}
	return r, nil
}

// complianceRate is the probability that a uniformly random sequence of n
// symbols satisfies rules.
func complianceRate(rules Rules, n int) float64 {
	h := min(rules.MaxHomopolymer, maxTrackedRun*4, n)
	lo, hi := rules.GCBounds(n)
	idx := func(c, run, g int) int { return (c*h+run-1)*(n+1) + g }
	cur := make([]float64, 2*h*(n+1))
	next := make([]float64, len(cur))
	cur[idx(0, 1, 0)] = 0.5
	cur[idx(1, 1, 1)] = 0.5
	for i := 1; i < n; i++ {
		clear(next)
		for c := 0; c < 2; c++ {
			for run := 1; run <= h; run++ {
				for g := 0; g <= i; g++ {
					p := cur[idx(c, run, g)]
					if p == 0 {
						continue
					}
					if run < h {
						next[idx(c, run+1, g+c)] += p / 4
					}
					next[idx(c, 1, g+c)] += p / 4
					o := 1 - c
					next[idx(o, 1, g+o)] += p / 2
				}
			}
		}
		cur, next = next, cur
	}
	total := 0.0
	for c := 0; c < 2; c++ {
		for run := 1; run <= h; run++ {
			for g := max(lo, 0); g <= min(hi, n); g++ {
				total += cur[idx(c, run, g)]
			}
		}
	}
	return total
}
