// core/constraint/enforcer.go
package constraint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	"github.com/zeebo/blake3"

	"dnastore-core/base"
)

var (
	// ErrConstraintUnsatisfiable means no seed yields a compliant strand.
	ErrConstraintUnsatisfiable = errors.New("constraint unsatisfiable")

	// ErrBadSeed means a strand's seed prefix is not a valid rotating code.
	ErrBadSeed = errors.New("invalid seed prefix")
)

const (
	minSeedTrits = 5
	maxSeedTrits = 9

	// seeds with a precomputed keystream; later ones are derived on demand
	cachedSeeds = 729

	scrambleDomain = "dnastore/scramble"

	// minExpectedHits is the expected number of compliant seeds a core
	// needs before seed search is used; a search then fails with
	// probability below e^-32.
	minExpectedHits = 32
)

// Scheme is how an enforcer turns a body into a compliant core.
type Scheme int

const (
	// Scramble adds a seeded keystream to the body and searches seeds in
	// ascending order. Two bits per symbol, less the seed prefix.
	Scramble Scheme = iota

	// Enumerative maps the body to the compliant core of that rank. It
	// never fails but carries fewer bits; it is used when the rules are
	// too tight for seed search to be reliable.
	Enumerative
)

func (s Scheme) String() string {
	if s == Enumerative {
		return "enumerative"
	}
	return "scramble"
}

// SeedTrits returns the seed prefix length used for a core of n symbols.
// Longer cores pass the homopolymer check less often per seed, so they get
// a larger seed space.
func SeedTrits(n int) int {
	t := minSeedTrits
	if n > 100 {
		t += (n - 100 + 79) / 80
	}
	if t > maxSeedTrits {
		t = maxSeedTrits
	}
	return t
}

// Enforcer rewrites a strand body into a compliant core and back.
//
// Under Scramble a core is the seed prefix (SeedTrits symbols, rotating
// code) followed by the body scrambled with the seed's keystream. The
// prefix is part of the core and is checked with it. Under Enumerative
// the core has no prefix and is the body's rank among compliant cores.
type Enforcer struct {
	rules   Rules
	length  int
	scheme  Scheme
	trits   int
	seeds   int
	streams [][]byte
	rank    *ranker
}

// NewEnforcer prepares an enforcer for cores of length symbols.
func NewEnforcer(rules Rules, length int) (*Enforcer, error) {
	if rules.MaxHomopolymer < 1 {
		return nil, fmt.Errorf("constraint: max homopolymer must be >= 1, got %d", rules.MaxHomopolymer)
	}
	if length < 1 {
		return nil, fmt.Errorf("constraint: core of %d symbols", length)
	}
	if !rules.Feasible(length) {
		return nil, fmt.Errorf("%w: GC band %.3f-%.3f admits no count over %d symbols",
			ErrConstraintUnsatisfiable, rules.MinGC, rules.MaxGC, length)
	}
	trits := SeedTrits(length)
	seeds := 1
	for i := 0; i < trits; i++ {
		seeds *= 3
	}
	if length <= trits || float64(seeds)*complianceRate(rules, length) < minExpectedHits {
		rk, err := newRanker(rules, length)
		if err != nil {
			return nil, err
		}
		return &Enforcer{rules: rules, length: length, scheme: Enumerative, seeds: 1, rank: rk}, nil
	}

	e := &Enforcer{rules: rules, length: length, scheme: Scramble, trits: trits, seeds: seeds}
	n := min(seeds, cachedSeeds)
	e.streams = make([][]byte, n)
	for s := 0; s < n; s++ {
		e.streams[s] = e.keystream(s)
	}
	return e, nil
}

func (e *Enforcer) Rules() Rules    { return e.rules }
func (e *Enforcer) Length() int     { return e.length }
func (e *Enforcer) Scheme() Scheme  { return e.scheme }
func (e *Enforcer) SeedLength() int { return e.trits }

// BodyLength is the number of symbols Constrain takes.
func (e *Enforcer) BodyLength() int {
	if e.scheme == Enumerative {
		return e.rank.bodySymbols()
	}
	return e.length - e.trits
}

// Constrain turns body (BodyLength symbols) into a compliant core. Under
// Scramble it uses the first seed, in ascending order, whose core
// satisfies the rules; the seed is always 0 under Enumerative. The result
// is deterministic for a given body.
func (e *Enforcer) Constrain(body []byte) (core []byte, seed int, err error) {
	if len(body) != e.BodyLength() {
		return nil, 0, fmt.Errorf("constraint: body has %d symbols, want %d", len(body), e.BodyLength())
	}
	vals := make([]byte, len(body))
	for i, b := range body {
		v := base.Value(b)
		if v < 0 {
			return nil, 0, fmt.Errorf("%w: invalid base %q at %d", base.ErrMalformedSymbolStream, b, i+1)
		}
		vals[i] = byte(v)
	}
	if e.scheme == Enumerative {
		r := new(big.Int)
		for _, v := range vals {
			r.Lsh(r, 2)
			r.Or(r, big.NewInt(int64(v)))
		}
		return e.rank.unrank(r), 0, nil
	}

	core = make([]byte, e.length)
	for seed = 0; seed < e.seeds; seed++ {
		writeSeed(core[:e.trits], seed)
		ks := e.stream(seed)
		out := core[e.trits:]
		for i, v := range vals {
			out[i] = base.Alphabet[(v+ks[i])&3]
		}
		if e.rules.Satisfied(core) {
			return core, seed, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: none of %d seeds gives max homopolymer %d and GC %.2f-%.2f over %d symbols",
		ErrConstraintUnsatisfiable, e.seeds, e.rules.MaxHomopolymer, e.rules.MinGC, e.rules.MaxGC, e.length)
}

// Relax inverts Constrain. It does not re-check the rules: reads with
// substitutions are still relaxed and left to error correction. Under
// Enumerative a core the code cannot produce fails with ErrNotCodeword.
func (e *Enforcer) Relax(core []byte) (body []byte, seed int, err error) {
	if len(core) != e.length {
		return nil, 0, fmt.Errorf("constraint: core has %d symbols, want %d", len(core), e.length)
	}
	if e.scheme == Enumerative {
		r, err := e.rank.rank(core)
		if err != nil {
			return nil, 0, err
		}
		body = make([]byte, e.BodyLength())
		low, mask := new(big.Int), big.NewInt(3)
		for i := len(body) - 1; i >= 0; i-- {
			body[i] = base.Alphabet[low.And(r, mask).Int64()]
			r.Rsh(r, 2)
		}
		return body, 0, nil
	}
	seed, err = readSeed(core[:e.trits])
	if err != nil {
		return nil, 0, err
	}
	ks := e.stream(seed)
	in := core[e.trits:]
	body = make([]byte, len(in))
	for i, b := range in {
		v := base.Value(b)
		if v < 0 {
			return nil, 0, fmt.Errorf("%w: invalid base %q at %d", base.ErrMalformedSymbolStream, b, e.trits+i+1)
		}
		body[i] = base.Alphabet[(byte(v)-ks[i])&3]
	}
	return body, seed, nil
}

func (e *Enforcer) stream(seed int) []byte {
	if seed < len(e.streams) {
		return e.streams[seed]
	}
	return e.keystream(seed)
}

// keystream derives BodyLength 2-bit offsets for seed from the BLAKE3 XOF.
func (e *Enforcer) keystream(seed int) []byte {
	n := e.BodyLength()
	h := blake3.New()
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(e.length))
	binary.BigEndian.PutUint32(hdr[4:], uint32(seed))
	_, _ = h.Write([]byte(scrambleDomain))
	_, _ = h.Write(hdr[:])

	raw := make([]byte, (n+3)/4)
	_, _ = h.Digest().Read(raw)
	ks := make([]byte, n)
	for i := range ks {
		ks[i] = (raw[i/4] >> (6 - 2*uint(i%4))) & 3
	}
	return ks
}

/* ------------------------------ seed prefix ------------------------------ */

// writeSeed writes seed as len(dst) base-3 digits, most significant first.
// Each digit d becomes the base (prev+1+d) mod 4, with prev starting at A,
// so consecutive prefix symbols always differ.
func writeSeed(dst []byte, seed int) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = byte(seed % 3)
		seed /= 3
	}
	prev := 0
	for i, d := range dst {
		v := (prev + 1 + int(d)) & 3
		dst[i] = base.Alphabet[v]
		prev = v
	}
}

func readSeed(src []byte) (int, error) {
	seed, prev := 0, 0
	for i, b := range src {
		v := base.Value(b)
		if v < 0 {
			return 0, fmt.Errorf("%w: invalid base %q at %d", ErrBadSeed, b, i+1)
		}
		d := (v - prev - 1) & 3
		if d == 3 {
			return 0, fmt.Errorf("%w: repeated base at %d", ErrBadSeed, i+1)
		}
		seed = seed*3 + d
		prev = v
	}
	return seed, nil
}
