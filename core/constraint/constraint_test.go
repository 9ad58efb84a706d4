package constraint

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultRules = Rules{MaxHomopolymer: 3, MinGC: 0.4, MaxGC: 0.6}

func TestCheck(t *testing.T) {
	require.NoError(t, defaultRules.Check([]byte("ACGTACGTAC")))

	err := defaultRules.Check([]byte("ACGGGGTACA"))
	var v *Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "homopolymer", v.Kind)
	assert.Equal(t, 3, v.Pos)
	assert.Equal(t, 4, v.Run)

	err = defaultRules.Check([]byte("ATATATATAT"))
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "gc", v.Kind)

	err = defaultRules.Check([]byte("ACNT"))
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "base", v.Kind)
}

func TestSatisfiedMatchesCheck(t *testing.T) {
	for _, s := range []string{"ACGTACGTAC", "ACGGGGTACA", "ATATATATAT", "GCGCGCGCGC", "AACCGGTTAC"} {
		assert.Equal(t, defaultRules.Check([]byte(s)) == nil, defaultRules.Satisfied([]byte(s)), s)
	}
}

func TestGCBounds(t *testing.T) {
	lo, hi := defaultRules.GCBounds(50)
	assert.Equal(t, 20, lo)
	assert.Equal(t, 30, hi)

	narrow := Rules{MaxHomopolymer: 3, MinGC: 0.5, MaxGC: 0.5}
	assert.True(t, narrow.Feasible(10))
	assert.False(t, narrow.Feasible(11))
}

func TestLongestRunAndGC(t *testing.T) {
	assert.Equal(t, 4, LongestRun([]byte("ACCCCGT")))
	assert.Equal(t, 0, LongestRun(nil))
	assert.InDelta(t, 0.5, GCFraction([]byte("ACGT")), 1e-9)
}

func TestSeedTrits(t *testing.T) {
	assert.Equal(t, 5, SeedTrits(50))
	assert.Equal(t, 5, SeedTrits(100))
	assert.Equal(t, 6, SeedTrits(101))
	assert.Equal(t, 7, SeedTrits(200))
	assert.Equal(t, 9, SeedTrits(5000))
}

func TestSeedPrefixRoundTrip(t *testing.T) {
	buf := make([]byte, 5)
	for seed := 0; seed < 243; seed++ {
		writeSeed(buf, seed)
		assert.Equal(t, 1, LongestRun(buf))
		assert.NotEqual(t, byte('A'), buf[0])
		got, err := readSeed(buf)
		require.NoError(t, err)
		require.Equal(t, seed, got)
	}
	_, err := readSeed([]byte("CCAGT"))
	require.ErrorIs(t, err, ErrBadSeed)
}

func TestConstrainRelax_RoundTrip(t *testing.T) {
	e, err := NewEnforcer(defaultRules, 50)
	require.NoError(t, err)
	require.Equal(t, 45, e.BodyLength())

	body := bytes.Repeat([]byte("A"), e.BodyLength())
	core, seed, err := e.Constrain(body)
	require.NoError(t, err)
	require.Len(t, core, 50)
	require.NoError(t, defaultRules.Check(core))

	back, gotSeed, err := e.Relax(core)
	require.NoError(t, err)
	assert.Equal(t, seed, gotSeed)
	assert.Equal(t, body, back)
}

func TestConstrain_Deterministic(t *testing.T) {
	e, err := NewEnforcer(defaultRules, 60)
	require.NoError(t, err)
	body := bytes.Repeat([]byte("GATTACA"), 10)[:e.BodyLength()]
	a, sa, err := e.Constrain(body)
	require.NoError(t, err)
	b, sb, err := e.Constrain(body)
	require.NoError(t, err)
	assert.Equal(t, sa, sb)
	assert.Equal(t, a, b)
}

func TestNewEnforcer_NoRoomForABody(t *testing.T) {
	// Only ATAT... and TATA... comply: one bit, not a single body symbol.
	_, err := NewEnforcer(Rules{MaxHomopolymer: 1, MinGC: 0, MaxGC: 0}, 40)
	require.ErrorIs(t, err, ErrConstraintUnsatisfiable)
}

func TestComplianceRate(t *testing.T) {
	loose := Rules{MaxHomopolymer: 100, MinGC: 0, MaxGC: 1}
	assert.InDelta(t, 1.0, complianceRate(loose, 40), 1e-9)

	noRepeats := Rules{MaxHomopolymer: 1, MinGC: 0, MaxGC: 1}
	assert.InDelta(t, math.Pow(0.75, 9), complianceRate(noRepeats, 10), 1e-12)

	allGC := Rules{MaxHomopolymer: 100, MinGC: 1, MaxGC: 1}
	assert.InDelta(t, math.Pow(0.5, 8), complianceRate(allGC, 8), 1e-12)
}

func TestNewEnforcer_SchemeChoice(t *testing.T) {
	e, err := NewEnforcer(defaultRules, 50)
	require.NoError(t, err)
	assert.Equal(t, Scramble, e.Scheme())

	for _, tc := range []struct {
		rules Rules
		n     int
	}{
		{Rules{MaxHomopolymer: 1, MinGC: 0.4, MaxGC: 0.6}, 50},
		{Rules{MaxHomopolymer: 2, MinGC: 0.4, MaxGC: 0.6}, 200},
		{Rules{MaxHomopolymer: 1, MinGC: 0, MaxGC: 1}, 40},
		{Rules{MaxHomopolymer: 6, MinGC: 0.9, MaxGC: 1}, 200},
	} {
		e, err := NewEnforcer(tc.rules, tc.n)
		require.NoError(t, err, "%+v", tc.rules)
		assert.Equal(t, Enumerative, e.Scheme(), "%+v", tc.rules)
		assert.Zero(t, e.SeedLength())
	}
}

func TestEnumerative_RoundTripAndCompliance(t *testing.T) {
	for _, tc := range []struct {
		rules Rules
		n     int
	}{
		{Rules{MaxHomopolymer: 1, MinGC: 0.4, MaxGC: 0.6}, 50},
		{Rules{MaxHomopolymer: 2, MinGC: 0.4, MaxGC: 0.6}, 200},
		{Rules{MaxHomopolymer: 1, MinGC: 0, MaxGC: 1}, 40},
		{Rules{MaxHomopolymer: 6, MinGC: 0.9, MaxGC: 1}, 200},
	} {
		e, err := NewEnforcer(tc.rules, tc.n)
		require.NoError(t, err)
		require.Positive(t, e.BodyLength())

		bodies := [][]byte{
			bytes.Repeat([]byte("A"), e.BodyLength()),
			bytes.Repeat([]byte("T"), e.BodyLength()),
			bytes.Repeat([]byte("GATTACA"), tc.n)[:e.BodyLength()],
		}
		for _, body := range bodies {
			core, seed, err := e.Constrain(body)
			require.NoError(t, err)
			require.Zero(t, seed)
			require.Len(t, core, tc.n)
			require.NoError(t, tc.rules.Check(core), "%+v", tc.rules)

			back, _, err := e.Relax(core)
			require.NoError(t, err)
			assert.Equal(t, body, back)
		}
	}
}

func TestEnumerative_RejectsNonCodewords(t *testing.T) {
	e, err := NewEnforcer(Rules{MaxHomopolymer: 1, MinGC: 0.4, MaxGC: 0.6}, 50)
	require.NoError(t, err)
	_, _, err = e.Relax(bytes.Repeat([]byte("AC"), 25)[:49])
	require.Error(t, err)
	_, _, err = e.Relax(append([]byte("AA"), bytes.Repeat([]byte("CG"), 24)...))
	require.ErrorIs(t, err, ErrNotCodeword)
}

func TestNewEnforcer_InfeasibleBand(t *testing.T) {
	_, err := NewEnforcer(Rules{MaxHomopolymer: 3, MinGC: 0.5, MaxGC: 0.5}, 41)
	require.ErrorIs(t, err, ErrConstraintUnsatisfiable)
}

func TestRelax_Substitution(t *testing.T) {
	e, err := NewEnforcer(defaultRules, 50)
	require.NoError(t, err)
	body := bytes.Repeat([]byte("ACGT"), 12)[:e.BodyLength()]
	core, _, err := e.Constrain(body)
	require.NoError(t, err)

	i := e.SeedLength() + 10
	core[i] = map[byte]byte{'A': 'C', 'C': 'G', 'G': 'T', 'T': 'A'}[core[i]]
	back, _, err := e.Relax(core)
	require.NoError(t, err)
	diff := 0
	for j := range body {
		if back[j] != body[j] {
			diff++
		}
	}
	assert.Equal(t, 1, diff)
}
