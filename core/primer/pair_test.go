package primer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dnastore-core/constraint"
)

var rules = constraint.Rules{MaxHomopolymer: 3, MinGC: 0.4, MaxGC: 0.6}

func TestGenerate_MeetsRulesAndIsStable(t *testing.T) {
	a, err := Generate("forward", 20, rules)
	require.NoError(t, err)
	require.Len(t, a, 20)
	require.NoError(t, rules.Check(a))

	b, err := Generate("forward", 20, rules)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Generate("reverse", 20, rules)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestGenerate_ShortPrimerIgnoresInfeasibleBand(t *testing.T) {
	p, err := Generate("forward", 1, rules)
	require.NoError(t, err)
	assert.Len(t, p, 1)
}

func TestResolve(t *testing.T) {
	p, err := Resolve("", "", 20, rules)
	require.NoError(t, err)
	assert.Equal(t, "generated", p.ID)
	assert.Len(t, p.Forward, 20)
	assert.Len(t, p.Reverse, 20)

	p, err = Resolve("acgtacgtac", "TTGGCCAATT", 10, rules)
	require.NoError(t, err)
	assert.Equal(t, "ACGTACGTAC", p.Forward)

	_, err = Resolve("ACGT", "TTGG", 10, rules)
	require.Error(t, err)
	_, err = Resolve("ACGTNNNNAC", "TTGGCCAATT", 10, rules)
	require.Error(t, err)
}

func TestAttachOrient(t *testing.T) {
	p := Pair{Forward: "ACGTTGCA", Reverse: "GGATCCAA"}
	core := []byte("CATCATCATCAT")
	read := p.Attach(core)
	require.Len(t, read, 28)
	assert.True(t, bytes.HasSuffix(read, RevComp([]byte(p.Reverse))))

	o, ok := p.Orient(read, 0)
	require.True(t, ok)
	assert.False(t, o.Flipped)
	assert.Equal(t, core, o.Core)

	o, ok = p.Orient(RevComp(read), 0)
	require.True(t, ok)
	assert.True(t, o.Flipped)
	assert.Equal(t, core, o.Core)

	bad := append([]byte(nil), read...)
	bad[0], bad[1] = 'T', 'T'
	o, ok = p.Orient(bad, 2)
	require.True(t, ok)
	assert.Equal(t, 2, o.Mismatches)
	_, ok = p.Orient(bad, 1)
	assert.False(t, ok)
}

func TestMismatches(t *testing.T) {
	assert.Equal(t, 0, Mismatches([]byte("ACGT"), []byte("ACGT")))
	assert.Equal(t, 1, Mismatches([]byte("ACNT"), []byte("ACGT")))
	assert.Equal(t, 0, Mismatches([]byte("ACGT"), []byte("ACNT")))
	assert.Equal(t, 2, Mismatches([]byte("AC"), []byte("ACGT")))
}
