// core/primer/loader_test.go
package primer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTSV(t *testing.T) {
	in := "# id fwd rev\np1 acgtacgt TTGGCCAA\n\np2 AAAACCCC GGGGTTTT\n"
	ps, err := ParseTSV(strings.NewReader(in), "pairs.tsv")
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, Pair{ID: "p1", Forward: "ACGTACGT", Reverse: "TTGGCCAA"}, ps[0])

	p, ok := Find(ps, "p2")
	require.True(t, ok)
	assert.Equal(t, "AAAACCCC", p.Forward)
	p, ok = Find(ps, "")
	require.True(t, ok)
	assert.Equal(t, "p1", p.ID)
	_, ok = Find(ps, "nope")
	assert.False(t, ok)
}

func TestParseTSV_BadFields(t *testing.T) {
	_, err := ParseTSV(strings.NewReader("p1 ACGT\n"), "x.tsv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x.tsv:1")
}
