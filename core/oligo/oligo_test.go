package oligo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ACGT", Normalize(" a c\t'g'\"t\"\n"))
}

func TestValidate(t *testing.T) {
	s, err := Validate("acgt")
	require.NoError(t, err)
	assert.Equal(t, "ACGT", s)

	_, err = Validate("   ")
	require.Error(t, err)

	_, err = Validate("ACNT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at 3")
}

func TestDescribe(t *testing.T) {
	st := Describe([]byte("AACCCGT"))
	assert.Equal(t, 7, st.Length)
	assert.Equal(t, 3, st.LongestRun)
	assert.InDelta(t, 4.0/7.0, st.GC, 1e-9)
}

func TestTrim(t *testing.T) {
	assert.Equal(t, "CG", string(Trim([]byte("ACGT"), 1, 1)))
	assert.Nil(t, Trim([]byte("AC"), 2, 1))
}
