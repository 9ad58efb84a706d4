package ecc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeData(k, size int) [][]byte {
	data := make([][]byte, k)
	for i := range data {
		data[i] = make([]byte, size)
		for j := range data[i] {
			data[i][j] = byte(i*31 + j*7 + 1)
		}
	}
	return data
}

func codeword(t *testing.T, c *Code, data [][]byte) [][]byte {
	t.Helper()
	parity, err := c.Encode(data)
	require.NoError(t, err)
	require.Len(t, parity, c.Parity())
	out := make([][]byte, 0, c.Total())
	for _, d := range data {
		out = append(out, append([]byte(nil), d...))
	}
	return append(out, parity...)
}

func TestNew_Bounds(t *testing.T) {
	_, err := New(0, 2)
	require.Error(t, err)
	_, err = New(250, 7)
	require.Error(t, err)
	c, err := New(10, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, c.Total())
}

func TestCorrect_Clean(t *testing.T) {
	c, err := New(10, 4)
	require.NoError(t, err)
	data := makeData(10, 8)
	got, fixed, err := c.Correct(codeword(t, c, data))
	require.NoError(t, err)
	assert.Equal(t, 0, fixed)
	assert.Equal(t, data, got)
}

func TestCorrect_Erasures(t *testing.T) {
	c, err := New(10, 4)
	require.NoError(t, err)
	data := makeData(10, 8)
	cw := codeword(t, c, data)
	for _, i := range []int{0, 3, 9, 12} {
		cw[i] = nil
	}
	got, fixed, err := c.Correct(cw)
	require.NoError(t, err)
	assert.Equal(t, 0, fixed)
	assert.Equal(t, data, got)
}

func TestCorrect_ErrorsWithinCapacity(t *testing.T) {
	c, err := New(10, 4)
	require.NoError(t, err)
	data := makeData(10, 8)
	cw := codeword(t, c, data)
	cw[2][0] ^= 0xFF
	cw[7][5] ^= 0x01
	got, fixed, err := c.Correct(cw)
	require.NoError(t, err)
	assert.Equal(t, 2, fixed)
	assert.Equal(t, data, got)
}

func TestCorrect_MixedErasureAndError(t *testing.T) {
	c, err := New(10, 4)
	require.NoError(t, err)
	data := makeData(10, 8)
	cw := codeword(t, c, data)
	cw[1] = nil
	cw[11] = nil
	cw[4][3] ^= 0x55
	got, fixed, err := c.Correct(cw)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)
	assert.Equal(t, data, got)
}

func TestCorrect_BeyondCapacityIsDetected(t *testing.T) {
	c, err := New(10, 4)
	require.NoError(t, err)
	cw := codeword(t, c, makeData(10, 8))
	for _, i := range []int{0, 5, 9} {
		for j := range cw[i] {
			cw[i][j] ^= 0xA5
		}
	}
	_, _, err = c.Correct(cw)
	require.ErrorIs(t, err, ErrUncorrectableBlock)
}

func TestCorrect_TooFewShards(t *testing.T) {
	c, err := New(4, 2)
	require.NoError(t, err)
	cw := codeword(t, c, makeData(4, 1))
	cw[0], cw[1], cw[2] = nil, nil, nil
	_, _, err = c.Correct(cw)
	require.ErrorIs(t, err, ErrInsufficientShards)
}

func TestCorrect_NoParity(t *testing.T) {
	c, err := New(3, 0)
	require.NoError(t, err)
	data := makeData(3, 4)
	got, _, err := c.Correct(codeword(t, c, data))
	require.NoError(t, err)
	assert.Equal(t, data, got)

	cw := codeword(t, c, data)
	cw[1] = nil
	_, _, err = c.Correct(cw)
	require.ErrorIs(t, err, ErrInsufficientShards)
}

func TestCorrect_DoesNotMutateInput(t *testing.T) {
	c, err := New(4, 2)
	require.NoError(t, err)
	cw := codeword(t, c, makeData(4, 2))
	cw[0][0] ^= 1
	before := cw[0][0]
	_, _, err = c.Correct(cw)
	require.NoError(t, err)
	assert.Equal(t, before, cw[0][0])
}
