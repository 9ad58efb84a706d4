// Package ecc is the block-level error-correction layer: a systematic
// Reed–Solomon code over GF(256) whose codewords run across equal-length
// shards. Byte column j of every shard forms one codeword, so a lost shard
// costs one erasure per codeword and a substituted byte one error in one
// codeword.
package ecc

import (
	"errors"
	"fmt"

	"storj.io/infectious"
)

// MaxShards is the largest codeword the field supports.
const MaxShards = 256

var (
	// ErrUncorrectableBlock means the errors in a block exceed what its
	// parity can correct. It is never masked by a silent miscorrection
	// inside the decoder's capacity.
	ErrUncorrectableBlock = errors.New("uncorrectable block")

	// ErrInsufficientShards means fewer than k shards survived.
	ErrInsufficientShards = errors.New("insufficient shards")
)

// Code is a (k+r, k) Reed–Solomon code. r may be zero, in which case the
// code is the identity and tolerates no loss.
type Code struct {
	k, r int
	fec  *infectious.FEC
}

// New returns a code with k data shards and r parity shards.
func New(k, r int) (*Code, error) {
	if k < 1 || r < 0 || k+r > MaxShards {
		return nil, fmt.Errorf("ecc: invalid code k=%d r=%d (need k>=1, r>=0, k+r<=%d)", k, r, MaxShards)
	}
	c := &Code{k: k, r: r}
	if r > 0 {
		fec, err := infectious.NewFEC(k, k+r)
		if err != nil {
			return nil, fmt.Errorf("ecc: %w", err)
		}
		c.fec = fec
	}
	return c, nil
}

func (c *Code) Data() int   { return c.k }
func (c *Code) Parity() int { return c.r }
func (c *Code) Total() int  { return c.k + c.r }

// Encode returns the r parity shards for k equal-length data shards.
func (c *Code) Encode(data [][]byte) ([][]byte, error) {
	size, err := c.shardSize(data, c.k)
	if err != nil {
		return nil, err
	}
	if c.r == 0 {
		return nil, nil
	}
	in := make([]byte, 0, c.k*size)
	for _, d := range data {
		in = append(in, d...)
	}
	parity := make([][]byte, c.r)
	err = c.fec.Encode(in, func(s infectious.Share) {
		if s.Number >= c.k {
			parity[s.Number-c.k] = append([]byte(nil), s.Data...)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("ecc: encode: %w", err)
	}
	return parity, nil
}

// Correct recovers the k data shards from a full codeword slice of k+r
// shards in position order; nil entries are erasures. corrected counts the
// received bytes that had to be changed. The input is not modified.
func (c *Code) Correct(shards [][]byte) (data [][]byte, corrected int, err error) {
	if len(shards) != c.k+c.r {
		return nil, 0, fmt.Errorf("ecc: got %d shards, want %d", len(shards), c.k+c.r)
	}
	size := -1
	present := make([]infectious.Share, 0, len(shards))
	for i, s := range shards {
		if s == nil {
			continue
		}
		if size < 0 {
			size = len(s)
		} else if len(s) != size {
			return nil, 0, fmt.Errorf("ecc: shard %d has %d bytes, want %d", i, len(s), size)
		}
		present = append(present, infectious.Share{Number: i, Data: append([]byte(nil), s...)})
	}
	if len(present) < c.k {
		return nil, 0, fmt.Errorf("%w: %d of %d required", ErrInsufficientShards, len(present), c.k)
	}

	if c.r == 0 {
		data = make([][]byte, c.k)
		for i := range data {
			data[i] = append([]byte(nil), shards[i]...)
		}
		return data, 0, nil
	}

	if len(present) > c.k {
		if err := c.fec.Correct(present); err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrUncorrectableBlock, err)
		}
		for _, s := range present {
			orig := shards[s.Number]
			for j := range orig {
				if orig[j] != s.Data[j] {
					corrected++
				}
			}
		}
	}

	out, err := c.fec.Decode(nil, present)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUncorrectableBlock, err)
	}
	if len(out) != c.k*size {
		return nil, 0, fmt.Errorf("%w: decoded %d bytes, want %d", ErrUncorrectableBlock, len(out), c.k*size)
	}
	data = make([][]byte, c.k)
	for i := range data {
		data[i] = out[i*size : (i+1)*size : (i+1)*size]
	}
	return data, corrected, nil
}

func (c *Code) shardSize(shards [][]byte, want int) (int, error) {
	if len(shards) != want {
		return 0, fmt.Errorf("ecc: got %d shards, want %d", len(shards), want)
	}
	size := len(shards[0])
	if size == 0 {
		return 0, errors.New("ecc: empty shard")
	}
	for i, s := range shards {
		if len(s) != size {
			return 0, fmt.Errorf("ecc: shard %d has %d bytes, want %d", i, len(s), size)
		}
	}
	return size, nil
}
