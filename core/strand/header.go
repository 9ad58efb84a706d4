// core/strand/header.go
package strand

import (
	"errors"
	"fmt"

	"dnastore-core/base"
	"dnastore-core/ecc"
)

const (
	headerData   = 4
	headerParity = 2

	// HeaderSymbols is the encoded size of a frame header.
	HeaderSymbols = (headerData + headerParity) * base.SymbolsPerByte

	// MaxIndex is the largest index a header can carry.
	MaxIndex = 1<<23 - 1

	redundancyBit = 1 << 23
)

// ErrBadHeader means a frame header could not be recovered.
var ErrBadHeader = errors.New("unrecoverable frame header")

var headerCode *ecc.Code

func init() {
	var err error
	headerCode, err = ecc.New(headerData, headerParity)
	if err != nil {
		panic("strand: header code initialization failed: " + err.Error())
	}
}

// encodeHeader packs index, kind and span into six bytes: a 23-bit index
// with the redundancy flag in bit 23, the span byte, and two RS parity
// bytes that correct any single corrupted byte.
func encodeHeader(index int, redundant bool, span int) ([]byte, error) {
	if index < 0 || index > MaxIndex {
		return nil, fmt.Errorf("strand: index %d out of range 0..%d", index, MaxIndex)
	}
	if span < 1 || span > 255 {
		return nil, fmt.Errorf("strand: span %d out of range 1..255", span)
	}
	v := uint32(index)
	if redundant {
		v |= redundancyBit
	}
	data := [][]byte{{byte(v >> 16)}, {byte(v >> 8)}, {byte(v)}, {byte(span)}}
	parity, err := headerCode.Encode(data)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, headerData+headerParity)
	for _, s := range data {
		out = append(out, s[0])
	}
	for _, s := range parity {
		out = append(out, s[0])
	}
	return out, nil
}

func decodeHeader(b []byte) (index int, redundant bool, span int, fixes int, err error) {
	if len(b) != headerData+headerParity {
		return 0, false, 0, 0, fmt.Errorf("%w: %d bytes", ErrBadHeader, len(b))
	}
	shards := make([][]byte, len(b))
	for i := range b {
		shards[i] = b[i : i+1]
	}
	data, fixes, err := headerCode.Correct(shards)
	if err != nil {
		return 0, false, 0, 0, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	v := uint32(data[0][0])<<16 | uint32(data[1][0])<<8 | uint32(data[2][0])
	span = int(data[3][0])
	if span == 0 {
		return 0, false, 0, 0, fmt.Errorf("%w: zero span", ErrBadHeader)
	}
	return int(v &^ redundancyBit), v&redundancyBit != 0, span, fixes, nil
}
