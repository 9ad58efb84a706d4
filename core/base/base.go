// core/base/base.go
package base

import (
	"errors"
	"fmt"
)

// SymbolsPerByte is the number of nucleotides one byte maps to (2 bits each).
const SymbolsPerByte = 4

// ErrMalformedSymbolStream is returned when a symbol stream cannot be unmapped.
var ErrMalformedSymbolStream = errors.New("malformed symbol stream")

// Alphabet holds the symbols in 2-bit value order: A=00 C=01 G=10 T=11.
var Alphabet = [4]byte{'A', 'C', 'G', 'T'}

/* ----------------------------- lookup table ----------------------------- */

var value [256]int8 // -1 = not a base

func init() {
	for i := range value {
		value[i] = -1
	}
	for v, b := range Alphabet {
		value[b] = int8(v)
	}
}

// Value returns the 2-bit value of base b, or -1 if b is not one of A/C/G/T.
func Value(b byte) int { return int(value[b]) }

// Symbol returns the base for the low two bits of v.
func Symbol(v int) byte { return Alphabet[v&3] }

// IsGC reports whether b is G or C.
func IsGC(b byte) bool { return b == 'G' || b == 'C' }

/* ------------------------------- mapping -------------------------------- */

// Encode maps data to nucleotides, most significant bit pair first.
func Encode(data []byte) []byte {
	out := make([]byte, len(data)*SymbolsPerByte)
	for i, b := range data {
		o := out[i*SymbolsPerByte:]
		o[0] = Alphabet[b>>6]
		o[1] = Alphabet[(b>>4)&3]
		o[2] = Alphabet[(b>>2)&3]
		o[3] = Alphabet[b&3]
	}
	return out
}

// Decode is the inverse of Encode.
func Decode(symbols []byte) ([]byte, error) {
	if len(symbols)%SymbolsPerByte != 0 {
		return nil, fmt.Errorf("%w: %d symbols is not a multiple of %d",
			ErrMalformedSymbolStream, len(symbols), SymbolsPerByte)
	}
	out := make([]byte, len(symbols)/SymbolsPerByte)
	for i := range out {
		var b byte
		for j := 0; j < SymbolsPerByte; j++ {
			s := symbols[i*SymbolsPerByte+j]
			v := value[s]
			if v < 0 {
				return nil, fmt.Errorf("%w: invalid base %q at %d",
					ErrMalformedSymbolStream, s, i*SymbolsPerByte+j+1)
			}
			b = b<<2 | byte(v)
		}
		out[i] = b
	}
	return out, nil
}
