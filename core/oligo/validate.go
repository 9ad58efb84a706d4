// core/oligo/validate.go
package oligo

import (
	"fmt"
	"unicode"
)

// Normalize removes spaces/quotes and uppercases bases.
func Normalize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || r == '\'' || r == '"' {
			continue
		}
		out = append(out, unicode.ToUpper(r))
	}
	return string(out)
}

// Validate returns a normalized strand or an error if it is empty or holds
// anything but A, C, G and T.
func Validate(raw string) (string, error) {
	s := Normalize(raw)
	if s == "" {
		return s, fmt.Errorf("empty oligo")
	}
	for i, r := range s {
		switch r {
		case 'A', 'C', 'G', 'T':
		default:
			return "", fmt.Errorf("invalid base %q at %d; allowed: A C G T", r, i+1)
		}
	}
	return s, nil
}
