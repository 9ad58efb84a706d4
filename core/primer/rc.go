// core/primer/rc.go
package primer

var complement [256]byte

func init() {
	for _, p := range [][2]byte{
		{'A', 'T'}, {'C', 'G'}, {'G', 'C'}, {'T', 'A'},
		{'R', 'Y'}, {'Y', 'R'}, {'S', 'S'}, {'W', 'W'},
		{'K', 'M'}, {'M', 'K'}, {'B', 'V'}, {'V', 'B'},
		{'D', 'H'}, {'H', 'D'}, {'N', 'N'},
	} {
		complement[p[0]] = p[1]
	}
}

// RevComp returns the reverse complement of seq. Unknown bytes become N.
func RevComp(seq []byte) []byte {
	n := len(seq)
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		c := complement[seq[n-1-i]]
		if c == 0 {
			c = 'N'
		}
		out[i] = c
	}
	return out
}
