// core/primer/loader.go
package primer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseTSV reads primer pairs, one "id forward reverse" line each. Blank
// lines and lines starting with '#' are skipped. name is used in errors.
func ParseTSV(r io.Reader, name string) ([]Pair, error) {
	var list []Pair
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Fields(line)
		if len(f) != 3 {
			return nil, fmt.Errorf("%s:%d bad field count %d (want id forward reverse)", name, ln, len(f))
		}
		list = append(list, Pair{
			ID:      f[0],
			Forward: strings.ToUpper(f[1]),
			Reverse: strings.ToUpper(f[2]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// Find returns the pair with the given id, or the first pair when id is empty.
func Find(pairs []Pair, id string) (Pair, bool) {
	for _, p := range pairs {
		if id == "" || p.ID == id {
			return p, true
		}
	}
	return Pair{}, false
}
