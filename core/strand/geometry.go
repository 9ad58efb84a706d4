// core/strand/geometry.go
package strand

import "fmt"

// Geometry fixes how frames are numbered. Data and ECC frames are grouped
// into blocks of Data+Parity positions; redundancy frames protect stripes
// of Width consecutive positions of a block with StripeParity frames each.
type Geometry struct {
	Data         int // data frames per full block
	Parity       int // ECC frames per block
	Width        int // positions per stripe
	StripeParity int // redundancy frames per stripe; 0 disables the layer
}

// Total is the number of positions in a block.
func (g Geometry) Total() int { return g.Data + g.Parity }

// Stripes is the number of stripes per block.
func (g Geometry) Stripes() int {
	if g.StripeParity == 0 {
		return 0
	}
	return (g.Total() + g.Width - 1) / g.Width
}

// Blocks is the number of blocks needed for n data frames.
func (g Geometry) Blocks(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + g.Data - 1) / g.Data
}

// Span is the number of real data frames in block b of n.
func (g Geometry) Span(b, n int) int {
	if n <= 0 {
		return 1
	}
	return min(g.Data, n-b*g.Data)
}

// Index numbers position pos of block b.
func (g Geometry) Index(b, pos int) int { return b*g.Total() + pos }

// Locate inverts Index.
func (g Geometry) Locate(index int) (b, pos int) { return index / g.Total(), index % g.Total() }

// RedundancyIndex numbers parity frame j of stripe s in block b.
func (g Geometry) RedundancyIndex(b, s, j int) int {
	return (b*g.Stripes()+s)*g.StripeParity + j
}

// LocateRedundancy inverts RedundancyIndex.
func (g Geometry) LocateRedundancy(index int) (b, s, j int) {
	j = index % g.StripeParity
	index /= g.StripeParity
	return index / g.Stripes(), index % g.Stripes(), j
}

// StripeBounds returns the positions [lo, hi) covered by stripe s.
func (g Geometry) StripeBounds(s int) (lo, hi int) {
	lo = s * g.Width
	return lo, min(lo+g.Width, g.Total())
}

// Check reports whether n data frames fit the index space.
func (g Geometry) Check(n int) error {
	blocks := g.Blocks(n)
	if last := g.Index(blocks-1, g.Total()-1); last > MaxIndex {
		return fmt.Errorf("strand: %d data frames need index %d, above %d", n, last, MaxIndex)
	}
	if g.StripeParity > 0 {
		if last := g.RedundancyIndex(blocks-1, g.Stripes()-1, g.StripeParity-1); last > MaxIndex {
			return fmt.Errorf("strand: %d data frames need redundancy index %d, above %d", n, last, MaxIndex)
		}
	}
	return nil
}
