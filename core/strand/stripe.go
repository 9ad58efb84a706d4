// core/strand/stripe.go
package strand

import (
	"errors"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// ErrStripeLost means a stripe lost more frames than it has parity.
var ErrStripeLost = errors.New("stripe lost")

// Striper computes and applies strand-level parity. Frames of one stripe
// are the data shards of a Reed–Solomon code; missing frames are erasures.
// It is safe for concurrent use.
type Striper struct {
	geo  Geometry
	encs map[int]reedsolomon.Encoder // by stripe width
}

// NewStriper prepares encoders for every stripe width of geo.
func NewStriper(geo Geometry) (*Striper, error) {
	if geo.StripeParity < 1 {
		return nil, fmt.Errorf("strand: stripe parity must be >= 1, got %d", geo.StripeParity)
	}
	if geo.Width < 1 {
		return nil, fmt.Errorf("strand: stripe width must be >= 1, got %d", geo.Width)
	}
	s := &Striper{geo: geo, encs: make(map[int]reedsolomon.Encoder, 2)}
	for i := 0; i < geo.Stripes(); i++ {
		lo, hi := geo.StripeBounds(i)
		w := hi - lo
		if _, ok := s.encs[w]; ok {
			continue
		}
		enc, err := reedsolomon.New(w, geo.StripeParity)
		if err != nil {
			return nil, fmt.Errorf("strand: stripe code %d+%d: %w", w, geo.StripeParity, err)
		}
		s.encs[w] = enc
	}
	return s, nil
}

// Parity returns the StripeParity parity frames for the members of one
// stripe. All members must be present and of equal length.
func (s *Striper) Parity(members [][]byte) ([][]byte, error) {
	enc, ok := s.encs[len(members)]
	if !ok {
		return nil, fmt.Errorf("strand: no stripe of width %d", len(members))
	}
	shards := make([][]byte, len(members)+s.geo.StripeParity)
	copy(shards, members)
	size := len(members[0])
	for i := len(members); i < len(shards); i++ {
		shards[i] = make([]byte, size)
	}
	if err := enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("strand: stripe parity: %w", err)
	}
	return shards[len(members):], nil
}

// Repair fills nil members from the surviving members and parity (nil
// entries in parity are lost). It returns the number of members restored.
// members is updated in place.
func (s *Striper) Repair(members, parity [][]byte) (int, error) {
	missing := 0
	for _, m := range members {
		if m == nil {
			missing++
		}
	}
	if missing == 0 {
		return 0, nil
	}
	enc, ok := s.encs[len(members)]
	if !ok {
		return 0, fmt.Errorf("strand: no stripe of width %d", len(members))
	}
	shards := make([][]byte, 0, len(members)+len(parity))
	shards = append(shards, members...)
	shards = append(shards, parity...)
	if err := enc.ReconstructData(shards); err != nil {
		if errors.Is(err, reedsolomon.ErrTooFewShards) {
			return 0, fmt.Errorf("%w: %d missing", ErrStripeLost, missing)
		}
		return 0, fmt.Errorf("strand: stripe repair: %w", err)
	}
	copy(members, shards[:len(members)])
	return missing, nil
}
