// core/codec/decode.go
package codec

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"dnastore-core/constraint"
	"dnastore-core/container"
	"dnastore-core/ecc"
	"dnastore-core/oligo"
	"dnastore-core/strand"
)

// maxUnseenBlocks is how many trailing blocks may be wholly absent from a
// pool before the header's size is distrusted.
const maxUnseenBlocks = 1

type parsed struct {
	frame strand.Frame
	err   error
}

type candidate struct {
	frame strand.Frame
	order int // position in the input
}

type frameKey struct {
	redundant bool
	index     int
}

// blockFrames holds the selected frames of one block.
type blockFrames struct {
	ecc   [][]byte // by position
	red   [][]byte // by stripe*StripeParity + j
	spans map[int]int
}

type blockResult struct {
	data      []byte
	repaired  int
	corrected int
	err       error
}

// Decode recovers the payload from reads in any order and orientation.
// Duplicates, unparseable reads and reads past the end of the pool are
// tolerated; lost and corrupted strands are recovered up to the
// configured redundancy. On error no payload is returned.
func (c *Codec) Decode(reads []string) (*DecodeResult, error) {
	rep := Report{
		Received:       len(reads),
		Rejected:       map[string]int{},
		SequenceLength: c.layout.SequenceLength,
		FramePayload:   c.layout.Payload,
	}

	groups := map[frameKey][]candidate{}
	for i, p := range c.parseAll(reads) {
		if p.err != nil {
			rep.Rejected[rejectReason(p.err)]++
			continue
		}
		if p.frame.Redundant && c.striper == nil {
			rep.Rejected[RejectUnexpected]++
			continue
		}
		rep.Accepted++
		if p.frame.Flipped {
			rep.Flipped++
		}
		k := frameKey{p.frame.Redundant, p.frame.Index}
		groups[k] = append(groups[k], candidate{frame: p.frame, order: i})
	}

	blocks := map[int]*blockFrames{}
	for _, cands := range groups {
		best := vote(cands)
		rep.Duplicates += len(cands) - 1
		rep.HeaderFixes += best.frame.HeaderFixes
		c.place(blocks, best.frame)
	}
	c.log.Debug("reads parsed",
		"received", rep.Received, "accepted", rep.Accepted,
		"duplicates", rep.Duplicates, "rejected", rep.Rejected)

	// Decode leading blocks until the container header is readable; it
	// tells how many blocks the pool holds.
	var (
		stream []byte
		hdr    container.Header
		rest   []byte
		used   []int // span each leading block was decoded with
	)
	for b := 0; ; b++ {
		span := blocks[b].voteSpan(c.geo.Data)
		res := c.decodeBlock(b, span, blocks[b])
		if res.err != nil {
			return nil, c.blockFailure(b, res.err)
		}
		rep.RepairedStrands += res.repaired
		rep.CorrectedSymbols += res.corrected
		stream = append(stream, res.data...)
		used = append(used, span)

		var err error
		hdr, rest, err = container.ReadHeader(stream)
		if err == nil {
			break
		}
		if !errors.Is(err, container.ErrShortContainer) {
			return nil, fmt.Errorf("%w: %w", ErrUncorrectableBlock, err)
		}
	}

	size := hdr.Size(stream, rest)
	nframes := max(1, (size+c.layout.Payload-1)/c.layout.Payload)
	nblocks := c.geo.Blocks(nframes)
	if len(used) > nblocks {
		return nil, fmt.Errorf("%w: %w: header announces %d blocks but spans %d",
			ErrUncorrectableBlock, ErrMalformedContainer, nblocks, len(used))
	}
	last := -1
	for b := range blocks {
		last = max(last, b)
	}
	if nblocks > last+1+maxUnseenBlocks {
		return nil, fmt.Errorf("%w: %w: header announces %d blocks but no read reaches past block %d",
			ErrUncorrectableBlock, ErrMalformedContainer, nblocks, last)
	}
	for b, frames := range blocks {
		if b >= nblocks {
			rep.Rejected[RejectOutOfRange] += frames.count()
		}
	}

	results := make([]blockResult, nblocks)
	var g errgroup.Group
	g.SetLimit(c.workers)
	for b := 0; b < nblocks; b++ {
		b := b
		span := c.geo.Span(b, nframes)
		if b < len(used) && used[b] == span {
			continue
		}
		g.Go(func() error {
			results[b] = c.decodeBlock(b, span, blocks[b])
			return nil
		})
	}
	_ = g.Wait()

	// Leading blocks decoded with the right span are reused.
	var missing []int
	var failed error
	var full []byte
	for b := 0; b < nblocks; b++ {
		if b < len(used) && used[b] == c.geo.Span(b, nframes) {
			lo := 0
			for i := 0; i < b; i++ {
				lo += used[i] * c.layout.Payload
			}
			full = append(full, stream[lo:lo+used[b]*c.layout.Payload]...)
			continue
		}
		res := results[b]
		var ms *MissingStrandsError
		switch {
		case errors.As(res.err, &ms):
			missing = append(missing, ms.Indices...)
		case res.err != nil:
			if failed == nil {
				failed = c.blockFailure(b, res.err)
			}
		default:
			rep.RepairedStrands += res.repaired
			rep.CorrectedSymbols += res.corrected
			full = append(full, res.data...)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, &MissingStrandsError{Indices: missing}
	}
	if failed != nil {
		return nil, failed
	}

	payload, h, err := container.Unpack(full)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUncorrectableBlock, err)
	}

	rep.PayloadBytes = len(payload)
	rep.ContainerBytes = size
	rep.Compression = h.Compression.String()
	rep.Blocks = nblocks
	rep.DataStrands = nframes
	rep.ParityStrands = nblocks * c.geo.Parity
	for b := 0; b < nblocks; b++ {
		span := c.geo.Span(b, nframes)
		for s := 0; s < c.geo.Stripes(); s++ {
			lo, hi := c.geo.StripeBounds(s)
			if stripeEmitted(lo, hi, span, c.geo.Data) {
				rep.RedundancyStrands += c.geo.StripeParity
			}
		}
	}
	rep.Strands = rep.DataStrands + rep.ParityStrands + rep.RedundancyStrands
	c.log.Info("decoded",
		"payload_bytes", rep.PayloadBytes, "blocks", rep.Blocks,
		"repaired", rep.RepairedStrands, "corrected", rep.CorrectedSymbols)
	return &DecodeResult{Payload: payload, Report: rep}, nil
}

func (c *Codec) parseAll(reads []string) []parsed {
	out := make([]parsed, len(reads))
	chunk := max(64, (len(reads)+c.workers-1)/c.workers)
	var g errgroup.Group
	g.SetLimit(c.workers)
	for lo := 0; lo < len(reads); lo += chunk {
		lo := lo
		hi := min(lo+chunk, len(reads))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				f, err := c.asm.Parse([]byte(oligo.Normalize(reads[i])))
				out[i] = parsed{frame: f, err: err}
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, strand.ErrWrongLength):
		return RejectWrongLength
	case errors.Is(err, strand.ErrPrimerMismatch):
		return RejectPrimerMismatch
	case errors.Is(err, constraint.ErrBadSeed):
		return RejectBadSeed
	case errors.Is(err, constraint.ErrNotCodeword):
		return RejectNotCodeword
	case errors.Is(err, strand.ErrBadHeader):
		return RejectBadHeader
	default:
		return RejectMalformed
	}
}

// vote picks one copy among reads of the same strand: the content seen
// most often, then the copy whose header needed fewer repairs, then the
// earliest read.
func vote(cands []candidate) candidate {
	type tally struct {
		count int
		best  candidate
	}
	var order []*tally
	byContent := map[string]*tally{}
	for _, cd := range cands {
		key := string(append([]byte{byte(cd.frame.Span)}, cd.frame.Payload...))
		t, ok := byContent[key]
		if !ok {
			t = &tally{best: cd}
			byContent[key] = t
			order = append(order, t)
		}
		t.count++
		if cd.frame.HeaderFixes < t.best.frame.HeaderFixes {
			t.best = cd
		}
	}
	win := order[0]
	for _, t := range order[1:] {
		switch {
		case t.count > win.count:
			win = t
		case t.count < win.count:
		case t.best.frame.HeaderFixes < win.best.frame.HeaderFixes:
			win = t
		case t.best.frame.HeaderFixes == win.best.frame.HeaderFixes && t.best.order < win.best.order:
			win = t
		}
	}
	return win.best
}

func (c *Codec) place(blocks map[int]*blockFrames, f strand.Frame) {
	var b int
	if f.Redundant {
		var s, j int
		b, s, j = c.geo.LocateRedundancy(f.Index)
		c.block(blocks, b).red[s*c.geo.StripeParity+j] = f.Payload
	} else {
		var pos int
		b, pos = c.geo.Locate(f.Index)
		c.block(blocks, b).ecc[pos] = f.Payload
	}
	if f.Span >= 1 && f.Span <= c.geo.Data {
		blocks[b].spans[f.Span]++
	}
}

func (c *Codec) block(blocks map[int]*blockFrames, b int) *blockFrames {
	bf, ok := blocks[b]
	if !ok {
		bf = &blockFrames{
			ecc:   make([][]byte, c.geo.Total()),
			red:   make([][]byte, c.geo.Stripes()*c.geo.StripeParity),
			spans: map[int]int{},
		}
		blocks[b] = bf
	}
	return bf
}

// voteSpan returns the span most frames of the block agree on, the larger
// one on a tie, or def when nothing was seen.
func (bf *blockFrames) voteSpan(def int) int {
	if bf == nil {
		return def
	}
	span, votes := def, 0
	for s, n := range bf.spans {
		if n > votes || (n == votes && s > span) {
			span, votes = s, n
		}
	}
	return span
}

func (bf *blockFrames) count() int {
	n := 0
	for _, f := range bf.ecc {
		if f != nil {
			n++
		}
	}
	for _, f := range bf.red {
		if f != nil {
			n++
		}
	}
	return n
}

// decodeBlock rebuilds the span data frames of block b: stripe parity
// fills lost frames first, then block ECC corrects what remains.
func (c *Codec) decodeBlock(b, span int, bf *blockFrames) blockResult {
	k, total := c.geo.Data, c.geo.Total()
	shards := make([][]byte, total)
	for pos := 0; pos < total; pos++ {
		switch {
		case !emitted(pos, span, k):
			shards[pos] = make([]byte, c.layout.Payload)
		case bf != nil:
			shards[pos] = bf.ecc[pos]
		}
	}

	var res blockResult
	if c.striper != nil {
		for s := 0; s < c.geo.Stripes(); s++ {
			lo, hi := c.geo.StripeBounds(s)
			parity := make([][]byte, c.geo.StripeParity)
			if bf != nil {
				copy(parity, bf.red[s*c.geo.StripeParity:])
			}
			n, err := c.striper.Repair(shards[lo:hi], parity)
			if err != nil && !errors.Is(err, strand.ErrStripeLost) {
				return blockResult{err: err}
			}
			res.repaired += n
		}
	}

	data, corrected, err := c.code.Correct(shards)
	if err != nil {
		if errors.Is(err, ecc.ErrInsufficientShards) {
			var idx []int
			for pos := 0; pos < total; pos++ {
				if shards[pos] == nil {
					idx = append(idx, c.geo.Index(b, pos))
				}
			}
			return blockResult{err: &MissingStrandsError{Indices: idx}}
		}
		return blockResult{err: err}
	}
	res.corrected = corrected
	res.data = make([]byte, 0, span*c.layout.Payload)
	for _, d := range data[:span] {
		res.data = append(res.data, d...)
	}
	if res.repaired > 0 || corrected > 0 {
		c.log.Debug("block recovered", "block", b, "repaired", res.repaired, "corrected", corrected)
	}
	return res
}

func (c *Codec) blockFailure(b int, err error) error {
	var ms *MissingStrandsError
	if errors.As(err, &ms) {
		return err
	}
	return &BlockError{Block: b, Err: err}
}
