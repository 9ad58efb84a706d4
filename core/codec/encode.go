// core/codec/encode.go
package codec

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"dnastore-core/container"
	"dnastore-core/strand"
)

type encodedBlock struct {
	strands   []string
	parity    int
	redundant int
	maxSeed   int
}

// Encode packs payload into a container and renders it as strands. The
// output is identical for identical payload and configuration. On error
// no strands are returned.
func (c *Codec) Encode(payload []byte) (*EncodeResult, error) {
	packed, hdr, err := container.Pack(payload, c.compression)
	if err != nil {
		return nil, err
	}

	frames := split(packed, c.layout.Payload)
	if err := c.geo.Check(len(frames)); err != nil {
		return nil, &ConfigError{Field: "sequence_length", Reason: err.Error()}
	}
	nblocks := c.geo.Blocks(len(frames))

	out := make([]encodedBlock, nblocks)
	var g errgroup.Group
	g.SetLimit(c.workers)
	for b := 0; b < nblocks; b++ {
		b := b
		g.Go(func() error {
			lo := b * c.geo.Data
			hi := lo + c.geo.Span(b, len(frames))
			eb, err := c.encodeBlock(b, frames[lo:hi])
			if err != nil {
				return &BlockError{Block: b, Err: err}
			}
			out[b] = eb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := Report{
		PayloadBytes:   len(payload),
		ContainerBytes: len(packed),
		Compression:    hdr.Compression.String(),
		SequenceLength: c.layout.SequenceLength,
		FramePayload:   c.layout.Payload,
		Blocks:         nblocks,
		DataStrands:    len(frames),
	}
	strands := make([]string, 0, len(frames)+nblocks*(c.geo.Parity+c.geo.Stripes()*c.geo.StripeParity))
	for _, eb := range out {
		strands = append(strands, eb.strands...)
		rep.ParityStrands += eb.parity
		rep.RedundancyStrands += eb.redundant
		rep.MaxSeed = max(rep.MaxSeed, eb.maxSeed)
	}
	rep.Strands = len(strands)
	c.log.Info("encoded",
		"payload_bytes", rep.PayloadBytes, "container_bytes", rep.ContainerBytes,
		"compression", rep.Compression, "blocks", rep.Blocks, "strands", rep.Strands)
	return &EncodeResult{Strands: strands, Report: rep}, nil
}

// split cuts data into frames of size bytes, zero-padding the last one.
// Empty data still yields one frame so every pool has a block 0.
func split(data []byte, size int) [][]byte {
	n := max(1, (len(data)+size-1)/size)
	frames := make([][]byte, n)
	for i := range frames {
		f := make([]byte, size)
		if lo := i * size; lo < len(data) {
			copy(f, data[lo:])
		}
		frames[i] = f
	}
	return frames
}

func (c *Codec) encodeBlock(b int, data [][]byte) (encodedBlock, error) {
	span := len(data)
	total := c.geo.Total()

	// Positions past span are the implicit zero frames of a shortened block.
	shards := make([][]byte, total)
	copy(shards, data)
	for pos := span; pos < c.geo.Data; pos++ {
		shards[pos] = make([]byte, c.layout.Payload)
	}
	parity, err := c.code.Encode(shards[:c.geo.Data])
	if err != nil {
		return encodedBlock{}, err
	}
	copy(shards[c.geo.Data:], parity)

	eb := encodedBlock{parity: len(parity)}
	emit := func(f strand.Frame) error {
		s, seed, err := c.asm.Assemble(f)
		if err != nil {
			return err
		}
		eb.strands = append(eb.strands, string(s))
		eb.maxSeed = max(eb.maxSeed, seed)
		return nil
	}

	for pos := 0; pos < total; pos++ {
		if !emitted(pos, span, c.geo.Data) {
			continue
		}
		f := strand.Frame{Index: c.geo.Index(b, pos), Span: span, Payload: shards[pos]}
		if err := emit(f); err != nil {
			return encodedBlock{}, err
		}
	}

	if c.striper == nil {
		return eb, nil
	}
	for s := 0; s < c.geo.Stripes(); s++ {
		lo, hi := c.geo.StripeBounds(s)
		if !stripeEmitted(lo, hi, span, c.geo.Data) {
			continue
		}
		sp, err := c.striper.Parity(shards[lo:hi])
		if err != nil {
			return encodedBlock{}, err
		}
		for j, p := range sp {
			f := strand.Frame{Index: c.geo.RedundancyIndex(b, s, j), Redundant: true, Span: span, Payload: p}
			if err := emit(f); err != nil {
				return encodedBlock{}, fmt.Errorf("redundancy strand: %w", err)
			}
			eb.redundant++
		}
	}
	return eb, nil
}

// emitted reports whether position pos of a block with span real frames
// out of k data positions is written as a strand.
func emitted(pos, span, k int) bool { return pos < span || pos >= k }

func stripeEmitted(lo, hi, span, k int) bool {
	for pos := lo; pos < hi; pos++ {
		if emitted(pos, span, k) {
			return true
		}
	}
	return false
}
