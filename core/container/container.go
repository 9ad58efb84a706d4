// Package container wraps a payload in the self-describing envelope that
// is cut into strands: a CBOR header (version, compression, sizes, digest)
// followed by the stored bytes.
package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

const (
	// Version is the envelope format written by Pack.
	Version = 1

	// DigestSize is the number of BLAKE3-256 bytes kept in the header.
	DigestSize = 16

	// TagSize is the number of BLAKE3 bytes authenticating the header fields.
	TagSize = 4

	// MaxHeaderSize bounds the encoded header.
	MaxHeaderSize = 64

	headerDomain = "dnastore/header"
)

var (
	// ErrMalformedContainer means the decoded stream is not an envelope
	// this package wrote.
	ErrMalformedContainer = errors.New("malformed container")

	// ErrShortContainer means more bytes are needed to read the header or body.
	ErrShortContainer = errors.New("short container")

	// ErrDigestMismatch means the unpacked payload is not the one packed.
	ErrDigestMismatch = errors.New("payload digest mismatch")
)

// Header is the envelope header. The toarray form keeps it to roughly
// thirty bytes, which matters when every byte costs four bases.
type Header struct {
	_           struct{} `cbor:",toarray"`
	Version     uint8
	Compression Compression
	Length      uint64 // original payload length
	Stored      uint64 // bytes that follow the header
	Digest      []byte
	Tag         []byte // over the fields above; see tag
}

// tag binds the sizes to the rest of the header so a damaged Stored or
// Length is caught before it is used to size anything.
func (h Header) tag() []byte {
	var buf [2 + 8 + 8]byte
	buf[0] = h.Version
	buf[1] = byte(h.Compression)
	binary.BigEndian.PutUint64(buf[2:], h.Length)
	binary.BigEndian.PutUint64(buf[10:], h.Stored)
	d := blake3.New()
	_, _ = d.Write([]byte(headerDomain))
	_, _ = d.Write(buf[:])
	_, _ = d.Write(h.Digest)
	return d.Sum(nil)[:TagSize]
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("container: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: 16,
		MaxNestedLevels:  4,
	}.DecMode()
	if err != nil {
		panic("container: CBOR decoder initialization failed: " + err.Error())
	}
}

// Digest returns the truncated BLAKE3-256 digest stored in headers.
func Digest(payload []byte) []byte {
	sum := blake3.Sum256(payload)
	return append([]byte(nil), sum[:DigestSize]...)
}

// Pack builds the envelope for payload. CompressionAuto is resolved with
// Choose; a compression that does not shrink the payload falls back to none.
func Pack(payload []byte, c Compression) ([]byte, Header, error) {
	if c == CompressionAuto {
		c = Choose(payload)
	}
	stored, err := compress(payload, c)
	if errors.Is(err, errIncompressible) {
		c, stored, err = CompressionNone, payload, nil
	}
	if err != nil {
		return nil, Header{}, err
	}
	h := Header{
		Version:     Version,
		Compression: c,
		Length:      uint64(len(payload)),
		Stored:      uint64(len(stored)),
		Digest:      Digest(payload),
	}
	h.Tag = h.tag()
	hdr, err := encMode.Marshal(h)
	if err != nil {
		return nil, Header{}, fmt.Errorf("container: encode header: %w", err)
	}
	out := make([]byte, 0, len(hdr)+len(stored))
	out = append(out, hdr...)
	return append(out, stored...), h, nil
}

// ReadHeader decodes the header at the start of data and returns the bytes
// that follow it. ErrShortContainer means data ends inside the header.
func ReadHeader(data []byte) (Header, []byte, error) {
	var h Header
	rest, err := decMode.UnmarshalFirst(data, &h)
	if err != nil {
		if len(data) < MaxHeaderSize && isTruncated(err) {
			return Header{}, nil, fmt.Errorf("%w: %d bytes", ErrShortContainer, len(data))
		}
		return Header{}, nil, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}
	if h.Version != Version {
		return Header{}, nil, fmt.Errorf("%w: version %d", ErrMalformedContainer, h.Version)
	}
	switch h.Compression {
	case CompressionNone, CompressionLZ4, CompressionZstd:
	default:
		return Header{}, nil, fmt.Errorf("%w: compression tag %d", ErrMalformedContainer, uint8(h.Compression))
	}
	if len(h.Digest) != DigestSize || len(h.Tag) != TagSize {
		return Header{}, nil, fmt.Errorf("%w: digest or tag size", ErrMalformedContainer)
	}
	if !bytes.Equal(h.Tag, h.tag()) {
		return Header{}, nil, fmt.Errorf("%w: header tag mismatch", ErrMalformedContainer)
	}
	if h.Stored > math.MaxInt32 || h.Length > math.MaxInt32 {
		return Header{}, nil, fmt.Errorf("%w: implausible sizes %d/%d", ErrMalformedContainer, h.Stored, h.Length)
	}
	return h, rest, nil
}

// Size returns the full envelope length announced by a header read from data.
func (h Header) Size(data, rest []byte) int {
	return len(data) - len(rest) + int(h.Stored)
}

// Unpack reverses Pack. Trailing bytes after the stored body (frame
// padding) are ignored.
func Unpack(data []byte) ([]byte, Header, error) {
	h, rest, err := ReadHeader(data)
	if err != nil {
		return nil, Header{}, err
	}
	if uint64(len(rest)) < h.Stored {
		return nil, Header{}, fmt.Errorf("%w: body has %d of %d bytes", ErrShortContainer, len(rest), h.Stored)
	}
	payload, err := decompress(rest[:h.Stored], h.Compression, int(h.Length))
	if err != nil {
		return nil, Header{}, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}
	if !bytes.Equal(Digest(payload), h.Digest) {
		return nil, Header{}, ErrDigestMismatch
	}
	return payload, h, nil
}

func isTruncated(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}
