// core/container/compress.go
package container

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how the payload is stored inside the container.
// Tag values are written into strands; changing them breaks decoding of
// existing pools.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionLZ4  Compression = 1
	CompressionZstd Compression = 2

	// CompressionAuto is a request, never stored: it resolves to one of the
	// tags above from the payload's detected content type.
	CompressionAuto Compression = 0xFF
)

var errIncompressible = errors.New("incompressible")

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	case CompressionAuto:
		return "auto"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	case "auto":
		return CompressionAuto, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (want none, lz4, zstd or auto)", name)
	}
}

// already-compressed formats gain nothing from another pass
var packed = []string{
	"application/zip", "application/gzip", "application/x-xz", "application/zstd",
	"application/x-bzip2", "application/x-7z-compressed", "application/x-rar-compressed",
	"image/png", "image/jpeg", "image/gif", "image/webp",
	"video/mp4", "video/webm", "audio/mpeg", "audio/ogg", "application/pdf",
}

// Choose resolves CompressionAuto for data: none for formats that are
// already compressed, zstd for text, lz4 for anything else.
func Choose(data []byte) Compression {
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return CompressionZstd
		}
	}
	if slices.ContainsFunc(packed, mt.Is) {
		return CompressionNone
	}
	return CompressionLZ4
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		panic("container: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		panic("container: zstd decoder initialization failed: " + err.Error())
	}
}

func compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, dst, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if n == 0 || n >= len(data) {
			return nil, errIncompressible
		}
		return dst[:n], nil
	case CompressionZstd:
		out := zstdEncoder.EncodeAll(data, nil)
		if len(out) >= len(data) {
			return nil, errIncompressible
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported compression tag %d", uint8(c))
	}
}

func decompress(stored []byte, c Compression, size int) ([]byte, error) {
	switch c {
	case CompressionNone:
		if len(stored) != size {
			return nil, fmt.Errorf("stored %d bytes, header says %d", len(stored), size)
		}
		return stored, nil
	case CompressionLZ4:
		dst := make([]byte, size)
		n, err := lz4.UncompressBlock(stored, dst)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if n != size {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, want %d", n, size)
		}
		return dst, nil
	case CompressionZstd:
		out, err := zstdDecoder.DecodeAll(stored, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(out) != size {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, want %d", len(out), size)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported compression tag %d", uint8(c))
	}
}
