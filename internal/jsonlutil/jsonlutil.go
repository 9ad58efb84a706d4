// internal/jsonlutil/jsonlutil.go
package jsonlutil

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
)

// Pools can be large; one 64 KiB buffered writer per stream is reused.
var bwPool = sync.Pool{
	New: func() any {
		return bufio.NewWriterSize(io.Discard, 64<<10)
	},
}

// Start runs a JSONL encoder goroutine for values of type T. Close the
// returned channel when done and read the error channel once.
//   - encode: writes one value (convert to wire type, then enc.Encode)
//   - isBroken: recognizes broken pipes, which end the stream silently
func Start[T any](out io.Writer, bufSize int, encode func(*json.Encoder, T) error, isBroken func(error) bool) (chan<- T, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan T, bufSize)
	done := make(chan error, 1)

	go func() {
		bw := bwPool.Get().(*bufio.Writer)
		bw.Reset(out)
		defer func() {
			bw.Reset(io.Discard)
			bwPool.Put(bw)
		}()

		enc := json.NewEncoder(bw)
		for v := range in {
			if err := encode(enc, v); err != nil {
				if isBroken(err) {
					err = nil
				}
				done <- err
				return
			}
		}
		if err := bw.Flush(); err != nil && !isBroken(err) {
			done <- err
			return
		}
		done <- nil
	}()

	return in, done
}
