// internal/writers/jsonl.go
package writers

import (
	"encoding/json"
	"io"

	"dnastore/internal/jsonlutil"
	"dnastore/pkg/api"
)

// StartStrandJSONLWriter streams each strand as one StrandV1 line.
func StartStrandJSONLWriter(out io.Writer, bufSize int) (chan<- api.StrandV1, <-chan error) {
	return jsonlutil.Start[api.StrandV1](out, bufSize,
		func(enc *json.Encoder, s api.StrandV1) error {
			return enc.Encode(s)
		},
		IsBrokenPipe,
	)
}

// WriteJSONL writes the pool as JSON lines, numbering strands from 0.
func WriteJSONL(w io.Writer, strands []string) error {
	in, done := StartStrandJSONLWriter(w, 0)
	for i, s := range strands {
		select {
		case in <- api.StrandV1{Index: i, Strand: s}:
		case err := <-done:
			close(in)
			return err
		}
	}
	close(in)
	return <-done
}
