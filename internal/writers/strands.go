// internal/writers/strands.go
package writers

import (
	"bufio"
	"fmt"
	"io"

	"dnastore/internal/jsonutil"
	"dnastore/pkg/api"
)

// FASTA records are named strand_<n>, 1-based, in pool order.
const fastaPrefix = "strand_"

func init() {
	Register("text", WriteText)
	Register("json", WriteJSON)
	Register("fasta", WriteFASTA)
	Register("jsonl", WriteJSONL)
}

// WriteText writes one strand per line.
func WriteText(w io.Writer, strands []string) error {
	bw := bufio.NewWriter(w)
	for _, s := range strands {
		if _, err := bw.WriteString(s); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteJSON writes the pool as a single StrandsV1 document.
func WriteJSON(w io.Writer, strands []string) error {
	if strands == nil {
		strands = []string{}
	}
	return jsonutil.EncodePretty(w, api.StrandsV1{DNAStrands: strands})
}

// WriteFASTA writes one record per strand.
func WriteFASTA(w io.Writer, strands []string) error {
	bw := bufio.NewWriter(w)
	for i, s := range strands {
		if _, err := fmt.Fprintf(bw, ">%s%d len=%d\n%s\n", fastaPrefix, i+1, len(s), s); err != nil {
			return err
		}
	}
	return bw.Flush()
}
