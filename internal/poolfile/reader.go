// internal/poolfile/reader.go
package poolfile

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
)

// ErrMalformedPool means a pool file could be read but not parsed.
var ErrMalformedPool = errors.New("malformed strand pool")

// Open opens path on fs, or stdin for "-", and gunzips it when it starts
// with the gzip magic number.
func Open(fs afero.Fs, path string, stdin io.Reader) (io.ReadCloser, error) {
	var rc io.ReadCloser
	if path == "-" {
		rc = io.NopCloser(stdin)
	} else {
		fh, err := fs.Open(path)
		if err != nil {
			return nil, err
		}
		rc = fh
	}
	br := bufio.NewReader(rc)
	sig, _ := br.Peek(2)
	if len(sig) == 2 && sig[0] == 0x1f && sig[1] == 0x8b {
		gr, err := gzip.NewReader(br)
		if err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("%s: %w: %w", path, ErrMalformedPool, err)
		}
		return struct {
			io.Reader
			io.Closer
		}{Reader: gr, Closer: rc}, nil
	}
	return struct {
		io.Reader
		io.Closer
	}{Reader: br, Closer: rc}, nil
}

// Load reads a strand pool from path.
func Load(fs afero.Fs, path string, stdin io.Reader) ([]string, error) {
	rc, err := Open(fs, path, stdin)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	strands, err := Read(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return strands, nil
}

// Read parses a strand pool. The format is sniffed from the first
// non-blank byte: JSON ('{' or '['; a StrandsV1 document, a string array
// or StrandV1 lines), FASTA ('>') or one strand per line.
func Read(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '{', '[':
		return readJSON(trimmed)
	case '>':
		return readFASTA(trimmed), nil
	default:
		return readLines(trimmed), nil
	}
}

type jsonEntry struct {
	DNAStrands []string `json:"dnaStrands"`
	Strand     *string  `json:"strand"`
}

func readJSON(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var out []string
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("%w: JSON: %w", ErrMalformedPool, err)
		}
		if raw[0] == '[' {
			var list []string
			if err := json.Unmarshal(raw, &list); err != nil {
				return nil, fmt.Errorf("%w: JSON strand list: %w", ErrMalformedPool, err)
			}
			out = append(out, list...)
			continue
		}
		var e jsonEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("%w: JSON: %w", ErrMalformedPool, err)
		}
		switch {
		case e.DNAStrands != nil:
			out = append(out, e.DNAStrands...)
		case e.Strand != nil:
			out = append(out, *e.Strand)
		default:
			return nil, fmt.Errorf(`%w: JSON object has neither "dnaStrands" nor "strand"`, ErrMalformedPool)
		}
	}
}

// readFASTA joins the sequence lines of each record.
func readFASTA(data []byte) []string {
	var (
		out []string
		cur strings.Builder
		in  bool
	)
	flush := func() {
		if in {
			out = append(out, cur.String())
		}
		cur.Reset()
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, ">") {
			flush()
			in = true
			continue
		}
		cur.WriteString(line)
	}
	flush()
	return out
}

func readLines(data []byte) []string {
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
