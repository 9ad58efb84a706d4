// core/codec/report.go
package codec

// Report summarizes one encode or decode call.
type Report struct {
	PayloadBytes   int    // original payload size
	ContainerBytes int    // header plus stored bytes
	Compression    string // compression actually used

	SequenceLength int
	FramePayload   int // payload bytes per strand
	Blocks         int

	DataStrands       int
	ParityStrands     int // block ECC
	RedundancyStrands int // stripe parity
	Strands           int

	// Encode only.
	MaxSeed int // highest scrambling seed any strand needed

	// Decode only.
	Received         int
	Accepted         int
	Rejected         map[string]int // by reason
	Duplicates       int
	Flipped          int // reads taken from the reverse complement
	HeaderFixes      int
	RepairedStrands  int // rebuilt from stripe parity
	CorrectedSymbols int // bytes changed by block ECC
}

// EncodeResult is the output of a successful encode.
type EncodeResult struct {
	Strands []string
	Report  Report
}

// DecodeResult is the output of a successful decode.
type DecodeResult struct {
	Payload []byte
	Report  Report
}

// Reasons a read is rejected during decode.
const (
	RejectWrongLength    = "wrong_length"
	RejectPrimerMismatch = "primer_mismatch"
	RejectBadSeed        = "bad_seed"
	RejectNotCodeword    = "not_codeword"
	RejectBadHeader      = "bad_header"
	RejectMalformed      = "malformed"
	RejectOutOfRange     = "out_of_range"
	RejectUnexpected     = "unexpected_redundancy"
)
