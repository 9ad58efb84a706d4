// pkg/api/report_v1.go
package api

// ReportV1 summarizes an encode or decode run.
type ReportV1 struct {
	Operation      string `json:"operation"` // "encode" | "decode"
	PayloadBytes   int    `json:"payload_bytes"`
	ContainerBytes int    `json:"container_bytes"`
	Compression    string `json:"compression"`
	SequenceLength int    `json:"sequence_length"`
	FramePayload   int    `json:"frame_payload"`
	Blocks         int    `json:"blocks"`

	DataStrands       int `json:"data_strands"`
	ParityStrands     int `json:"parity_strands"`
	RedundancyStrands int `json:"redundancy_strands"`
	Strands           int `json:"strands"`

	MaxSeed int `json:"max_seed,omitempty"`

	Received         int            `json:"received,omitempty"`
	Accepted         int            `json:"accepted,omitempty"`
	Rejected         map[string]int `json:"rejected,omitempty"`
	Duplicates       int            `json:"duplicates,omitempty"`
	Flipped          int            `json:"flipped,omitempty"`
	HeaderFixes      int            `json:"header_fixes,omitempty"`
	RepairedStrands  int            `json:"repaired_strands,omitempty"`
	CorrectedSymbols int            `json:"corrected_symbols,omitempty"`
}

// StatsV1 describes a strand pool without decoding it.
type StatsV1 struct {
	Strands       int     `json:"strands"`
	MinLength     int     `json:"min_length"`
	MaxLength     int     `json:"max_length"`
	MeanGC        float64 `json:"mean_gc"`
	MinGC         float64 `json:"min_gc"`
	MaxGC         float64 `json:"max_gc"`
	MaxRun        int     `json:"max_run"`
	InvalidBases  int     `json:"invalid_strands,omitempty"`
	PrimersMasked bool    `json:"primers_masked,omitempty"`
}
