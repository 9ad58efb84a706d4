// pkg/api/strands_v1.go
package api

// StrandsV1 is the stable JSON document for a strand pool. The field name
// matches what the original web service returned.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type StrandsV1 struct {
	DNAStrands []string `json:"dnaStrands"`
}

// StrandV1 is one JSONL line of a strand pool.
type StrandV1 struct {
	Index  int    `json:"index"`
	Strand string `json:"strand"`
}

// ErrorV1 is written to stdout in JSON formats when a command fails.
type ErrorV1 struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	// Missing strand indices for kind "missing_strands".
	Missing []int `json:"missing,omitempty"`
}

// ViolationV1 is one strand that breaks the synthesis rules.
type ViolationV1 struct {
	Index  int    `json:"index"`
	Rule   string `json:"rule"`
	Detail string `json:"detail"`
}
