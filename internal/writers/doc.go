// Package writers serializes strand pools and run results.
//
// Design:
//   - Writers own all presentation knowledge (text, JSON/JSONL, FASTA).
//   - The codec stays domain-only and never sees a format name.
//   - JSON/JSONL go through pkg/api (v1) for a stable wire format.
package writers
