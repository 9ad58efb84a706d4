// pkg/api/manifest_v1.go
package api

import "dnastore-core/codec"

// ManifestV1 is written next to an encoded pool. Its configuration keys
// are the same as a --config file, so a manifest can be passed back to
// decode as is.
type ManifestV1 struct {
	ManifestVersion int    `yaml:"manifest_version"`
	Source          string `yaml:"source,omitempty"`

	codec.Config `yaml:",inline"`

	Strands        int    `yaml:"strands"`
	PayloadBytes   int    `yaml:"payload_bytes"`
	ContainerBytes int    `yaml:"container_bytes"`
	Stored         string `yaml:"stored_compression"`
	PrimerForward  string `yaml:"primer_forward_used,omitempty"`
	PrimerReverse  string `yaml:"primer_reverse_used,omitempty"`
}
