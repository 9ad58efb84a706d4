// internal/writers/result.go
package writers

import (
	"io"

	"dnastore/internal/jsonutil"
	"dnastore/pkg/api"
)

// WriteError reports a failed run as an ErrorV1 document.
func WriteError(w io.Writer, e api.ErrorV1) error { return jsonutil.EncodePretty(w, e) }

// WriteReport writes a run report as indented JSON.
func WriteReport(w io.Writer, r api.ReportV1) error { return jsonutil.EncodePretty(w, r) }
