// core/codec/errors.go
package codec

import (
	"errors"
	"fmt"
	"strings"

	"dnastore-core/base"
	"dnastore-core/constraint"
	"dnastore-core/container"
	"dnastore-core/ecc"
)

// Error taxonomy. Everything the codec returns wraps one of these.
var (
	ErrMalformedSymbolStream   = base.ErrMalformedSymbolStream
	ErrConstraintUnsatisfiable = constraint.ErrConstraintUnsatisfiable
	ErrUncorrectableBlock      = ecc.ErrUncorrectableBlock
	ErrMalformedContainer      = container.ErrMalformedContainer
	ErrMissingStrands          = errors.New("missing strands")
	ErrInvalidConfiguration    = errors.New("invalid configuration")
)

// ConfigError names the configuration field that was rejected.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfiguration }

// MissingStrandsError lists the strand indices that could not be
// recovered from any redundancy layer.
type MissingStrandsError struct {
	Indices []int
}

func (e *MissingStrandsError) Error() string {
	const show = 16
	parts := make([]string, 0, min(len(e.Indices), show))
	for i, idx := range e.Indices {
		if i == show {
			break
		}
		parts = append(parts, fmt.Sprint(idx))
	}
	more := ""
	if len(e.Indices) > show {
		more = fmt.Sprintf(" and %d more", len(e.Indices)-show)
	}
	return fmt.Sprintf("missing strands: %d unrecoverable (%s%s)", len(e.Indices), strings.Join(parts, ", "), more)
}

func (e *MissingStrandsError) Is(target error) bool { return target == ErrMissingStrands }

// BlockError attributes a failure to one block.
type BlockError struct {
	Block int
	Err   error
}

func (e *BlockError) Error() string { return fmt.Sprintf("block %d: %v", e.Block, e.Err) }
func (e *BlockError) Unwrap() error { return e.Err }
