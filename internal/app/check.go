// internal/app/check.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"dnastore-core/constraint"
	"dnastore-core/oligo"
	"dnastore/internal/cli"
	"dnastore/internal/jsonutil"
	"dnastore/pkg/api"
)

// checkStrand returns the rule strand s breaks, if any. Primer regions are
// excluded from the homopolymer and GC rules.
func checkStrand(s string, length, primerLen int, rules constraint.Rules) (api.ViolationV1, bool) {
	norm, err := oligo.Validate(s)
	if err != nil {
		return api.ViolationV1{Rule: "alphabet", Detail: err.Error()}, true
	}
	if len(norm) != length {
		return api.ViolationV1{Rule: "length", Detail: fmt.Sprintf("%d symbols, want %d", len(norm), length)}, true
	}
	err = rules.Check(oligo.Trim([]byte(norm), primerLen, primerLen))
	var v *constraint.Violation
	if errors.As(err, &v) {
		detail := v.Error()
		if primerLen > 0 && v.Pos > 0 {
			detail = fmt.Sprintf("%s (core position; strand position %d)", detail, v.Pos+primerLen)
		}
		return api.ViolationV1{Rule: v.Kind, Detail: detail}, true
	}
	return api.ViolationV1{}, false
}

func (r *runner) check(_ context.Context, o cli.CheckOptions) error {
	r.errFormat = o.Format
	strands, err := r.readPool(o.Input)
	if err != nil {
		return err
	}
	primerLen := 0
	if o.Config.AddPrimer {
		primerLen = o.Config.PrimerLength
	}
	rules := o.Config.Rules()

	violations := []api.ViolationV1{}
	for i, s := range strands {
		if v, bad := checkStrand(s, o.Config.SequenceLength, primerLen, rules); bad {
			v.Index = i
			violations = append(violations, v)
		}
	}

	err = r.writeOutput("-", func(w io.Writer) error {
		if o.Format == "json" {
			return jsonutil.EncodePretty(w, violations)
		}
		for _, v := range violations {
			if _, err := fmt.Fprintf(w, "%d\t%s\t%s\n", v.Index, v.Rule, v.Detail); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.log.Info("check finished", "strands", len(strands), "violations", len(violations))
	if len(violations) > 0 {
		// The violation list is the JSON output; no error document follows it.
		r.errFormat = ""
		return &cli.ViolationError{Count: len(violations)}
	}
	return nil
}
