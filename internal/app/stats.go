// internal/app/stats.go
package app

import (
	"context"
	"fmt"
	"io"
	"math"

	"dnastore-core/oligo"
	"dnastore/internal/cli"
	"dnastore/internal/jsonutil"
	"dnastore/pkg/api"
)

// poolStats summarizes strands. With primerLen > 0 the primer regions are
// masked so GC and runs describe the constrained core.
func poolStats(strands []string, primerLen int) (api.StatsV1, []float64) {
	st := api.StatsV1{MinGC: math.Inf(1), MinLength: math.MaxInt, PrimersMasked: primerLen > 0}
	gcs := make([]float64, 0, len(strands))
	sum := 0.0
	for _, s := range strands {
		norm, err := oligo.Validate(s)
		if err != nil {
			st.InvalidBases++
			continue
		}
		st.Strands++
		st.MinLength = min(st.MinLength, len(norm))
		st.MaxLength = max(st.MaxLength, len(norm))

		region := oligo.Trim([]byte(norm), primerLen, primerLen)
		if region == nil {
			region = []byte(norm)
		}
		d := oligo.Describe(region)
		gcs = append(gcs, d.GC)
		sum += d.GC
		st.MinGC = math.Min(st.MinGC, d.GC)
		st.MaxGC = math.Max(st.MaxGC, d.GC)
		st.MaxRun = max(st.MaxRun, d.LongestRun)
	}
	if st.Strands == 0 {
		st.MinGC, st.MinLength = 0, 0
		return st, gcs
	}
	st.MeanGC = sum / float64(st.Strands)
	return st, gcs
}

func (r *runner) stats(_ context.Context, o cli.StatsOptions) error {
	strands, err := r.readPool(o.Input)
	if err != nil {
		return err
	}
	primerLen := 0
	if o.Config.AddPrimer {
		primerLen = o.Config.PrimerLength
	}
	st, gcs := poolStats(strands, primerLen)

	err = r.writeOutput("-", func(w io.Writer) error {
		if o.Format == "json" {
			return jsonutil.EncodePretty(w, st)
		}
		_, err := fmt.Fprintf(w,
			"strands\t%d\nlength\t%d-%d\ngc_mean\t%.4f\ngc_range\t%.4f-%.4f\nmax_run\t%d\ninvalid\t%d\n",
			st.Strands, st.MinLength, st.MaxLength, st.MeanGC, st.MinGC, st.MaxGC, st.MaxRun, st.InvalidBases)
		return err
	})
	if err != nil {
		return err
	}
	if o.Chart != "" {
		if err := r.writeOutput(o.Chart, func(w io.Writer) error { return renderGCHistogram(w, gcs) }); err != nil {
			return err
		}
		r.log.Info("chart written", "path", o.Chart)
	}
	return nil
}
