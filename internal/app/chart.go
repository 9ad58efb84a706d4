// internal/app/chart.go
package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
)

const gcBins = 10

// gcHistogram counts GC fractions into gcBins equal bins over [0, 1].
func gcHistogram(gcs []float64) []int {
	bins := make([]int, gcBins)
	for _, gc := range gcs {
		i := int(gc * gcBins)
		if i >= gcBins {
			i = gcBins - 1
		}
		if i < 0 {
			i = 0
		}
		bins[i]++
	}
	return bins
}

// renderGCHistogram draws the GC distribution of a pool as a PNG bar chart.
func renderGCHistogram(w io.Writer, gcs []float64) error {
	if len(gcs) == 0 {
		return errors.New("no valid strands to chart")
	}
	bars := make([]chart.Value, 0, gcBins)
	for i, n := range gcHistogram(gcs) {
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%d-%d%%", i*100/gcBins, (i+1)*100/gcBins),
			Value: float64(n),
		})
	}
	graph := chart.BarChart{
		Title:      "GC content",
		Width:      1024,
		Height:     512,
		BarWidth:   60,
		BarSpacing: 20,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Bars:       bars,
	}
	return graph.Render(chart.PNG, w)
}
