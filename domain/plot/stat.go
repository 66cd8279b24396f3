package plot

import (
	"fmt"
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"tableplot/domain/core"
	"tableplot/domain/frame"
)

// StatKind identifies the statistical transformation a layer applies to
// its data before drawing.
type StatKind string

const (
	// StatIdentity passes the layer's data through unchanged
	StatIdentity StatKind = "identity"
	// StatBin bins the x aesthetic into histogram counts
	StatBin StatKind = "bin"
	// StatSummary aggregates y per x group (mean with min/max spread)
	StatSummary StatKind = "summary"
)

// ParseStat validates a stat name
func ParseStat(s string) (StatKind, error) {
	switch StatKind(s) {
	case StatIdentity, StatBin, StatSummary:
		return StatKind(s), nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownStat, s)
}

// applyStat computes a layer's stat over its frame. Identity returns the
// frame it was given.
func applyStat(kind StatKind, f *frame.Frame, aes Aes) (*frame.Frame, error) {
	switch kind {
	case StatIdentity:
		return f, nil
	case StatBin:
		return binStat(f, aes)
	case StatSummary:
		return summaryStat(f, aes)
	}
	return nil, fmt.Errorf("%w: %q", core.ErrUnknownStat, kind)
}

// binStat computes histogram bins over the x aesthetic. Bin count follows
// the Sturges rule.
func binStat(f *frame.Frame, aes Aes) (*frame.Frame, error) {
	if aes.X == "" {
		return nil, fmt.Errorf("%w: x (required by stat bin)", core.ErrMissingAesthetic)
	}
	xs, err := f.Float64s(aes.X)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("%w: column %q has no numeric values", core.ErrEmptyInput, aes.X)
	}

	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		// Degenerate range: one bin centered on the single value
		hi = lo + 1
		lo = lo - 1
	}

	numBins := int(math.Ceil(math.Log2(float64(len(sorted))))) + 1
	if numBins < 1 {
		numBins = 1
	}

	dividers := make([]float64, numBins+1)
	floats.Span(dividers, lo, hi)
	// Histogram treats the final divider as inclusive only for values
	// strictly below it; nudge so the max lands in the last bin
	dividers[numBins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	mids := make([]frame.Value, numBins)
	mins := make([]frame.Value, numBins)
	maxs := make([]frame.Value, numBins)
	ns := make([]frame.Value, numBins)
	for i := 0; i < numBins; i++ {
		mids[i] = frame.NewNumericValue((dividers[i] + dividers[i+1]) / 2)
		mins[i] = frame.NewNumericValue(dividers[i])
		maxs[i] = frame.NewNumericValue(dividers[i+1])
		ns[i] = frame.NewNumericValue(counts[i])
	}

	return frame.FromColumns([]*frame.Series{
		frame.NewSeries("x", mids),
		frame.NewSeries("xmin", mins),
		frame.NewSeries("xmax", maxs),
		frame.NewSeries("count", ns),
	})
}

// summaryStat aggregates the y aesthetic per x group: mean as the point,
// min/max as the spread.
func summaryStat(f *frame.Frame, aes Aes) (*frame.Frame, error) {
	if aes.X == "" || aes.Y == "" {
		return nil, fmt.Errorf("%w: x and y (required by stat summary)", core.ErrMissingAesthetic)
	}

	keys, err := f.Strings(aes.X)
	if err != nil {
		return nil, err
	}
	yCol, err := f.Column(aes.Y)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]float64)
	for i, key := range keys {
		v := yCol.Values[i]
		if v.IsNumeric() {
			groups[key] = append(groups[key], v.AsFloat64())
		}
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: column %q has no numeric values", core.ErrEmptyInput, aes.Y)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	xs := make([]frame.Value, len(names))
	means := make([]frame.Value, len(names))
	ymins := make([]frame.Value, len(names))
	ymaxs := make([]frame.Value, len(names))
	ns := make([]frame.Value, len(names))
	for i, name := range names {
		ys := groups[name]
		mean, err := mstats.Mean(ys)
		if err != nil {
			return nil, fmt.Errorf("summary stat for group %q: %w", name, err)
		}
		ymin, err := mstats.Min(ys)
		if err != nil {
			return nil, fmt.Errorf("summary stat for group %q: %w", name, err)
		}
		ymax, err := mstats.Max(ys)
		if err != nil {
			return nil, fmt.Errorf("summary stat for group %q: %w", name, err)
		}
		xs[i] = frame.NewStringValue(name)
		means[i] = frame.NewNumericValue(mean)
		ymins[i] = frame.NewNumericValue(ymin)
		ymaxs[i] = frame.NewNumericValue(ymax)
		ns[i] = frame.NewNumericValue(float64(len(ys)))
	}

	return frame.FromColumns([]*frame.Series{
		frame.NewSeries("x", xs),
		frame.NewSeries("y", means),
		frame.NewSeries("ymin", ymins),
		frame.NewSeries("ymax", ymaxs),
		frame.NewSeries("n", ns),
	})
}
