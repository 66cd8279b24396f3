package profiler

import (
	"fmt"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"tableplot/domain/frame"
	"tableplot/ports"
)

// FrameProfiler computes per-column summaries of a frame
type FrameProfiler struct{}

// New creates a frame profiler
func New() *FrameProfiler {
	return &FrameProfiler{}
}

// Profile summarizes every column. Columns are profiled concurrently; the
// result keeps the frame's column order.
func (p *FrameProfiler) Profile(f *frame.Frame) ([]ports.FieldProfile, error) {
	if f == nil || f.NumCols() == 0 {
		return nil, nil
	}

	names := f.Columns()
	profiles := make([]ports.FieldProfile, len(names))

	var g errgroup.Group
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			col, err := f.Column(name)
			if err != nil {
				return err
			}
			profile, err := profileColumn(col)
			if err != nil {
				return fmt.Errorf("profiling column %q: %w", name, err)
			}
			profiles[i] = profile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profiles, nil
}

func profileColumn(col *frame.Series) (ports.FieldProfile, error) {
	profile := ports.FieldProfile{
		Name:         col.Name,
		DataType:     string(col.Type),
		RowCount:     col.Len(),
		MissingCount: col.MissingCount(),
	}
	if col.Len() > 0 {
		profile.MissingRate = float64(profile.MissingCount) / float64(col.Len())
	}

	unique := make(map[string]bool)
	var numbers []float64
	for _, v := range col.Values {
		if v.IsMissing {
			continue
		}
		unique[v.String()] = true
		if v.IsNumeric() {
			numbers = append(numbers, v.AsFloat64())
		}
	}
	profile.UniqueCount = len(unique)

	if len(numbers) > 0 {
		statistics, err := numericStatistics(numbers)
		if err != nil {
			return ports.FieldProfile{}, err
		}
		profile.Statistics = statistics
	}
	return profile, nil
}

func numericStatistics(numbers []float64) (map[string]float64, error) {
	statistics := make(map[string]float64)
	for name, fn := range map[string]func(mstats.Float64Data) (float64, error){
		"min":    mstats.Min,
		"max":    mstats.Max,
		"mean":   mstats.Mean,
		"median": mstats.Median,
		"stddev": mstats.StandardDeviation,
	} {
		value, err := fn(numbers)
		if err != nil {
			return nil, fmt.Errorf("computing %s: %w", name, err)
		}
		statistics[name] = value
	}
	return statistics, nil
}

// TopCategories returns the most frequent rendered values of a column, for
// categorical summaries. Ties break alphabetically for determinism.
func TopCategories(col *frame.Series, limit int) []string {
	counts := make(map[string]int)
	for _, v := range col.Values {
		if !v.IsMissing {
			counts[v.String()]++
		}
	}
	categories := make([]string, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		if counts[categories[i]] != counts[categories[j]] {
			return counts[categories[i]] > counts[categories[j]]
		}
		return categories[i] < categories[j]
	})
	if limit > 0 && len(categories) > limit {
		categories = categories[:limit]
	}
	return categories
}
