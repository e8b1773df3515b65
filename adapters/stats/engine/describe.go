package engine

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"neuromorph/domain/comparison"
)

// dropNaN returns the non-missing values of x
func dropNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func mean(x []float64) float64 {
	m, err := stats.Mean(x)
	if err != nil {
		return math.NaN()
	}
	return m
}

func median(x []float64) float64 {
	m, err := stats.Median(x)
	if err != nil {
		return math.NaN()
	}
	return m
}

// sampleStd is the n-1 standard deviation, NaN below two observations
func sampleStd(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	sd, err := stats.StandardDeviationSample(x)
	if err != nil {
		return math.NaN()
	}
	return sd
}

func sampleVariance(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	v, err := stats.SampleVariance(x)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Describe computes descriptive statistics for one group
func Describe(group string, sample []float64) comparison.Descriptives {
	x := dropNaN(sample)
	d := comparison.Descriptives{
		Group:  group,
		N:      len(x),
		Mean:   math.NaN(),
		Std:    math.NaN(),
		Median: math.NaN(),
		Min:    math.NaN(),
		Max:    math.NaN(),
		Q25:    math.NaN(),
		Q75:    math.NaN(),
	}
	if len(x) == 0 {
		return d
	}

	d.Mean = mean(x)
	d.Std = sampleStd(x)
	d.Median = median(x)
	if v, err := stats.Min(x); err == nil {
		d.Min = v
	}
	if v, err := stats.Max(x); err == nil {
		d.Max = v
	}

	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	d.Q25 = stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	d.Q75 = stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	return d
}

// DescribeGroups computes descriptives for every group in order
func DescribeGroups(groups comparison.GroupSet) []comparison.Descriptives {
	out := make([]comparison.Descriptives, len(groups))
	for i, g := range groups {
		out[i] = Describe(g.Label, g.Sample)
	}
	return out
}

func moments(group string, x []float64) comparison.GroupMoments {
	return comparison.GroupMoments{Group: group, N: len(x), Mean: mean(x), Std: sampleStd(x)}
}

func rankSummary(group string, x []float64) comparison.GroupRanks {
	return comparison.GroupRanks{Group: group, N: len(x), Median: median(x)}
}
