package testkit

import (
	"neuromorph/domain/comparison"

	"gonum.org/v1/gonum/stat/distuv"
)

// NormalScores returns n deterministic, perfectly normal-shaped values:
// the Blom plotting positions mapped through the normal quantile function.
func NormalScores(n int, mu, sigma float64) []float64 {
	dist := distuv.Normal{Mu: mu, Sigma: sigma}
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
	}
	return out
}

// Interleave reorders x so neighbouring values come from opposite ends.
// Useful when sample order should not be sorted.
func Interleave(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for i, j := 0, len(x)-1; i <= j; i, j = i+1, j-1 {
		out = append(out, x[i])
		if i != j {
			out = append(out, x[j])
		}
	}
	return out
}

// Exponential returns a strongly right-skewed deterministic sample
func Exponential(n int, scale float64) []float64 {
	dist := distuv.Exponential{Rate: 1 / scale}
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Quantile((float64(i) + 0.5) / float64(n))
	}
	return out
}

// Group is a shorthand constructor
func Group(label string, sample []float64) comparison.Group {
	return comparison.Group{Label: label, Sample: sample}
}

// LongFrame lays groups out as a long-form frame with one row per value
func LongFrame(valueColumn, groupColumn string, groups ...comparison.Group) *comparison.Frame {
	var values []float64
	var labels []string
	for _, g := range groups {
		for _, v := range g.Sample {
			values = append(values, v)
			labels = append(labels, g.Label)
		}
	}
	f := comparison.NewFrame()
	if err := f.AddNumeric(valueColumn, values); err != nil {
		panic(err)
	}
	if err := f.AddCategorical(groupColumn, labels); err != nil {
		panic(err)
	}
	return f
}
