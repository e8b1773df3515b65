package engine

import (
	"math"

	"neuromorph/adapters/stats/distributions"
	"neuromorph/domain/comparison"
	"neuromorph/domain/core"
)

// minNormalitySize is the smallest sample a normality test is run on
const minNormalitySize = 3

// Classify tests one sample for approximate normality. An empty method
// uses the engine default. Samples with fewer than three observations or
// a zero range get a non-normal verdict with NaN statistic and p-value.
func (e *Engine) Classify(group string, sample []float64, method comparison.NormalityMethod) (comparison.NormalityVerdict, error) {
	if method == "" {
		method = e.cfg.NormalityMethod
	}
	if !method.Valid() {
		return comparison.NormalityVerdict{}, core.NewUnsupportedTestError(string(method))
	}

	verdict := comparison.NormalityVerdict{
		Group:     group,
		Method:    method,
		TestName:  method.TestName(),
		Statistic: math.NaN(),
		PValue:    math.NaN(),
	}

	x := dropNaN(sample)
	if len(x) < minNormalitySize {
		return verdict, nil
	}

	var stat, p float64
	var err error
	switch method {
	case comparison.NormalityShapiro:
		stat, p, err = distributions.ShapiroWilk(x)
	case comparison.NormalityKS:
		if zeroRange(x) {
			return verdict, nil
		}
		stat, p, err = distributions.KSNormal(x)
	}
	if err != nil {
		// zero range
		return verdict, nil
	}

	verdict.Statistic = stat
	verdict.PValue = p
	verdict.IsNormal = p > e.cfg.Alpha
	return verdict, nil
}

func zeroRange(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}

// ClassifyGroups classifies every group in order
func (e *Engine) ClassifyGroups(groups comparison.GroupSet, method comparison.NormalityMethod) ([]comparison.NormalityVerdict, error) {
	verdicts := make([]comparison.NormalityVerdict, 0, len(groups))
	for _, g := range groups {
		v, err := e.Classify(g.Label, g.Sample, method)
		if err != nil {
			return nil, err
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, nil
}
