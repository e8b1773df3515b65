package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"neuromorph/adapters/stats/distributions"
	"neuromorph/domain/comparison"
	"neuromorph/domain/core"
)

// minGroupSize is the smallest group any main test accepts
const minGroupSize = 2

// Execute runs the main test of the given kind. Missing values are dropped
// per group; any group left with fewer than two observations is an error.
func (e *Engine) Execute(kind comparison.TestKind, groups comparison.GroupSet) (comparison.MainTestResult, error) {
	clean := make(comparison.GroupSet, len(groups))
	for i, g := range groups {
		x := dropNaN(g.Sample)
		if len(x) < minGroupSize {
			return comparison.MainTestResult{}, core.NewInsufficientDataError(g.Label, len(x), minGroupSize, kind.DisplayName())
		}
		clean[i] = comparison.Group{Label: g.Label, Sample: x}
	}

	var res comparison.MainTestResult
	switch kind {
	case comparison.KindPooledT, comparison.KindWelchT:
		if len(clean) != 2 {
			return res, fmt.Errorf("%w: %s compares exactly 2 groups", core.NewInvalidGroupCountError(len(clean)), kind.DisplayName())
		}
		res = tTest(clean[0], clean[1], kind == comparison.KindPooledT)
	case comparison.KindMannWhitneyU:
		if len(clean) != 2 {
			return res, fmt.Errorf("%w: %s compares exactly 2 groups", core.NewInvalidGroupCountError(len(clean)), kind.DisplayName())
		}
		res = mannWhitney(clean[0], clean[1])
	case comparison.KindOneWayANOVA:
		if len(clean) < 2 {
			return res, core.NewInvalidGroupCountError(len(clean))
		}
		res = oneWayANOVA(clean)
	case comparison.KindKruskalWallis:
		if len(clean) < 2 {
			return res, core.NewInvalidGroupCountError(len(clean))
		}
		res = kruskalWallis(clean)
	default:
		return res, core.NewUnsupportedTestError(string(kind))
	}

	res.Kind = kind
	res.TestName = kind.DisplayName()
	res.Alpha = e.cfg.Alpha
	res.Significant = res.PValue < e.cfg.Alpha
	return res, nil
}

// twoSidedT returns the two-sided Student's t p-value
func twoSidedT(t, df float64) float64 {
	switch {
	case math.IsNaN(t) || math.IsNaN(df):
		return math.NaN()
	case math.IsInf(t, 0):
		return 0
	}
	return math.Min(1, 2*distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(math.Abs(t)))
}

func tTest(g1, g2 comparison.Group, pooled bool) comparison.MainTestResult {
	x, y := g1.Sample, g2.Sample
	n1, n2 := float64(len(x)), float64(len(y))
	m1, m2 := mean(x), mean(y)
	v1, v2 := sampleVariance(x), sampleVariance(y)

	var se, df float64
	if pooled {
		df = n1 + n2 - 2
		sp2 := ((n1-1)*v1 + (n2-1)*v2) / df
		se = math.Sqrt(sp2 * (1/n1 + 1/n2))
	} else {
		a, b := v1/n1, v2/n2
		se = math.Sqrt(a + b)
		df = (a + b) * (a + b) / (a*a/(n1-1) + b*b/(n2-1))
	}

	diff := m1 - m2
	t := math.NaN()
	switch {
	case se > 0:
		t = diff / se
	case diff > 0:
		t = math.Inf(1)
	case diff < 0:
		t = math.Inf(-1)
	}

	d := math.NaN()
	if s := math.Sqrt((v1 + v2) / 2); s > 0 {
		d = diff / s
	}

	return comparison.MainTestResult{
		Statistic: t,
		PValue:    twoSidedT(t, df),
		Details: comparison.TTestDetails{
			EqualVariance:    pooled,
			DegreesOfFreedom: df,
			MeanDifference:   diff,
			CohensD:          d,
			Group1:           moments(g1.Label, x),
			Group2:           moments(g2.Label, y),
		},
	}
}

func mannWhitney(g1, g2 comparison.Group) comparison.MainTestResult {
	r := distributions.MannWhitneyU(g1.Sample, g2.Sample)
	method := comparison.MethodAsymptotic
	if r.Exact {
		method = comparison.MethodExact
	}
	return comparison.MainTestResult{
		Statistic: r.U1,
		PValue:    r.PValue,
		Details: comparison.MannWhitneyDetails{
			Method: method,
			Group1: rankSummary(g1.Label, g1.Sample),
			Group2: rankSummary(g2.Label, g2.Sample),
		},
	}
}

// anovaTerms holds the one-way sums of squares
type anovaTerms struct {
	ssBetween, ssWithin float64
	dfBetween, dfWithin float64
	means               []float64
}

func oneWayTerms(groups comparison.GroupSet) anovaTerms {
	var total float64
	var n int
	for _, g := range groups {
		for _, v := range g.Sample {
			total += v
		}
		n += len(g.Sample)
	}
	grand := total / float64(n)

	terms := anovaTerms{
		dfBetween: float64(len(groups) - 1),
		dfWithin:  float64(n - len(groups)),
		means:     make([]float64, len(groups)),
	}
	for i, g := range groups {
		m := mean(g.Sample)
		terms.means[i] = m
		terms.ssBetween += float64(len(g.Sample)) * (m - grand) * (m - grand)
		for _, v := range g.Sample {
			terms.ssWithin += (v - m) * (v - m)
		}
	}
	return terms
}

// fTest returns F and its upper-tail p-value
func fTest(ssEffect, dfEffect, ssError, dfError float64) (float64, float64) {
	if ssError == 0 {
		if ssEffect == 0 {
			return math.NaN(), math.NaN()
		}
		return math.Inf(1), 0
	}
	f := (ssEffect / dfEffect) / (ssError / dfError)
	return f, distuv.F{D1: dfEffect, D2: dfError}.Survival(f)
}

func oneWayANOVA(groups comparison.GroupSet) comparison.MainTestResult {
	terms := oneWayTerms(groups)
	f, p := fTest(terms.ssBetween, terms.dfBetween, terms.ssWithin, terms.dfWithin)

	eta := math.NaN()
	if sst := terms.ssBetween + terms.ssWithin; sst > 0 {
		eta = terms.ssBetween / sst
	}

	summaries := make([]comparison.GroupMoments, len(groups))
	for i, g := range groups {
		summaries[i] = moments(g.Label, g.Sample)
	}

	return comparison.MainTestResult{
		Statistic: f,
		PValue:    p,
		Details: comparison.ANOVADetails{
			DFBetween:  terms.dfBetween,
			DFWithin:   terms.dfWithin,
			SSBetween:  terms.ssBetween,
			SSWithin:   terms.ssWithin,
			EtaSquared: eta,
			Groups:     summaries,
		},
	}
}

func kruskalWallis(groups comparison.GroupSet) comparison.MainTestResult {
	rankSums, tieTerm := distributions.RankGroups(groups.Samples())

	var n float64
	for _, g := range groups {
		n += float64(len(g.Sample))
	}
	h := 0.0
	for i, g := range groups {
		h += rankSums[i] * rankSums[i] / float64(len(g.Sample))
	}
	h = 12/(n*(n+1))*h - 3*(n+1)

	df := float64(len(groups) - 1)
	p := math.NaN()
	if c := 1 - tieTerm/(n*n*n-n); c > 0 {
		h /= c
		p = distuv.ChiSquared{K: df}.Survival(h)
	} else {
		h = math.NaN()
	}

	summaries := make([]comparison.GroupRanks, len(groups))
	for i, g := range groups {
		summaries[i] = rankSummary(g.Label, g.Sample)
	}

	return comparison.MainTestResult{
		Statistic: h,
		PValue:    p,
		Details: comparison.KruskalWallisDetails{
			DF:     df,
			Groups: summaries,
		},
	}
}
