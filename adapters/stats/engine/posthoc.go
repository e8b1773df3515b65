package engine

import (
	"math"

	"neuromorph/adapters/stats/distributions"
	"neuromorph/domain/comparison"
	"neuromorph/domain/core"
)

// Post-hoc method names
const (
	MethodTukeyHSD    = "Tukey HSD"
	MethodMannWhitney = "Mann-Whitney U"
)

// PostHoc runs all pairwise comparisons after a significant omnibus test.
// It returns nil when post-hoc testing does not apply: a non-omnibus kind
// or a non-significant main test. Pairs follow group order with i < j.
func (e *Engine) PostHoc(groups comparison.GroupSet, kind comparison.TestKind, mainSignificant bool) ([]comparison.PostHocResult, error) {
	if !kind.IsOmnibus() || !mainSignificant {
		return nil, nil
	}

	clean := make(comparison.GroupSet, len(groups))
	for i, g := range groups {
		x := dropNaN(g.Sample)
		if len(x) < minGroupSize {
			return nil, core.NewInsufficientDataError(g.Label, len(x), minGroupSize, "post-hoc comparison")
		}
		clean[i] = comparison.Group{Label: g.Label, Sample: x}
	}

	if kind == comparison.KindOneWayANOVA {
		return e.tukeyHSD(clean)
	}
	return e.pairwiseMannWhitney(clean), nil
}

func (e *Engine) tukeyHSD(groups comparison.GroupSet) ([]comparison.PostHocResult, error) {
	if e.rangeDist == nil {
		return nil, core.NewDependencyUnavailableError("studentized range distribution", MethodTukeyHSD)
	}

	k := len(groups)
	terms := oneWayTerms(groups)
	mse := terms.ssWithin / terms.dfWithin
	qCrit := e.rangeDist.Quantile(1-e.cfg.Alpha, k, terms.dfWithin)

	results := make([]comparison.PostHocResult, 0, k*(k-1)/2)
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			ni, nj := float64(len(groups[i].Sample)), float64(len(groups[j].Sample))
			diff := terms.means[j] - terms.means[i]
			se := math.Sqrt(mse / 2 * (1/ni + 1/nj))

			q := math.Abs(diff) / se
			p := math.NaN()
			if !math.IsNaN(q) {
				p = math.Max(0, math.Min(1, 1-e.rangeDist.CDF(q, k, terms.dfWithin)))
			}

			results = append(results, comparison.PostHocResult{
				Group1:         groups[i].Label,
				Group2:         groups[j].Label,
				Method:         MethodTukeyHSD,
				MeanDifference: diff,
				Statistic:      q,
				PValue:         p,
				Significant:    p < e.cfg.Alpha,
				ConfidenceInterval: &comparison.Interval{
					Lower: diff - qCrit*se,
					Upper: diff + qCrit*se,
				},
			})
		}
	}
	return results, nil
}

// pairwiseMannWhitney tests every pair independently at alpha without
// multiplicity correction.
func (e *Engine) pairwiseMannWhitney(groups comparison.GroupSet) []comparison.PostHocResult {
	k := len(groups)
	results := make([]comparison.PostHocResult, 0, k*(k-1)/2)
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			r := distributions.MannWhitneyU(groups[i].Sample, groups[j].Sample)
			results = append(results, comparison.PostHocResult{
				Group1:         groups[i].Label,
				Group2:         groups[j].Label,
				Method:         MethodMannWhitney,
				MeanDifference: mean(groups[j].Sample) - mean(groups[i].Sample),
				Statistic:      r.U1,
				PValue:         r.PValue,
				Significant:    r.PValue < e.cfg.Alpha,
			})
		}
	}
	return results
}
