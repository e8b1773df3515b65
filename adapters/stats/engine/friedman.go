package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"neuromorph/adapters/stats/distributions"
	"neuromorph/domain/comparison"
	"neuromorph/domain/core"
)

// Friedman runs the Friedman repeated-measures rank test. Rows are pivoted
// to subjects by groups; subjects missing any group are dropped. At least
// three groups and two complete subjects are required.
func (e *Engine) Friedman(frame *comparison.Frame, valueColumn, groupColumn, subjectColumn string) (comparison.MainTestResult, error) {
	var res comparison.MainTestResult
	values, err := frame.Numeric(valueColumn)
	if err != nil {
		return res, err
	}
	groupLabels, err := frame.Categorical(groupColumn)
	if err != nil {
		return res, err
	}
	subjectLabels, err := frame.Categorical(subjectColumn)
	if err != nil {
		return res, err
	}

	groupIdx := map[string]int{}
	var groups []string
	subjectIdx := map[string]int{}
	var subjects []string
	var cells []map[int]float64

	for i, v := range values {
		g, s := groupLabels[i], subjectLabels[i]
		if g == "" || s == "" {
			continue
		}
		gi, ok := groupIdx[g]
		if !ok {
			gi = len(groups)
			groupIdx[g] = gi
			groups = append(groups, g)
		}
		si, ok := subjectIdx[s]
		if !ok {
			si = len(subjects)
			subjectIdx[s] = si
			subjects = append(subjects, s)
			cells = append(cells, map[int]float64{})
		}
		if _, dup := cells[si][gi]; dup {
			return res, core.NewValidationError(subjectColumn, fmt.Sprintf("subject %q has more than one %q observation", s, g))
		}
		cells[si][gi] = v
	}

	k := len(groups)
	if k < 3 {
		return res, fmt.Errorf("%w: Friedman test needs at least 3 groups", core.NewInvalidGroupCountError(k))
	}

	var blocks [][]float64
	for si := range subjects {
		row := make([]float64, k)
		complete := true
		for gi := 0; gi < k; gi++ {
			v, ok := cells[si][gi]
			if !ok || math.IsNaN(v) {
				complete = false
				break
			}
			row[gi] = v
		}
		if complete {
			blocks = append(blocks, row)
		}
	}
	n := len(blocks)
	if n < 2 {
		return res, core.NewInsufficientDataError(subjectColumn, n, 2, "Friedman test")
	}

	rankSums := make([]float64, k)
	ties := 0.0
	for _, row := range blocks {
		ranks, t := distributions.Rank(row)
		ties += t
		for j, r := range ranks {
			rankSums[j] += r
		}
	}

	fk, fn := float64(k), float64(n)
	ssbn := 0.0
	for _, r := range rankSums {
		ssbn += r * r
	}
	df := fk - 1
	stat, p := math.NaN(), math.NaN()
	if c := 1 - ties/(fk*(fk*fk-1)*fn); c > 0 {
		stat = (12/(fk*fn*(fk+1))*ssbn - 3*fn*(fk+1)) / c
		p = distuv.ChiSquared{K: df}.Survival(stat)
	}

	return comparison.MainTestResult{
		Kind:        comparison.KindFriedman,
		TestName:    comparison.KindFriedman.DisplayName(),
		Statistic:   stat,
		PValue:      p,
		Alpha:       e.cfg.Alpha,
		Significant: p < e.cfg.Alpha,
		Details: comparison.FriedmanDetails{
			DF:       df,
			Subjects: n,
			Groups:   groups,
		},
	}, nil
}
