package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"neuromorph/domain/comparison"
	"neuromorph/domain/core"
)

type factorLevels struct {
	index  map[string]int
	levels []string
}

func (f *factorLevels) add(label string) int {
	if i, ok := f.index[label]; ok {
		return i
	}
	i := len(f.levels)
	f.index[label] = i
	f.levels = append(f.levels, label)
	return i
}

// TwoWayANOVA fits value ~ factor1 * factor2 with treatment coding and
// reports type II sums of squares for both main effects and the
// interaction. Every factor combination must be observed and there must be
// at least one residual degree of freedom.
func (e *Engine) TwoWayANOVA(frame *comparison.Frame, valueColumn, factor1, factor2 string) (*comparison.TwoWayResult, error) {
	values, err := frame.Numeric(valueColumn)
	if err != nil {
		return nil, err
	}
	f1, err := frame.Categorical(factor1)
	if err != nil {
		return nil, err
	}
	f2, err := frame.Categorical(factor2)
	if err != nil {
		return nil, err
	}

	a := &factorLevels{index: map[string]int{}}
	b := &factorLevels{index: map[string]int{}}
	var y []float64
	var ai, bi []int
	for i, v := range values {
		if math.IsNaN(v) || f1[i] == "" || f2[i] == "" {
			continue
		}
		y = append(y, v)
		ai = append(ai, a.add(f1[i]))
		bi = append(bi, b.add(f2[i]))
	}

	na, nb := len(a.levels), len(b.levels)
	if na < 2 {
		return nil, fmt.Errorf("%w: factor %q", core.NewInvalidGroupCountError(na), factor1)
	}
	if nb < 2 {
		return nil, fmt.Errorf("%w: factor %q", core.NewInvalidGroupCountError(nb), factor2)
	}

	cells := make(map[[2]int]int)
	for i := range y {
		cells[[2]int{ai[i], bi[i]}]++
	}
	for i := 0; i < na; i++ {
		for j := 0; j < nb; j++ {
			if cells[[2]int{i, j}] == 0 {
				return nil, core.NewInsufficientDataError(a.levels[i]+":"+b.levels[j], 0, 1, "two-way ANOVA")
			}
		}
	}

	n := len(y)
	dfRes := n - na*nb
	if dfRes < 1 {
		return nil, fmt.Errorf("%w: two-way ANOVA needs more observations than cells (%d <= %d)", core.ErrInsufficientData, n, na*nb)
	}

	rss := func(withA, withB, withAB bool) (float64, error) {
		x := designMatrix(ai, bi, na, nb, withA, withB, withAB)
		return residualSumSq(x, y)
	}
	rssAB, err := rss(true, true, false)
	if err != nil {
		return nil, err
	}
	rssA, err := rss(true, false, false)
	if err != nil {
		return nil, err
	}
	rssB, err := rss(false, true, false)
	if err != nil {
		return nil, err
	}
	rssFull, err := rss(true, true, true)
	if err != nil {
		return nil, err
	}

	type term struct {
		name string
		typ  comparison.EffectType
		ss   float64
		df   float64
	}
	terms := []term{
		{factor1, comparison.EffectMain, math.Max(0, rssB-rssAB), float64(na - 1)},
		{factor2, comparison.EffectMain, math.Max(0, rssA-rssAB), float64(nb - 1)},
		{factor1 + ":" + factor2, comparison.EffectInteraction, math.Max(0, rssAB-rssFull), float64((na - 1) * (nb - 1))},
	}

	result := &comparison.TwoWayResult{
		ValueColumn:   valueColumn,
		Factor1:       factor1,
		Factor2:       factor2,
		Alpha:         e.cfg.Alpha,
		Levels1:       a.levels,
		Levels2:       b.levels,
		ResidualDF:    float64(dfRes),
		ResidualSumSq: rssFull,
		N:             n,
	}
	for _, t := range terms {
		f, p := fTest(t.ss, t.df, rssFull, float64(dfRes))
		result.Effects = append(result.Effects, comparison.Effect{
			Name:        t.name,
			Type:        t.typ,
			DF:          t.df,
			SumSq:       t.ss,
			F:           f,
			PValue:      p,
			Significant: p < e.cfg.Alpha,
		})
	}
	return result, nil
}

// designMatrix builds an intercept plus treatment-coded dummy columns
func designMatrix(ai, bi []int, na, nb int, withA, withB, withAB bool) *mat.Dense {
	cols := 1
	if withA {
		cols += na - 1
	}
	if withB {
		cols += nb - 1
	}
	if withAB {
		cols += (na - 1) * (nb - 1)
	}

	x := mat.NewDense(len(ai), cols, nil)
	for r := range ai {
		x.Set(r, 0, 1)
		c := 1
		if withA {
			if ai[r] > 0 {
				x.Set(r, c+ai[r]-1, 1)
			}
			c += na - 1
		}
		if withB {
			if bi[r] > 0 {
				x.Set(r, c+bi[r]-1, 1)
			}
			c += nb - 1
		}
		if withAB && ai[r] > 0 && bi[r] > 0 {
			x.Set(r, c+(ai[r]-1)*(nb-1)+bi[r]-1, 1)
		}
	}
	return x
}

// residualSumSq fits y on x by least squares and returns the residual sum of squares
func residualSumSq(x *mat.Dense, y []float64) (float64, error) {
	yv := mat.NewVecDense(len(y), append([]float64(nil), y...))
	var beta mat.VecDense
	if err := beta.SolveVec(x, yv); err != nil {
		return 0, fmt.Errorf("least squares fit failed: %w", err)
	}
	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	rss := 0.0
	for i, v := range y {
		d := v - fitted.AtVec(i)
		rss += d * d
	}
	return rss, nil
}
