package distributions

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func blomScores(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
	}
	return out
}

func seq(from, to float64) []float64 {
	var out []float64
	for v := from; v <= to; v++ {
		out = append(out, v)
	}
	return out
}

func TestRankAveragesTies(t *testing.T) {
	ranks, tie := Rank([]float64{3, 1, 2, 2})
	assert.Equal(t, []float64{4, 1, 2.5, 2.5}, ranks)
	assert.Equal(t, 6.0, tie)

	_, tie = Rank([]float64{1, 2, 3})
	assert.Zero(t, tie)
}

func TestRankGroups(t *testing.T) {
	sums, tie := RankGroups([][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})
	assert.Equal(t, []float64{6, 15, 24}, sums)
	assert.Zero(t, tie)
}

func TestMannWhitneyCounts(t *testing.T) {
	counts, total := MannWhitneyCounts(2, 2)
	assert.Equal(t, []float64{1, 1, 2, 1, 1}, counts)
	assert.Equal(t, 6.0, total)

	_, total = MannWhitneyCounts(5, 5)
	assert.Equal(t, 252.0, total)

	// symmetric in the sample sizes
	a, _ := MannWhitneyCounts(3, 7)
	b, _ := MannWhitneyCounts(7, 3)
	assert.Equal(t, a, b)
}

func TestMannWhitneyExactSeparated(t *testing.T) {
	res := MannWhitneyU(seq(1, 5), seq(6, 10))
	assert.True(t, res.Exact)
	assert.Equal(t, 0.0, res.U1)
	assert.Equal(t, 25.0, res.U2)
	assert.InDelta(t, 2.0/252.0, res.PValue, 1e-12)
}

func TestMannWhitneySurvivalBounds(t *testing.T) {
	assert.Equal(t, 1.0, MannWhitneySurvival(0, 4, 4))
	assert.Equal(t, 0.0, MannWhitneySurvival(17, 4, 4))
	assert.InDelta(t, 1.0/70.0, MannWhitneySurvival(16, 4, 4), 1e-12)
}

func TestMannWhitneyAsymptoticWithTies(t *testing.T) {
	x := []float64{1, 2, 2, 3, 4, 5, 6, 7, 8, 9}
	y := []float64{5, 6, 7, 7, 8, 9, 10, 11, 12, 13}
	res := MannWhitneyU(x, y)
	assert.False(t, res.Exact)
	assert.Equal(t, 100.0, res.U1+res.U2)
	assert.True(t, res.PValue > 0 && res.PValue < 0.05, "p=%v", res.PValue)
}

func TestMannWhitneyAllTied(t *testing.T) {
	res := MannWhitneyU([]float64{4, 4, 4}, []float64{4, 4, 4})
	assert.False(t, res.Exact)
	assert.Equal(t, 1.0, res.PValue)
}

func TestShapiroWilkNormalScores(t *testing.T) {
	w, p, err := ShapiroWilk(blomScores(20))
	require.NoError(t, err)
	assert.Greater(t, w, 0.97)
	assert.Greater(t, p, 0.5)
}

func TestShapiroWilkSkewed(t *testing.T) {
	x := make([]float64, 15)
	for i := range x {
		x[i] = math.Pow(2, float64(i))
	}
	w, p, err := ShapiroWilk(x)
	require.NoError(t, err)
	assert.Less(t, w, 0.8)
	assert.Less(t, p, 0.01)
}

func TestShapiroWilkThreePoints(t *testing.T) {
	w, p, err := ShapiroWilk([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, w, 1e-12)
	assert.InDelta(t, 1.0, p, 1e-6)
}

func TestShapiroWilkSmallSamples(t *testing.T) {
	for n := 4; n <= 11; n++ {
		_, p, err := ShapiroWilk(blomScores(n))
		require.NoError(t, err, "n=%d", n)
		assert.True(t, p > 0.5 && p <= 1, "n=%d p=%v", n, p)
	}
}

func TestShapiroWilkErrors(t *testing.T) {
	_, _, err := ShapiroWilk([]float64{1, 2})
	assert.True(t, errors.Is(err, ErrTooFewObservations))

	w, p, err := ShapiroWilk([]float64{5, 5, 5, 5})
	assert.True(t, errors.Is(err, ErrZeroRange))
	assert.True(t, math.IsNaN(w))
	assert.True(t, math.IsNaN(p))
}

func TestKolmogorovSurvivalSingleObservation(t *testing.T) {
	// for n = 1, P(D >= d) = 2(1 - d) on [0.5, 1]
	for _, d := range []float64{0.55, 0.7, 0.9} {
		assert.InDelta(t, 2*(1-d), KolmogorovSurvival(d, 1), 1e-12, "d=%v", d)
	}
}

func TestKolmogorovSurvivalCriticalValue(t *testing.T) {
	p := KolmogorovSurvival(0.134, 100)
	assert.InDelta(t, 0.05, p, 0.01)

	// monotone in d
	assert.Greater(t, KolmogorovSurvival(0.05, 100), KolmogorovSurvival(0.1, 100))
	assert.Greater(t, KolmogorovSurvival(0.1, 100), KolmogorovSurvival(0.3, 100))
	assert.Equal(t, 1.0, KolmogorovSurvival(0, 10))
	assert.Equal(t, 0.0, KolmogorovSurvival(1, 10))
}

func TestKolmogorovPathsAgree(t *testing.T) {
	// just below and above the switch to the asymptotic series
	exact := KolmogorovSurvival(math.Sqrt(3.7/200), 200)
	approx := kolmogorovAsymptotic(math.Sqrt(3.7/200), 200)
	assert.InDelta(t, approx, exact, 1e-3)
}

func TestKSNormal(t *testing.T) {
	d, p, err := KSNormal(blomScores(30))
	require.NoError(t, err)
	assert.Less(t, d, 0.05)
	assert.Greater(t, p, 0.9)

	d, p, err = KSNormal(seq(10, 20))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d, 1e-9)
	assert.Less(t, p, 1e-6)
}

func TestStudentizedRangeTwoGroupsMatchesT(t *testing.T) {
	// with k = 2, Q/sqrt(2) is |T| with df degrees of freedom
	var sr StudentizedRange
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: 10}
	for _, q := range []float64{1, 2.5, 3, 4.5} {
		want := 1 - 2*tdist.Survival(q/math.Sqrt2)
		assert.InDelta(t, want, sr.CDF(q, 2, 10), 1e-6, "q=%v", q)
	}
	assert.InDelta(t, math.Sqrt2*tdist.Quantile(0.975), sr.Quantile(0.95, 2, 10), 1e-4)
}

func TestStudentizedRangeTableValues(t *testing.T) {
	var sr StudentizedRange
	tests := []struct {
		p    float64
		k    int
		df   float64
		want float64
	}{
		{0.95, 3, 6, 4.339},
		{0.99, 3, 6, 6.331},
		{0.95, 4, 20, 3.958},
		{0.95, 5, 60, 3.977},
	}
	for _, tt := range tests {
		got := sr.Quantile(tt.p, tt.k, tt.df)
		assert.InDelta(t, tt.want, got, 5e-3, "k=%d df=%v", tt.k, tt.df)
		assert.InDelta(t, tt.p, sr.CDF(got, tt.k, tt.df), 1e-5)
	}
}

func TestStudentizedRangeEdges(t *testing.T) {
	var sr StudentizedRange
	assert.Equal(t, 0.0, sr.CDF(0, 3, 6))
	assert.Equal(t, 1.0, sr.CDF(math.Inf(1), 3, 6))
	assert.True(t, math.IsNaN(sr.CDF(2, 1, 6)))
	assert.True(t, math.IsNaN(sr.CDF(2, 3, 1)))
	assert.Equal(t, 1.0, sr.Survival(0, 3, 6))
}

func TestShapiroWilkReferenceValues(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		w, p float64
	}{
		{"heights", []float64{148, 154, 158, 160, 161, 162, 166, 170, 182, 195, 236}, 0.78881, 0.006704},
		{"uniform grid", seq(1, 10), 0.97016, 0.8924},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, p, err := ShapiroWilk(tt.x)
			require.NoError(t, err)
			assert.InDelta(t, tt.w, w, 1e-4)
			assert.InDelta(t, tt.p, p, 1e-4)
		})
	}
}
