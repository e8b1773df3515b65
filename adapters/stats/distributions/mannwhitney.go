package distributions

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// exactThreshold is the largest group size for which the exact null
// distribution of U is used when the samples are tie-free.
const exactThreshold = 8

// MannWhitneyResult is a two-sided Mann-Whitney U test outcome
type MannWhitneyResult struct {
	U1     float64 // U statistic of the first sample
	U2     float64
	PValue float64
	Exact  bool
}

// MannWhitneyU runs the two-sided Mann-Whitney U test. The exact null
// distribution is used when there are no ties and at least one sample has
// at most eight values; otherwise the normal approximation with tie and
// continuity correction applies. Both samples must be non-empty.
func MannWhitneyU(x, y []float64) MannWhitneyResult {
	n1, n2 := len(x), len(y)
	rankSums, tieTerm := RankGroups([][]float64{x, y})

	fn1, fn2 := float64(n1), float64(n2)
	u1 := rankSums[0] - fn1*(fn1+1)/2
	u2 := fn1*fn2 - u1
	u := math.Max(u1, u2)

	res := MannWhitneyResult{U1: u1, U2: u2}
	if tieTerm == 0 && (n1 <= exactThreshold || n2 <= exactThreshold) {
		res.Exact = true
		res.PValue = math.Min(1, 2*MannWhitneySurvival(int(math.Round(u)), n1, n2))
		return res
	}

	n := fn1 + fn2
	sigma := math.Sqrt(fn1 * fn2 / 12 * ((n + 1) - tieTerm/(n*(n-1))))
	if sigma == 0 {
		// every observation tied
		res.PValue = 1
		return res
	}
	z := (u - fn1*fn2/2 - 0.5) / sigma
	res.PValue = math.Min(1, 2*distuv.UnitNormal.Survival(z))
	return res
}

// MannWhitneyCounts returns, for sample sizes n1 and n2, the number of
// tie-free arrangements giving U = u for u in 0..n1*n2 and the total
// number of arrangements. The counts are the coefficients of the Gaussian
// binomial coefficient [n1+n2 choose n1].
func MannWhitneyCounts(n1, n2 int) (counts []float64, total float64) {
	if n1 > n2 {
		n1, n2 = n2, n1
	}
	deg := n1 * n2
	c := make([]float64, deg+1)
	c[0] = 1
	for i := 1; i <= n1; i++ {
		// multiply by (1 - q^(n2+i))
		shift := n2 + i
		for j := deg; j >= shift; j-- {
			c[j] -= c[j-shift]
		}
		// divide by (1 - q^i)
		for j := i; j <= deg; j++ {
			c[j] += c[j-i]
		}
	}
	for _, v := range c {
		total += v
	}
	return c, total
}

// MannWhitneySurvival returns P(U >= u) under the exact null distribution
func MannWhitneySurvival(u, n1, n2 int) float64 {
	counts, total := MannWhitneyCounts(n1, n2)
	if u <= 0 {
		return 1
	}
	if u >= len(counts) {
		return 0
	}
	// sum the shorter tail
	if u > len(counts)/2 {
		var tail float64
		for j := u; j < len(counts); j++ {
			tail += counts[j]
		}
		return tail / total
	}
	var head float64
	for j := 0; j < u; j++ {
		head += counts[j]
	}
	return 1 - head/total
}
