package distributions

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// maxExactOrder bounds the matrix size of the exact Kolmogorov distribution
const maxExactOrder = 200

// KSNormal runs the two-sided one-sample Kolmogorov-Smirnov test of x
// against the standard normal distribution.
func KSNormal(x []float64) (d, p float64, err error) {
	n := len(x)
	if n == 0 {
		return math.NaN(), math.NaN(), ErrTooFewObservations
	}
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)

	fn := float64(n)
	for i, v := range sorted {
		cdf := distuv.UnitNormal.CDF(v)
		dPlus := float64(i+1)/fn - cdf
		dMinus := cdf - float64(i)/fn
		d = math.Max(d, math.Max(dPlus, dMinus))
	}
	return d, KolmogorovSurvival(d, n), nil
}

// KolmogorovSurvival returns P(D_n >= d) for the two-sided one-sample
// statistic. Small n*d^2 use the exact Marsaglia-Tsang-Wang (2003)
// recursion; the tail and very large samples use Stephens' corrected
// asymptotic series.
func KolmogorovSurvival(d float64, n int) float64 {
	switch {
	case math.IsNaN(d):
		return math.NaN()
	case d <= 0:
		return 1
	case d >= 1:
		return 0
	}

	fn := float64(n)
	s := d * d * fn
	k := int(fn*d) + 1
	if s > 7.24 || (s > 3.76 && n > 99) || 2*k-1 > maxExactOrder {
		return kolmogorovAsymptotic(d, n)
	}
	return clamp01(1 - kolmogorovExactCDF(d, n))
}

func kolmogorovAsymptotic(d float64, n int) float64 {
	sqn := math.Sqrt(float64(n))
	lambda := (sqn + 0.12 + 0.11/sqn) * d
	if lambda < 0.2 {
		return 1
	}
	sum := 0.0
	sign := 1.0
	for j := 1; j <= 100; j++ {
		term := math.Exp(-2 * float64(j*j) * lambda * lambda)
		sum += sign * term
		if term < 1e-16 {
			break
		}
		sign = -sign
	}
	return clamp01(2 * sum)
}

// kolmogorovExactCDF returns P(D_n < d)
func kolmogorovExactCDF(d float64, n int) float64 {
	fn := float64(n)
	k := int(fn*d) + 1
	m := 2*k - 1
	h := float64(k) - fn*d

	H := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			if i-j+1 >= 0 {
				H.Set(i, j, 1)
			}
		}
	}
	for i := 0; i < m; i++ {
		H.Set(i, 0, H.At(i, 0)-math.Pow(h, float64(i+1)))
		H.Set(m-1, i, H.At(m-1, i)-math.Pow(h, float64(m-i)))
	}
	if 2*h-1 > 0 {
		H.Set(m-1, 0, H.At(m-1, 0)+math.Pow(2*h-1, float64(m)))
	}
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			if i-j+1 > 0 {
				H.Set(i, j, H.At(i, j)/factorial(i-j+1))
			}
		}
	}

	Q, eQ := matrixPower(H, n)
	s := Q.At(k-1, k-1)
	for i := 1; i <= n; i++ {
		s = s * float64(i) / fn
		if s < 1e-140 {
			s *= 1e140
			eQ -= 140
		}
	}
	return s * math.Pow(10, float64(eQ))
}

// matrixPower returns A^n as V * 10^e, rescaling to avoid overflow
func matrixPower(a *mat.Dense, n int) (*mat.Dense, int) {
	if n == 1 {
		return mat.DenseCopyOf(a), 0
	}
	v, e := matrixPower(a, n/2)
	m, _ := a.Dims()

	b := mat.NewDense(m, m, nil)
	b.Mul(v, v)
	e *= 2
	if n%2 == 1 {
		c := mat.NewDense(m, m, nil)
		c.Mul(a, b)
		b = c
	}
	if b.At(m/2, m/2) > 1e140 {
		b.Scale(1e-140, b)
		e += 140
	}
	return b, e
}

func factorial(k int) float64 {
	f := 1.0
	for i := 2; i <= k; i++ {
		f *= float64(i)
	}
	return f
}

func clamp01(p float64) float64 {
	return math.Max(0, math.Min(1, p))
}
