package distributions

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrZeroRange is returned when every observation has the same value
var ErrZeroRange = errors.New("sample has zero range")

// ErrTooFewObservations is returned when a test needs more observations
var ErrTooFewObservations = errors.New("too few observations")

// Royston (1995) polynomial approximations, algorithm AS R94
var (
	swG  = []float64{-2.273, 0.459}
	swC1 = []float64{0, 0.221157, -0.147981, -2.07119, 4.434685, -2.706056}
	swC2 = []float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}
	swC3 = []float64{0.544, -0.39978, 0.025054, -6.714e-4}
	swC4 = []float64{1.3822, -0.77857, 0.062767, -0.0020322}
	swC5 = []float64{-1.5861, -0.31082, -0.083751, 0.0038915}
	swC6 = []float64{-0.4803, -0.082676, 0.0030302}
)

const swSmall = 1e-19

// poly evaluates c[0] + c[1]x + c[2]x^2 + ...
func poly(c []float64, x float64) float64 {
	res := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		res = res*x + c[i]
	}
	return res
}

// shapiroCoefficients returns the upper-half Shapiro-Wilk coefficients a[0..n/2)
func shapiroCoefficients(n int) []float64 {
	half := n / 2
	a := make([]float64, half)
	if n == 3 {
		a[0] = math.Sqrt(0.5)
		return a
	}

	an := float64(n)
	m := make([]float64, half)
	summ2 := 0.0
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (an + 0.25))
		summ2 += m[i] * m[i]
	}
	summ2 *= 2
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(an)
	a1 := poly(swC1, rsn) - m[0]/ssumm2

	var fac float64
	start := 1
	if n > 5 {
		start = 2
		a2 := -m[1]/ssumm2 + poly(swC2, rsn)
		fac = math.Sqrt((summ2 - 2*m[0]*m[0] - 2*m[1]*m[1]) / (1 - 2*a1*a1 - 2*a2*a2))
		a[1] = a2
	} else {
		fac = math.Sqrt((summ2 - 2*m[0]*m[0]) / (1 - 2*a1*a1))
	}
	a[0] = a1
	for i := start; i < half; i++ {
		a[i] = -m[i] / fac
	}
	return a
}

// ShapiroWilk returns the W statistic and p-value of the Shapiro-Wilk
// normality test. Samples need at least three observations and a non-zero
// range.
func ShapiroWilk(x []float64) (w, p float64, err error) {
	n := len(x)
	if n < 3 {
		return math.NaN(), math.NaN(), ErrTooFewObservations
	}
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)

	rng := sorted[n-1] - sorted[0]
	if rng < swSmall {
		return math.NaN(), math.NaN(), ErrZeroRange
	}

	half := shapiroCoefficients(n)
	coef := make([]float64, n)
	for i, v := range half {
		coef[i] = -v
		coef[n-1-i] = v
	}

	var sa, sx float64
	for i := 0; i < n; i++ {
		sa += coef[i]
		sx += sorted[i] / rng
	}
	sa /= float64(n)
	sx /= float64(n)

	var ssa, ssx, sax float64
	for i := 0; i < n; i++ {
		asa := coef[i] - sa
		xsx := sorted[i]/rng - sx
		ssa += asa * asa
		ssx += xsx * xsx
		sax += asa * xsx
	}

	// w1 = 1 - W, kept separate for accuracy near W = 1
	ssassx := math.Sqrt(ssa * ssx)
	w1 := (ssassx - sax) * (ssassx + sax) / (ssa * ssx)
	w = 1 - w1

	if n == 3 {
		const (
			pi6  = 6 / math.Pi
			stqr = math.Pi / 3
		)
		p = pi6 * (math.Asin(math.Sqrt(w)) - stqr)
		return w, math.Max(0, math.Min(1, p)), nil
	}

	an := float64(n)
	y := math.Log(w1)
	var mu, sigma float64
	if n <= 11 {
		gamma := poly(swG, an)
		if y >= gamma {
			return w, 1e-99, nil
		}
		y = -math.Log(gamma - y)
		mu = poly(swC3, an)
		sigma = math.Exp(poly(swC4, an))
	} else {
		lx := math.Log(an)
		mu = poly(swC5, lx)
		sigma = math.Exp(poly(swC6, lx))
	}
	p = distuv.Normal{Mu: mu, Sigma: sigma}.Survival(y)
	return w, p, nil
}
