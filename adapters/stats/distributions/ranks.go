// Package distributions holds the sampling distributions and rank
// primitives behind the comparison engine's hypothesis tests.
package distributions

import (
	"sort"
)

// Rank returns 1-based ranks of x with ties assigned their average rank,
// together with the tie term sum(t^3 - t) over every tie block.
func Rank(x []float64) (ranks []float64, tieTerm float64) {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	ranks = make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j+2) / 2
		for m := i; m <= j; m++ {
			ranks[idx[m]] = avg
		}
		t := float64(j - i + 1)
		tieTerm += t*t*t - t
		i = j + 1
	}
	return ranks, tieTerm
}

// RankGroups ranks the pooled observations of every group and returns the
// per-group rank sums and the pooled tie term.
func RankGroups(groups [][]float64) (rankSums []float64, tieTerm float64) {
	var pooled []float64
	for _, g := range groups {
		pooled = append(pooled, g...)
	}
	ranks, tieTerm := Rank(pooled)

	rankSums = make([]float64, len(groups))
	offset := 0
	for i, g := range groups {
		for j := range g {
			rankSums[i] += ranks[offset+j]
		}
		offset += len(g)
	}
	return rankSums, tieTerm
}
