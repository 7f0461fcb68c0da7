package diffexpr

import (
	"math"
	"sort"
)

// AdjustBH applies the Benjamini-Hochberg step-up correction to raw p-values.
// The output has the same length and order as the input. NaN entries (genes
// the engine could not test) stay NaN and do not count toward the family
// size, so a larger tested family always yields equal-or-more conservative
// adjusted values. Results are clamped to [0,1] and are monotone in p-value
// rank.
func AdjustBH(p []float64) []float64 {
	adj := make([]float64, len(p))

	order := make([]int, 0, len(p))
	for i, v := range p {
		if math.IsNaN(v) {
			adj[i] = math.NaN()
			continue
		}
		order = append(order, i)
	}

	sort.SliceStable(order, func(a, b int) bool {
		return p[order[a]] < p[order[b]]
	})

	// Walk from the largest p-value down, carrying the running minimum so
	// that adjusted values never decrease with rank.
	m := float64(len(order))
	running := 1.0
	for rank := len(order); rank >= 1; rank-- {
		i := order[rank-1]
		if q := p[i] * m / float64(rank); q < running {
			running = q
		}
		adj[i] = running
	}

	return adj
}
