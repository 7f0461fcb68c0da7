// Package paircorr tests the Pearson correlation between two genes'
// transformed abundances across samples.
package paircorr

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// z for a two-sided 95% interval.
const zCrit95 = 1.959963984540054

// TestResult is a Pearson correlation test: the coefficient, its two-sided
// p-value under the t-distribution with N-2 degrees of freedom, and the 95%
// Fisher-z confidence interval.
type TestResult struct {
	R                float64
	PValue           float64
	Lower            float64
	Upper            float64
	DegreesOfFreedom int
	N                int
}

// Pearson runs the correlation test on paired observations. At least 4 pairs
// are required (the Fisher interval needs N-3 > 0).
func Pearson(x, y []float64) (TestResult, error) {
	if len(x) != len(y) {
		return TestResult{}, fmt.Errorf("paircorr: length mismatch: %d vs %d", len(x), len(y))
	}
	if len(x) < 4 {
		return TestResult{}, fmt.Errorf("paircorr: need at least 4 paired observations, have %d", len(x))
	}

	n := len(x)
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return TestResult{}, fmt.Errorf("paircorr: correlation undefined (zero variance input)")
	}

	out := TestResult{
		R:                r,
		DegreesOfFreedom: n - 2,
		N:                n,
	}

	df := float64(n - 2)
	if r2 := r * r; r2 >= 1 {
		out.PValue = 0
	} else {
		t := r * math.Sqrt(df/(1-r*r))
		tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		out.PValue = 2 * tDist.Survival(math.Abs(t))
	}

	// Fisher z interval
	z := math.Atanh(r)
	se := 1 / math.Sqrt(float64(n-3))
	out.Lower = math.Tanh(z - zCrit95*se)
	out.Upper = math.Tanh(z + zCrit95*se)

	return out, nil
}
