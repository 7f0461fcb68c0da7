// Package diffexpr holds the per-gene differential-expression result table and
// the operations that rank, filter, and annotate it. The statistical test
// itself sits behind the Fitter interface so that callers (and tests) can
// swap engines.
package diffexpr

import (
	"math"

	"gopkg.in/guregu/null.v3"

	"github.com/rnalab/detools/counts"
)

// Result is one gene's test outcome. Rows are produced once by a Fitter plus
// AdjustBH and are never mutated afterward; the table operations below always
// return fresh slices.
type Result struct {
	// FeatureID is the stable gene identifier, unique across a result set.
	FeatureID string

	// DisplayName is the human-readable gene symbol, if one is known.
	DisplayName null.String

	// BaseMean is the mean of size-factor-normalized counts across all
	// samples. Non-negative.
	BaseMean float64

	// Log2FoldChange is the contrast-versus-reference effect size. NaN when
	// the gene could not be tested.
	Log2FoldChange float64

	// StdErr is the standard error of Log2FoldChange.
	StdErr float64

	// Stat is the Wald statistic, Log2FoldChange / StdErr.
	Stat float64

	// PValue is the raw two-sided p-value, in [0,1], or NaN for an
	// untestable gene (all-zero counts, zero variance).
	PValue float64

	// AdjP is the Benjamini-Hochberg adjusted p-value. NaN when PValue is
	// NaN. NaN rows carry no rank and are dropped by Rank.
	AdjP float64
}

// Testable reports whether the gene received a p-value at all.
func (r Result) Testable() bool {
	return !math.IsNaN(r.PValue)
}

// Fitter runs a differential-expression test over a count matrix. One Result
// per matrix row, in matrix row order, keyed by the matrix's gene identifiers.
// Genes the engine cannot test are still present, with NaN PValue; they are
// never absent. AdjP is left NaN; see RunTest.
type Fitter interface {
	Fit(m *counts.Matrix, design counts.Design) ([]Result, error)
}

// RunTest fits the matrix with f and fills AdjP via AdjustBH, keeping matrix
// row order.
func RunTest(f Fitter, m *counts.Matrix, design counts.Design) ([]Result, error) {
	results, err := f.Fit(m, design)
	if err != nil {
		return nil, err
	}

	raw := make([]float64, len(results))
	for i, r := range results {
		raw[i] = r.PValue
	}

	for i, q := range AdjustBH(raw) {
		results[i].AdjP = q
	}

	return results, nil
}
