// Package waldtest is the gonum-backed engine behind diffexpr.Fitter: size
// factors by the median-of-ratios method, a per-gene Wald test of the
// contrast condition against the reference, and the shifted-log transform
// used for visualization.
package waldtest

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rnalab/detools/counts"
	"github.com/rnalab/detools/diffexpr"
)

// DefaultPseudoCount is added to normalized counts before taking logs.
const DefaultPseudoCount = 0.5

// Engine implements diffexpr.Fitter for a two-condition design. Genes with
// all-zero counts or zero variance in both groups are reported untestable
// (NaN p-value) rather than dropped.
type Engine struct {
	// PseudoCount shifts normalized counts before the log2 transform.
	// Zero means DefaultPseudoCount.
	PseudoCount float64
}

// New returns an Engine with the default pseudocount.
func New() *Engine {
	return &Engine{PseudoCount: DefaultPseudoCount}
}

func (e *Engine) pseudo() float64 {
	if e.PseudoCount > 0 {
		return e.PseudoCount
	}

	return DefaultPseudoCount
}

// Fit runs the per-gene test. The design must carry exactly two conditions;
// the sign convention is contrast-over-reference, so a positive fold change
// means higher expression away from baseline. Output rows follow matrix row
// order and are keyed by the matrix's gene identifiers.
func (e *Engine) Fit(m *counts.Matrix, design counts.Design) ([]diffexpr.Result, error) {
	if err := counts.Validate(m, design); err != nil {
		return nil, err
	}

	conditions := design.Conditions()
	if len(conditions) != 2 {
		return nil, fmt.Errorf("waldtest: design has %d conditions, this engine tests exactly 2", len(conditions))
	}

	var refCols, altCols []int
	for j, s := range design.Samples {
		if s.Condition == design.Reference {
			refCols = append(refCols, j)
		} else {
			altCols = append(altCols, j)
		}
	}
	if len(refCols) < 2 || len(altCols) < 2 {
		return nil, fmt.Errorf("waldtest: need at least 2 samples per condition, have %d reference and %d contrast", len(refCols), len(altCols))
	}

	sf, err := SizeFactors(m)
	if err != nil {
		return nil, err
	}

	normal := distuv.UnitNormal
	results := make([]diffexpr.Result, 0, m.NumGenes())

	for i, id := range m.GeneIDs {
		normalized := normalizeRow(m.Counts[i], sf)

		r := diffexpr.Result{
			FeatureID: id,
			BaseMean:  stat.Mean(normalized, nil),
			AdjP:      math.NaN(),
		}

		if allZero(m.Counts[i]) {
			markUntestable(&r)
			results = append(results, r)
			continue
		}

		logs := make([]float64, len(normalized))
		for j, v := range normalized {
			logs[j] = math.Log2(v + e.pseudo())
		}

		refLogs := gather(logs, refCols)
		altLogs := gather(logs, altCols)

		r.Log2FoldChange = stat.Mean(altLogs, nil) - stat.Mean(refLogs, nil)
		r.StdErr = math.Sqrt(stat.Variance(refLogs, nil)/float64(len(refLogs)) +
			stat.Variance(altLogs, nil)/float64(len(altLogs)))

		if r.StdErr == 0 || math.IsNaN(r.StdErr) {
			// Zero variance in both groups: untestable.
			markUntestable(&r)
			results = append(results, r)
			continue
		}

		r.Stat = r.Log2FoldChange / r.StdErr
		r.PValue = 2 * normal.Survival(math.Abs(r.Stat))

		results = append(results, r)
	}

	return results, nil
}

func markUntestable(r *diffexpr.Result) {
	r.Log2FoldChange = math.NaN()
	r.StdErr = math.NaN()
	r.Stat = math.NaN()
	r.PValue = math.NaN()
}

// SizeFactors estimates one library-depth factor per sample by the
// median-of-ratios method: each sample's median deviation, across genes with
// nonzero counts everywhere, from the gene's geometric mean.
func SizeFactors(m *counts.Matrix) ([]float64, error) {
	perSample := make([][]float64, m.NumSamples())

	for i := range m.GeneIDs {
		row := m.Counts[i]
		if anyZero(row) {
			continue
		}

		logGeoMean := 0.0
		for _, c := range row {
			logGeoMean += math.Log(float64(c))
		}
		logGeoMean /= float64(len(row))

		for j, c := range row {
			perSample[j] = append(perSample[j], math.Log(float64(c))-logGeoMean)
		}
	}

	sf := make([]float64, m.NumSamples())
	for j, ratios := range perSample {
		if len(ratios) == 0 {
			return nil, fmt.Errorf("waldtest: no gene has nonzero counts in every sample; cannot estimate size factors")
		}

		med, err := stats.Median(ratios)
		if err != nil {
			return nil, fmt.Errorf("waldtest: size factor for sample %s: %w", m.Samples[j], err)
		}
		sf[j] = math.Exp(med)
	}

	return sf, nil
}

// Log2Counts returns the shifted log2 of size-factor-normalized counts, one
// row per gene in matrix order. This transform feeds the charts and the
// correlation report only, never the test itself.
func Log2Counts(m *counts.Matrix, sf []float64, pseudoCount float64) ([][]float64, error) {
	if len(sf) != m.NumSamples() {
		return nil, fmt.Errorf("waldtest: %d size factors for %d samples", len(sf), m.NumSamples())
	}
	if pseudoCount <= 0 {
		pseudoCount = DefaultPseudoCount
	}

	out := make([][]float64, m.NumGenes())
	for i := range m.GeneIDs {
		normalized := normalizeRow(m.Counts[i], sf)
		logs := make([]float64, len(normalized))
		for j, v := range normalized {
			logs[j] = math.Log2(v + pseudoCount)
		}
		out[i] = logs
	}

	return out, nil
}

func normalizeRow(row []int64, sf []float64) []float64 {
	out := make([]float64, len(row))
	for j, c := range row {
		out[j] = float64(c) / sf[j]
	}

	return out
}

func gather(values []float64, cols []int) []float64 {
	out := make([]float64, 0, len(cols))
	for _, j := range cols {
		out = append(out, values[j])
	}

	return out
}

func allZero(row []int64) bool {
	for _, c := range row {
		if c != 0 {
			return false
		}
	}

	return true
}

func anyZero(row []int64) bool {
	for _, c := range row {
		if c == 0 {
			return true
		}
	}

	return false
}
