package diffexpr

import (
	"math"
	"testing"

	"github.com/rnalab/detools/counts"
)

type cannedFitter []Result

func (c cannedFitter) Fit(m *counts.Matrix, design counts.Design) ([]Result, error) {
	out := make([]Result, len(c))
	copy(out, c)

	return out, nil
}

func TestRunTestFillsAdjustedPValues(t *testing.T) {
	fitter := cannedFitter{
		{FeatureID: "g1", PValue: 0.005, AdjP: math.NaN()},
		{FeatureID: "g2", PValue: math.NaN(), AdjP: math.NaN()},
		{FeatureID: "g3", PValue: 0.04, AdjP: math.NaN()},
	}

	results, err := RunTest(fitter, nil, counts.Design{})
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].FeatureID != "g1" || results[2].FeatureID != "g3" {
		t.Fatal("RunTest reordered results")
	}
	if math.Abs(results[0].AdjP-0.01) > 1e-12 {
		t.Fatalf("g1 adjP: got %v, expected 0.01", results[0].AdjP)
	}
	if !math.IsNaN(results[1].AdjP) {
		t.Fatalf("untestable gene must keep NaN adjP, got %v", results[1].AdjP)
	}
	if math.Abs(results[2].AdjP-0.04) > 1e-12 {
		t.Fatalf("g3 adjP: got %v, expected 0.04", results[2].AdjP)
	}
}
