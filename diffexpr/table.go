package diffexpr

import (
	"log"
	"math"
	"sort"

	"gopkg.in/guregu/null.v3"

	"github.com/rnalab/detools/annot"
)

// Annotate joins display names onto results via the lookup. Rows are never
// dropped or reordered. An identifier with several candidate names takes the
// first candidate, in the lookup's own order; an identifier without a mapping
// keeps an invalid DisplayName. A lookup that is unreachable outright is
// logged and degraded the same way, so annotation failure never aborts the
// pipeline.
func Annotate(results []Result, lookup annot.Lookup) []Result {
	out := make([]Result, len(results))
	copy(out, results)

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.FeatureID)
	}

	names, err := lookup.Names(ids)
	if err != nil {
		log.Printf("annotation unavailable (%v); continuing with identifiers only", err)
		return out
	}

	for i := range out {
		if candidates := names[out[i].FeatureID]; len(candidates) > 0 {
			out[i].DisplayName = null.StringFrom(candidates[0])
		}
	}

	return out
}

// Rank drops rows with NaN AdjP and sorts the remainder ascending by AdjP.
// The sort is stable: equal adjusted p-values keep their input order. Rank of
// its own output is a no-op.
func Rank(results []Result) []Result {
	ranked := make([]Result, 0, len(results))
	for _, r := range results {
		if math.IsNaN(r.AdjP) {
			continue
		}
		ranked = append(ranked, r)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AdjP < ranked[j].AdjP
	})

	return ranked
}

// TopK takes the first k rows of the already-ranked table whose AdjP falls
// strictly below threshold. Fewer than k qualifying rows returns all of them.
func TopK(ranked []Result, threshold float64, k int) []Result {
	if k < 0 {
		k = 0
	}

	out := make([]Result, 0, k)
	for _, r := range ranked {
		if len(out) == k {
			break
		}
		if r.AdjP < threshold {
			out = append(out, r)
		}
	}

	return out
}
