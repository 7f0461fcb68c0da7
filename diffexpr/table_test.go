package diffexpr

import (
	"errors"
	"math"
	"testing"
)

type mapLookup map[string][]string

func (m mapLookup) Names(ids []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, id := range ids {
		if names, ok := m[id]; ok {
			out[id] = names
		}
	}

	return out, nil
}

type downLookup struct{}

func (downLookup) Names(ids []string) (map[string][]string, error) {
	return nil, errors.New("name service unreachable")
}

func resultWithAdjP(id string, adjP float64) Result {
	return Result{FeatureID: id, PValue: adjP, AdjP: adjP}
}

func TestRankDropsUntestableAndSorts(t *testing.T) {
	input := []Result{
		resultWithAdjP("g1", 0.2),
		resultWithAdjP("g2", math.NaN()),
		resultWithAdjP("g3", 0.01),
	}

	ranked := Rank(input)

	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked rows, got %d", len(ranked))
	}
	if ranked[0].FeatureID != "g3" || ranked[1].FeatureID != "g1" {
		t.Fatalf("wrong order: %s, %s", ranked[0].FeatureID, ranked[1].FeatureID)
	}

	// Input order must be untouched
	if input[1].FeatureID != "g2" {
		t.Fatal("Rank mutated its input")
	}
}

func TestRankStableForTies(t *testing.T) {
	input := []Result{
		resultWithAdjP("first", 0.05),
		resultWithAdjP("second", 0.05),
		resultWithAdjP("third", 0.05),
		resultWithAdjP("earlier", 0.01),
	}

	ranked := Rank(input)

	want := []string{"earlier", "first", "second", "third"}
	for i, id := range want {
		if ranked[i].FeatureID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, ranked[i].FeatureID)
		}
	}
}

func TestRankIdempotent(t *testing.T) {
	input := []Result{
		resultWithAdjP("a", 0.3),
		resultWithAdjP("b", 0.001),
		resultWithAdjP("c", 0.02),
	}

	once := Rank(input)
	twice := Rank(once)

	if len(once) != len(twice) {
		t.Fatalf("length changed: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].FeatureID != twice[i].FeatureID {
			t.Fatalf("position %d changed: %s vs %s", i, once[i].FeatureID, twice[i].FeatureID)
		}
	}
}

func TestTopKRespectsThresholdAndCount(t *testing.T) {
	input := make([]Result, 0, 20)
	for i := 0; i < 20; i++ {
		adjP := 0.5
		if i < 3 {
			adjP = 0.001 * float64(i+1)
		}
		input = append(input, resultWithAdjP("g", adjP))
	}
	ranked := Rank(input)

	top := TopK(ranked, 0.05, 10)
	if len(top) != 3 {
		t.Fatalf("expected 3 rows below threshold, got %d", len(top))
	}
	for i, r := range top {
		if r.AdjP >= 0.05 {
			t.Fatalf("row %d has adjP %f above threshold", i, r.AdjP)
		}
	}

	if got := TopK(ranked, 0.05, 2); len(got) != 2 {
		t.Fatalf("k truncation failed: got %d rows", len(got))
	}

	if got := TopK(ranked, 1.1, 100); len(got) != len(ranked) {
		t.Fatalf("permissive threshold should keep all %d rows, got %d", len(ranked), len(got))
	}
}

func TestAnnotateFirstCandidateWins(t *testing.T) {
	lookup := mapLookup{"ENSG1": {"TP53", "P53"}}

	out := Annotate([]Result{{FeatureID: "ENSG1"}}, lookup)

	if !out[0].DisplayName.Valid || out[0].DisplayName.String != "TP53" {
		t.Fatalf("expected TP53, got %+v", out[0].DisplayName)
	}
}

func TestAnnotatePreservesRowsAndHandlesMisses(t *testing.T) {
	lookup := mapLookup{"g2": {"Adh"}}
	input := []Result{
		{FeatureID: "g1"},
		{FeatureID: "g2"},
		{FeatureID: "g3"},
	}

	out := Annotate(input, lookup)

	if len(out) != len(input) {
		t.Fatalf("row count changed: %d vs %d", len(out), len(input))
	}
	for i := range input {
		if out[i].FeatureID != input[i].FeatureID {
			t.Fatalf("row %d reordered", i)
		}
	}
	if out[0].DisplayName.Valid || out[2].DisplayName.Valid {
		t.Fatal("lookup miss must yield an invalid display name")
	}
	if !out[1].DisplayName.Valid || out[1].DisplayName.String != "Adh" {
		t.Fatalf("expected Adh, got %+v", out[1].DisplayName)
	}
	if input[1].DisplayName.Valid {
		t.Fatal("Annotate mutated its input")
	}
}

func TestAnnotateDegradesWhenLookupDown(t *testing.T) {
	input := []Result{{FeatureID: "g1"}, {FeatureID: "g2"}}

	out := Annotate(input, downLookup{})

	if len(out) != 2 {
		t.Fatalf("unavailable lookup must not drop rows, got %d", len(out))
	}
	for i, r := range out {
		if r.DisplayName.Valid {
			t.Fatalf("row %d should have a null display name", i)
		}
	}
}
