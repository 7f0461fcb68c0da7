package counts

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// Sample assigns one sequencing sample to an experimental condition.
type Sample struct {
	ID        string `csv:"sample"`
	Condition string `csv:"condition"`
}

// Design is the ordered sample-to-condition assignment for a run, with an
// explicit reference (baseline) condition that fixes the sign convention of
// fold changes.
type Design struct {
	Samples   []Sample
	Reference string
}

// ReadDesign parses a two-column sample sheet (sample, condition) and fixes
// reference as the baseline condition.
func ReadDesign(r io.Reader, reference string) (Design, error) {
	rows := []*Sample{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return Design{}, fmt.Errorf("counts: reading sample sheet: %w", err)
	}

	d := Design{Reference: reference}
	for _, row := range rows {
		d.Samples = append(d.Samples, *row)
	}

	return d, nil
}

// Conditions returns the distinct condition labels in first-seen order.
func (d Design) Conditions() []string {
	seen := make(map[string]bool)
	out := make([]string, 0, 2)
	for _, s := range d.Samples {
		if !seen[s.Condition] {
			seen[s.Condition] = true
			out = append(out, s.Condition)
		}
	}

	return out
}

// ConditionOf returns the condition for a sample identifier, or "".
func (d Design) ConditionOf(sample string) string {
	for _, s := range d.Samples {
		if s.ID == sample {
			return s.Condition
		}
	}

	return ""
}

// ShapeError reports a mismatch between the count matrix and the sample
// sheet. It is fatal: nothing downstream can run on misaligned inputs.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return "data shape: " + e.Reason
}

// Validate checks that the matrix columns and the design rows describe the
// same samples in the same order, that at least two conditions are present,
// and that the reference level actually occurs.
func Validate(m *Matrix, d Design) error {
	if len(d.Samples) != m.NumSamples() {
		return &ShapeError{Reason: fmt.Sprintf("matrix has %d sample columns, sample sheet has %d rows", m.NumSamples(), len(d.Samples))}
	}

	for i, s := range d.Samples {
		if s.ID != m.Samples[i] {
			return &ShapeError{Reason: fmt.Sprintf("sample %d is %q in the matrix but %q in the sample sheet", i, m.Samples[i], s.ID)}
		}
	}

	conditions := d.Conditions()
	if len(conditions) < 2 {
		return &ShapeError{Reason: "fewer than two conditions in the sample sheet"}
	}

	refSeen := false
	for _, c := range conditions {
		if c == d.Reference {
			refSeen = true
		}
	}
	if !refSeen {
		return &ShapeError{Reason: fmt.Sprintf("reference condition %q does not occur in the sample sheet", d.Reference)}
	}

	return nil
}
