// Package counts loads RNA-seq count matrices and sample sheets and validates
// that the two agree before any statistics are run.
package counts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Matrix is a gene-by-sample table of non-negative integer read counts.
// Counts[i][j] is the count for GeneIDs[i] in Samples[j].
type Matrix struct {
	GeneIDs []string
	Samples []string
	Counts  [][]int64
}

// NumGenes returns the number of rows.
func (m *Matrix) NumGenes() int {
	return len(m.GeneIDs)
}

// NumSamples returns the number of columns.
func (m *Matrix) NumSamples() int {
	return len(m.Samples)
}

// GeneRow returns the row index for a gene identifier, or -1.
func (m *Matrix) GeneRow(id string) int {
	for i, g := range m.GeneIDs {
		if g == id {
			return i
		}
	}

	return -1
}

// ReadMatrix parses a delimited count table: a header row whose fields after
// the first are sample identifiers, then one row per gene with the gene
// identifier in the first field and non-negative integer counts after it.
func ReadMatrix(r io.Reader, comma rune) (*Matrix, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("counts: reading header: %w", err)
	}
	if len(header) < 2 {
		return nil, &ShapeError{Reason: "count table header has no sample columns"}
	}

	m := &Matrix{Samples: header[1:]}
	seen := make(map[string]bool)

	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("counts: row %d: %w", line, err)
		}

		if len(row) != len(header) {
			return nil, &ShapeError{Reason: fmt.Sprintf("row %d has %d fields, header has %d", line, len(row), len(header))}
		}

		id := row[0]
		if id == "" {
			return nil, &ShapeError{Reason: fmt.Sprintf("row %d has an empty gene identifier", line)}
		}
		if seen[id] {
			return nil, &ShapeError{Reason: fmt.Sprintf("duplicate gene identifier %s", id)}
		}
		seen[id] = true

		values := make([]int64, 0, len(row)-1)
		for _, field := range row[1:] {
			v, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("counts: row %d (%s): %w", line, id, err)
			}
			if v < 0 {
				return nil, &ShapeError{Reason: fmt.Sprintf("negative count for gene %s", id)}
			}
			values = append(values, v)
		}

		m.GeneIDs = append(m.GeneIDs, id)
		m.Counts = append(m.Counts, values)
	}

	if m.NumGenes() == 0 {
		return nil, &ShapeError{Reason: "count table has no gene rows"}
	}

	return m, nil
}
