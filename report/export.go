// Package report serializes result tables and the correlation summary to an
// output directory. Each artifact writes independently: one failed file does
// not stop the others.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/rnalab/detools/diffexpr"
	"github.com/rnalab/detools/paircorr"
)

// Row is the fixed CSV column layout for one gene.
type Row struct {
	GeneID         string  `csv:"gene_id"`
	GeneName       string  `csv:"gene_name"`
	BaseMean       float64 `csv:"base_mean"`
	Log2FoldChange float64 `csv:"log2_fold_change"`
	LfcSE          float64 `csv:"lfc_se"`
	Stat           float64 `csv:"stat"`
	PValue         float64 `csv:"pvalue"`
	AdjP           float64 `csv:"padj"`
}

func rowFor(r diffexpr.Result) Row {
	name := ""
	if r.DisplayName.Valid {
		name = r.DisplayName.String
	}

	return Row{
		GeneID:         r.FeatureID,
		GeneName:       name,
		BaseMean:       r.BaseMean,
		Log2FoldChange: r.Log2FoldChange,
		LfcSE:          r.StdErr,
		Stat:           r.Stat,
		PValue:         r.PValue,
		AdjP:           r.AdjP,
	}
}

// EnsureDir creates the output directory if needed. Creating an existing
// directory is not an error.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// WriteResultsCSV writes one header row plus one row per result, in input
// order, to path.
func WriteResultsCSV(path string, results []diffexpr.Result) error {
	rows := make([]Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, rowFor(r))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return fmt.Errorf("report: writing %s: %w", filepath.Base(path), err)
	}

	return nil
}

// WriteCorrelationReport writes the plain-text summary of the two-gene
// correlation test.
func WriteCorrelationReport(path, geneX, geneY string, t paircorr.TestResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "Pearson correlation of log2 normalized counts\n")
	fmt.Fprintf(f, "genes: %s vs %s\n", geneX, geneY)
	fmt.Fprintf(f, "n = %d samples\n", t.N)
	fmt.Fprintf(f, "r = %.6f\n", t.R)
	fmt.Fprintf(f, "p-value = %.6g\n", t.PValue)
	fmt.Fprintf(f, "95%% CI = [%.6f, %.6f]\n", t.Lower, t.Upper)
	fmt.Fprintf(f, "degrees of freedom = %d\n", t.DegreesOfFreedom)

	return nil
}
