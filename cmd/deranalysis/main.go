// deranalysis runs the differential-expression pipeline: load a count matrix
// and sample sheet (or the bundled fly dataset), fit a per-gene test, adjust
// for multiple testing, annotate gene symbols, and write ranked tables,
// charts, and a two-gene correlation report to the output directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/carbocation/pfx"

	"github.com/rnalab/detools/annot"
	"github.com/rnalab/detools/counts"
	"github.com/rnalab/detools/deplot"
	"github.com/rnalab/detools/diffexpr"
	"github.com/rnalab/detools/diffexpr/waldtest"
	"github.com/rnalab/detools/paircorr"
	"github.com/rnalab/detools/report"
)

// Special value that is to be set using ldflags
// E.g.: go build -ldflags "-X main.builddate=`date -u +%Y-%m-%d:%H:%M:%S%Z`"
var builddate string

func main() {
	fmt.Fprintf(os.Stderr, "This deranalysis binary was built at: %s\n", builddate)

	var (
		countsFile  string
		samplesFile string
		reference   string
		outDir      string
		alpha       float64
		topK        int
		geneX       string
		geneY       string
	)

	flag.StringVar(&countsFile, "counts", "", "Path to the count matrix CSV (rows=genes, columns=samples). Optionally compressed. Empty: use the bundled example dataset.")
	flag.StringVar(&samplesFile, "samples", "", "Path to the sample sheet CSV (sample, condition). Required when -counts is set.")
	flag.StringVar(&reference, "reference", counts.ExampleReference, "Baseline condition for the fold-change sign convention.")
	flag.StringVar(&outDir, "out", "deranalysis_output", "Output directory. Created if absent.")
	flag.Float64Var(&alpha, "alpha", 0.05, "Adjusted p-value cutoff for the top table and chart highlighting.")
	flag.IntVar(&topK, "top", 20, "Maximum number of genes in the top table.")
	flag.StringVar(&geneX, "genex", "", "First gene of the correlation report. Empty: chosen from the top of the ranked table.")
	flag.StringVar(&geneY, "geney", "", "Second gene of the correlation report. Empty: chosen from the top of the ranked table.")
	flag.Parse()

	if countsFile != "" && samplesFile == "" {
		log.Fatalln("Please provide -samples along with -counts")
	}

	matrix, design, err := loadInputs(countsFile, samplesFile, reference)
	if err != nil {
		log.Fatalln(pfx.Err(err))
	}

	if err := counts.Validate(matrix, design); err != nil {
		log.Fatalln(pfx.Err(err))
	}
	log.Printf("Loaded %d genes x %d samples, reference condition %q", matrix.NumGenes(), matrix.NumSamples(), design.Reference)

	engine := waldtest.New()
	results, err := diffexpr.RunTest(engine, matrix, design)
	if err != nil {
		log.Fatalln(pfx.Err(err))
	}

	lookup, err := annot.NewFlyTable()
	if err != nil {
		log.Fatalln(pfx.Err(err))
	}

	annotated := diffexpr.Annotate(results, lookup)
	ranked := diffexpr.Rank(annotated)
	top := diffexpr.TopK(ranked, alpha, topK)
	log.Printf("Ranked %d testable genes; %d at padj < %g", len(ranked), len(top), alpha)

	if err := report.EnsureDir(outDir); err != nil {
		log.Fatalln(pfx.Err(err))
	}

	// Every artifact gets its own attempt; one failure does not stop the rest.
	failures := 0
	artifact := func(name string, err error) {
		if err != nil {
			failures++
			log.Println(pfx.Err(err))
			return
		}
		log.Println("Wrote", filepath.Join(outDir, name))
	}

	artifact("results_ranked.csv", report.WriteResultsCSV(filepath.Join(outDir, "results_ranked.csv"), ranked))
	artifact("results_top.csv", report.WriteResultsCSV(filepath.Join(outDir, "results_top.csv"), top))
	artifact("ma_plot.png", deplot.MAPlot(filepath.Join(outDir, "ma_plot.png"), annotated, alpha))
	artifact("volcano.png", deplot.VolcanoPlot(filepath.Join(outDir, "volcano.png"), annotated, alpha))
	artifact("pvalue_hist.png", deplot.PValueHistogram(filepath.Join(outDir, "pvalue_hist.png"), annotated))

	if err := correlationArtifacts(outDir, matrix, engine, ranked, geneX, geneY, artifact); err != nil {
		failures++
		log.Println(pfx.Err(err))
	}

	if failures > 0 {
		log.Fatalf("%d artifact(s) failed to write", failures)
	}
}

func loadInputs(countsFile, samplesFile, reference string) (*counts.Matrix, counts.Design, error) {
	if countsFile == "" {
		log.Println("No -counts given; using the bundled example dataset")

		matrix, err := counts.ExampleMatrix()
		if err != nil {
			return nil, counts.Design{}, err
		}
		design, err := counts.ExampleDesign()
		if err != nil {
			return nil, counts.Design{}, err
		}
		design.Reference = reference

		return matrix, design, nil
	}

	cf, err := counts.Open(countsFile)
	if err != nil {
		return nil, counts.Design{}, err
	}
	defer cf.Close()

	// Sniff the delimiter from a fresh handle so the parse starts at byte 0.
	df, err := counts.Open(countsFile)
	if err != nil {
		return nil, counts.Design{}, err
	}
	comma := counts.DetectDelimiter(df)
	df.Close()

	matrix, err := counts.ReadMatrix(cf, comma)
	if err != nil {
		return nil, counts.Design{}, err
	}

	sf, err := counts.Open(samplesFile)
	if err != nil {
		return nil, counts.Design{}, err
	}
	defer sf.Close()

	design, err := counts.ReadDesign(sf, reference)
	if err != nil {
		return nil, counts.Design{}, err
	}

	return matrix, design, nil
}

// correlationArtifacts picks the two genes, runs the Pearson test on their
// transformed abundances, and writes the scatter chart plus the text report.
func correlationArtifacts(outDir string, matrix *counts.Matrix, engine *waldtest.Engine, ranked []diffexpr.Result, geneX, geneY string, artifact func(string, error)) error {
	if geneX == "" || geneY == "" {
		picked := pickPair(ranked)
		if len(picked) < 2 {
			return fmt.Errorf("fewer than two ranked genes; cannot build the correlation report")
		}
		if geneX == "" {
			geneX = picked[0]
		}
		if geneY == "" {
			geneY = picked[1]
		}
	}

	rowX, rowY := matrix.GeneRow(geneX), matrix.GeneRow(geneY)
	if rowX < 0 || rowY < 0 {
		return fmt.Errorf("correlation genes %q / %q not present in the count matrix", geneX, geneY)
	}

	sf, err := waldtest.SizeFactors(matrix)
	if err != nil {
		return err
	}
	logs, err := waldtest.Log2Counts(matrix, sf, engine.PseudoCount)
	if err != nil {
		return err
	}

	corr, err := paircorr.Pearson(logs[rowX], logs[rowY])
	if err != nil {
		return err
	}
	log.Printf("Correlation %s vs %s: r=%.3f p=%.3g", geneX, geneY, corr.R, corr.PValue)

	artifact("pair_scatter.png", deplot.PairScatter(filepath.Join(outDir, "pair_scatter.png"), geneX, geneY, logs[rowX], logs[rowY]))
	artifact("correlation.txt", report.WriteCorrelationReport(filepath.Join(outDir, "correlation.txt"), geneX, geneY, corr))

	return nil
}

// pickPair prefers the top genes that carry a display name, falling back to
// the top of the ranked table.
func pickPair(ranked []diffexpr.Result) []string {
	named := make([]string, 0, 2)
	for _, r := range ranked {
		if r.DisplayName.Valid {
			named = append(named, r.FeatureID)
		}
		if len(named) == 2 {
			return named
		}
	}

	ids := make([]string, 0, 2)
	for _, r := range ranked {
		ids = append(ids, r.FeatureID)
		if len(ids) == 2 {
			break
		}
	}

	return ids
}
