// Package deplot renders the pipeline's static charts as PNG files using
// go-chart.
package deplot

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/rnalab/detools/diffexpr"
)

const (
	chartWidth  = 1024
	chartHeight = 768

	// Floor for p-values before taking -log10, so p=0 still plots.
	minP = 1e-320
)

// renderable covers chart.Chart and chart.BarChart.
type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func renderToFile(path string, graph renderable) error {
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return fmt.Errorf("deplot: rendering %s: %w", path, err)
	}

	outFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("deplot: %w", err)
	}
	defer outFile.Close()

	if _, err := buffer.WriteTo(outFile); err != nil {
		return fmt.Errorf("deplot: %w", err)
	}

	return nil
}

func scatterStyle(c chart.Style) chart.Style {
	c.StrokeWidth = chart.Disabled
	if c.DotWidth == 0 {
		c.DotWidth = 3
	}

	return c
}

func splitBySignificance(results []diffexpr.Result, alpha float64) (plain, hits []diffexpr.Result) {
	for _, r := range results {
		if math.IsNaN(r.Log2FoldChange) {
			continue
		}
		if !math.IsNaN(r.AdjP) && r.AdjP < alpha {
			hits = append(hits, r)
			continue
		}
		plain = append(plain, r)
	}

	return plain, hits
}

// MAPlot writes mean expression (log10) against log2 fold change, marking
// genes below the alpha cutoff.
func MAPlot(path string, results []diffexpr.Result, alpha float64) error {
	plain, hits := splitBySignificance(results, alpha)

	series := make([]chart.Series, 0, 2)
	for _, group := range []struct {
		name  string
		rows  []diffexpr.Result
		color chart.Style
	}{
		{"not significant", plain, chart.Style{DotColor: chart.ColorLightGray}},
		{fmt.Sprintf("padj < %g", alpha), hits, chart.Style{DotColor: chart.ColorRed}},
	} {
		if len(group.rows) == 0 {
			continue
		}

		xs := make([]float64, 0, len(group.rows))
		ys := make([]float64, 0, len(group.rows))
		for _, r := range group.rows {
			xs = append(xs, math.Log10(r.BaseMean+1))
			ys = append(ys, r.Log2FoldChange)
		}

		series = append(series, chart.ContinuousSeries{
			Name:    group.name,
			XValues: xs,
			YValues: ys,
			Style:   scatterStyle(group.color),
		})
	}

	graph := chart.Chart{
		Title:  "MA plot",
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{Name: "log10 mean of normalized counts"},
		YAxis:  chart.YAxis{Name: "log2 fold change"},
		Series: series,
	}

	return renderToFile(path, &graph)
}

// VolcanoPlot writes log2 fold change against -log10 raw p-value.
func VolcanoPlot(path string, results []diffexpr.Result, alpha float64) error {
	plain, hits := splitBySignificance(results, alpha)

	series := make([]chart.Series, 0, 2)
	for _, group := range []struct {
		name  string
		rows  []diffexpr.Result
		color chart.Style
	}{
		{"not significant", plain, chart.Style{DotColor: chart.ColorLightGray}},
		{fmt.Sprintf("padj < %g", alpha), hits, chart.Style{DotColor: chart.ColorRed}},
	} {
		if len(group.rows) == 0 {
			continue
		}

		xs := make([]float64, 0, len(group.rows))
		ys := make([]float64, 0, len(group.rows))
		for _, r := range group.rows {
			if math.IsNaN(r.PValue) {
				continue
			}
			xs = append(xs, r.Log2FoldChange)
			ys = append(ys, -math.Log10(math.Max(r.PValue, minP)))
		}

		series = append(series, chart.ContinuousSeries{
			Name:    group.name,
			XValues: xs,
			YValues: ys,
			Style:   scatterStyle(group.color),
		})
	}

	graph := chart.Chart{
		Title:  "Volcano plot",
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{Name: "log2 fold change"},
		YAxis:  chart.YAxis{Name: "-log10 p-value"},
		Series: series,
	}

	return renderToFile(path, &graph)
}

// PValueHistogram writes a 20-bin histogram of raw p-values.
func PValueHistogram(path string, results []diffexpr.Result) error {
	const bins = 20

	heights := make([]int, bins)
	for _, r := range results {
		if math.IsNaN(r.PValue) {
			continue
		}
		bin := int(r.PValue * bins)
		if bin == bins {
			// p exactly 1 belongs to the last bin
			bin = bins - 1
		}
		heights[bin]++
	}

	bars := make([]chart.Value, 0, bins)
	for i, h := range heights {
		label := ""
		if i%5 == 0 {
			label = fmt.Sprintf("%.2f", float64(i)/bins)
		}
		bars = append(bars, chart.Value{Value: float64(h), Label: label})
	}

	graph := chart.BarChart{
		Title:    "Raw p-value distribution",
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 30,
		Bars:     bars,
	}

	return renderToFile(path, &graph)
}

// PairScatter writes one gene's transformed abundances against another's,
// one dot per sample.
func PairScatter(path, nameX, nameY string, x, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("deplot: pair scatter length mismatch: %d vs %d", len(x), len(y))
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s vs %s", nameX, nameY),
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{Name: nameX + " (log2 normalized counts)"},
		YAxis:  chart.YAxis{Name: nameY + " (log2 normalized counts)"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: x,
				YValues: y,
				Style:   scatterStyle(chart.Style{DotWidth: 5}),
			},
		},
	}

	return renderToFile(path, &graph)
}
