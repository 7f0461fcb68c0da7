package counts

import (
	"bytes"
	"embed"
)

//go:embed data/fly_counts.csv data/fly_samples.csv
var embedded embed.FS

// ExampleReference is the baseline condition of the bundled dataset.
const ExampleReference = "untreated"

// ExampleMatrix returns the bundled fly RNA-seq count table, so that the
// pipeline runs without any input files.
func ExampleMatrix() (*Matrix, error) {
	raw, err := embedded.ReadFile("data/fly_counts.csv")
	if err != nil {
		return nil, err
	}

	return ReadMatrix(bytes.NewReader(raw), ',')
}

// ExampleDesign returns the sample sheet matching ExampleMatrix, with
// ExampleReference as the baseline.
func ExampleDesign() (Design, error) {
	raw, err := embedded.ReadFile("data/fly_samples.csv")
	if err != nil {
		return Design{}, err
	}

	return ReadDesign(bytes.NewReader(raw), ExampleReference)
}
