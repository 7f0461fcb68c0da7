package counts

import (
	"errors"
	"strings"
	"testing"
)

const smallTable = `gene_id,s1,s2,s3,s4
FBgn01,10,20,30,40
FBgn02,0,0,0,0
FBgn03,5,5,5,5
`

func smallDesign() Design {
	return Design{
		Reference: "ctl",
		Samples: []Sample{
			{ID: "s1", Condition: "ctl"},
			{ID: "s2", Condition: "ctl"},
			{ID: "s3", Condition: "trt"},
			{ID: "s4", Condition: "trt"},
		},
	}
}

func TestReadMatrix(t *testing.T) {
	m, err := ReadMatrix(strings.NewReader(smallTable), ',')
	if err != nil {
		t.Fatal(err)
	}

	if m.NumGenes() != 3 || m.NumSamples() != 4 {
		t.Fatalf("got %d genes x %d samples", m.NumGenes(), m.NumSamples())
	}
	if m.GeneIDs[1] != "FBgn02" {
		t.Fatalf("unexpected gene order: %v", m.GeneIDs)
	}
	if m.Counts[0][3] != 40 {
		t.Fatalf("unexpected count: %d", m.Counts[0][3])
	}
	if m.GeneRow("FBgn03") != 2 || m.GeneRow("missing") != -1 {
		t.Fatal("GeneRow lookup failed")
	}
}

func TestReadMatrixRejectsBadInput(t *testing.T) {
	for _, v := range []struct {
		name  string
		table string
	}{
		{"duplicate gene", "gene_id,s1\nFBgn01,1\nFBgn01,2\n"},
		{"negative count", "gene_id,s1\nFBgn01,-3\n"},
		{"no sample columns", "gene_id\nFBgn01\n"},
		{"empty identifier", "gene_id,s1\n,3\n"},
		{"no gene rows", "gene_id,s1\n"},
	} {
		if _, err := ReadMatrix(strings.NewReader(v.table), ','); err == nil {
			t.Fatalf("%s: expected an error", v.name)
		}
	}
}

func TestReadDesign(t *testing.T) {
	sheet := "sample,condition\ns1,ctl\ns2,trt\n"

	d, err := ReadDesign(strings.NewReader(sheet), "ctl")
	if err != nil {
		t.Fatal(err)
	}

	if len(d.Samples) != 2 || d.Reference != "ctl" {
		t.Fatalf("unexpected design: %+v", d)
	}
	if got := d.Conditions(); len(got) != 2 || got[0] != "ctl" || got[1] != "trt" {
		t.Fatalf("unexpected conditions: %v", got)
	}
	if d.ConditionOf("s2") != "trt" || d.ConditionOf("nope") != "" {
		t.Fatal("ConditionOf lookup failed")
	}
}

func TestValidate(t *testing.T) {
	m, err := ReadMatrix(strings.NewReader(smallTable), ',')
	if err != nil {
		t.Fatal(err)
	}

	if err := Validate(m, smallDesign()); err != nil {
		t.Fatalf("valid design rejected: %v", err)
	}

	for _, v := range []struct {
		name   string
		mutate func(*Design)
	}{
		{"sample count mismatch", func(d *Design) { d.Samples = d.Samples[:3] }},
		{"sample name mismatch", func(d *Design) { d.Samples[0].ID = "other" }},
		{"single condition", func(d *Design) {
			for i := range d.Samples {
				d.Samples[i].Condition = "ctl"
			}
		}},
		{"missing reference", func(d *Design) { d.Reference = "mock" }},
	} {
		d := smallDesign()
		v.mutate(&d)

		err := Validate(m, d)
		if err == nil {
			t.Fatalf("%s: expected an error", v.name)
		}

		var shapeErr *ShapeError
		if !errors.As(err, &shapeErr) {
			t.Fatalf("%s: expected a ShapeError, got %T", v.name, err)
		}
	}
}

func TestDetectDelimiter(t *testing.T) {
	if got := DetectDelimiter(strings.NewReader("a,b,c\n1,2,3\n4,5,6\n")); got != ',' {
		t.Fatalf("expected comma, got %q", got)
	}
	if got := DetectDelimiter(strings.NewReader("a\tb\tc\n1\t2\t3\n4\t5\t6\n")); got != '\t' {
		t.Fatalf("expected tab, got %q", got)
	}
}

func TestExampleDataset(t *testing.T) {
	m, err := ExampleMatrix()
	if err != nil {
		t.Fatal(err)
	}
	d, err := ExampleDesign()
	if err != nil {
		t.Fatal(err)
	}

	if err := Validate(m, d); err != nil {
		t.Fatalf("bundled dataset does not validate: %v", err)
	}
	if m.NumSamples() != 7 {
		t.Fatalf("expected 7 samples, got %d", m.NumSamples())
	}
	if d.Reference != ExampleReference {
		t.Fatalf("unexpected reference: %s", d.Reference)
	}
}
