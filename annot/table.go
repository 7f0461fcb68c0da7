package annot

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"strings"
)

//go:embed data/gene_names.tsv
var embedded embed.FS

// Table is a Lookup over an in-memory identifier-to-symbol mapping. Candidate
// order is the source file's row order, so "first match wins" is the first
// row that names the identifier.
type Table struct {
	names map[string][]string
}

// NewTable parses a two-column, tab-delimited mapping (gene_id, gene_symbol)
// with a header row. An identifier may appear on several rows.
func NewTable(r io.Reader) (*Table, error) {
	t := &Table{names: make(map[string][]string)}

	scanner := bufio.NewScanner(r)
	for line := 0; scanner.Scan(); line++ {
		if line == 0 {
			// Header
			continue
		}

		text := scanner.Text()
		if text == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("annot: line %d has %d fields, expected 2", line, len(fields))
		}

		t.names[fields[0]] = append(t.names[fields[0]], fields[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("annot: %w", err)
	}

	return t, nil
}

// NewFlyTable returns the bundled BioMart-derived fly gene symbol table.
func NewFlyTable() (*Table, error) {
	f, err := embedded.Open("data/gene_names.tsv")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return NewTable(f)
}

// Names implements Lookup. Only the requested identifiers appear in the
// result; identifiers without a mapping are absent.
func (t *Table) Names(ids []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, id := range ids {
		if candidates, ok := t.names[id]; ok {
			out[id] = candidates
		}
	}

	return out, nil
}
