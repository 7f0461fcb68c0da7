package counts

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenPlainAndGzip(t *testing.T) {
	dir := t.TempDir()
	content := []byte(smallTable)

	plain := filepath.Join(dir, "table.csv")
	if err := os.WriteFile(plain, content, 0o644); err != nil {
		t.Fatal(err)
	}

	zipped := filepath.Join(dir, "table.csv.gz")
	f, err := os.Create(zipped)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{plain, zipped} {
		r, err := Open(path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}

		got, err := io.ReadAll(r)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if err := r.Close(); err != nil {
			t.Fatalf("%s: %v", path, err)
		}

		if string(got) != smallTable {
			t.Fatalf("%s: content mismatch", path)
		}
	}
}
