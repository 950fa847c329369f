// Package csvdir loads evaluation records from a directory of CSV files.
// Each file must carry a `reference` column (the trusted JSON reference
// array) and a `summary` column (the raw model response — the column name
// is historical, the cell holds the full generated array text).
package csvdir

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/queryopt/qseval/core/eval"
)

// Column names expected in the input files.
const (
	referenceColumn = "reference"
	responseColumn  = "summary"
)

// List returns the regular files in dir with the given extension, sorted
// by name so evaluation order is stable.
func List(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Read loads one CSV file into records, mapping columns by header name.
// Rows shorter than the header are padded with empty cells, matching how
// lenient CSV consumers treat ragged files.
func Read(path string) ([]eval.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	refIdx, respIdx := -1, -1
	for i, header := range rows[0] {
		switch strings.TrimSpace(header) {
		case referenceColumn:
			refIdx = i
		case responseColumn:
			respIdx = i
		}
	}
	if refIdx < 0 || respIdx < 0 {
		return nil, fmt.Errorf("%s: missing %q or %q column", path, referenceColumn, responseColumn)
	}

	records := make([]eval.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, eval.Record{
			Reference: cell(row, refIdx),
			Response:  cell(row, respIdx),
		})
	}
	return records, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
