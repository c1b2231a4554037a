package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"bibfilter/internal/match"
)

// CSVHeader is the fixed column order of the tabular export.
var CSVHeader = []string{"key", "title", "authors", "year", "venue", "url", "blocks", "terms"}

// CSVRow returns the export columns of one entry.
func CSVRow(e match.Entry) []string {
	r := e.Record
	return []string{
		r.Key,
		r.CleanTitle(),
		r.Authors(),
		r.Year(),
		r.Venue(),
		r.Link(),
		strings.Join(e.MatchedBlocks, "; "),
		Detail(e),
	}
}

// WriteCSV writes a header and one row per entry. Fields containing the
// delimiter, quotes or newlines are quoted.
func WriteCSV(w io.Writer, entries []match.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write(CSVRow(e)); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.Record.Key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the matched entries of res to path.
func WriteCSVFile(path string, res *match.RunResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv %s: %w", path, err)
	}
	if err := WriteCSV(f, res.Matched); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
