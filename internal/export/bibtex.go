package export

import (
	"fmt"
	"os"

	"bibfilter/internal/bibtex"
	"bibfilter/internal/match"
)

// BibTeX serializes the matched records of res.
func BibTeX(res *match.RunResult) string {
	return bibtex.Marshal(res.MatchedRecords())
}

// WriteBibTeX writes the matched records of res to path.
func WriteBibTeX(path string, res *match.RunResult) error {
	if err := os.WriteFile(path, []byte(BibTeX(res)), 0o644); err != nil {
		return fmt.Errorf("write bibtex %s: %w", path, err)
	}
	return nil
}
