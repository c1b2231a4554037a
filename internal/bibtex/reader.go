package bibtex

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
)

// ReadFile loads bibliography text from path. "-" reads stdin; a ".gz"
// suffix is decompressed transparently.
func ReadFile(path string) (string, error) {
	if path == "-" {
		return Read(os.Stdin, false)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open bibliography: %w", err)
	}
	defer f.Close()
	return Read(f, strings.HasSuffix(strings.ToLower(path), ".gz"))
}

// Read drains r, optionally through a gzip decoder.
func Read(r io.Reader, gzipped bool) (string, error) {
	src := io.Reader(bufio.NewReader(r))
	if gzipped {
		zr, err := pgzip.NewReader(src)
		if err != nil {
			return "", fmt.Errorf("open gzip stream: %w", err)
		}
		defer zr.Close()
		src = zr
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read bibliography: %w", err)
	}
	return string(data), nil
}

// ParseFile is ReadFile followed by Parse.
func ParseFile(path string) ([]Record, error) {
	text, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	recs, err := Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}
