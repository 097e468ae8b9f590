// Package corpus reads exported question corpora: either one JSON array of
// objects or a stream of newline-delimited objects.
package corpus

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode"
)

// ErrEmpty is returned for a file with no records.
var ErrEmpty = errors.New("corpus is empty")

// ReadFile reads a corpus file.
func ReadFile(path string) ([]map[string]any, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	return records, nil
}

// Read decodes raw records. Numbers are kept as json.Number so that they are
// written back unchanged.
func Read(r io.Reader) ([]map[string]any, error) {
	br := bufio.NewReader(r)
	first, err := firstRune(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, err
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()

	var records []map[string]any
	switch first {
	case '[':
		records, err = readArray(dec)
	case '{':
		records, err = readStream(dec)
	default:
		return nil, fmt.Errorf("expected a JSON array or objects, got %q", first)
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}
	return records, nil
}

func readArray(dec *json.Decoder) ([]map[string]any, error) {
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("record array: %w", err)
	}

	var records []map[string]any
	for dec.More() {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records), err)
		}
		if m == nil {
			return nil, fmt.Errorf("record %d: must be an object", len(records))
		}
		records = append(records, m)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("record array: %w", err)
	}
	return records, nil
}

func readStream(dec *json.Decoder) ([]map[string]any, error) {
	var records []map[string]any
	for {
		var m map[string]any
		err := dec.Decode(&m)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records), err)
		}
		if m == nil {
			return nil, fmt.Errorf("record %d: must be an object", len(records))
		}
		records = append(records, m)
	}
}

// firstRune returns the first non-space rune without consuming it.
func firstRune(br *bufio.Reader) (rune, error) {
	for {
		r, _, err := br.ReadRune()
		if err != nil {
			return 0, err
		}
		if r == '\uFEFF' || unicode.IsSpace(r) {
			continue
		}
		if err := br.UnreadRune(); err != nil {
			return 0, err
		}
		return r, nil
	}
}
