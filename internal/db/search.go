package db

import (
	"strings"
	"unicode"
)

// SearchResult is the output of a plan execution.
type SearchResult struct {
	Total   int // matches after filtering, before skip/limit
	Entries []SearchEntry
}

// SearchEntry is a single document hit in relevance order.
type SearchEntry struct {
	Key   string
	Score float64
	Data  []byte // stored JSON document
}

// Terms splits free text into the letter/digit runs a full-text index
// tokenizes on. Punctuation never reaches a backend query parser.
func Terms(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
