package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/questsearch/internal/db"
	"github.com/kailas-cloud/questsearch/internal/domain/search/plan"
)

// maxSearchResults mirrors the server's MAXSEARCHRESULTS default. Windows
// past it are rejected by FT.SEARCH, so they are answered with a count only.
const maxSearchResults = 1_000_000

// Execute translates the plan into one FT.SEARCH call. The text stage and the
// equality filter are intersected in the query string; skip and limit map to
// LIMIT. Hits come back in BM25 order.
func (s *Store) Execute(ctx context.Context, index string, p plan.Plan) (*db.SearchResult, error) {
	if index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if p.IsZero() {
		return nil, plan.ErrInvalidPlan
	}

	queryStr, ok := buildQuery(p)
	if !ok {
		return &db.SearchResult{}, nil
	}

	offset, limit := p.Skip(), p.Limit()
	if offset > maxSearchResults-limit {
		offset, limit = 0, 0
	}

	args := []string{
		index, queryStr,
		"WITHSCORES",
		"LIMIT", strconv.Itoa(offset), strconv.Itoa(limit),
		"RETURN", "1", "$",
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isIndexMissing(err) {
			return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
		}
		return nil, wrapErr(db.OpSearch, err)
	}

	return parseSearchResult(raw)
}

// buildQuery renders the text and filter stages. It reports false when the
// text holds no searchable terms, which can match nothing.
func buildQuery(p plan.Plan) (string, bool) {
	ts := p.TextSearch()
	terms := db.Terms(ts.Query)
	if len(terms) == 0 {
		return "", false
	}
	for i, t := range terms {
		terms[i] = escapeQuery(t)
	}

	q := fmt.Sprintf("@%s:(%s)", ts.Field, strings.Join(terms, "|"))
	if f, ok := p.Filter(); ok {
		q += " " + buildTagFilter(f.Field, f.Value)
	}
	return q, true
}

// --- Result parsing ---

func parseSearchResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, &db.Error{Op: db.OpDecode, Err: fmt.Errorf("parse total: %w", err)}
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/3)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		doc, ok := parseFieldPairs(fields)["$"]
		if !ok {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:   key,
			Score: score,
			Data:  []byte(doc),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query helpers ---

func buildTagFilter(key, value string) string {
	escaped := tagEscaper.Replace(value)
	return fmt.Sprintf("@%s:{%s}", key, escaped)
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"|", "\\|",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"[", "\\[",
	"]", "\\]",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"/", "\\/",
	"?", "\\?",
	" ", "\\ ",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
