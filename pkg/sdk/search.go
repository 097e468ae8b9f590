package questsearch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kailas-cloud/questsearch/internal/domain/question"
	"github.com/kailas-cloud/questsearch/internal/domain/search/request"
)

// Question types known to the corpus. Other values are accepted as filters
// and simply match nothing.
const (
	TypeContentOnly  = string(question.ContentOnly)
	TypeAnagram      = string(question.Anagram)
	TypeMCQ          = string(question.MCQ)
	TypeReadAlong    = string(question.ReadAlong)
	TypeConversation = string(question.Conversation)
)

// SearchRequest selects one page of matches. Zero Page and PageSize take
// the defaults (1 and 10); an empty Type disables the type filter.
type SearchRequest struct {
	Query    string
	Type     string
	Page     int
	PageSize int
}

// Question is a stored record as returned by Search.
type Question struct {
	ID    string
	Type  string
	Title string
	// Fields holds every stored attribute except the identifier.
	Fields map[string]any
}

// Search returns one page of questions whose title matches the query,
// best match first.
func (c *Client) Search(ctx context.Context, req SearchRequest) (_ []Question, err error) {
	start := time.Now()
	var n int
	defer func() {
		c.obs.observe("search", start, err, slog.String("query", req.Query), slog.Int("results", n))
	}()

	q, err := toQuery(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	records, err := c.searchSvc.Run(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]Question, len(records))
	for i, r := range records {
		out[i] = fromRecord(r)
	}
	n = len(out)
	return out, nil
}

func toQuery(req SearchRequest) (request.Query, error) {
	p := request.Params{Query: req.Query}
	if req.Page != 0 {
		p.Page = &req.Page
	}
	if req.PageSize != 0 {
		p.PageSize = &req.PageSize
	}
	if req.Type != "" {
		p.Type = &req.Type
	}
	return p.Build()
}

func fromRecord(r question.Record) Question {
	return Question{
		ID:     r.ID().Hex(),
		Type:   string(r.Type()),
		Title:  r.Title(),
		Fields: r.Fields(),
	}
}
