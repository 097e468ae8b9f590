package request

import (
	"math"
	"strings"

	"github.com/kailas-cloud/questsearch/internal/domain"
	"github.com/kailas-cloud/questsearch/internal/domain/question"
)

// Search parameter limits and defaults.
const (
	// MaxQueryLength is the maximum allowed search query length in bytes.
	MaxQueryLength  = 4096
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Query is a validated search request.
type Query struct {
	text     string
	typ      question.Type
	page     int
	pageSize int
}

// New validates search parameters. text is trimmed; an empty typ means no
// type filter. Any other typ value, known or not, becomes an equality filter.
func New(text string, typ question.Type, page, pageSize int) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, domain.NewValidation("query", "is required")
	}
	if len(text) > MaxQueryLength {
		return Query{}, domain.NewValidation("query", "is too long")
	}
	if page < 1 {
		return Query{}, domain.NewValidation("page", "must be >= 1")
	}
	if pageSize < 1 {
		return Query{}, domain.NewValidation("pageSize", "must be > 0")
	}
	if page-1 > math.MaxInt/pageSize {
		return Query{}, domain.NewValidation("page", "is out of range")
	}

	return Query{
		text:     text,
		typ:      question.Type(strings.TrimSpace(string(typ))),
		page:     page,
		pageSize: pageSize,
	}, nil
}

// Text returns the trimmed search text.
func (q Query) Text() string { return q.text }

// Type returns the type filter and whether one was supplied.
func (q Query) Type() (question.Type, bool) { return q.typ, q.typ != "" }

// Page returns the 1-based page number.
func (q Query) Page() int { return q.page }

// PageSize returns the number of records per page.
func (q Query) PageSize() int { return q.pageSize }

// Skip returns the number of leading matches to discard.
func (q Query) Skip() int { return (q.page - 1) * q.pageSize }

// Params carries raw protocol parameters. Nil pointers take the defaults.
type Params struct {
	Query    string
	Page     *int
	PageSize *int
	Type     *string
}

// Build applies defaults and validates. Both listeners go through it so the
// HTTP and RPC surfaces cannot drift apart.
func (p Params) Build() (Query, error) {
	page := DefaultPage
	if p.Page != nil {
		page = *p.Page
	}
	pageSize := DefaultPageSize
	if p.PageSize != nil {
		pageSize = *p.PageSize
	}
	var typ question.Type
	if p.Type != nil {
		typ = question.Type(*p.Type)
	}
	return New(p.Query, typ, page, pageSize)
}
