// Package plan describes the ordered stages of a search query.
//
// A plan is always TextSearch, optionally EqualityFilter, Skip, Limit, in
// that order. Pagination applies to the filtered, relevance-ordered set.
package plan

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/questsearch/internal/domain"
	"github.com/kailas-cloud/questsearch/internal/domain/question"
	"github.com/kailas-cloud/questsearch/internal/domain/search/request"
)

// Kind tags a stage variant.
type Kind int

// Stage kinds in their mandatory order.
const (
	KindTextSearch Kind = iota + 1
	KindEqualityFilter
	KindSkip
	KindLimit
)

func (k Kind) String() string {
	switch k {
	case KindTextSearch:
		return "text_search"
	case KindEqualityFilter:
		return "equality_filter"
	case KindSkip:
		return "skip"
	case KindLimit:
		return "limit"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Stage is one step of a plan.
type Stage interface {
	Kind() Kind
}

// TextSearch matches Query against the full-text Field.
type TextSearch struct {
	Field string
	Query string
}

// EqualityFilter keeps records whose Field equals Value exactly.
type EqualityFilter struct {
	Field string
	Value string
}

// Skip discards the first N matches.
type Skip struct{ N int }

// Limit keeps at most N matches.
type Limit struct{ N int }

func (TextSearch) Kind() Kind     { return KindTextSearch }
func (EqualityFilter) Kind() Kind { return KindEqualityFilter }
func (Skip) Kind() Kind           { return KindSkip }
func (Limit) Kind() Kind          { return KindLimit }

// ErrInvalidPlan signals stages out of order or with bad arguments.
var ErrInvalidPlan = errors.New("invalid query plan")

// Plan is a validated, ordered stage list.
type Plan struct {
	stages []Stage
}

// Build translates a query into its plan. It is pure and safe for
// concurrent use.
func Build(q request.Query) (Plan, error) {
	if q.Text() == "" || q.Page() < 1 || q.PageSize() < 1 {
		// zero Query that bypassed request.New
		return Plan{}, domain.NewValidation("query", "is not initialized")
	}

	stages := make([]Stage, 0, 4)
	stages = append(stages, TextSearch{Field: question.FieldTitle, Query: q.Text()})
	if typ, ok := q.Type(); ok {
		stages = append(stages, EqualityFilter{Field: question.FieldType, Value: string(typ)})
	}
	stages = append(stages, Skip{N: q.Skip()}, Limit{N: q.PageSize()})

	return New(stages...)
}

// New checks stage order and arguments.
func New(stages ...Stage) (Plan, error) {
	// next is the kind expected at the current position
	next := KindTextSearch
	for i, st := range stages {
		k := st.Kind()
		switch {
		case k == next:
		case k == KindSkip && next == KindEqualityFilter:
			// filter is optional
		default:
			return Plan{}, fmt.Errorf("%w: stage %d is %s, expected %s", ErrInvalidPlan, i, k, next)
		}

		if err := checkStage(st); err != nil {
			return Plan{}, fmt.Errorf("%w: stage %d: %w", ErrInvalidPlan, i, err)
		}
		next = k + 1
	}
	if next != KindLimit+1 {
		return Plan{}, fmt.Errorf("%w: missing %s stage", ErrInvalidPlan, next)
	}

	return Plan{stages: stages}, nil
}

func checkStage(st Stage) error {
	switch s := st.(type) {
	case TextSearch:
		if s.Field == "" || s.Query == "" {
			return errors.New("text search needs field and query")
		}
	case EqualityFilter:
		if s.Field == "" {
			return errors.New("equality filter needs a field")
		}
	case Skip:
		if s.N < 0 {
			return errors.New("skip must be >= 0")
		}
	case Limit:
		if s.N < 1 {
			return errors.New("limit must be > 0")
		}
	default:
		return fmt.Errorf("unknown stage %T", st)
	}
	return nil
}

// Stages returns the stages in execution order.
func (p Plan) Stages() []Stage {
	out := make([]Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

// TextSearch returns the search stage.
func (p Plan) TextSearch() TextSearch {
	for _, st := range p.stages {
		if s, ok := st.(TextSearch); ok {
			return s
		}
	}
	return TextSearch{}
}

// Filter returns the equality filter, if present.
func (p Plan) Filter() (EqualityFilter, bool) {
	for _, st := range p.stages {
		if f, ok := st.(EqualityFilter); ok {
			return f, true
		}
	}
	return EqualityFilter{}, false
}

// Skip returns the number of matches to discard.
func (p Plan) Skip() int {
	for _, st := range p.stages {
		if s, ok := st.(Skip); ok {
			return s.N
		}
	}
	return 0
}

// Limit returns the page size.
func (p Plan) Limit() int {
	for _, st := range p.stages {
		if l, ok := st.(Limit); ok {
			return l.N
		}
	}
	return 0
}

// IsZero reports whether p was never built.
func (p Plan) IsZero() bool { return len(p.stages) == 0 }
