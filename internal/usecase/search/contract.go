package search

import (
	"context"

	"github.com/kailas-cloud/questsearch/internal/domain/question"
	"github.com/kailas-cloud/questsearch/internal/domain/search/plan"
	"github.com/kailas-cloud/questsearch/internal/domain/search/request"
)

// Repository executes query plans against the question index.
type Repository interface {
	Search(ctx context.Context, p plan.Plan) ([]question.Record, error)
}

// Searcher is what the protocol front ends call. Service and Instrumented
// both implement it.
type Searcher interface {
	Run(ctx context.Context, q request.Query) ([]question.Record, error)
}
