package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/questsearch/internal/domain/question"
	"github.com/kailas-cloud/questsearch/internal/domain/search/plan"
	"github.com/kailas-cloud/questsearch/internal/domain/search/request"
)

// Service is the query dispatcher shared by every listener. It holds no
// per-request state.
type Service struct {
	repo Repository
}

// New creates a search service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// BuildPlan translates a validated query into its ordered plan: text search
// on title, then the type filter when one was given, then skip and limit.
func BuildPlan(q request.Query) (plan.Plan, error) {
	return plan.Build(q)
}

// Run builds the plan and executes it. A page past the last match is an
// empty page.
func (s *Service) Run(ctx context.Context, q request.Query) ([]question.Record, error) {
	p, err := BuildPlan(q)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.Search(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("run search: %w", err)
	}
	if records == nil {
		records = []question.Record{}
	}
	return records, nil
}
