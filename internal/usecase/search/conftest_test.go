package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/kailas-cloud/questsearch/internal/domain/question"
	"github.com/kailas-cloud/questsearch/internal/domain/search/plan"
	"github.com/kailas-cloud/questsearch/internal/domain/search/request"
)

// mockRepo records the plans it receives and serves a fixed corpus slice.
type mockRepo struct {
	plans    []plan.Plan
	searchFn func(ctx context.Context, p plan.Plan) ([]question.Record, error)
}

func (m *mockRepo) Search(ctx context.Context, p plan.Plan) ([]question.Record, error) {
	m.plans = append(m.plans, p)
	if m.searchFn != nil {
		return m.searchFn(ctx, p)
	}
	return nil, nil
}

// pagedCorpus emulates an index holding matches in relevance order.
func pagedCorpus(matches []question.Record) func(context.Context, plan.Plan) ([]question.Record, error) {
	return func(_ context.Context, p plan.Plan) ([]question.Record, error) {
		start := min(p.Skip(), len(matches))
		end := min(start+p.Limit(), len(matches))
		return matches[start:end], nil
	}
}

func records(t *testing.T, n int, title string, typ question.Type) []question.Record {
	t.Helper()
	out := make([]question.Record, n)
	for i := range out {
		rec, err := question.FromMap(map[string]any{
			"title": fmt.Sprintf("%s %d", title, i),
			"type":  string(typ),
		})
		if err != nil {
			t.Fatalf("FromMap: %v", err)
		}
		out[i] = rec
	}
	return out
}

func mustQuery(t *testing.T, text string, typ question.Type, page, pageSize int) request.Query {
	t.Helper()
	q, err := request.New(text, typ, page, pageSize)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return q
}
