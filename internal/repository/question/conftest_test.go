package question

import (
	"context"
	"testing"

	"github.com/kailas-cloud/questsearch/internal/db"
	domq "github.com/kailas-cloud/questsearch/internal/domain/question"
	"github.com/kailas-cloud/questsearch/internal/domain/search/plan"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	executeFn     func(ctx context.Context, index string, p plan.Plan) (*db.SearchResult, error)
	insertMultiFn func(ctx context.Context, index string, docs []db.Document) (*db.WriteResult, error)
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) Execute(ctx context.Context, index string, p plan.Plan) (*db.SearchResult, error) {
	if m.executeFn != nil {
		return m.executeFn(ctx, index, p)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) InsertMulti(ctx context.Context, index string, docs []db.Document) (*db.WriteResult, error) {
	if m.insertMultiFn != nil {
		return m.insertMultiFn(ctx, index, docs)
	}
	return &db.WriteResult{Errors: make([]error, len(docs))}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "qs:", "questions"), ms
}

func mustRecord(t *testing.T, m map[string]any) domq.Record {
	t.Helper()
	rec, err := domq.FromMap(m)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	return rec
}

func testPlan(t *testing.T) plan.Plan {
	t.Helper()
	p, err := plan.New(
		plan.TextSearch{Field: domq.FieldTitle, Query: "math"},
		plan.Skip{N: 0},
		plan.Limit{N: 10},
	)
	if err != nil {
		t.Fatalf("plan.New: %v", err)
	}
	return p
}
