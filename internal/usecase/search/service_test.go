package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/questsearch/internal/domain"
	"github.com/kailas-cloud/questsearch/internal/domain/question"
	"github.com/kailas-cloud/questsearch/internal/domain/search/plan"
	"github.com/kailas-cloud/questsearch/internal/domain/search/request"
)

func TestBuildPlan_StageOrder(t *testing.T) {
	tests := []struct {
		name  string
		typ   question.Type
		kinds []plan.Kind
	}{
		{"no filter", "", []plan.Kind{plan.KindTextSearch, plan.KindSkip, plan.KindLimit}},
		{"with filter", question.MCQ, []plan.Kind{plan.KindTextSearch, plan.KindEqualityFilter, plan.KindSkip, plan.KindLimit}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := BuildPlan(mustQuery(t, "math", tc.typ, 3, 20))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			stages := p.Stages()
			if len(stages) != len(tc.kinds) {
				t.Fatalf("expected %d stages, got %d", len(tc.kinds), len(stages))
			}
			for i, k := range tc.kinds {
				if stages[i].Kind() != k {
					t.Errorf("stage %d: expected %s, got %s", i, k, stages[i].Kind())
				}
			}
			if p.Skip() != 40 || p.Limit() != 20 {
				t.Errorf("skip/limit = %d/%d, want 40/20", p.Skip(), p.Limit())
			}
			if ts := p.TextSearch(); ts.Field != question.FieldTitle || ts.Query != "math" {
				t.Errorf("unexpected text stage %+v", ts)
			}
		})
	}
}

func TestBuildPlan_UnknownTypeIsLiteralFilter(t *testing.T) {
	p, err := BuildPlan(mustQuery(t, "math", "ESSAY", 1, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, ok := p.Filter()
	if !ok || f.Field != question.FieldType || f.Value != "ESSAY" {
		t.Errorf("unexpected filter %+v (present=%v)", f, ok)
	}
}

func TestBuildPlan_ZeroQuery(t *testing.T) {
	_, err := BuildPlan(request.Query{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestRun_MathScenario(t *testing.T) {
	repo := &mockRepo{searchFn: pagedCorpus(records(t, 3, "math quiz", question.MCQ))}
	svc := New(repo)

	got, err := svc.Run(context.Background(), mustQuery(t, "math", "", 1, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if len(repo.plans) != 1 {
		t.Fatalf("expected one execution, got %d", len(repo.plans))
	}
	if _, filtered := repo.plans[0].Filter(); filtered {
		t.Error("no type given, plan must not filter")
	}
}

func TestRun_PageLengthNeverExceedsPageSize(t *testing.T) {
	matches := records(t, 37, "fractions", question.MCQ)
	svc := New(&mockRepo{searchFn: pagedCorpus(matches)})

	seen := 0
	for page := 1; page <= 5; page++ {
		got, err := svc.Run(context.Background(), mustQuery(t, "fractions", "", page, 10))
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if len(got) > 10 {
			t.Fatalf("page %d: %d records exceeds page size", page, len(got))
		}
		seen += len(got)
	}
	if seen != 37 {
		t.Errorf("expected 37 records across pages, got %d", seen)
	}
}

func TestRun_PageBeyondMatchesIsEmpty(t *testing.T) {
	svc := New(&mockRepo{searchFn: pagedCorpus(records(t, 5, "math", question.MCQ))})

	got, err := svc.Run(context.Background(), mustQuery(t, "math", "", 50, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil page, got %#v", got)
	}
}

func TestRun_InvalidQueryNeverReachesRepository(t *testing.T) {
	repo := &mockRepo{}
	svc := New(repo)

	_, err := svc.Run(context.Background(), request.Query{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(repo.plans) != 0 {
		t.Error("repository must not be called")
	}
}

func TestRun_PropagatesRepositoryErrors(t *testing.T) {
	repo := &mockRepo{searchFn: func(context.Context, plan.Plan) ([]question.Record, error) {
		return nil, domain.ErrIndexUnavailable
	}}
	svc := New(repo)

	_, err := svc.Run(context.Background(), mustQuery(t, "math", "", 1, 10))
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}
}
