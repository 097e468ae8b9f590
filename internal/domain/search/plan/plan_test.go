package plan

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kailas-cloud/questsearch/internal/domain"
	"github.com/kailas-cloud/questsearch/internal/domain/search/request"
)

func mustQuery(t *testing.T, text, typ string, page, size int) request.Query {
	t.Helper()
	q, err := request.Params{Query: text, Page: &page, PageSize: &size, Type: &typ}.Build()
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return q
}

func kinds(p Plan) []Kind {
	var out []Kind
	for _, st := range p.Stages() {
		out = append(out, st.Kind())
	}
	return out
}

func TestBuild_NoFilter(t *testing.T) {
	p, err := Build(mustQuery(t, "math", "", 1, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Stage{
		TextSearch{Field: "title", Query: "math"},
		Skip{N: 0},
		Limit{N: 10},
	}
	if !reflect.DeepEqual(p.Stages(), want) {
		t.Errorf("stages = %#v, want %#v", p.Stages(), want)
	}
	if _, ok := p.Filter(); ok {
		t.Error("unexpected filter stage")
	}
}

func TestBuild_WithFilter(t *testing.T) {
	p, err := Build(mustQuery(t, "fruit", "MCQ", 3, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantKinds := []Kind{KindTextSearch, KindEqualityFilter, KindSkip, KindLimit}
	if !reflect.DeepEqual(kinds(p), wantKinds) {
		t.Fatalf("kinds = %v, want %v", kinds(p), wantKinds)
	}
	f, ok := p.Filter()
	if !ok || f.Field != "type" || f.Value != "MCQ" {
		t.Errorf("filter = %+v, %v", f, ok)
	}
	if p.Skip() != 40 || p.Limit() != 20 {
		t.Errorf("skip/limit = %d/%d, want 40/20", p.Skip(), p.Limit())
	}
	if ts := p.TextSearch(); ts.Query != "fruit" || ts.Field != "title" {
		t.Errorf("text search = %+v", ts)
	}
}

func TestBuild_UnknownTypeIsLiteralFilter(t *testing.T) {
	p, err := Build(mustQuery(t, "x", "ESSAY", 1, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, ok := p.Filter()
	if !ok || f.Value != "ESSAY" {
		t.Errorf("filter = %+v, %v", f, ok)
	}
}

func TestBuild_SkipArithmetic(t *testing.T) {
	for page := 1; page <= 10; page++ {
		for size := 1; size <= 10; size++ {
			p, err := Build(mustQuery(t, "x", "", page, size))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Skip() != (page-1)*size || p.Limit() != size {
				t.Fatalf("page=%d size=%d: skip=%d limit=%d", page, size, p.Skip(), p.Limit())
			}
		}
	}
}

func TestBuild_ZeroQuery(t *testing.T) {
	_, err := Build(request.Query{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNew_RejectsBadOrder(t *testing.T) {
	ts := TextSearch{Field: "title", Query: "q"}
	eq := EqualityFilter{Field: "type", Value: "MCQ"}

	tests := []struct {
		name   string
		stages []Stage
	}{
		{"empty", nil},
		{"filter first", []Stage{eq, ts, Skip{}, Limit{N: 1}}},
		{"limit before skip", []Stage{ts, Limit{N: 1}, Skip{}}},
		{"missing skip", []Stage{ts, eq, Limit{N: 1}}},
		{"missing limit", []Stage{ts, Skip{}}},
		{"two filters", []Stage{ts, eq, eq, Skip{}, Limit{N: 1}}},
		{"trailing stage", []Stage{ts, Skip{}, Limit{N: 1}, Skip{}}},
		{"two searches", []Stage{ts, ts, Skip{}, Limit{N: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.stages...); !errors.Is(err, ErrInvalidPlan) {
				t.Errorf("expected ErrInvalidPlan, got %v", err)
			}
		})
	}
}

func TestNew_RejectsBadArguments(t *testing.T) {
	ts := TextSearch{Field: "title", Query: "q"}

	tests := []struct {
		name   string
		stages []Stage
	}{
		{"empty query", []Stage{TextSearch{Field: "title"}, Skip{}, Limit{N: 1}}},
		{"negative skip", []Stage{ts, Skip{N: -1}, Limit{N: 1}}},
		{"zero limit", []Stage{ts, Skip{}, Limit{}}},
		{"filter without field", []Stage{ts, EqualityFilter{Value: "x"}, Skip{}, Limit{N: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.stages...); !errors.Is(err, ErrInvalidPlan) {
				t.Errorf("expected ErrInvalidPlan, got %v", err)
			}
		})
	}
}

func TestStages_ReturnsCopy(t *testing.T) {
	p, err := Build(mustQuery(t, "x", "", 1, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st := p.Stages()
	st[0] = Limit{N: 99}
	if p.Stages()[0].Kind() != KindTextSearch {
		t.Error("plan was mutated through Stages()")
	}
}

func TestKind_String(t *testing.T) {
	if KindEqualityFilter.String() != "equality_filter" {
		t.Errorf("String() = %q", KindEqualityFilter.String())
	}
	if Kind(42).String() != "kind(42)" {
		t.Errorf("String() = %q", Kind(42).String())
	}
}
