package request

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/kailas-cloud/questsearch/internal/domain"
	"github.com/kailas-cloud/questsearch/internal/domain/question"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestParams_Defaults(t *testing.T) {
	q, err := Params{Query: "math"}.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text() != "math" {
		t.Errorf("Text() = %q", q.Text())
	}
	if q.Page() != DefaultPage {
		t.Errorf("Page() = %d, want %d", q.Page(), DefaultPage)
	}
	if q.PageSize() != DefaultPageSize {
		t.Errorf("PageSize() = %d, want %d", q.PageSize(), DefaultPageSize)
	}
	if _, ok := q.Type(); ok {
		t.Error("Type() should be absent")
	}
	if q.Skip() != 0 {
		t.Errorf("Skip() = %d, want 0", q.Skip())
	}
}

func TestParams_ExplicitValues(t *testing.T) {
	q, err := Params{
		Query:    "  fruit  ",
		Page:     intPtr(3),
		PageSize: intPtr(25),
		Type:     strPtr("MCQ"),
	}.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text() != "fruit" {
		t.Errorf("Text() = %q, want trimmed", q.Text())
	}
	typ, ok := q.Type()
	if !ok || typ != question.MCQ {
		t.Errorf("Type() = %q, %v", typ, ok)
	}
	if q.Skip() != 50 {
		t.Errorf("Skip() = %d, want 50", q.Skip())
	}
}

func TestNew_SkipArithmetic(t *testing.T) {
	for page := 1; page <= 20; page++ {
		for size := 1; size <= 20; size++ {
			q, err := New("x", "", page, size)
			if err != nil {
				t.Fatalf("New(page=%d,size=%d): %v", page, size, err)
			}
			if q.Skip() != (page-1)*size {
				t.Fatalf("Skip() = %d for page=%d size=%d", q.Skip(), page, size)
			}
		}
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		page     int
		pageSize int
		field    string
	}{
		{"empty query", "", 1, 10, "query"},
		{"whitespace query", " \t\n", 1, 10, "query"},
		{"too long", strings.Repeat("a", MaxQueryLength+1), 1, 10, "query"},
		{"page zero", "x", 0, 10, "page"},
		{"negative page", "x", -2, 10, "page"},
		{"page size zero", "x", 1, 0, "pageSize"},
		{"negative page size", "x", 1, -5, "pageSize"},
		{"skip overflow", "x", math.MaxInt, 2, "page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.text, "", tt.page, tt.pageSize)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("expected field %q, got %v", tt.field, err)
			}
		})
	}
}

func TestNew_UnknownTypeIsLiteral(t *testing.T) {
	q, err := New("x", "ESSAY", 1, 10)
	if err != nil {
		t.Fatalf("unknown type should not be rejected: %v", err)
	}
	typ, ok := q.Type()
	if !ok || typ != "ESSAY" {
		t.Errorf("Type() = %q, %v", typ, ok)
	}
}

func TestParams_EmptyTypeMeansNoFilter(t *testing.T) {
	q, err := Params{Query: "x", Type: strPtr("")}.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := q.Type(); ok {
		t.Error("empty type should mean no filter")
	}
}

func TestParams_ExplicitZeroPageRejected(t *testing.T) {
	_, err := Params{Query: "x", Page: intPtr(0)}.Build()
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
