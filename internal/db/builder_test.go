package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_QuestionIndex(t *testing.T) {
	idx, err := NewIndex("questsearch:questions:idx").
		Prefix("questsearch:questions:").
		TextAs("$.title", "title").
		ExactTagAs("$.type", "type").
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if idx.StorageType != StorageJSON {
		t.Errorf("storage = %q, want JSON", idx.StorageType)
	}
	if len(idx.Fields) != 2 {
		t.Fatalf("fields count = %d, want 2", len(idx.Fields))
	}
	if idx.Fields[0].Name != "$.title" || idx.Fields[0].QueryName() != "title" || idx.Fields[0].Type != IndexFieldText {
		t.Errorf("field[0] = %+v, want $.title AS title TEXT", idx.Fields[0])
	}

	f, ok := idx.Field("type")
	if !ok || f.Name != "$.type" || f.Type != IndexFieldTag {
		t.Fatalf("Field(type) = %+v, %v", f, ok)
	}
	if !f.TagCaseSensitive || f.TagSeparator != TagNoSplit {
		t.Errorf("type tag = %+v, want case-sensitive without splitting", f)
	}
	if _, ok := idx.Field("missing"); ok {
		t.Error("Field(missing) should not be found")
	}
}

func TestIndexBuilder_TagWithOpts(t *testing.T) {
	idx, err := NewIndex("q:idx").
		TextAs("$.title", "title").
		TagWithOpts("$.tags", "tags", ",", false).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, _ := idx.Field("tags")
	if f.TagSeparator != "," || f.TagCaseSensitive {
		t.Errorf("tags = %+v", f)
	}
}

func TestIndexBuilder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		builder *IndexBuilder
		wantErr string
	}{
		{"empty name", NewIndex("").TextAs("$.title", "title"), "index name is required"},
		{"bad name", NewIndex("bad name").TextAs("$.title", "title"), "invalid characters"},
		{"no fields", NewIndex("idx"), "at least one field"},
		{"no text field", NewIndex("idx").ExactTagAs("$.type", "type"), "at least one text field"},
		{"duplicate alias", NewIndex("idx").TextAs("$.a", "x").ExactTagAs("$.b", "x"), "duplicate field name: x"},
		{"path without alias", NewIndex("idx").TextAs("$.title", ""), "field alias contains invalid characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIsValidIdentifier(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"questsearch:questions:idx", true},
		{"a-b_c", true},
		{"", false},
		{"$.title", false},
		{"with space", false},
	}
	for _, tt := range tests {
		if got := IsValidIdentifier(tt.s); got != tt.want {
			t.Errorf("IsValidIdentifier(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestFieldValue(t *testing.T) {
	doc := map[string]any{
		"title": "Sun",
		"meta":  map[string]any{"lang": "en"},
		"n":     3,
	}
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"$.title", "Sun", true},
		{"title", "Sun", true},
		{"$.meta.lang", "en", true},
		{"$.n", "", false},
		{"$.missing", "", false},
		{"$.title.deeper", "", false},
	}
	for _, tt := range tests {
		got, ok := FieldValue(doc, tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FieldValue(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestWriteResult_Inserted(t *testing.T) {
	r := &WriteResult{Errors: []error{nil, ErrKeyExists, nil}}
	if r.Inserted() != 2 {
		t.Errorf("Inserted() = %d, want 2", r.Inserted())
	}
}

func TestError_Unwrap(t *testing.T) {
	err := &Error{Op: OpSearch, Err: ErrUnavailable}
	if err.Error() != "FT.SEARCH: db: store unavailable" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Unwrap() != ErrUnavailable {
		t.Error("Unwrap() mismatch")
	}
}

func TestTerms(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"math", []string{"math"}},
		{"  solar   system ", []string{"solar", "system"}},
		{"what's 2+2?", []string{"what", "s", "2", "2"}},
		{"@title:{x}", []string{"title", "x"}},
		{"???", nil},
		{"école élève", []string{"école", "élève"}},
	}
	for _, tt := range tests {
		got := Terms(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("Terms(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
