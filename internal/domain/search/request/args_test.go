package request

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/questsearch/internal/domain"
)

// decodeArgs decodes body the way each listener does: plain for the RPC
// transport, UseNumber for the HTTP body.
func decodeArgs(t *testing.T, body string, useNumber bool) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(body))
	if useNumber {
		dec.UseNumber()
	}
	var args map[string]any
	if err := dec.Decode(&args); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return args
}

func TestParamsFromArgs_SameRuleForBothDecodings(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantPage int
		wantSize int
		wantErr  string
	}{
		{name: "defaults", body: `{"query":"x"}`, wantPage: 1, wantSize: 10},
		{name: "null paging", body: `{"query":"x","page":null,"pageSize":null}`, wantPage: 1, wantSize: 10},
		{name: "integral float", body: `{"query":"x","page":2.0}`, wantPage: 2, wantSize: 10},
		{name: "exponent", body: `{"query":"x","pageSize":1e2}`, wantPage: 1, wantSize: 100},
		{name: "beyond int32", body: `{"query":"x","page":3000000000,"pageSize":1}`, wantPage: 3000000000, wantSize: 1},
		{name: "largest exact", body: `{"query":"x","page":9007199254740991,"pageSize":1}`, wantPage: 9007199254740991, wantSize: 1},
		{name: "at 2^53", body: `{"query":"x","page":9007199254740992}`, wantErr: "validation failed: page must be an integer"},
		{name: "above 2^53", body: `{"query":"x","page":9007199254740993}`, wantErr: "validation failed: page must be an integer"},
		{name: "fraction", body: `{"query":"x","page":1.5}`, wantErr: "validation failed: page must be an integer"},
		{name: "page as text", body: `{"query":"x","page":"2"}`, wantErr: "validation failed: page must be an integer"},
		{name: "page size as bool", body: `{"query":"x","pageSize":true}`, wantErr: "validation failed: pageSize must be an integer"},
		{name: "negative page", body: `{"query":"x","page":-1}`, wantErr: "validation failed: page must be >= 1"},
		{name: "zero page size", body: `{"query":"x","pageSize":0}`, wantErr: "validation failed: pageSize must be > 0"},
		{name: "query not a string", body: `{"query":7}`, wantErr: "validation failed: query must be a string"},
		{name: "type not a string", body: `{"query":"x","type":["MCQ"]}`, wantErr: "validation failed: type must be a string"},
	}

	for _, tt := range tests {
		for _, useNumber := range []bool{false, true} {
			name := tt.name + "/float64"
			if useNumber {
				name = tt.name + "/json.Number"
			}
			t.Run(name, func(t *testing.T) {
				p, err := ParamsFromArgs(decodeArgs(t, tt.body, useNumber))
				var q Query
				if err == nil {
					q, err = p.Build()
				}

				if tt.wantErr != "" {
					if err == nil {
						t.Fatalf("expected %q, got page=%d pageSize=%d", tt.wantErr, q.Page(), q.PageSize())
					}
					if !errors.Is(err, domain.ErrValidation) {
						t.Errorf("expected ErrValidation, got %v", err)
					}
					if err.Error() != tt.wantErr {
						t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if q.Page() != tt.wantPage || q.PageSize() != tt.wantSize {
					t.Errorf("page=%d pageSize=%d, want %d/%d", q.Page(), q.PageSize(), tt.wantPage, tt.wantSize)
				}
			})
		}
	}
}

func TestParamsFromArgs_NilArgs(t *testing.T) {
	p, err := ParamsFromArgs(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Query != "" || p.Page != nil || p.PageSize != nil || p.Type != nil {
		t.Errorf("expected zero params, got %+v", p)
	}
}

func TestIntArg_GoIntegers(t *testing.T) {
	for _, v := range []any{int(4), int64(4), json.Number("4"), 4.0} {
		n, err := IntArg("page", v)
		if err != nil {
			t.Fatalf("%T: unexpected error: %v", v, err)
		}
		if *n != 4 {
			t.Errorf("%T: got %d, want 4", v, *n)
		}
	}
}
