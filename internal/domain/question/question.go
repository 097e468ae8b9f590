// Package question models the quiz content records served by search.
package question

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/kailas-cloud/questsearch/internal/domain"
	"github.com/kailas-cloud/questsearch/internal/domain/question/oid"
)

// Document field names with meaning to the search core.
const (
	FieldID    = "_id"
	FieldTitle = "title"
	FieldType  = "type"
)

// Type is the record kind used by the equality filter.
type Type string

// Known record types.
const (
	ContentOnly  Type = "CONTENT_ONLY"
	Anagram      Type = "ANAGRAM"
	MCQ          Type = "MCQ"
	ReadAlong    Type = "READ_ALONG"
	Conversation Type = "CONVERSATION"
)

// Types returns all known record types.
func Types() []Type {
	return []Type{ContentOnly, Anagram, MCQ, ReadAlong, Conversation}
}

// IsKnown reports whether t is one of the enumerated types.
// Unknown types are still valid filter values; they simply match nothing.
func (t Type) IsKnown() bool {
	switch t {
	case ContentOnly, Anagram, MCQ, ReadAlong, Conversation:
		return true
	}
	return false
}

// Block is one piece of an ANAGRAM record.
type Block struct {
	Text     string `json:"text"`
	IsAnswer bool   `json:"isAnswer"`
}

// Option is one choice of an MCQ record.
type Option struct {
	Text            string `json:"text"`
	IsCorrectAnswer bool   `json:"isCorrectAnswer"`
}

// Record is a content record. Fields other than the identifier are kept as
// decoded so that unknown attributes survive a store round trip.
type Record struct {
	id     oid.ID
	fields map[string]any
}

// FromMap builds a record from a normalized document. A missing _id is
// generated; a hex string _id is parsed.
func FromMap(m map[string]any) (Record, error) {
	id, err := idFrom(m[FieldID])
	if err != nil {
		return Record{}, err
	}
	if v, ok := m[FieldTitle]; ok {
		if _, isStr := v.(string); !isStr {
			return Record{}, domain.NewValidation(FieldTitle, "must be a string")
		}
	}
	if v, ok := m[FieldType]; ok {
		if _, isStr := v.(string); !isStr {
			return Record{}, domain.NewValidation(FieldType, "must be a string")
		}
	}

	fields := maps.Clone(m)
	delete(fields, FieldID)
	return Record{id: id, fields: fields}, nil
}

func idFrom(v any) (oid.ID, error) {
	switch id := v.(type) {
	case nil:
		return oid.New(), nil
	case oid.ID:
		return id, nil
	case string:
		parsed, err := oid.FromHex(id)
		if err != nil {
			return oid.Nil, fmt.Errorf("%w: %w", domain.NewValidation(FieldID, "must be an object id"), err)
		}
		return parsed, nil
	default:
		return oid.Nil, domain.NewValidation(FieldID, "must be an object id")
	}
}

// Decode parses a stored JSON document. Numbers are kept as json.Number so
// that re-encoding does not change them.
func Decode(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return FromMap(m)
}

// ID returns the record identifier.
func (r Record) ID() oid.ID { return r.id }

// Title returns the searchable title.
func (r Record) Title() string {
	s, _ := r.fields[FieldTitle].(string)
	return s
}

// Type returns the record type.
func (r Record) Type() Type {
	s, _ := r.fields[FieldType].(string)
	return Type(s)
}

// Content returns the text of a CONTENT_ONLY record.
func (r Record) Content() string {
	s, _ := r.fields["content"].(string)
	return s
}

// Blocks returns the ordered blocks of an ANAGRAM record.
func (r Record) Blocks() []Block {
	raw, _ := r.fields["blocks"].([]any)
	out := make([]Block, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		text, _ := m["text"].(string)
		isAnswer, _ := m["isAnswer"].(bool)
		out = append(out, Block{Text: text, IsAnswer: isAnswer})
	}
	return out
}

// Options returns the ordered options of an MCQ record.
func (r Record) Options() []Option {
	raw, _ := r.fields["options"].([]any)
	out := make([]Option, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		text, _ := m["text"].(string)
		correct, _ := m["isCorrectAnswer"].(bool)
		out = append(out, Option{Text: text, IsCorrectAnswer: correct})
	}
	return out
}

// Fields returns a copy of every attribute except the identifier.
func (r Record) Fields() map[string]any {
	return maps.Clone(r.fields)
}

// Field returns an arbitrary top-level attribute.
func (r Record) Field(name string) (any, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// MarshalJSON encodes the record with its identifier as a hex string.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.fields)+1)
	maps.Copy(out, r.fields)
	out[FieldID] = r.id
	return json.Marshal(out)
}
