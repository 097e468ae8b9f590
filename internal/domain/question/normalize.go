package question

import (
	"fmt"

	"github.com/kailas-cloud/questsearch/internal/domain"
	"github.com/kailas-cloud/questsearch/internal/domain/question/oid"
)

// WrappedIDKey is the single key of the portable identifier wrapper
// {"$oid": "<hex>"} found in exported corpora.
const WrappedIDKey = "$oid"

// DefaultMaxDepth bounds how deeply nested a document may be.
const DefaultMaxDepth = 64

// Normalize returns a copy of v in which every identifier wrapper is replaced
// by a native oid.ID. Objects and lists are walked recursively; scalars and
// already-native identifiers are returned unchanged, so Normalize is idempotent.
// Input nested deeper than maxDepth fails with domain.ErrNestingTooDeep.
func Normalize(v any, maxDepth int) (any, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return normalize(v, 0, maxDepth)
}

// NormalizeDocument is Normalize for a top-level object.
func NormalizeDocument(m map[string]any, maxDepth int) (map[string]any, error) {
	v, err := Normalize(m, maxDepth)
	if err != nil {
		return nil, err
	}
	switch out := v.(type) {
	case map[string]any:
		return out, nil
	default:
		// the whole document was a wrapper
		return nil, domain.NewValidation("document", "must be an object")
	}
}

func normalize(v any, depth, maxDepth int) (any, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: more than %d levels", domain.ErrNestingTooDeep, maxDepth)
	}

	switch node := v.(type) {
	case map[string]any:
		if id, ok, err := unwrapID(node); ok {
			return id, err
		}
		out := make(map[string]any, len(node))
		for k, child := range node {
			n, err := normalize(child, depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil

	case []any:
		out := make([]any, len(node))
		for i, child := range node {
			n, err := normalize(child, depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil

	default:
		return v, nil
	}
}

// unwrapID reports whether m is an identifier wrapper and converts it.
func unwrapID(m map[string]any) (oid.ID, bool, error) {
	if len(m) != 1 {
		return oid.Nil, false, nil
	}
	raw, ok := m[WrappedIDKey]
	if !ok {
		return oid.Nil, false, nil
	}
	s, ok := raw.(string)
	if !ok {
		return oid.Nil, false, nil
	}
	id, err := oid.FromHex(s)
	if err != nil {
		return oid.Nil, true, fmt.Errorf("%w: %w", domain.NewValidation(WrappedIDKey, "must be 24 hex chars"), err)
	}
	return id, true, nil
}
