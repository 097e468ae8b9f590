package question

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/questsearch/internal/db"
	"github.com/kailas-cloud/questsearch/internal/domain"
	domq "github.com/kailas-cloud/questsearch/internal/domain/question"
)

// EnsureIndex creates the collection index when it does not exist yet.
// A concurrent creator winning the race is not an error.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	name := r.indexName()

	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("index info %s: %w", name, translate(err, domain.ErrIndexUnavailable))
	}
	if exists {
		return nil
	}

	def, err := buildIndex(r.keyPrefix, r.collection)
	if err != nil {
		return err
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", name, translate(err, domain.ErrIndexUnavailable))
	}
	return nil
}

// CheckIndex reports whether the collection index is queryable.
func (r *Repo) CheckIndex(ctx context.Context) error {
	name := r.indexName()
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("index info %s: %w", name, translate(err, domain.ErrIndexUnavailable))
	}
	if !exists {
		return fmt.Errorf("index %s: %w", name, domain.ErrIndexUnavailable)
	}
	return nil
}

// buildIndex declares title as full text and type as an exact-match tag:
// case-sensitive and never split, so the filter is plain equality.
func buildIndex(keyPrefix, collection string) (*db.IndexDefinition, error) {
	def, err := db.NewIndex(indexName(keyPrefix, collection)).
		Prefix(collectionPrefix(keyPrefix, collection)).
		TextAs("$."+domq.FieldTitle, domq.FieldTitle).
		ExactTagAs("$."+domq.FieldType, domq.FieldType).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return def, nil
}

func collectionPrefix(keyPrefix, collection string) string {
	return keyPrefix + collection + ":"
}

func indexName(keyPrefix, collection string) string {
	return keyPrefix + collection + ":idx"
}
