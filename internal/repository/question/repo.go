package question

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/questsearch/internal/db"
	"github.com/kailas-cloud/questsearch/internal/domain"
	"github.com/kailas-cloud/questsearch/internal/domain/batch"
	domq "github.com/kailas-cloud/questsearch/internal/domain/question"
	"github.com/kailas-cloud/questsearch/internal/domain/search/plan"
)

// store is the consumer interface for the question collection (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Execute(ctx context.Context, index string, p plan.Plan) (*db.SearchResult, error)
	InsertMulti(ctx context.Context, index string, docs []db.Document) (*db.WriteResult, error)
}

// Repo implements usecase/search.Repository and usecase/ingest.Writer over
// one collection.
type Repo struct {
	store      store
	keyPrefix  string
	collection string
}

// New creates a question repository. Keys are keyPrefix + collection + ":" + hex id.
func New(s store, keyPrefix, collection string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, collection: collection}
}

// Collection returns the collection name.
func (r *Repo) Collection() string { return r.collection }

// Search executes the plan and decodes the hits in relevance order.
func (r *Repo) Search(ctx context.Context, p plan.Plan) ([]domq.Record, error) {
	sr, err := r.store.Execute(ctx, r.indexName(), p)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.collection, translate(err, domain.ErrExecutionFailed))
	}
	if sr == nil || len(sr.Entries) == 0 {
		return []domq.Record{}, nil
	}

	records := make([]domq.Record, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		rec, err := domq.Decode(entry.Data)
		if err != nil {
			return nil, fmt.Errorf("search %s: entry %s: %w: %w", r.collection, entry.Key, domain.ErrExecutionFailed, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteBatch inserts records and returns one result per record, in order.
// Only a lost connection is returned as an error.
func (r *Repo) WriteBatch(ctx context.Context, records []domq.Record) ([]batch.Result, error) {
	results := make([]batch.Result, len(records))
	docs := make([]db.Document, 0, len(records))
	// positions maps docs back to records
	positions := make([]int, 0, len(records))

	for i, rec := range records {
		id := rec.ID().Hex()
		data, err := json.Marshal(rec)
		if err != nil {
			results[i] = batch.NewError(id, fmt.Errorf("%w: marshal: %w", domain.ErrWriteFailed, err))
			continue
		}
		docs = append(docs, db.Document{Key: r.docKey(id), Data: data})
		positions = append(positions, i)
	}

	if len(docs) == 0 {
		return results, nil
	}

	wr, err := r.store.InsertMulti(ctx, r.indexName(), docs)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", r.collection, translate(err, domain.ErrWriteFailed))
	}

	for j, pos := range positions {
		id := records[pos].ID().Hex()
		var werr error
		if j < len(wr.Errors) {
			werr = wr.Errors[j]
		} else {
			werr = errors.New("no reply")
		}
		switch {
		case werr == nil:
			results[pos] = batch.NewOK(id)
		case errors.Is(werr, db.ErrKeyExists):
			results[pos] = batch.NewError(id, fmt.Errorf("%w: %s", domain.ErrDuplicate, id))
		default:
			results[pos] = batch.NewError(id, fmt.Errorf("%w: %w", domain.ErrWriteFailed, werr))
		}
	}
	return results, nil
}

func (r *Repo) docKey(id string) string {
	return collectionPrefix(r.keyPrefix, r.collection) + id
}

func (r *Repo) indexName() string {
	return indexName(r.keyPrefix, r.collection)
}

// translate maps store errors onto domain sentinels. Connection loss and a
// missing index both mean the index cannot serve; anything else is fallback.
func translate(err, fallback error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, db.ErrUnavailable), errors.Is(err, db.ErrIndexNotFound):
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", fallback, err)
	}
}
