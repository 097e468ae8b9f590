package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/questsearch/internal/domain/search/plan"
)

// Store is the index store facade shared by the gateway and the ingestion
// pipeline. One Store is opened per process.
type Store interface {
	Pinger
	IndexManager
	Executor
	DocumentWriter
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager provides full-text index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Executor runs an ordered query plan against an index.
type Executor interface {
	Execute(ctx context.Context, index string, p plan.Plan) (*SearchResult, error)
}

// Document is one JSON document to insert.
type Document struct {
	Key  string
	Data []byte
}

// DocumentWriter inserts documents. Existing keys are never overwritten.
type DocumentWriter interface {
	// InsertMulti writes docs in one round trip. Per-document rejections are
	// reported in the result; the error is reserved for connection failures.
	InsertMulti(ctx context.Context, index string, docs []Document) (*WriteResult, error)
}

// WriteResult holds one entry per document, in input order. A nil entry
// means the document was written.
type WriteResult struct {
	Errors []error
}

// Inserted returns the number of written documents.
func (r *WriteResult) Inserted() int {
	n := 0
	for _, err := range r.Errors {
		if err == nil {
			n++
		}
	}
	return n
}
