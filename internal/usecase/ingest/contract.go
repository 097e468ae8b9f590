package ingest

import (
	"context"

	"github.com/kailas-cloud/questsearch/internal/domain/batch"
	"github.com/kailas-cloud/questsearch/internal/domain/question"
)

// Writer inserts records and reports one result per record, in order. An
// error return means the store could not be reached at all.
type Writer interface {
	WriteBatch(ctx context.Context, records []question.Record) ([]batch.Result, error)
}
