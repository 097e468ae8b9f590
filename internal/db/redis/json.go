package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/questsearch/internal/db"
)

// InsertMulti pipelines one JSON.SET ... NX per document. NX turns an existing
// key into a nil reply, reported as db.ErrKeyExists for that document.
func (s *Store) InsertMulti(ctx context.Context, _ string, docs []db.Document) (*db.WriteResult, error) {
	if len(docs) == 0 {
		return &db.WriteResult{}, nil
	}

	cmds := make(rueidis.Commands, 0, len(docs))
	for _, d := range docs {
		cmds = append(cmds, s.b().Arbitrary("JSON.SET").Keys(d.Key).Args("$", string(d.Data), "NX").Build())
	}

	results := s.client.DoMulti(ctx, cmds...)

	out := &db.WriteResult{Errors: make([]error, len(docs))}
	for i, r := range results {
		err := r.Error()
		switch {
		case err == nil:
		case rueidis.IsRedisNil(err):
			out.Errors[i] = db.ErrKeyExists
		default:
			if _, ok := rueidis.IsRedisErr(err); !ok {
				// transport failure: the pipeline outcome is unknown
				return nil, wrapErr(db.OpJSONSet, err)
			}
			out.Errors[i] = &db.Error{Op: db.OpJSONSet, Err: err}
		}
	}
	return out, nil
}
