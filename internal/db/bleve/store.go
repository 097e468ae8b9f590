// Package bleve implements db.Store on an embedded bleve index. It needs no
// external server and backs local runs and tests.
package bleve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	blevesearch "github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/questsearch/internal/db"
	"github.com/kailas-cloud/questsearch/internal/domain/search/plan"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const (
	// sourceField keeps the original JSON document; it is stored, not indexed.
	sourceField = "document"
	// definitionKey holds the index definition in bleve's internal storage.
	definitionKey = "questsearch:definition"

	maxSearchResults = 1_000_000
)

var errClosed = errors.New("bleve: store closed")

type openIndex struct {
	idx blevesearch.Index
	def *db.IndexDefinition
}

// Store keeps one bleve index per index definition. With an empty path all
// indexes live in memory.
type Store struct {
	mu      sync.RWMutex
	path    string
	indexes map[string]*openIndex
	closed  bool
}

// NewStore creates a bleve store rooted at path.
func NewStore(path string) (*Store, error) {
	if path != "" {
		if err := os.MkdirAll(path, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", path, err)
		}
	}
	return &Store{path: path, indexes: make(map[string]*openIndex)}, nil
}

// Ping reports whether the store is open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, errClosed)}
	}
	return nil
}

// WaitForReady returns immediately: an embedded index is ready once opened.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Close closes every open index.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, oi := range s.indexes {
		_ = oi.idx.Close()
	}
	s.indexes = nil
}

// CreateIndex builds a bleve mapping from the definition. TEXT fields use the
// standard analyzer, TAG fields the keyword analyzer.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, errClosed)}
	}

	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	if oi, err := s.openLocked(def.Name); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	} else if oi != nil {
		return db.ErrIndexExists
	}

	im := buildMapping(def)

	var (
		idx blevesearch.Index
		err error
	)
	if s.path == "" {
		idx, err = blevesearch.NewMemOnly(im)
	} else {
		idx, err = blevesearch.New(s.indexPath(def.Name), im)
	}
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	raw, err := json.Marshal(def)
	if err != nil {
		_ = idx.Close()
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	if err := idx.SetInternal([]byte(definitionKey), raw); err != nil {
		_ = idx.Close()
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	s.indexes[def.Name] = &openIndex{idx: idx, def: def}
	return nil
}

// IndexExists reports whether the index is open or present on disk.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, &db.Error{Op: db.OpIndexInfo, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, errClosed)}
	}
	if _, ok := s.indexes[name]; ok {
		return true, nil
	}
	oi, err := s.openLocked(name)
	if err != nil {
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return oi != nil, nil
}

// Execute runs the plan as a match query on the text field, intersected with
// a term query for the equality filter.
func (s *Store) Execute(ctx context.Context, index string, p plan.Plan) (*db.SearchResult, error) {
	if p.IsZero() {
		return nil, plan.ErrInvalidPlan
	}
	oi, err := s.lookup(index)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	ts := p.TextSearch()
	if len(db.Terms(ts.Query)) == 0 {
		return &db.SearchResult{}, nil
	}

	mq := blevesearch.NewMatchQuery(ts.Query)
	mq.SetField(ts.Field)
	var q query.Query = mq
	if f, ok := p.Filter(); ok {
		tq := blevesearch.NewTermQuery(f.Value)
		tq.SetField(f.Field)
		q = blevesearch.NewConjunctionQuery(mq, tq)
	}

	from, size := p.Skip(), p.Limit()
	if from > maxSearchResults-size {
		from, size = 0, 0
	}
	req := blevesearch.NewSearchRequestOptions(q, size, from, false)
	req.Fields = []string{sourceField}
	// ties on score are broken by key so pages never overlap
	req.SortBy([]string{"-_score", "_id"})

	res, err := oi.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	entries := make([]db.SearchEntry, 0, len(res.Hits))
	for _, hit := range res.Hits {
		src, ok := hit.Fields[sourceField].(string)
		if !ok {
			continue
		}
		entries = append(entries, db.SearchEntry{Key: hit.ID, Score: hit.Score, Data: []byte(src)})
	}

	return &db.SearchResult{Total: int(res.Total), Entries: entries}, nil
}

// InsertMulti indexes documents whose keys are not yet present. Keys already
// in the index, or repeated within docs, are rejected with db.ErrKeyExists.
func (s *Store) InsertMulti(_ context.Context, index string, docs []db.Document) (*db.WriteResult, error) {
	out := &db.WriteResult{Errors: make([]error, len(docs))}
	if len(docs) == 0 {
		return out, nil
	}

	oi, err := s.lookup(index)
	if err != nil {
		return nil, &db.Error{Op: db.OpJSONSet, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(docs))
	batch := oi.idx.NewBatch()
	for i, d := range docs {
		if seen[d.Key] {
			out.Errors[i] = db.ErrKeyExists
			continue
		}
		existing, err := oi.idx.Document(d.Key)
		if err != nil {
			return nil, &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
		}
		if existing != nil {
			out.Errors[i] = db.ErrKeyExists
			continue
		}

		fields, err := indexedFields(oi.def, d.Data)
		if err != nil {
			out.Errors[i] = &db.Error{Op: db.OpDecode, Err: err}
			continue
		}
		if err := batch.Index(d.Key, fields); err != nil {
			out.Errors[i] = &db.Error{Op: db.OpJSONSet, Err: err}
			continue
		}
		seen[d.Key] = true
	}

	if err := oi.idx.Batch(batch); err != nil {
		return nil, &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
	}
	return out, nil
}

func (s *Store) lookup(name string) (*openIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%w: %w", db.ErrUnavailable, errClosed)
	}
	if oi, ok := s.indexes[name]; ok {
		return oi, nil
	}
	oi, err := s.openLocked(name)
	if err != nil {
		return nil, err
	}
	if oi == nil {
		return nil, db.ErrIndexNotFound
	}
	return oi, nil
}

// openLocked opens a persisted index. It returns nil when none exists.
func (s *Store) openLocked(name string) (*openIndex, error) {
	if s.path == "" {
		return nil, nil
	}
	idx, err := blevesearch.Open(s.indexPath(name))
	if errors.Is(err, blevesearch.ErrorIndexPathDoesNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	raw, err := idx.GetInternal([]byte(definitionKey))
	if err != nil || raw == nil {
		_ = idx.Close()
		return nil, fmt.Errorf("index %s has no stored definition", name)
	}
	var def db.IndexDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("decode definition: %w", err)
	}

	oi := &openIndex{idx: idx, def: &def}
	s.indexes[name] = oi
	return oi, nil
}

func (s *Store) indexPath(name string) string {
	return filepath.Join(s.path, strings.NewReplacer(":", "_", "/", "_").Replace(name)+".bleve")
}

func buildMapping(def *db.IndexDefinition) *mapping.IndexMappingImpl {
	dm := blevesearch.NewDocumentStaticMapping()
	for _, f := range def.Fields {
		var fm *mapping.FieldMapping
		switch f.Type {
		case db.IndexFieldText:
			fm = blevesearch.NewTextFieldMapping()
		default:
			fm = blevesearch.NewKeywordFieldMapping()
		}
		fm.Store = false
		dm.AddFieldMappingsAt(f.QueryName(), fm)
	}

	src := blevesearch.NewTextFieldMapping()
	src.Index = false
	src.Store = true
	src.IncludeInAll = false
	src.IncludeTermVectors = false
	src.DocValues = false
	dm.AddFieldMappingsAt(sourceField, src)

	im := blevesearch.NewIndexMapping()
	im.DefaultMapping = dm
	return im
}

// indexedFields extracts the schema paths from a JSON document and keeps the
// document itself under sourceField.
func indexedFields(def *db.IndexDefinition, data []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(def.Fields)+1)
	for _, f := range def.Fields {
		if v, ok := db.FieldValue(doc, f.Name); ok {
			out[f.QueryName()] = v
		}
	}
	out[sourceField] = string(data)
	return out, nil
}
