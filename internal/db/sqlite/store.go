// Package sqlite implements db.Store on SQLite FTS5 through the pure Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/kailas-cloud/questsearch/internal/db"
	"github.com/kailas-cloud/questsearch/internal/domain/search/plan"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const (
	keyColumn = "doc_key"
	docColumn = "doc_json"
)

var errClosed = errors.New("sqlite: store closed")

// Store keeps every index as an FTS5 table plus a key table enforcing
// insert-if-absent.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	defs   map[string]*db.IndexDefinition
	closed bool
}

// NewStore opens the database at path. An empty path means in-memory.
func NewStore(path string) (*Store, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		dsn = path
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &db.Error{Op: db.OpPing, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
	}
	// one connection: :memory: databases are per connection, and SQLite has a single writer
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		`CREATE TABLE IF NOT EXISTS questsearch_indexes (
			name       TEXT PRIMARY KEY,
			definition TEXT NOT NULL
		)`,
	}
	for _, stmt := range pragmas {
		if _, err := conn.Exec(stmt); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	return &Store{db: conn, defs: make(map[string]*db.IndexDefinition)}, nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, errClosed)}
	}
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
	}
	return nil
}

// WaitForReady pings once; a local database is either open or broken.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Close checkpoints the WAL and closes the database.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	_ = s.db.Close()
}

// CreateIndex creates the FTS5 table for the definition. TEXT fields are
// tokenized with unicode61; TAG fields are stored unindexed and compared
// for equality.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	raw, err := json.Marshal(def)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, errClosed)}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO questsearch_indexes(name, definition) VALUES (?, ?)`, def.Name, string(raw))
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return db.ErrIndexExists
	}

	for _, stmt := range schema(def) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return &db.Error{Op: db.OpCreateIndex, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	s.defs[def.Name] = def
	return nil
}

// IndexExists checks the index registry.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	_, err := s.definition(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, db.ErrIndexNotFound):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
}

// Execute runs the plan as an FTS5 MATCH over the text field, ranked by
// bm25() with ties broken by key.
func (s *Store) Execute(ctx context.Context, index string, p plan.Plan) (*db.SearchResult, error) {
	if p.IsZero() {
		return nil, plan.ErrInvalidPlan
	}
	def, err := s.definition(ctx, index)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	ts := p.TextSearch()
	terms := db.Terms(ts.Query)
	if len(terms) == 0 {
		return &db.SearchResult{}, nil
	}
	if _, ok := def.Field(ts.Field); !ok {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("unknown field %q", ts.Field)}
	}

	table := quoteIdent(tableName(def.Name))
	where := table + " MATCH ?"
	args := []any{matchExpr(ts.Field, terms)}
	if f, ok := p.Filter(); ok {
		field, ok := def.Field(f.Field)
		if !ok {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("unknown field %q", f.Field)}
		}
		cond := quoteIdent(field.QueryName()) + " = ?"
		if !field.TagCaseSensitive {
			cond += " COLLATE NOCASE"
		}
		where += " AND " + cond
		args = append(args, f.Value)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, errClosed)}
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" WHERE "+where, args...).Scan(&total); err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	if total == 0 || p.Skip() >= total {
		return &db.SearchResult{Total: total}, nil
	}

	q := fmt.Sprintf(`SELECT %s, %s, bm25(%s) AS score FROM %s WHERE %s ORDER BY score, %s LIMIT ? OFFSET ?`,
		keyColumn, docColumn, table, table, where, keyColumn)
	rows, err := s.db.QueryContext(ctx, q, append(args, p.Limit(), p.Skip())...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer rows.Close()

	entries := make([]db.SearchEntry, 0, p.Limit())
	for rows.Next() {
		var (
			key, doc string
			score    float64
		)
		if err := rows.Scan(&key, &doc, &score); err != nil {
			return nil, &db.Error{Op: db.OpDecode, Err: err}
		}
		// bm25() is negative, lower is better
		entries = append(entries, db.SearchEntry{Key: key, Score: -score, Data: []byte(doc)})
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return &db.SearchResult{Total: total, Entries: entries}, nil
}

// InsertMulti inserts documents in one transaction. Keys already present are
// rejected with db.ErrKeyExists.
func (s *Store) InsertMulti(ctx context.Context, index string, docs []db.Document) (*db.WriteResult, error) {
	out := &db.WriteResult{Errors: make([]error, len(docs))}
	if len(docs) == 0 {
		return out, nil
	}

	def, err := s.definition(ctx, index)
	if err != nil {
		return nil, &db.Error{Op: db.OpJSONSet, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, errClosed)}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
	}
	defer func() { _ = tx.Rollback() }()

	table := tableName(def.Name)
	keyStmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf(`INSERT OR IGNORE INTO %s(%s) VALUES (?)`, quoteIdent(table+"_keys"), keyColumn))
	if err != nil {
		return nil, &db.Error{Op: db.OpJSONSet, Err: err}
	}
	defer keyStmt.Close()

	cols := columns(def)
	insertStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s(%s) VALUES (%s)`,
		quoteIdent(table), strings.Join(quoteAll(cols), ", "), placeholders(len(cols))))
	if err != nil {
		return nil, &db.Error{Op: db.OpJSONSet, Err: err}
	}
	defer insertStmt.Close()

	for i, d := range docs {
		values, err := rowValues(def, d)
		if err != nil {
			out.Errors[i] = &db.Error{Op: db.OpDecode, Err: err}
			continue
		}

		res, err := keyStmt.ExecContext(ctx, d.Key)
		if err != nil {
			return nil, &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
		}
		if n, _ := res.RowsAffected(); n == 0 {
			out.Errors[i] = db.ErrKeyExists
			continue
		}
		if _, err := insertStmt.ExecContext(ctx, values...); err != nil {
			return nil, &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, &db.Error{Op: db.OpJSONSet, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
	}
	return out, nil
}

// definition returns the cached definition, loading it from the registry
// for indexes created by an earlier process.
func (s *Store) definition(ctx context.Context, name string) (*db.IndexDefinition, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, fmt.Errorf("%w: %w", db.ErrUnavailable, errClosed)
	}
	def, ok := s.defs[name]
	s.mu.RUnlock()
	if ok {
		return def, nil
	}

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT definition FROM questsearch_indexes WHERE name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, db.ErrIndexNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", db.ErrUnavailable, err)
	}

	def = &db.IndexDefinition{}
	if err := json.Unmarshal([]byte(raw), def); err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}

	s.mu.Lock()
	s.defs[name] = def
	s.mu.Unlock()
	return def, nil
}

func schema(def *db.IndexDefinition) []string {
	table := tableName(def.Name)
	cols := []string{keyColumn + " UNINDEXED", docColumn + " UNINDEXED"}
	for _, f := range def.Fields {
		col := f.QueryName()
		if f.Type != db.IndexFieldText {
			col += " UNINDEXED"
		}
		cols = append(cols, col)
	}
	return []string{
		fmt.Sprintf(`CREATE VIRTUAL TABLE %s USING fts5(%s, tokenize='unicode61')`,
			quoteIdent(table), strings.Join(cols, ", ")),
		fmt.Sprintf(`CREATE TABLE %s (%s TEXT PRIMARY KEY)`, quoteIdent(table+"_keys"), keyColumn),
	}
}

func columns(def *db.IndexDefinition) []string {
	cols := []string{keyColumn, docColumn}
	for _, f := range def.Fields {
		cols = append(cols, f.QueryName())
	}
	return cols
}

func rowValues(def *db.IndexDefinition, d db.Document) ([]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(d.Data, &doc); err != nil {
		return nil, err
	}
	values := []any{d.Key, string(d.Data)}
	for _, f := range def.Fields {
		v, ok := db.FieldValue(doc, f.Name)
		if !ok {
			values = append(values, nil)
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

// matchExpr builds an FTS5 query that matches any of terms in column.
func matchExpr(column string, terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return fmt.Sprintf(`%s : (%s)`, column, strings.Join(quoted, " OR "))
}

func tableName(index string) string {
	var b strings.Builder
	b.WriteString("fts_")
	for _, r := range index {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = quoteIdent(s)
	}
	return out
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
