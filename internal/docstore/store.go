// Package docstore implements the revisioned per-collection document store
// that every feature package sits on. Each collection is an isolated unit:
// writes are compare-and-swap on the document's revision, reads never block
// writers, and committed mutations are published to the collection's change
// feed in commit order.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fekuna/omnipos-datastore/pkg/apperrors"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/fekuna/omnipos-datastore/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    collection  TEXT NOT NULL,
    doc_id      TEXT NOT NULL,
    revision    TEXT NOT NULL,
    body        TEXT NOT NULL,
    indexed     TEXT,
    deleted     INTEGER NOT NULL DEFAULT 0,
    created_seq INTEGER NOT NULL,
    PRIMARY KEY (collection, doc_id)
);
CREATE INDEX IF NOT EXISTS idx_documents_indexed ON documents (collection, indexed);
`

// Order selects the iteration order of ListAll. Insertion order is the
// order documents were first created; Reverse is newest-first.
type Order int

const (
	OrderInsertion Order = iota
	OrderReverse
)

// Store owns the SQLite handle and the collection registry. Construct one
// at process start and inject it; there is no package-level instance.
type Store struct {
	db  *sqlx.DB
	seq atomic.Int64

	mu          sync.Mutex
	collections map[string]*Collection
}

// Open opens (or creates) the SQLite-backed store at path.
func Open(path string, busyTimeoutMs int) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if busyTimeoutMs <= 0 {
		busyTimeoutMs = 5000
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL", filepath.Clean(path), busyTimeoutMs)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	// The modernc driver serializes access per connection; a single
	// connection keeps commit order well defined for the feeds.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	s := &Store{db: db, collections: map[string]*Collection{}}

	var maxSeq int64
	if err := db.Get(&maxSeq, `SELECT COALESCE(MAX(created_seq), 0) FROM documents`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("read sequence: %w", err)
	}
	s.seq.Store(maxSeq)

	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.mu.Lock()
	for _, c := range s.collections {
		c.feed.closeAll()
	}
	s.mu.Unlock()
	return s.db.Close()
}

// Collection returns the named collection, creating it on first use.
// indexField designates the field available to QueryIndexed ("" for none);
// the first caller wins for a given name.
func (s *Store) Collection(name, indexField string) *Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[name]; ok {
		return c
	}
	c := &Collection{
		store:      s,
		name:       name,
		indexField: indexField,
		feed:       newFeed(),
	}
	s.collections[name] = c
	return c
}

// Collection is a named, isolated set of revisioned documents. All writes
// go through revision compare-and-swap; cross-collection operations are
// never atomic.
type Collection struct {
	store      *Store
	name       string
	indexField string

	// mu serializes commit+publish so subscribers observe commit order.
	mu   sync.Mutex
	feed *feed
}

func (c *Collection) Name() string { return c.name }

type docRow struct {
	DocID    string `db:"doc_id"`
	Revision string `db:"revision"`
	Body     string `db:"body"`
	Deleted  int    `db:"deleted"`
}

// Put creates the document when id is absent (expectedRev must be zero) or
// replaces it when expectedRev matches the current revision. A stale or
// missing expectation fails with apperrors.ErrConflict and leaves the
// stored content untouched. The new revision is returned.
func (c *Collection) Put(ctx context.Context, id string, fields map[string]any, expectedRev model.Revision) (model.Revision, error) {
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("put: document id is required: %w", apperrors.ErrValidation)
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("put %s: encode fields: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var newRev model.Revision
	err = c.withTx(ctx, func(tx *sqlx.Tx) error {
		cur, found, err := c.currentRow(ctx, tx, id)
		if err != nil {
			return err
		}

		switch {
		case !found:
			if !expectedRev.IsZero() {
				return fmt.Errorf("put %s: document does not exist: %w", id, apperrors.ErrConflict)
			}
			newRev = nextRevision("", body)
			_, err = tx.ExecContext(ctx, `
				INSERT INTO documents (collection, doc_id, revision, body, indexed, deleted, created_seq)
				VALUES (?, ?, ?, ?, ?, 0, ?)`,
				c.name, id, string(newRev), string(body), c.indexedValue(fields), c.store.seq.Add(1))
			return c.wrapStorageErr("put", id, err)

		case cur.Deleted == 1:
			// Recreating a tombstoned id continues its revision chain so
			// the id is never reused with a colliding history.
			if !expectedRev.IsZero() {
				return fmt.Errorf("put %s: document is deleted: %w", id, apperrors.ErrConflict)
			}
			newRev = nextRevision(model.Revision(cur.Revision), body)

		default:
			if !expectedRev.Equal(model.Revision(cur.Revision)) {
				return fmt.Errorf("put %s: %w", id, apperrors.ErrConflict)
			}
			newRev = nextRevision(model.Revision(cur.Revision), body)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE documents SET revision = ?, body = ?, indexed = ?, deleted = 0
			WHERE collection = ? AND doc_id = ? AND revision = ?`,
			string(newRev), string(body), c.indexedValue(fields), c.name, id, cur.Revision)
		if err != nil {
			return c.wrapStorageErr("put", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("put %s: %w", id, apperrors.ErrConflict)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	c.feed.publish(FeedEvent{ID: id, Revision: newRev, Fields: fields})
	return newRev, nil
}

// Get returns the document or apperrors.ErrNotFound when the id is absent
// or tombstoned.
func (c *Collection) Get(ctx context.Context, id string) (model.Document, error) {
	var row docRow
	err := c.store.db.GetContext(ctx, &row, `
		SELECT doc_id, revision, body, deleted FROM documents
		WHERE collection = ? AND doc_id = ?`, c.name, id)
	if err == sql.ErrNoRows {
		return model.Document{}, fmt.Errorf("get %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return model.Document{}, c.wrapStorageErr("get", id, err)
	}
	if row.Deleted == 1 {
		return model.Document{}, fmt.Errorf("get %s: %w", id, apperrors.ErrNotFound)
	}
	return c.decodeRow(row)
}

// Remove tombstones the document: fields are cleared, the id survives and
// the revision advances. A stale revision fails with ErrConflict.
func (c *Collection) Remove(ctx context.Context, id string, expectedRev model.Revision) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var newRev model.Revision
	err := c.withTx(ctx, func(tx *sqlx.Tx) error {
		cur, found, err := c.currentRow(ctx, tx, id)
		if err != nil {
			return err
		}
		if !found || cur.Deleted == 1 {
			return fmt.Errorf("remove %s: %w", id, apperrors.ErrNotFound)
		}
		if !expectedRev.Equal(model.Revision(cur.Revision)) {
			return fmt.Errorf("remove %s: %w", id, apperrors.ErrConflict)
		}
		newRev = nextRevision(model.Revision(cur.Revision), []byte("{}"))
		res, err := tx.ExecContext(ctx, `
			UPDATE documents SET revision = ?, body = '{}', indexed = NULL, deleted = 1
			WHERE collection = ? AND doc_id = ? AND revision = ?`,
			string(newRev), c.name, id, cur.Revision)
		if err != nil {
			return c.wrapStorageErr("remove", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("remove %s: %w", id, apperrors.ErrConflict)
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.feed.publish(FeedEvent{ID: id, Revision: newRev, Deleted: true})
	return nil
}

// ListAll returns every non-tombstoned document. Insertion order is by
// creation sequence with the id as a stable tiebreak.
func (c *Collection) ListAll(ctx context.Context, order Order) ([]model.Document, error) {
	dir := "ASC"
	if order == OrderReverse {
		dir = "DESC"
	}
	var rows []docRow
	query := fmt.Sprintf(`
		SELECT doc_id, revision, body, deleted FROM documents
		WHERE collection = ? AND deleted = 0
		ORDER BY created_seq %s, doc_id %s`, dir, dir)
	if err := c.store.db.SelectContext(ctx, &rows, query, c.name); err != nil {
		return nil, c.wrapStorageErr("list", c.name, err)
	}
	docs := make([]model.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := c.decodeRow(row)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// QueryIndexed performs an equality lookup on the collection's designated
// indexed field. Zero or more matches, insertion order.
func (c *Collection) QueryIndexed(ctx context.Context, value string) ([]model.Document, error) {
	if c.indexField == "" {
		return nil, fmt.Errorf("collection %s has no indexed field", c.name)
	}
	var rows []docRow
	err := c.store.db.SelectContext(ctx, &rows, `
		SELECT doc_id, revision, body, deleted FROM documents
		WHERE collection = ? AND indexed = ? AND deleted = 0
		ORDER BY created_seq ASC, doc_id ASC`, c.name, value)
	if err != nil {
		return nil, c.wrapStorageErr("query", c.name, err)
	}
	docs := make([]model.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := c.decodeRow(row)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

type PutRequest struct {
	ID       string
	Fields   map[string]any
	Revision model.Revision
}

type PutResult struct {
	ID       string
	Revision model.Revision
	Err      error
}

// BulkPut applies each put independently: one failure never aborts the
// rest. The caller gets a per-id outcome in request order.
func (c *Collection) BulkPut(ctx context.Context, reqs []PutRequest) []PutResult {
	results := make([]PutResult, 0, len(reqs))
	for _, req := range reqs {
		rev, err := c.Put(ctx, req.ID, req.Fields, req.Revision)
		results = append(results, PutResult{ID: req.ID, Revision: rev, Err: err})
	}
	return results
}

func (c *Collection) currentRow(ctx context.Context, tx *sqlx.Tx, id string) (docRow, bool, error) {
	var row docRow
	err := tx.GetContext(ctx, &row, `
		SELECT doc_id, revision, body, deleted FROM documents
		WHERE collection = ? AND doc_id = ?`, c.name, id)
	if err == sql.ErrNoRows {
		return docRow{}, false, nil
	}
	if err != nil {
		return docRow{}, false, c.wrapStorageErr("read", id, err)
	}
	return row, true, nil
}

func (c *Collection) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := c.store.db.BeginTxx(ctx, nil)
	if err != nil {
		return c.wrapStorageErr("begin", c.name, err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return c.wrapStorageErr("commit", c.name, err)
	}
	return nil
}

func (c *Collection) decodeRow(row docRow) (model.Document, error) {
	fields := map[string]any{}
	if err := json.Unmarshal([]byte(row.Body), &fields); err != nil {
		return model.Document{}, fmt.Errorf("decode %s/%s: %w", c.name, row.DocID, err)
	}
	return model.Document{
		ID:       row.DocID,
		Revision: model.Revision(row.Revision),
		Fields:   fields,
		Deleted:  row.Deleted == 1,
	}, nil
}

func (c *Collection) indexedValue(fields map[string]any) any {
	if c.indexField == "" {
		return nil
	}
	v, ok := fields[c.indexField]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return s
}

func (c *Collection) wrapStorageErr(op, id string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s %s/%s: %w: %v", op, c.name, id, apperrors.ErrPersistence, err)
}
