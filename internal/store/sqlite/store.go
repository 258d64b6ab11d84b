// Package sqlite provides a SQLite-backed document store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"Kilnworld/internal/store"
	"Kilnworld/internal/store/sqlite/migrations"
)

// Store persists documents in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite document store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Create inserts a new document and returns the assigned identity.
func (s *Store) Create(ctx context.Context, doc store.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s == nil || s.sqlDB == nil {
		return "", fmt.Errorf("storage is not configured")
	}
	if doc.ID != "" {
		return "", fmt.Errorf("create %s %s: %w", doc.Kind, doc.ID, store.ErrAlreadyIdentified)
	}
	doc.ID = ulid.Make().String()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkRefs(ctx, tx, doc); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (id, kind, body) VALUES (?, ?, ?)`,
			doc.ID, string(doc.Kind), bodyOf(doc),
		); err != nil {
			return fmt.Errorf("insert %s: %w", doc.Kind, err)
		}
		return writeLinks(ctx, tx, doc)
	})
	if err != nil {
		return "", err
	}
	return doc.ID, nil
}

// Update replaces the body, references and index of an existing document.
func (s *Store) Update(ctx context.Context, doc store.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkRefs(ctx, tx, doc); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE documents SET body = ? WHERE id = ? AND kind = ?`,
			bodyOf(doc), doc.ID, string(doc.Kind),
		)
		if err != nil {
			return fmt.Errorf("update %s: %w", doc.Kind, err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("update %s: %w", doc.Kind, err)
		} else if n == 0 {
			return fmt.Errorf("update %s %q: %w", doc.Kind, doc.ID, store.ErrNotFound)
		}
		if err := clearLinks(ctx, tx, doc.ID); err != nil {
			return err
		}
		return writeLinks(ctx, tx, doc)
	})
}

// Delete removes a document that no other document references.
func (s *Store) Delete(ctx context.Context, kind store.Kind, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = ? AND kind = ?`, id, string(kind)).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("delete %s %q: %w", kind, id, store.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("delete %s: %w", kind, err)
		}
		var referrer string
		err = tx.QueryRowContext(ctx,
			`SELECT doc_id FROM document_refs WHERE ref_id = ? AND doc_id <> ? LIMIT 1`, id, id,
		).Scan(&referrer)
		if err == nil {
			return fmt.Errorf("delete %s %q referenced by %q: %w", kind, id, referrer, store.ErrStillReferenced)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("delete %s: %w", kind, err)
		}
		if err := clearLinks(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete %s: %w", kind, err)
		}
		return nil
	})
}

// Get returns one document.
func (s *Store) Get(ctx context.Context, kind store.Kind, id string) (store.Document, error) {
	if err := ctx.Err(); err != nil {
		return store.Document{}, err
	}
	if s == nil || s.sqlDB == nil {
		return store.Document{}, fmt.Errorf("storage is not configured")
	}
	docs, err := s.query(ctx, `SELECT id, kind, body FROM documents WHERE id = ? AND kind = ?`, id, string(kind))
	if err != nil {
		return store.Document{}, err
	}
	if len(docs) == 0 {
		return store.Document{}, fmt.Errorf("get %s %q: %w", kind, id, store.ErrNotFound)
	}
	return docs[0], nil
}

// Find returns documents of kind whose indexed field equals value.
func (s *Store) Find(ctx context.Context, kind store.Kind, field, value string) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	return s.query(ctx,
		`SELECT d.id, d.kind, d.body
		   FROM documents d
		   JOIN document_index i ON i.doc_id = d.id
		  WHERE d.kind = ? AND i.field = ? AND i.value = ?
		  ORDER BY d.seq`,
		string(kind), field, value,
	)
}

// All returns every document of kind in insertion order.
func (s *Store) All(ctx context.Context, kind store.Kind) ([]store.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	return s.query(ctx, `SELECT id, kind, body FROM documents WHERE kind = ? ORDER BY seq`, string(kind))
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]store.Document, error) {
	rows, err := s.sqlDB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	var docs []store.Document
	for rows.Next() {
		var (
			doc  store.Document
			kind string
		)
		if err := rows.Scan(&doc.ID, &kind, &doc.Body); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.Kind = store.Kind(kind)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close rows: %w", err)
	}
	for i := range docs {
		if err := s.loadLinks(ctx, &docs[i]); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (s *Store) loadLinks(ctx context.Context, doc *store.Document) error {
	refs, err := s.pairs(ctx, `SELECT ref_id, '' FROM document_refs WHERE doc_id = ? ORDER BY rowid`, doc.ID)
	if err != nil {
		return fmt.Errorf("load refs: %w", err)
	}
	for _, ref := range refs {
		doc.Refs = append(doc.Refs, ref[0])
	}
	fields, err := s.pairs(ctx, `SELECT field, value FROM document_index WHERE doc_id = ?`, doc.ID)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	for _, field := range fields {
		if doc.Index == nil {
			doc.Index = make(map[string]string, len(fields))
		}
		doc.Index[field[0]] = field[1]
	}
	return nil
}

// pairs runs a two-column query and closes its rows before returning, so a
// single pooled connection is never held across queries.
func (s *Store) pairs(ctx context.Context, q string, args ...any) ([][2]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out [][2]string
	for rows.Next() {
		var pair [2]string
		if err := rows.Scan(&pair[0], &pair[1]); err != nil {
			return nil, err
		}
		out = append(out, pair)
	}
	return out, rows.Err()
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func checkRefs(ctx context.Context, tx *sql.Tx, doc store.Document) error {
	for _, ref := range doc.Refs {
		if ref == "" {
			return fmt.Errorf("%s references an unsaved entity: %w", doc.Kind, store.ErrUnidentifiedReference)
		}
		var found int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = ?`, ref).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s references unknown id %q: %w", doc.Kind, ref, store.ErrUnidentifiedReference)
		}
		if err != nil {
			return fmt.Errorf("check reference %q: %w", ref, err)
		}
	}
	return nil
}

func writeLinks(ctx context.Context, tx *sql.Tx, doc store.Document) error {
	refs := slices.Clone(doc.Refs)
	slices.Sort(refs)
	for _, ref := range slices.Compact(refs) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO document_refs (doc_id, ref_id) VALUES (?, ?)`, doc.ID, ref,
		); err != nil {
			return fmt.Errorf("insert ref: %w", err)
		}
	}
	for field, value := range doc.Index {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO document_index (doc_id, field, value) VALUES (?, ?, ?)`, doc.ID, field, value,
		); err != nil {
			return fmt.Errorf("insert index %s: %w", field, err)
		}
	}
	return nil
}

func clearLinks(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_refs WHERE doc_id = ?`, id); err != nil {
		return fmt.Errorf("clear refs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_index WHERE doc_id = ?`, id); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	return nil
}

func bodyOf(doc store.Document) []byte {
	if doc.Body == nil {
		return []byte{}
	}
	return doc.Body
}

var _ store.Store = (*Store)(nil)
