// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. It performs batched INSERTs inside a transaction; SQLite does
// not have a dedicated bulk-load API like Postgres COPY, but transactions keep
// performance acceptable for sample-sized subsets.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"csvextract/internal/storage"

	_ "modernc.org/sqlite" // pure-Go driver registered as "sqlite"
)

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens a SQLite database. A single connection is kept so that
// ":memory:" databases are shared by every statement.
func Open(dsn string) (*sql.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// New wraps an already opened database.
func New(db *sql.DB) *Repository { return &Repository{db: db} }

// NewRepository opens a SQLite connection using the provided DSN, for example
//
//	"file:sample.db?_pragma=foreign_keys(1)"
//	"sample.db"
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}

	// Apply a basic ping with context to fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return New(db), nil
}

// Close closes the database.
func (r *Repository) Close() { _ = r.db.Close() }

// CreateTable implements storage.Repository.
func (r *Repository) CreateTable(ctx context.Context, table string, cols []storage.Column) error {
	if len(cols) == 0 {
		return fmt.Errorf("sqlite: CreateTable %s: no columns", table)
	}
	if _, err := r.db.ExecContext(ctx, createTableSQL(table, cols)); err != nil {
		return fmt.Errorf("sqlite: create table %s: %w", table, err)
	}
	return nil
}

// CopyFrom inserts the given rows into table using a single transaction and a
// prepared INSERT statement. len(row) must equal len(columns) for every row.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL(table, columns))
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

func createTableSQL(table string, cols []storage.Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteIdent(c.Name) + " " + c.SQLType
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
}

func insertSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
}

// quoteIdent double-quotes an identifier, escaping embedded quotes.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
