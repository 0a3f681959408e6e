// Package storage contains storage-agnostic contracts for the optional
// database sink. Concrete backends register a Factory under their kind name
// in init; the pipeline only depends on Repository.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"csvextract/internal/schema"
)

// Config selects and configures a backend.
type Config struct {
	Kind string // "sqlite" or "postgres"
	DSN  string
}

// Column is a destination column definition.
type Column struct {
	Name    string
	SQLType string
}

// Repository is the minimal contract a backend provides.
type Repository interface {
	// CreateTable creates table if it does not exist yet.
	CreateTable(ctx context.Context, table string, cols []Column) error
	// CopyFrom inserts rows (aligned to columns) into table and returns the
	// number of rows inserted.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
	// Close releases the underlying connection(s).
	Close()
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. It panics on duplicate
// registration, like database/sql.Register.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if f == nil {
		panic("storage: Register factory is nil")
	}
	if _, dup := factories[kind]; dup {
		panic("storage: Register called twice for " + kind)
	}
	factories[kind] = f
}

// Kinds lists the registered backend kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens a Repository of cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %s)", cfg.Kind, strings.Join(Kinds(), ", "))
	}
	return f(ctx, cfg)
}

// TableColumns maps a schema onto destination columns.
func TableColumns(s schema.Schema) []Column {
	cols := make([]Column, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = Column{Name: c.Name, SQLType: c.Type.SQLType()}
	}
	return cols
}
