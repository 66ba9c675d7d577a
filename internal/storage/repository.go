// Package storage holds the storage-agnostic contracts of the ingestion
// pipeline: the Repository a backend implements, the backend factory, and the
// Connection Manager, Schema Bootstrapper and Batch Upserter built on top.
//
// Backends (postgres, sqlite, mssql) register a Factory at init time. Callers
// blank-import newsingest/internal/storage/all and never import a driver
// directly.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"newsingest/internal/article"
)

// DefaultTable is the article table name used when Config.Table is empty.
const DefaultTable = "news_articles"

// Repository is implemented by every backend. Each Repository owns exactly one
// store connection.
type Repository interface {
	// EnsureSchema creates the article table if it does not exist. It never
	// alters an existing table.
	EnsureSchema(ctx context.Context) error

	// InsertArticles writes tuples in one transaction, skipping rows whose id
	// already exists, and returns the number of rows newly written.
	InsertArticles(ctx context.Context, tuples []article.Tuple) (int64, error)

	// CountArticles returns the total number of rows in the article table.
	CountArticles(ctx context.Context) (int64, error)

	// Close releases the connection. It is safe to call more than once.
	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind  string // "postgres", "sqlite", "mssql"
	DSN   string
	Table string
}

// TableName returns the configured table or DefaultTable.
func (c Config) TableName() string {
	if c.Table == "" {
		return DefaultTable
	}
	return c.Table
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the Factory for a storage kind. Backends call
// it from init.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// Kinds lists the registered storage kinds, sorted.
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

// New opens a Repository using the Factory registered for cfg.Kind. It makes a
// single attempt; see Connect for the retrying variant.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}
