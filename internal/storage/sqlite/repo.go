// Package sqlite implements the article Repository on SQLite using sqlx and
// the pure-Go modernc.org/sqlite driver. It is meant for local development
// and hermetic tests: geometry is kept as EWKT text and categories as a JSON
// array, since SQLite has neither a geography nor an array type.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"newsingest/internal/article"
	"newsingest/internal/storage/ddl"
)

// DefaultChunkRows bounds rows per INSERT so that the bound variable count
// stays well below SQLITE_MAX_VARIABLE_NUMBER.
const DefaultChunkRows = 500

// Config holds SQLite repository configuration.
type Config struct {
	// DSN is a file path or URI, e.g. "newsdb.db" or "file:news.db?mode=rwc".
	DSN   string
	Table string

	// ChunkRows overrides DefaultChunkRows when > 0.
	ChunkRows int
}

// Repository is a SQLite-backed article store.
type Repository struct {
	db  *sqlx.DB
	cfg Config
}

var dialect = ddl.Dialect{Quote: quoteIdent, IfNotExists: true}

// execChunk runs one multi-row INSERT inside the batch transaction. Tests
// replace it to inject failures mid-batch.
var execChunk = func(ctx context.Context, tx *sqlx.Tx, query string, args []any) (sql.Result, error) {
	return tx.ExecContext(ctx, query, args...)
}

// NewRepository opens the database and returns a Repository plus a Close
// function. The handle is limited to one open connection.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sqlx.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// MapType maps logical column kinds to SQLite storage classes.
func MapType(k ddl.Kind) string {
	switch k {
	case ddl.KindReal, ddl.KindDouble:
		return "REAL"
	default:
		return "TEXT"
	}
}

// CreateTableSQL returns the idempotent DDL for the article table.
func CreateTableSQL(table string) (string, error) {
	return ddl.BuildCreateTableSQL(ddl.Article(table, MapType), dialect)
}

// EnsureSchema issues CREATE TABLE IF NOT EXISTS for the article table.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	stmt, err := CreateTableSQL(r.cfg.Table)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("sqlite: create table: %w", err)
	}
	return nil
}

// insertSQL renders a multi-row INSERT ... ON CONFLICT(id) DO NOTHING for n rows.
func insertSQL(table string, n int) string {
	names := ddl.ColumnNames()
	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ") + ")"
	values := make([]string, n)
	for i := range values {
		values[i] = row
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s ON CONFLICT (%s) DO NOTHING",
		dialect.QuoteFQN(table),
		strings.Join(dialect.QuoteAll(names), ", "),
		strings.Join(values, ", "),
		quoteIdent(ddl.ColID),
	)
}

// rowArgs flattens one tuple in ddl.ColumnNames order.
func rowArgs(t article.Tuple) ([]any, error) {
	cats, err := json.Marshal(t.Category)
	if err != nil {
		return nil, fmt.Errorf("encode category for %s: %w", t.ID, err)
	}
	return []any{
		t.ID,
		t.Title,
		t.Description,
		t.URL,
		t.PublicationDate.Format(time.RFC3339Nano),
		t.SourceName,
		string(cats),
		float64(t.RelevanceScore),
		t.Latitude,
		t.Longitude,
		t.Geom,
	}, nil
}

// InsertArticles writes the batch in one transaction, chunked into multi-row
// INSERTs. Any failure rolls back every chunk of the batch.
func (r *Repository) InsertArticles(ctx context.Context, tuples []article.Tuple) (int64, error) {
	if len(tuples) == 0 {
		return 0, nil
	}
	chunk := r.cfg.ChunkRows
	if chunk <= 0 {
		chunk = DefaultChunkRows
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var inserted int64
	for start := 0; start < len(tuples); start += chunk {
		end := min(start+chunk, len(tuples))
		args := make([]any, 0, (end-start)*len(ddl.ArticleColumns))
		for _, t := range tuples[start:end] {
			a, err := rowArgs(t)
			if err != nil {
				return 0, err
			}
			args = append(args, a...)
		}

		res, err := execChunk(ctx, tx, insertSQL(r.cfg.Table, end-start), args)
		if err != nil {
			return 0, fmt.Errorf("sqlite: insert rows %d-%d: %w", start, end-1, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("sqlite: rows affected: %w", err)
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// CountArticles returns SELECT COUNT(*) over the article table.
func (r *Repository) CountArticles(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+dialect.QuoteFQN(r.cfg.Table)); err != nil {
		return 0, fmt.Errorf("sqlite: count: %w", err)
	}
	return n, nil
}

// quoteIdent quotes a SQLite identifier.
func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
