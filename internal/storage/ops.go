package storage

import (
	"context"
	"log/slog"

	"newsingest/internal/article"
	"newsingest/internal/retry"
)

// Connect is the Connection Manager. It opens a Repository for cfg, retrying
// any failure according to policy, and returns a *ConnectionError once the
// policy is exhausted. Error subtypes are not distinguished: authentication
// failures are retried like transient ones.
func Connect(ctx context.Context, cfg Config, policy retry.Policy, logger *slog.Logger) (Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if policy.Logger == nil {
		policy.Logger = logger.With("op", "connect", "kind", cfg.Kind)
	}

	var repo Repository
	attempts, err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
		logger.Debug("connecting to store", "kind", cfg.Kind, "attempt", attempt)
		r, err := New(ctx, cfg)
		if err != nil {
			return err
		}
		repo = r
		return nil
	})
	if err != nil {
		return nil, &ConnectionError{Kind: cfg.Kind, Attempts: attempts, Err: err}
	}
	return repo, nil
}

// EnsureSchema is the Schema Bootstrapper. It is safe to call on every run.
func EnsureSchema(ctx context.Context, repo Repository, table string) error {
	if err := repo.EnsureSchema(ctx); err != nil {
		return &SchemaError{Table: table, Err: err}
	}
	return nil
}

// Upsert is the Batch Upserter. An empty batch issues no statement and
// returns 0. Otherwise the batch is written atomically with conflicts on id
// skipped, and the number of newly written rows is returned.
func Upsert(ctx context.Context, repo Repository, tuples []article.Tuple) (int64, error) {
	if len(tuples) == 0 {
		return 0, nil
	}
	n, err := repo.InsertArticles(ctx, tuples)
	if err != nil {
		return 0, &StoreError{Op: "upsert", Err: err}
	}
	return n, nil
}

// Count returns the total rows currently in the article table.
func Count(ctx context.Context, repo Repository) (int64, error) {
	n, err := repo.CountArticles(ctx)
	if err != nil {
		return 0, &StoreError{Op: "count", Err: err}
	}
	return n, nil
}
