package sqlite

import (
	"context"

	"csvextract/internal/storage"
)

// Ensure Repository satisfies the interface at compile time.
var _ storage.Repository = (*Repository)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg.DSN)
	})
}
