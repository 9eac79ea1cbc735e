package metadata

import (
	"context"

	"github.com/dmitrijs2005/aidocpro/internal/dbx"
)

// Updater is implemented by stores that can read-modify-write one key
// atomically.
type Updater interface {
	Update(ctx context.Context, key string, fn func(old []byte) ([]byte, error)) error
}

// Update passes the current value of key (nil when missing) to fn and stores
// what it returns. When the handle can begin a transaction both steps run in
// one; an error from fn leaves the value untouched.
func (r *SQLiteRepository) Update(ctx context.Context, key string, fn func(old []byte) ([]byte, error)) error {
	run := func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)

		old, err := repo.Get(ctx, key)
		if err != nil {
			return err
		}
		next, err := fn(old)
		if err != nil {
			return err
		}
		return repo.Set(ctx, key, next)
	}

	if b, ok := r.db.(dbx.TxBeginner); ok {
		return dbx.WithTx(ctx, b, nil, run)
	}
	return run(ctx, r.db)
}
