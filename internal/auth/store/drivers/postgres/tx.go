package postgres

import (
	"context"

	"github.com/aussiebroadwan/sessiond/internal/auth/store"
	"github.com/jackc/pgx/v5"
)

type txStore struct {
	ctx context.Context
	tx  pgx.Tx
}

func (t *txStore) Commit() error { return t.tx.Commit(t.ctx) }

// Rollback is safe after Commit; pgx reports ErrTxClosed which callers ignore.
func (t *txStore) Rollback() error { return t.tx.Rollback(t.ctx) }

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, pgx.ErrTxClosed
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return pgx.ErrTxClosed
}

func (t *txStore) Users() store.Users       { return &usersRepo{db: t.tx} }
func (t *txStore) Sessions() store.Sessions { return &sessionsRepo{db: t.tx} }

// Credential lookups inside a transaction take a row lock.
func (t *txStore) RefreshCredentials() store.RefreshCredentials {
	return &refreshCredentialsRepo{db: t.tx, forUpdate: true}
}

func (t *txStore) ApplyMigrations() error { return nil }
