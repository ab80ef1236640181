package sqlite

import (
	"context"
	"database/sql"

	"github.com/outlaydev/outlay/internal/outlay/store"
)

type txStore struct {
	tx *sql.Tx
	q  dbtx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{
		tx: tx,
		q:  tx,
	}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // nothing to close; caller will commit/rollback and outer DB stays open

// Ping is a no-op for transactions. The connection already exists when
// the transaction is created.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users           { return &usersRepo{q: t.q} }
func (t *txStore) Invites() store.Invites       { return &invitesRepo{q: t.q} }
func (t *txStore) Challenges() store.Challenges { return &challengesRepo{q: t.q} }
func (t *txStore) Passkeys() store.Passkeys     { return &passkeysRepo{q: t.q} }
func (t *txStore) Teams() store.Teams           { return &teamsRepo{q: t.q} }
func (t *txStore) Categories() store.Categories { return &categoriesRepo{q: t.q} }
func (t *txStore) Expenses() store.Expenses     { return &expensesRepo{q: t.q} }

func (t *txStore) ApplyMigrations() error { return nil } // no-op; migrations should be applied before starting a tx
