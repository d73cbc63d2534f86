package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/school_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxTxManager runs units of work in a READ COMMITTED transaction. Row locks
// taken by the LedgerTx methods are what serialize competing writers.
type PgxTxManager struct {
	BaseRepository
}

func newPgxTxManager(pool *pgxpool.Pool) *PgxTxManager {
	return &PgxTxManager{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionManager = (*PgxTxManager)(nil)

// WithinTx begins a transaction, hands fn a LedgerTx bound to it and commits
// if fn succeeds. Any error or panic rolls everything back.
func (m *PgxTxManager) WithinTx(ctx context.Context, fn portsrepo.TxFunc) (err error) {
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = m.Rollback(ctx, tx)
			panic(p)
		}
		if err != nil {
			if rbErr := m.Rollback(ctx, tx); rbErr != nil {
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
		}
	}()

	if err = fn(ctx, &ledgerTx{tx: tx}); err != nil {
		return err
	}
	return m.Commit(ctx, tx)
}

// ledgerTx implements portsrepo.LedgerTx on top of a single pgx.Tx.
// Its methods live next to the pool-backed repository of the same entity.
type ledgerTx struct {
	tx pgx.Tx
}

var _ portsrepo.LedgerTx = (*ledgerTx)(nil)

func txError(op string, err error) error {
	return apperrors.NewAppError(500, op, err)
}
