package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
)

// TxManager runs units of work in an SQLite transaction.
type TxManager struct {
	BaseRepository
}

func newTxManager(db *sql.DB) *TxManager {
	return &TxManager{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.TransactionManager = (*TxManager)(nil)

// WithinTx begins a transaction, hands fn a LedgerTx bound to it and commits if
// fn succeeds. Inside fn only the transaction handle may touch the database:
// the pool has a single connection and the transaction holds it.
func (m *TxManager) WithinTx(ctx context.Context, fn portsrepo.TxFunc) (err error) {
	tx, err := m.Begin(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = m.Rollback(tx)
			panic(p)
		}
		if err != nil {
			if rbErr := m.Rollback(tx); rbErr != nil {
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
		}
	}()

	if err = fn(ctx, &ledgerTx{tx: tx}); err != nil {
		return err
	}
	return m.Commit(tx)
}

// ledgerTx implements portsrepo.LedgerTx on a single *sql.Tx.
type ledgerTx struct {
	tx *sql.Tx
}

var _ portsrepo.LedgerTx = (*ledgerTx)(nil)
