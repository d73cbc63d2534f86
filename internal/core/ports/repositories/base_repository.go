package repositories

import (
	"context"
)

// TxFunc is the unit of work executed inside a database transaction.
type TxFunc func(ctx context.Context, tx LedgerTx) error

// TransactionManager runs a unit of work atomically. If fn returns an error
// (or panics) every write it made is rolled back; otherwise the transaction
// is committed.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// LedgerTx is the set of repository operations that must take part in a single
// transaction: row locks, entry numbering, balance updates and status swaps.
type LedgerTx interface {
	AccountTxRepository
	JournalTxRepository
	PeriodTxRepository
}
