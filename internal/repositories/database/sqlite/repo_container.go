package sqlite

import (
	"database/sql"

	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every SQLite repository onto one *sql.DB.
// db must be limited to a single open connection.
func NewRepositoryProvider(db *sql.DB) *portsrepo.RepositoryProvider {
	return &portsrepo.RepositoryProvider{
		AccountRepo:   newAccountRepository(db),
		JournalRepo:   newJournalRepository(db),
		PeriodRepo:    newPeriodRepository(db),
		ReportingRepo: newReportingRepository(db),
		TxManager:     newTxManager(db),
	}
}
