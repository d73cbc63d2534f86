package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/school_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportingRepository reads posted ledger state for financial reports.
// Posted state means lines of entries whose status is POSTED or REVERSED.
type ReportingRepository interface {
	// ListTrialBalanceAccounts returns every active account, plus deactivated accounts that
	// still carry posted lines, with their stored balances ordered by code.
	ListTrialBalanceAccounts(ctx context.Context, tenantID string) ([]domain.Account, error)

	// SumPostedActivity totals posted debits and credits per account of the given types
	// for entries dated within [from, to]. A nil from means since inception.
	// Accounts without activity in the range are omitted.
	SumPostedActivity(ctx context.Context, tenantID string, from *time.Time, to time.Time, types []domain.AccountType) ([]domain.AccountActivity, error)

	// SumPostedLinesForAccount totals all posted debits and credits on one account.
	SumPostedLinesForAccount(ctx context.Context, tenantID, accountID string) (debit, credit decimal.Decimal, err error)

	// FindLedgerLines returns one page of an account's posted lines ordered by entry date,
	// entry id and line number, plus the totals of the lines skipped by the offset.
	FindLedgerLines(ctx context.Context, tenantID, accountID string, query domain.LedgerQuery) (*domain.LedgerPage, error)
}
