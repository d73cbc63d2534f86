package services

import (
	"context"
	"time"

	"github.com/SscSPs/school_ledger/internal/core/domain"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// TrialBalance lists every active account's balance in its debit or credit column.
	TrialBalance(ctx context.Context, tenantID string) (*domain.TrialBalanceReport, error)

	// IncomeStatement reports revenue and expenses for entries dated within [from, to].
	IncomeStatement(ctx context.Context, tenantID string, from, to time.Time) (*domain.IncomeStatementReport, error)

	// IncomeStatementForPeriod reports over the date range of a fiscal period.
	IncomeStatementForPeriod(ctx context.Context, tenantID, periodID string) (*domain.IncomeStatementReport, error)

	// BalanceSheet generates a balance sheet as of a specific date
	BalanceSheet(ctx context.Context, tenantID string, asOf time.Time) (*domain.BalanceSheetReport, error)

	// AccountLedger returns one page of an account's posted history with a running balance.
	AccountLedger(ctx context.Context, tenantID, accountID string, query domain.LedgerQuery) (*domain.AccountLedgerReport, error)

	// VerifyAccountBalance recomputes an account balance from posted lines.
	VerifyAccountBalance(ctx context.Context, tenantID, accountID string) (*domain.BalanceVerification, error)
}
