package services

import (
	"context"

	"github.com/SscSPs/school_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// NewAccount describes an account to add to a tenant's chart.
type NewAccount struct {
	Code        string
	Name        string
	AccountType domain.AccountType
}

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its chart code.
	GetAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error)

	// GetBalance returns the account's running balance on its normal side.
	GetBalance(ctx context.Context, tenantID, accountID string) (decimal.Decimal, error)

	// ListAccounts retrieves the chart of accounts.
	ListAccounts(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Account, error)

	// ResolveAccountCodes maps each code to its account. Missing codes produce an
	// *apperrors.AccountNotConfiguredError naming all of them.
	ResolveAccountCodes(ctx context.Context, tenantID string, codes []string) (map[string]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount adds an account with a zero balance.
	CreateAccount(ctx context.Context, tenantID string, req NewAccount, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive. History is kept.
	DeactivateAccount(ctx context.Context, tenantID, accountID, userID string) error
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
