package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// AllAccountTypes lists every account type in statement order.
var AllAccountTypes = []AccountType{Asset, Liability, Equity, Revenue, Expense}

// NormalSide is the side of the ledger on which an account's balance increases.
type NormalSide string

const (
	DebitSide  NormalSide = "DEBIT"
	CreditSide NormalSide = "CREDIT"
)

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// NormalSide returns DebitSide for assets and expenses and CreditSide for
// liabilities, equity and revenue. Unknown types report an empty side.
func (t AccountType) NormalSide() NormalSide {
	switch t {
	case Asset, Expense:
		return DebitSide
	case Liability, Equity, Revenue:
		return CreditSide
	}
	return ""
}

// Delta converts a debit/credit pair into a change of the account's balance
// expressed on its normal side.
func (t AccountType) Delta(debit, credit decimal.Decimal) decimal.Decimal {
	if t.NormalSide() == DebitSide {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// Account represents a ledger account in a tenant's chart of accounts.
type Account struct {
	AccountID   string          `json:"accountID"`
	TenantID    string          `json:"tenantID"`
	Code        string          `json:"code"` // Unique per tenant, e.g. 1110
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	Balance     decimal.Decimal `json:"balance"` // Always on the normal side
	IsActive    bool            `json:"isActive"`
	AuditFields
}
