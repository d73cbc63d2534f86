package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow represents a single row in a trial balance report
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceReport lists every active account's balance in its debit or credit column.
type TrialBalanceReport struct {
	Accounts    []TrialBalanceRow `json:"accounts"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
	IsBalanced  bool              `json:"isBalanced"`
}

// AccountActivity is the posted debit and credit total of one account over a date range.
type AccountActivity struct {
	AccountID   string
	Code        string
	Name        string
	AccountType AccountType
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// AccountAmount represents an account with its net amount for financial reports
type AccountAmount struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	NetAmount decimal.Decimal `json:"netAmount"`
}

// IncomeStatementReport covers revenue and expense activity between From and To inclusive.
type IncomeStatementReport struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Revenues      []AccountAmount `json:"revenues"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	Expenses      []AccountAmount `json:"expenses"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	NetIncome     decimal.Decimal `json:"netIncome"`
}

// BalanceSheetReport represents a balance sheet report as of a date.
// UnclosedEarnings is revenue minus expenses not yet closed to equity and is
// already included in TotalEquity.
type BalanceSheetReport struct {
	AsOf             time.Time       `json:"asOf"`
	Assets           []AccountAmount `json:"assets"`
	Liabilities      []AccountAmount `json:"liabilities"`
	Equity           []AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	UnclosedEarnings decimal.Decimal `json:"unclosedEarnings"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
	IsBalanced       bool            `json:"isBalanced"`
}

// LedgerQuery bounds an account ledger request. Nil dates leave that side open.
type LedgerQuery struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// LedgerLine is a posted line with entry context, as stored.
type LedgerLine struct {
	EntryID     string          `json:"entryID"`
	EntryNumber string          `json:"entryNumber"`
	EntryDate   time.Time       `json:"entryDate"`
	Description string          `json:"description"`
	LineNumber  int             `json:"lineNumber"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`

	// RunningBalance is filled by the reporting service.
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// LedgerPage is what a repository returns for a ledger window: the page of lines
// plus the debit and credit totals of the lines skipped by the offset.
type LedgerPage struct {
	Lines         []LedgerLine
	SkippedDebit  decimal.Decimal
	SkippedCredit decimal.Decimal
	HasMore       bool
}

// AccountLedgerReport is a paginated account history with a running balance.
type AccountLedgerReport struct {
	Account        Account         `json:"account"`
	Transactions   []LedgerLine    `json:"transactions"`
	OpeningBalance decimal.Decimal `json:"openingBalance"` // Running figure before the first line of this page
	RunningBalance decimal.Decimal `json:"runningBalance"`
	Limit          int             `json:"limit"`
	Offset         int             `json:"offset"`
	HasMore        bool            `json:"hasMore"`
}

// BalanceVerification compares a stored balance with one recomputed from posted lines.
type BalanceVerification struct {
	AccountID       string          `json:"accountID"`
	StoredBalance   decimal.Decimal `json:"storedBalance"`
	ComputedBalance decimal.Decimal `json:"computedBalance"`
	Matches         bool            `json:"matches"`
}
