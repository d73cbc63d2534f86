package dto

import (
	"github.com/SscSPs/school_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// IncomeStatementParams selects the income statement range, either by dates or by fiscal period.
type IncomeStatementParams struct {
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	PeriodID string `form:"periodId"`
}

// BalanceSheetParams selects the balance sheet date. Empty means today.
type BalanceSheetParams struct {
	AsOf string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// AccountLedgerParams represents the query parameters for the account ledger endpoint
type AccountLedgerParams struct {
	StartDate string `form:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"endDate" binding:"omitempty,datetime=2006-01-02"`
	Limit     int    `form:"limit" binding:"omitempty,min=1"`
	Offset    int    `form:"offset" binding:"omitempty,min=0"`
}

// ToLedgerQuery parses the optional date bounds.
func (p AccountLedgerParams) ToLedgerQuery() (domain.LedgerQuery, error) {
	start, err := ParseOptionalDate("startDate", p.StartDate)
	if err != nil {
		return domain.LedgerQuery{}, err
	}
	end, err := ParseOptionalDate("endDate", p.EndDate)
	if err != nil {
		return domain.LedgerQuery{}, err
	}
	return domain.LedgerQuery{StartDate: start, EndDate: end, Limit: p.Limit, Offset: p.Offset}, nil
}

// IncomeStatementResponse renders report dates as calendar dates.
type IncomeStatementResponse struct {
	From          string                 `json:"from"`
	To            string                 `json:"to"`
	Revenues      []domain.AccountAmount `json:"revenues"`
	TotalRevenue  decimal.Decimal        `json:"totalRevenue"`
	Expenses      []domain.AccountAmount `json:"expenses"`
	TotalExpenses decimal.Decimal        `json:"totalExpenses"`
	NetIncome     decimal.Decimal        `json:"netIncome"`
}

// BalanceSheetResponse is the wire form of a balance sheet.
type BalanceSheetResponse struct {
	AsOf             string                 `json:"asOf"`
	Assets           []domain.AccountAmount `json:"assets"`
	Liabilities      []domain.AccountAmount `json:"liabilities"`
	Equity           []domain.AccountAmount `json:"equity"`
	TotalAssets      decimal.Decimal        `json:"totalAssets"`
	TotalLiabilities decimal.Decimal        `json:"totalLiabilities"`
	UnclosedEarnings decimal.Decimal        `json:"unclosedEarnings"`
	TotalEquity      decimal.Decimal        `json:"totalEquity"`
	IsBalanced       bool                   `json:"isBalanced"`
}

// LedgerLineResponse is one row of an account ledger.
type LedgerLineResponse struct {
	EntryID        string          `json:"entryID"`
	EntryNumber    string          `json:"entryNumber"`
	EntryDate      string          `json:"entryDate"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// AccountLedgerResponse is one page of an account ledger.
type AccountLedgerResponse struct {
	Account        AccountResponse      `json:"account"`
	Transactions   []LedgerLineResponse `json:"transactions"`
	OpeningBalance decimal.Decimal      `json:"openingBalance"`
	RunningBalance decimal.Decimal      `json:"runningBalance"`
	Limit          int                  `json:"limit"`
	Offset         int                  `json:"offset"`
	HasMore        bool                 `json:"hasMore"`
}

func ToIncomeStatementResponse(r *domain.IncomeStatementReport) IncomeStatementResponse {
	return IncomeStatementResponse{
		From:          formatDate(r.From),
		To:            formatDate(r.To),
		Revenues:      r.Revenues,
		TotalRevenue:  r.TotalRevenue,
		Expenses:      r.Expenses,
		TotalExpenses: r.TotalExpenses,
		NetIncome:     r.NetIncome,
	}
}

func ToBalanceSheetResponse(r *domain.BalanceSheetReport) BalanceSheetResponse {
	return BalanceSheetResponse{
		AsOf:             formatDate(r.AsOf),
		Assets:           r.Assets,
		Liabilities:      r.Liabilities,
		Equity:           r.Equity,
		TotalAssets:      r.TotalAssets,
		TotalLiabilities: r.TotalLiabilities,
		UnclosedEarnings: r.UnclosedEarnings,
		TotalEquity:      r.TotalEquity,
		IsBalanced:       r.IsBalanced,
	}
}

func ToAccountLedgerResponse(r *domain.AccountLedgerReport) AccountLedgerResponse {
	resp := AccountLedgerResponse{
		Account:        ToAccountResponse(&r.Account),
		Transactions:   make([]LedgerLineResponse, len(r.Transactions)),
		OpeningBalance: r.OpeningBalance,
		RunningBalance: r.RunningBalance,
		Limit:          r.Limit,
		Offset:         r.Offset,
		HasMore:        r.HasMore,
	}
	for i, l := range r.Transactions {
		resp.Transactions[i] = LedgerLineResponse{
			EntryID:        l.EntryID,
			EntryNumber:    l.EntryNumber,
			EntryDate:      formatDate(l.EntryDate),
			Description:    l.Description,
			Debit:          l.Debit,
			Credit:         l.Credit,
			RunningBalance: l.RunningBalance,
		}
	}
	return resp
}
