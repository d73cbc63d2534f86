package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/school_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAccountType_NormalSide(t *testing.T) {
	tests := []struct {
		accountType domain.AccountType
		want        domain.NormalSide
	}{
		{domain.Asset, domain.DebitSide},
		{domain.Expense, domain.DebitSide},
		{domain.Liability, domain.CreditSide},
		{domain.Equity, domain.CreditSide},
		{domain.Revenue, domain.CreditSide},
		{domain.AccountType("INCOME"), ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.accountType.NormalSide())
			assert.Equal(t, tt.want != "", tt.accountType.IsValid())
		})
	}
}

func TestAccountType_Delta(t *testing.T) {
	tests := []struct {
		name        string
		accountType domain.AccountType
		debit       string
		credit      string
		want        string
	}{
		{"debit to asset increases", domain.Asset, "100", "0", "100"},
		{"credit to asset decreases", domain.Asset, "0", "40.50", "-40.50"},
		{"debit to expense increases", domain.Expense, "12.34", "0", "12.34"},
		{"credit to revenue increases", domain.Revenue, "0", "100", "100"},
		{"debit to liability decreases", domain.Liability, "25", "0", "-25"},
		{"mixed line on equity", domain.Equity, "10", "30", "20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.accountType.Delta(dec(tt.debit), dec(tt.credit))
			assert.True(t, dec(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestAmountsBalance(t *testing.T) {
	assert.True(t, domain.AmountsBalance(dec("100.00"), dec("100.00")))
	assert.True(t, domain.AmountsBalance(dec("100.004"), dec("100.00")))
	assert.False(t, domain.AmountsBalance(dec("100.01"), dec("100.00")))
	assert.False(t, domain.AmountsBalance(dec("100"), dec("90")))
}

func TestEntryStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, domain.Draft.CanTransitionTo(domain.Posted))
	assert.True(t, domain.Posted.CanTransitionTo(domain.Reversed))

	assert.False(t, domain.Draft.CanTransitionTo(domain.Reversed), "skipping POSTED")
	assert.False(t, domain.Posted.CanTransitionTo(domain.Draft), "backwards")
	assert.False(t, domain.Posted.CanTransitionTo(domain.Posted), "double post")
	assert.False(t, domain.Reversed.CanTransitionTo(domain.Posted), "terminal")
	assert.False(t, domain.Reversed.CanTransitionTo(domain.Reversed), "terminal")
}

func TestJournalEntry_TotalsAndAccounts(t *testing.T) {
	entry := domain.JournalEntry{
		Lines: []domain.JournalEntryLine{
			{AccountID: "cash", Debit: dec("60"), Credit: decimal.Zero, LineNumber: 1},
			{AccountID: "cash", Debit: dec("40"), Credit: decimal.Zero, LineNumber: 2},
			{AccountID: "revenue", Debit: decimal.Zero, Credit: dec("100"), LineNumber: 3},
		},
	}

	d, c := domain.LineTotals(entry.Lines)
	assert.True(t, d.Equal(dec("100")))
	assert.True(t, c.Equal(dec("100")))
	assert.True(t, entry.IsBalanced())
	assert.Equal(t, []string{"cash", "revenue"}, entry.AccountIDs())

	entry.Lines[2].Credit = dec("90")
	assert.False(t, entry.IsBalanced())
}

func TestFormatEntryNumber(t *testing.T) {
	assert.Equal(t, "JE-2024-0007", domain.FormatEntryNumber(2024, 7))
	assert.Equal(t, "JE-2025-0123", domain.FormatEntryNumber(2025, 123))
	assert.Equal(t, "JE-2025-12345", domain.FormatEntryNumber(2025, 12345))
}

func TestFiscalPeriod_Contains(t *testing.T) {
	p := domain.FiscalPeriod{
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:    domain.PeriodOpen,
	}

	assert.True(t, p.Contains(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC)), "end date is inclusive")
	assert.False(t, p.Contains(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.IsClosed())
}

func TestNormalizeDate(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	got := domain.NormalizeDate(time.Date(2024, 6, 15, 22, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), got)
}
