package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/school_ledger/internal/apperrors"
	"github.com/SscSPs/school_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/school_ledger/internal/core/ports/services"
	"github.com/SscSPs/school_ledger/internal/core/services"
	"github.com/SscSPs/school_ledger/internal/repositories/database/sqlite"
	"github.com/SscSPs/school_ledger/internal/utils/chart"
	"github.com/SscSPs/school_ledger/pkg/database"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

var today = time.Date(2024, 3, 20, 10, 30, 0, 0, time.UTC)

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
}

func amount(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// LedgerIntegrationTestSuite drives the services against a real in-memory SQLite database.
type LedgerIntegrationTestSuite struct {
	suite.Suite
	db       *sql.DB
	svc      *portssvc.ServiceContainer
	ctx      context.Context
	tenantID string
	accounts map[string]domain.Account
}

func (suite *LedgerIntegrationTestSuite) SetupTest() {
	db, err := database.OpenInMemorySQLite()
	suite.Require().NoError(err)
	suite.db = db
	suite.svc = services.NewContainer(sqlite.NewRepositoryProvider(db),
		services.WithClock(func() time.Time { return today }))
	suite.ctx = context.Background()
	suite.tenantID = uuid.NewString()

	c, err := chart.Default()
	suite.Require().NoError(err)
	res, err := chart.Apply(suite.ctx, suite.svc.Account, suite.tenantID, "seed", c)
	suite.Require().NoError(err)
	suite.Require().Len(res.Created, len(c.Accounts))

	suite.accounts, err = suite.svc.Account.ResolveAccountCodes(suite.ctx, suite.tenantID,
		[]string{"1110", "1130", "2110", "3100", "4100", "5100", "5200"})
	suite.Require().NoError(err)
}

func (suite *LedgerIntegrationTestSuite) TearDownTest() {
	suite.db.Close()
}

func (suite *LedgerIntegrationTestSuite) id(code string) string {
	return suite.accounts[code].AccountID
}

func (suite *LedgerIntegrationTestSuite) entry(date time.Time, debitCode, creditCode, value string) domain.NewEntry {
	return domain.NewEntry{
		TenantID:    suite.tenantID,
		EntryDate:   date,
		Description: debitCode + " / " + creditCode,
		CreatedBy:   "bursar",
		Lines: []domain.NewEntryLine{
			{AccountID: suite.id(debitCode), Debit: amount(value), Credit: decimal.Zero},
			{AccountID: suite.id(creditCode), Debit: decimal.Zero, Credit: amount(value)},
		},
	}
}

func (suite *LedgerIntegrationTestSuite) balance(code string) decimal.Decimal {
	b, err := suite.svc.Account.GetBalance(suite.ctx, suite.tenantID, suite.id(code))
	suite.Require().NoError(err)
	return b
}

func (suite *LedgerIntegrationTestSuite) TestNumberingAndDoublePost() {
	first, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.entry(day(3, 1), "1130", "4100", "1000.00"))
	suite.Require().NoError(err)
	second, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.entry(day(3, 2), "1130", "4100", "250.00"))
	suite.Require().NoError(err)
	suite.Equal("JE-2024-0001", first.EntryNumber)
	suite.Equal("JE-2024-0002", second.EntryNumber)
	suite.Equal(domain.Draft, first.Status)
	suite.True(suite.balance("1130").IsZero(), "drafts do not move balances")

	posted, err := suite.svc.Journal.PostEntry(suite.ctx, suite.tenantID, first.EntryID, "bursar")
	suite.Require().NoError(err)
	suite.Equal(domain.Posted, posted.Status)
	suite.NotNil(posted.PostedAt)

	_, err = suite.svc.Journal.PostEntry(suite.ctx, suite.tenantID, first.EntryID, "bursar")
	var invalid *apperrors.InvalidStatusError
	suite.Require().True(errors.As(err, &invalid))
	suite.Equal(string(domain.Posted), invalid.Current)

	suite.True(suite.balance("1130").Equal(amount("1000")))
	suite.True(suite.balance("4100").Equal(amount("1000")))
}

func (suite *LedgerIntegrationTestSuite) TestConcurrentPostAppliesOnce() {
	draft, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.entry(day(3, 5), "1110", "4100", "300"))
	suite.Require().NoError(err)

	const workers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.svc.Journal.PostEntry(suite.ctx, suite.tenantID, draft.EntryID, "bursar")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperrors.ErrInvalidStatus):
				conflicts++
			}
		}()
	}
	wg.Wait()

	suite.Equal(1, successes)
	suite.Equal(workers-1, conflicts)
	suite.True(suite.balance("1110").Equal(amount("300")))
}

func (suite *LedgerIntegrationTestSuite) TestReversalNetsToZero() {
	original, err := suite.svc.Journal.CreateAndPostEntry(suite.ctx, suite.entry(day(3, 10), "1130", "4100", "1000"))
	suite.Require().NoError(err)

	reversal, err := suite.svc.Journal.ReverseEntry(suite.ctx, suite.tenantID, original.EntryID, "bursar", "billed twice")
	suite.Require().NoError(err)
	suite.Equal(domain.Posted, reversal.Status)
	suite.Equal(domain.RefReversal, reversal.ReferenceType)
	suite.Equal(original.EntryID, *reversal.ReferenceID)
	suite.True(reversal.EntryDate.Equal(day(3, 20)))
	suite.Equal("Reversal of "+original.EntryNumber+": billed twice", reversal.Description)

	reloaded, err := suite.svc.Journal.GetEntryByID(suite.ctx, suite.tenantID, original.EntryID)
	suite.Require().NoError(err)
	suite.Equal(domain.Reversed, reloaded.Status)
	suite.Require().NotNil(reloaded.ReversedBy)
	suite.Equal(reversal.EntryID, *reloaded.ReversedBy)

	suite.True(suite.balance("1130").IsZero())
	suite.True(suite.balance("4100").IsZero())

	_, err = suite.svc.Journal.ReverseEntry(suite.ctx, suite.tenantID, original.EntryID, "bursar", "")
	suite.ErrorIs(err, apperrors.ErrAlreadyReversed)
}

func (suite *LedgerIntegrationTestSuite) TestPeriodCloseAndGate() {
	march, err := suite.svc.FiscalPeriod.CreatePeriod(suite.ctx, suite.tenantID, portssvc.NewFiscalPeriod{
		Name: "March 2024", StartDate: day(3, 1), EndDate: day(3, 31),
	}, "bursar")
	suite.Require().NoError(err)

	_, err = suite.svc.FiscalPeriod.CreatePeriod(suite.ctx, suite.tenantID, portssvc.NewFiscalPeriod{
		StartDate: day(3, 31), EndDate: day(4, 30),
	}, "bursar")
	suite.ErrorIs(err, apperrors.ErrDuplicate, "periods may not overlap")

	posted, err := suite.svc.Journal.CreateAndPostEntry(suite.ctx, suite.entry(day(3, 12), "1110", "4100", "500"))
	suite.Require().NoError(err)
	suite.Require().NotNil(posted.FiscalPeriodID)
	suite.Equal(march.PeriodID, *posted.FiscalPeriodID)

	draft, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.entry(day(3, 15), "1110", "4100", "75"))
	suite.Require().NoError(err)

	_, err = suite.svc.FiscalPeriod.ClosePeriod(suite.ctx, suite.tenantID, march.PeriodID, "principal")
	var open *apperrors.OpenEntriesError
	suite.Require().True(errors.As(err, &open))
	suite.Equal(1, open.Count)

	_, err = suite.svc.Journal.PostEntry(suite.ctx, suite.tenantID, draft.EntryID, "bursar")
	suite.Require().NoError(err)

	closed, err := suite.svc.FiscalPeriod.ClosePeriod(suite.ctx, suite.tenantID, march.PeriodID, "principal")
	suite.Require().NoError(err)
	suite.Equal(domain.PeriodClosed, closed.Status)

	_, err = suite.svc.FiscalPeriod.ClosePeriod(suite.ctx, suite.tenantID, march.PeriodID, "principal")
	suite.ErrorIs(err, apperrors.ErrAlreadyClosed)

	_, err = suite.svc.Journal.CreateEntry(suite.ctx, suite.entry(day(3, 18), "1110", "4100", "10"))
	suite.ErrorIs(err, apperrors.ErrPeriodClosed)

	// Reversals are dated today, which falls inside the closed period.
	_, err = suite.svc.Journal.ReverseEntry(suite.ctx, suite.tenantID, posted.EntryID, "bursar", "")
	suite.ErrorIs(err, apperrors.ErrPeriodClosed)

	reloaded, err := suite.svc.Journal.GetEntryByID(suite.ctx, suite.tenantID, posted.EntryID)
	suite.Require().NoError(err)
	suite.Equal(domain.Posted, reloaded.Status)

	found, err := suite.svc.FiscalPeriod.PeriodForDate(suite.ctx, suite.tenantID, day(3, 31))
	suite.Require().NoError(err)
	suite.Require().NotNil(found)
	suite.Equal(march.PeriodID, found.PeriodID)

	none, err := suite.svc.FiscalPeriod.PeriodForDate(suite.ctx, suite.tenantID, day(4, 1))
	suite.Require().NoError(err)
	suite.Nil(none)

	// Dates outside every period stay unrestricted.
	_, err = suite.svc.Journal.CreateAndPostEntry(suite.ctx, suite.entry(day(4, 2), "1110", "4100", "10"))
	suite.NoError(err)
}

func (suite *LedgerIntegrationTestSuite) TestAccountLedgerPagination() {
	for _, e := range []domain.NewEntry{
		suite.entry(day(3, 1), "1110", "4100", "100"),
		suite.entry(day(3, 2), "1110", "3100", "200"),
		suite.entry(day(3, 3), "5100", "1110", "50"),
	} {
		_, err := suite.svc.Journal.CreateAndPostEntry(suite.ctx, e)
		suite.Require().NoError(err)
	}

	first, err := suite.svc.Reporting.AccountLedger(suite.ctx, suite.tenantID, suite.id("1110"), domain.LedgerQuery{Limit: 2})
	suite.Require().NoError(err)
	suite.Require().Len(first.Transactions, 2)
	suite.True(first.OpeningBalance.IsZero())
	suite.True(first.Transactions[0].RunningBalance.Equal(amount("100")))
	suite.True(first.Transactions[1].RunningBalance.Equal(amount("300")))
	suite.True(first.HasMore)

	second, err := suite.svc.Reporting.AccountLedger(suite.ctx, suite.tenantID, suite.id("1110"), domain.LedgerQuery{Limit: 2, Offset: 2})
	suite.Require().NoError(err)
	suite.Require().Len(second.Transactions, 1)
	suite.True(second.OpeningBalance.Equal(amount("300")))
	suite.True(second.RunningBalance.Equal(amount("250")))
	suite.False(second.HasMore)

	start := day(3, 2)
	windowed, err := suite.svc.Reporting.AccountLedger(suite.ctx, suite.tenantID, suite.id("1110"), domain.LedgerQuery{StartDate: &start})
	suite.Require().NoError(err)
	suite.Len(windowed.Transactions, 2)
	suite.True(windowed.RunningBalance.Equal(amount("150")))

	check, err := suite.svc.Reporting.VerifyAccountBalance(suite.ctx, suite.tenantID, suite.id("1110"))
	suite.Require().NoError(err)
	suite.True(check.Matches)
	suite.True(check.StoredBalance.Equal(amount("250")))
}

func (suite *LedgerIntegrationTestSuite) TestFinancialStatementsBalance() {
	for _, e := range []domain.NewEntry{
		suite.entry(day(1, 5), "1110", "3100", "5000"),
		suite.entry(day(2, 10), "1110", "4100", "1000"),
		suite.entry(day(3, 1), "5100", "1110", "400"),
	} {
		_, err := suite.svc.Journal.CreateAndPostEntry(suite.ctx, e)
		suite.Require().NoError(err)
	}
	_, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.entry(day(3, 2), "5100", "1110", "999"))
	suite.Require().NoError(err)

	tb, err := suite.svc.Reporting.TrialBalance(suite.ctx, suite.tenantID)
	suite.Require().NoError(err)
	suite.True(tb.IsBalanced)
	suite.True(tb.TotalDebit.Equal(amount("6000")))
	suite.True(tb.TotalCredit.Equal(amount("6000")))

	q1, err := suite.svc.Reporting.IncomeStatement(suite.ctx, suite.tenantID, day(1, 1), day(3, 31))
	suite.Require().NoError(err)
	suite.True(q1.TotalRevenue.Equal(amount("1000")))
	suite.True(q1.TotalExpenses.Equal(amount("400")), "drafts are excluded")
	suite.True(q1.NetIncome.Equal(amount("600")))

	feb, err := suite.svc.Reporting.IncomeStatement(suite.ctx, suite.tenantID, day(2, 1), day(2, 29))
	suite.Require().NoError(err)
	suite.True(feb.NetIncome.Equal(amount("1000")))

	bs, err := suite.svc.Reporting.BalanceSheet(suite.ctx, suite.tenantID, day(3, 31))
	suite.Require().NoError(err)
	suite.True(bs.IsBalanced)
	suite.True(bs.TotalAssets.Equal(amount("5600")))
	suite.True(bs.UnclosedEarnings.Equal(amount("600")))
	suite.True(bs.TotalEquity.Equal(amount("5600")))

	early, err := suite.svc.Reporting.BalanceSheet(suite.ctx, suite.tenantID, day(1, 31))
	suite.Require().NoError(err)
	suite.True(early.IsBalanced)
	suite.True(early.TotalAssets.Equal(amount("5000")))
}

func (suite *LedgerIntegrationTestSuite) TestListEntriesCursor() {
	for i := 1; i <= 3; i++ {
		_, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.entry(day(3, i), "1110", "4100", "10"))
		suite.Require().NoError(err)
	}

	page, next, err := suite.svc.Journal.ListEntries(suite.ctx, suite.tenantID, domain.ListEntriesParams{Limit: 2})
	suite.Require().NoError(err)
	suite.Len(page, 2)
	suite.Require().NotNil(next)
	suite.True(page[0].EntryDate.Equal(day(3, 3)), "newest first")

	rest, next, err := suite.svc.Journal.ListEntries(suite.ctx, suite.tenantID, domain.ListEntriesParams{Limit: 2, NextToken: next})
	suite.Require().NoError(err)
	suite.Len(rest, 1)
	suite.Nil(next)
	suite.NotEqual(page[1].EntryID, rest[0].EntryID)

	posted, _, err := suite.svc.Journal.ListEntries(suite.ctx, suite.tenantID, domain.ListEntriesParams{Status: domain.Posted})
	suite.Require().NoError(err)
	suite.Empty(posted)
}

func (suite *LedgerIntegrationTestSuite) TestChartApplyIsIdempotent() {
	c, err := chart.Default()
	suite.Require().NoError(err)

	res, err := chart.Apply(suite.ctx, suite.svc.Account, suite.tenantID, "seed", c)
	suite.Require().NoError(err)
	suite.Empty(res.Created)
	suite.Len(res.Existing, len(c.Accounts))

	_, err = suite.svc.Account.CreateAccount(suite.ctx, suite.tenantID, portssvc.NewAccount{
		Code: "1110", Name: "Petty Cash", AccountType: domain.Asset,
	}, "bursar")
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *LedgerIntegrationTestSuite) TestDeactivatedAccountRejectsNewEntries() {
	suite.Require().NoError(suite.svc.Account.DeactivateAccount(suite.ctx, suite.tenantID, suite.id("5100"), "bursar"))

	_, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.entry(day(3, 4), "5100", "1110", "20"))
	suite.ErrorIs(err, apperrors.ErrValidation)

	active, err := suite.svc.Account.ListAccounts(suite.ctx, suite.tenantID, false)
	suite.Require().NoError(err)
	all, err := suite.svc.Account.ListAccounts(suite.ctx, suite.tenantID, true)
	suite.Require().NoError(err)
	suite.Len(active, len(all)-1)
}

func (suite *LedgerIntegrationTestSuite) TestReverseEntryOnDeactivatedAccount() {
	original, err := suite.svc.Journal.CreateAndPostEntry(suite.ctx, suite.entry(day(3, 6), "5100", "1110", "50"))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.svc.Account.DeactivateAccount(suite.ctx, suite.tenantID, suite.id("5100"), "bursar"))

	reversal, err := suite.svc.Journal.ReverseEntry(suite.ctx, suite.tenantID, original.EntryID, "bursar", "posted to the wrong account")
	suite.Require().NoError(err)
	suite.Equal(domain.Posted, reversal.Status)

	suite.True(suite.balance("5100").IsZero())
	suite.True(suite.balance("1110").IsZero())
}

func (suite *LedgerIntegrationTestSuite) TestTrialBalanceKeepsDeactivatedAccountsWithActivity() {
	_, err := suite.svc.Journal.CreateAndPostEntry(suite.ctx, suite.entry(day(3, 6), "5100", "1110", "50"))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.svc.Account.DeactivateAccount(suite.ctx, suite.tenantID, suite.id("5100"), "bursar"))
	suite.Require().NoError(suite.svc.Account.DeactivateAccount(suite.ctx, suite.tenantID, suite.id("5200"), "bursar"))

	tb, err := suite.svc.Reporting.TrialBalance(suite.ctx, suite.tenantID)
	suite.Require().NoError(err)
	suite.True(tb.IsBalanced)
	suite.True(tb.TotalDebit.Equal(amount("50")))
	suite.True(tb.TotalCredit.Equal(amount("50")))

	codes := make([]string, 0, len(tb.Accounts))
	for _, row := range tb.Accounts {
		codes = append(codes, row.Code)
	}
	suite.Contains(codes, "5100")
	suite.NotContains(codes, "5200", "deactivated accounts without postings drop out")
}

func (suite *LedgerIntegrationTestSuite) TestTrialBalance_AssetsFundedByLiabilityAndEquity() {
	_, err := suite.svc.Journal.CreateAndPostEntry(suite.ctx, domain.NewEntry{
		TenantID:    suite.tenantID,
		EntryDate:   day(3, 1),
		Description: "Opening balances",
		CreatedBy:   "bursar",
		Lines: []domain.NewEntryLine{
			{AccountID: suite.id("1110"), Debit: amount("100"), Credit: decimal.Zero},
			{AccountID: suite.id("2110"), Debit: decimal.Zero, Credit: amount("40")},
			{AccountID: suite.id("3100"), Debit: decimal.Zero, Credit: amount("60")},
		},
	})
	suite.Require().NoError(err)

	tb, err := suite.svc.Reporting.TrialBalance(suite.ctx, suite.tenantID)
	suite.Require().NoError(err)
	suite.True(tb.TotalDebit.Equal(amount("100")))
	suite.True(tb.TotalCredit.Equal(amount("100")))
	suite.True(tb.IsBalanced)
}

func (suite *LedgerIntegrationTestSuite) TestRejectedCreateConsumesNoNumber() {
	unbalanced := suite.entry(day(3, 8), "1130", "4100", "100")
	unbalanced.Lines[1].Credit = amount("90")

	_, err := suite.svc.Journal.CreateEntry(suite.ctx, unbalanced)
	var ub *apperrors.UnbalancedError
	suite.Require().True(errors.As(err, &ub))
	suite.True(ub.TotalDebit.Equal(amount("100")))
	suite.True(ub.TotalCredit.Equal(amount("90")))

	entry, err := suite.svc.Journal.CreateEntry(suite.ctx, suite.entry(day(3, 8), "1130", "4100", "100"))
	suite.Require().NoError(err)
	suite.Equal("JE-2024-0001", entry.EntryNumber)
}

func TestLedgerIntegration(t *testing.T) {
	suite.Run(t, new(LedgerIntegrationTestSuite))
}
