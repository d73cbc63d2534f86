package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/school_ledger/internal/apperrors"
	"github.com/SscSPs/school_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/school_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	accountRepo   portsrepo.AccountReader
	periodRepo    portsrepo.PeriodReader
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.ReportingRepository, accountRepo portsrepo.AccountReader, periodRepo portsrepo.PeriodReader, opts ...ServiceOption) portssvc.ReportingService {
	return &reportingService{
		BaseService:   newBaseService(opts),
		reportingRepo: repo,
		accountRepo:   accountRepo,
		periodRepo:    periodRepo,
	}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// TrialBalance places each active account's stored balance in the column of its normal side.
func (s *reportingService) TrialBalance(ctx context.Context, tenantID string) (*domain.TrialBalanceReport, error) {
	accounts, err := s.reportingRepo.ListTrialBalanceAccounts(ctx, tenantID)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve trial balance data",
			slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}

	report := &domain.TrialBalanceReport{
		Accounts:    make([]domain.TrialBalanceRow, 0, len(accounts)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, acc := range accounts {
		row := domain.TrialBalanceRow{
			AccountID:   acc.AccountID,
			Code:        acc.Code,
			AccountName: acc.Name,
			AccountType: acc.AccountType,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}
		if acc.AccountType.NormalSide() == domain.DebitSide {
			row.Debit = acc.Balance
		} else {
			row.Credit = acc.Balance
		}
		report.TotalDebit = report.TotalDebit.Add(row.Debit)
		report.TotalCredit = report.TotalCredit.Add(row.Credit)
		report.Accounts = append(report.Accounts, row)
	}
	report.IsBalanced = domain.AmountsBalance(report.TotalDebit, report.TotalCredit)

	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.String("tenant_id", tenantID),
		slog.Int("row_count", len(report.Accounts)),
		slog.Bool("is_balanced", report.IsBalanced))
	return report, nil
}

// IncomeStatement reports revenue and expense activity for entries dated within [from, to].
func (s *reportingService) IncomeStatement(ctx context.Context, tenantID string, from, to time.Time) (*domain.IncomeStatementReport, error) {
	from, to = domain.NormalizeDate(from), domain.NormalizeDate(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: 'to' date precedes 'from' date", apperrors.ErrValidation)
	}

	activity, err := s.reportingRepo.SumPostedActivity(ctx, tenantID, &from, to, []domain.AccountType{domain.Revenue, domain.Expense})
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve income statement data",
			slog.String("tenant_id", tenantID),
			slog.String("from", from.Format(time.DateOnly)),
			slog.String("to", to.Format(time.DateOnly)))
		return nil, fmt.Errorf("failed to retrieve income statement data: %w", err)
	}

	grouped := groupActivity(activity)
	report := &domain.IncomeStatementReport{
		From:     from,
		To:       to,
		Revenues: grouped[domain.Revenue].rows,
		Expenses: grouped[domain.Expense].rows,
	}
	report.TotalRevenue = grouped[domain.Revenue].total
	report.TotalExpenses = grouped[domain.Expense].total
	report.NetIncome = report.TotalRevenue.Sub(report.TotalExpenses)

	s.LogInfo(ctx, "Income statement generated successfully",
		slog.String("tenant_id", tenantID),
		slog.Int("revenue_accounts", len(report.Revenues)),
		slog.Int("expense_accounts", len(report.Expenses)))
	return report, nil
}

// IncomeStatementForPeriod reports over the date range of a fiscal period.
func (s *reportingService) IncomeStatementForPeriod(ctx context.Context, tenantID, periodID string) (*domain.IncomeStatementReport, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	return s.IncomeStatement(ctx, tenantID, period.StartDate, period.EndDate)
}

// BalanceSheet sums posted activity since inception up to and including asOf.
// Revenue less expenses not yet closed to equity is reported as UnclosedEarnings
// and counted in TotalEquity.
func (s *reportingService) BalanceSheet(ctx context.Context, tenantID string, asOf time.Time) (*domain.BalanceSheetReport, error) {
	asOf = domain.NormalizeDate(asOf)
	activity, err := s.reportingRepo.SumPostedActivity(ctx, tenantID, nil, asOf, domain.AllAccountTypes)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve balance sheet data",
			slog.String("tenant_id", tenantID),
			slog.String("asOf", asOf.Format(time.DateOnly)))
		return nil, fmt.Errorf("failed to retrieve balance sheet data: %w", err)
	}

	grouped := groupActivity(activity)
	unclosed := grouped[domain.Revenue].total.Sub(grouped[domain.Expense].total)
	report := &domain.BalanceSheetReport{
		AsOf:             asOf,
		Assets:           grouped[domain.Asset].rows,
		Liabilities:      grouped[domain.Liability].rows,
		Equity:           grouped[domain.Equity].rows,
		TotalAssets:      grouped[domain.Asset].total,
		TotalLiabilities: grouped[domain.Liability].total,
		UnclosedEarnings: unclosed,
		TotalEquity:      grouped[domain.Equity].total.Add(unclosed),
	}
	report.IsBalanced = domain.AmountsBalance(report.TotalAssets, report.TotalLiabilities.Add(report.TotalEquity))

	s.LogInfo(ctx, "Balance sheet report generated successfully",
		slog.String("tenant_id", tenantID),
		slog.String("asOf", asOf.Format(time.DateOnly)),
		slog.Bool("is_balanced", report.IsBalanced))
	return report, nil
}

// AccountLedger returns one page of an account's posted lines with a running balance
// seeded at zero at the start of the requested window.
func (s *reportingService) AccountLedger(ctx context.Context, tenantID, accountID string, query domain.LedgerQuery) (*domain.AccountLedgerReport, error) {
	if query.StartDate != nil && query.EndDate != nil && query.EndDate.Before(*query.StartDate) {
		return nil, fmt.Errorf("%w: endDate precedes startDate", apperrors.ErrValidation)
	}
	if query.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", apperrors.ErrValidation)
	}
	if query.Limit <= 0 {
		query.Limit = s.opts.defaultPageSize
	}
	if query.Limit > s.opts.maxPageSize {
		query.Limit = s.opts.maxPageSize
	}
	if query.StartDate != nil {
		d := domain.NormalizeDate(*query.StartDate)
		query.StartDate = &d
	}
	if query.EndDate != nil {
		d := domain.NormalizeDate(*query.EndDate)
		query.EndDate = &d
	}

	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	page, err := s.reportingRepo.FindLedgerLines(ctx, tenantID, accountID, query)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve account ledger",
			slog.String("tenant_id", tenantID),
			slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to retrieve account ledger: %w", err)
	}

	opening := account.AccountType.Delta(page.SkippedDebit, page.SkippedCredit)
	running := opening
	lines := make([]domain.LedgerLine, len(page.Lines))
	for i, line := range page.Lines {
		running = running.Add(account.AccountType.Delta(line.Debit, line.Credit))
		line.RunningBalance = running
		lines[i] = line
	}

	return &domain.AccountLedgerReport{
		Account:        *account,
		Transactions:   lines,
		OpeningBalance: opening,
		RunningBalance: running,
		Limit:          query.Limit,
		Offset:         query.Offset,
		HasMore:        page.HasMore,
	}, nil
}

// VerifyAccountBalance recomputes a balance from posted lines and compares it
// with the stored running balance.
func (s *reportingService) VerifyAccountBalance(ctx context.Context, tenantID, accountID string) (*domain.BalanceVerification, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	debit, credit, err := s.reportingRepo.SumPostedLinesForAccount(ctx, tenantID, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum posted lines", slog.String("account_id", accountID))
		return nil, err
	}

	computed := account.AccountType.Delta(debit, credit)
	result := &domain.BalanceVerification{
		AccountID:       accountID,
		StoredBalance:   account.Balance,
		ComputedBalance: computed,
		Matches:         account.Balance.Equal(computed),
	}
	if !result.Matches {
		s.GetLogger(ctx).Error("Stored account balance diverges from posted lines",
			slog.String("account_id", accountID),
			slog.String("stored", account.Balance.String()),
			slog.String("computed", computed.String()))
	}
	return result, nil
}

type activityGroup struct {
	rows  []domain.AccountAmount
	total decimal.Decimal
}

// groupActivity converts per-account debit/credit totals into normal-side amounts
// grouped by account type. Every type is present in the result.
func groupActivity(activity []domain.AccountActivity) map[domain.AccountType]activityGroup {
	groups := make(map[domain.AccountType]activityGroup, len(domain.AllAccountTypes))
	for _, t := range domain.AllAccountTypes {
		groups[t] = activityGroup{rows: []domain.AccountAmount{}, total: decimal.Zero}
	}
	for _, a := range activity {
		g, ok := groups[a.AccountType]
		if !ok {
			continue
		}
		net := a.AccountType.Delta(a.TotalDebit, a.TotalCredit)
		g.rows = append(g.rows, domain.AccountAmount{
			AccountID: a.AccountID,
			Code:      a.Code,
			Name:      a.Name,
			NetAmount: net,
		})
		g.total = g.total.Add(net)
		groups[a.AccountType] = g
	}
	return groups
}
