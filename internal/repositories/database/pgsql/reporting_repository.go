package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/school_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// postedStatuses matches entries whose lines count towards balances.
const postedStatuses = `('POSTED', 'REVERSED')`

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) *reportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// ListTrialBalanceAccounts returns the stored balances used by the trial balance.
// A deactivated account stays listed while it has posted lines.
func (r *reportingRepository) ListTrialBalanceAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE tenant_id = $1 AND (is_active OR EXISTS (
			SELECT 1 FROM journal_entry_lines l
			JOIN journal_entries e ON e.entry_id = l.entry_id
			WHERE l.account_id = accounts.account_id AND e.status IN ` + postedStatuses + `
		))
		ORDER BY code;`
	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("error querying trial balance data: %w", err)
	}
	return collectAccounts(rows)
}

// SumPostedActivity aggregates posted lines per account for entries dated in [from, to].
func (r *reportingRepository) SumPostedActivity(ctx context.Context, tenantID string, from *time.Time, to time.Time, types []domain.AccountType) ([]domain.AccountActivity, error) {
	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = string(t)
	}

	query := `
		SELECT
			a.account_id,
			a.code,
			a.name,
			a.account_type,
			SUM(l.debit) AS total_debit,
			SUM(l.credit) AS total_credit
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.account_id = l.account_id
		WHERE e.tenant_id = $1
			AND e.status IN ` + postedStatuses + `
			AND ($2::date IS NULL OR e.entry_date >= $2::date)
			AND e.entry_date <= $3
			AND a.account_type = ANY($4)
		GROUP BY a.account_id, a.code, a.name, a.account_type
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, from, to, typeNames)
	if err != nil {
		return nil, fmt.Errorf("error querying posted activity: %w", err)
	}
	defer rows.Close()

	result := []domain.AccountActivity{}
	for rows.Next() {
		var row domain.AccountActivity
		var accountType string
		if err := rows.Scan(&row.AccountID, &row.Code, &row.Name, &accountType, &row.TotalDebit, &row.TotalCredit); err != nil {
			return nil, fmt.Errorf("error scanning posted activity row: %w", err)
		}
		row.AccountType = domain.AccountType(accountType)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posted activity rows: %w", err)
	}
	return result, nil
}

// SumPostedLinesForAccount totals every posted line on one account.
func (r *reportingRepository) SumPostedLinesForAccount(ctx context.Context, tenantID, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE e.tenant_id = $1 AND l.account_id = $2 AND e.status IN ` + postedStatuses + `;
	`
	var debit, credit decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, tenantID, accountID).Scan(&debit, &credit); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("error summing posted lines for account %s: %w", accountID, err)
	}
	return debit, credit, nil
}

// ledgerWindow numbers an account's posted lines within the date window.
const ledgerWindow = `
	WITH window_lines AS (
		SELECT
			l.entry_id,
			e.entry_number,
			e.entry_date,
			COALESCE(NULLIF(l.description, ''), e.description) AS description,
			l.line_number,
			l.debit,
			l.credit,
			ROW_NUMBER() OVER (ORDER BY e.entry_date, e.entry_id, l.line_number) AS rn
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE e.tenant_id = $1
			AND l.account_id = $2
			AND e.status IN ` + postedStatuses + `
			AND ($3::date IS NULL OR e.entry_date >= $3::date)
			AND ($4::date IS NULL OR e.entry_date <= $4::date)
	)
`

// FindLedgerLines reads the skipped totals and the page from one snapshot.
func (r *reportingRepository) FindLedgerLines(ctx context.Context, tenantID, accountID string, query domain.LedgerQuery) (page *domain.LedgerPage, err error) {
	tx, err := r.BeginReadOnly(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rbErr := r.Rollback(ctx, tx); rbErr != nil && err == nil {
			err = rbErr
		}
	}()

	page = &domain.LedgerPage{Lines: []domain.LedgerLine{}, SkippedDebit: decimal.Zero, SkippedCredit: decimal.Zero}
	args := []any{tenantID, accountID, query.StartDate, query.EndDate, query.Offset}

	if query.Offset > 0 {
		skippedQuery := ledgerWindow + `SELECT COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0) FROM window_lines WHERE rn <= $5;`
		if err := tx.QueryRow(ctx, skippedQuery, args...).Scan(&page.SkippedDebit, &page.SkippedCredit); err != nil {
			return nil, fmt.Errorf("error summing skipped ledger lines: %w", err)
		}
	}

	pageQuery := ledgerWindow + `
		SELECT entry_id, entry_number, entry_date, description, line_number, debit, credit
		FROM window_lines
		WHERE rn > $5
		ORDER BY rn
		LIMIT $6;
	`
	rows, err := tx.Query(ctx, pageQuery, append(args, query.Limit+1)...)
	if err != nil {
		return nil, fmt.Errorf("error querying ledger lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.LedgerLine
		if err := rows.Scan(&l.EntryID, &l.EntryNumber, &l.EntryDate, &l.Description, &l.LineNumber, &l.Debit, &l.Credit); err != nil {
			return nil, fmt.Errorf("error scanning ledger line: %w", err)
		}
		l.EntryDate = l.EntryDate.UTC()
		page.Lines = append(page.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger lines: %w", err)
	}

	if len(page.Lines) > query.Limit {
		page.HasMore = true
		page.Lines = page.Lines[:query.Limit]
	}
	return page, nil
}
