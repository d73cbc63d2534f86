package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SscSPs/school_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

const postedStatuses = `('POSTED', 'REVERSED')`

// ReportingRepository reads posted ledger state. Amounts are stored as text,
// so every sum is done in Go with decimal arithmetic.
type ReportingRepository struct {
	BaseRepository
}

func newReportingRepository(db *sql.DB) *ReportingRepository {
	return &ReportingRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.ReportingRepository = (*ReportingRepository)(nil)

func (r *ReportingRepository) ListTrialBalanceAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE tenant_id = ? AND (is_active OR EXISTS (
			SELECT 1 FROM journal_entry_lines l
			JOIN journal_entries e ON e.entry_id = l.entry_id
			WHERE l.account_id = accounts.account_id AND e.status IN ` + postedStatuses + `
		))
		ORDER BY code;`
	return queryAccounts(ctx, r.DB, query, tenantID)
}

func (r *ReportingRepository) SumPostedActivity(ctx context.Context, tenantID string, from *time.Time, to time.Time, types []domain.AccountType) ([]domain.AccountActivity, error) {
	if len(types) == 0 {
		return []domain.AccountActivity{}, nil
	}
	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = string(t)
	}

	args := []any{tenantID, to}
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type, l.debit, l.credit
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.account_id = l.account_id
		WHERE e.tenant_id = ?
			AND e.status IN ` + postedStatuses + `
			AND e.entry_date <= ?`
	if from != nil {
		query += ` AND e.entry_date >= ?`
		args = append(args, *from)
	}
	query += ` AND a.account_type IN (` + placeholders(len(typeNames)) + `) ORDER BY a.code;`
	args = append(args, stringArgs(typeNames)...)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying posted activity: %w", err)
	}
	defer rows.Close()

	result := []domain.AccountActivity{}
	index := map[string]int{}
	for rows.Next() {
		var a domain.AccountActivity
		var accountType string
		var debit, credit decimal.Decimal
		if err := rows.Scan(&a.AccountID, &a.Code, &a.Name, &accountType, &debit, &credit); err != nil {
			return nil, fmt.Errorf("error scanning posted activity row: %w", err)
		}
		i, ok := index[a.AccountID]
		if !ok {
			a.AccountType = domain.AccountType(accountType)
			a.TotalDebit, a.TotalCredit = decimal.Zero, decimal.Zero
			result = append(result, a)
			i = len(result) - 1
			index[a.AccountID] = i
		}
		result[i].TotalDebit = result[i].TotalDebit.Add(debit)
		result[i].TotalCredit = result[i].TotalCredit.Add(credit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posted activity rows: %w", err)
	}
	return result, nil
}

func (r *ReportingRepository) SumPostedLinesForAccount(ctx context.Context, tenantID, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT l.debit, l.credit
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE e.tenant_id = ? AND l.account_id = ? AND e.status IN `+postedStatuses+`;
	`, tenantID, accountID)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("error summing posted lines for account %s: %w", accountID, err)
	}
	defer rows.Close()
	return sumAmounts(rows)
}

func sumAmounts(rows *sql.Rows) (decimal.Decimal, decimal.Decimal, error) {
	debitTotal, creditTotal := decimal.Zero, decimal.Zero
	for rows.Next() {
		var debit, credit decimal.Decimal
		if err := rows.Scan(&debit, &credit); err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("error scanning amounts: %w", err)
		}
		debitTotal = debitTotal.Add(debit)
		creditTotal = creditTotal.Add(credit)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("error iterating amounts: %w", err)
	}
	return debitTotal, creditTotal, nil
}

// FindLedgerLines reads the skipped rows and the page inside one read transaction.
func (r *ReportingRepository) FindLedgerLines(ctx context.Context, tenantID, accountID string, query domain.LedgerQuery) (page *domain.LedgerPage, err error) {
	where := `
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE e.tenant_id = ? AND l.account_id = ? AND e.status IN ` + postedStatuses
	args := []any{tenantID, accountID}
	if query.StartDate != nil {
		where += ` AND e.entry_date >= ?`
		args = append(args, *query.StartDate)
	}
	if query.EndDate != nil {
		where += ` AND e.entry_date <= ?`
		args = append(args, *query.EndDate)
	}
	order := ` ORDER BY e.entry_date, e.entry_id, l.line_number`

	tx, err := r.Begin(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() {
		if rbErr := r.Rollback(tx); rbErr != nil && err == nil {
			err = rbErr
		}
	}()

	page = &domain.LedgerPage{Lines: []domain.LedgerLine{}, SkippedDebit: decimal.Zero, SkippedCredit: decimal.Zero}
	if query.Offset > 0 {
		rows, err := tx.QueryContext(ctx, `SELECT l.debit, l.credit`+where+order+` LIMIT ?;`, append(args, query.Offset)...)
		if err != nil {
			return nil, fmt.Errorf("error reading skipped ledger lines: %w", err)
		}
		page.SkippedDebit, page.SkippedCredit, err = sumAmounts(rows)
		rows.Close()
		if err != nil {
			return nil, err
		}
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT l.entry_id, e.entry_number, e.entry_date,
			COALESCE(NULLIF(l.description, ''), e.description), l.line_number, l.debit, l.credit`+
		where+order+` LIMIT ? OFFSET ?;`, append(args, query.Limit+1, query.Offset)...)
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
