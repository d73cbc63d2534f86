package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/school_ledger/internal/apperrors"
	"github.com/SscSPs/school_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/school_ledger/internal/utils/pagination"
)

const entryColumns = `entry_id, tenant_id, entry_number, entry_date, description, reference, reference_type,
	reference_id, fiscal_period_id, status, total_debit, total_credit,
	posted_at, posted_by, reversed_by, reversed_at,
	created_at, created_by, last_updated_at, last_updated_by`

// JournalRepository implements the journal reader on SQLite.
type JournalRepository struct {
	BaseRepository
}

func newJournalRepository(db *sql.DB) *JournalRepository {
	return &JournalRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.JournalReader = (*JournalRepository)(nil)

func scanEntry(row scanner) (domain.JournalEntry, error) {
	var e domain.JournalEntry
	var refType, status string
	err := row.Scan(
		&e.EntryID, &e.TenantID, &e.EntryNumber, &e.EntryDate, &e.Description, &e.Reference, &refType,
		&e.ReferenceID, &e.FiscalPeriodID, &status, &e.TotalDebit, &e.TotalCredit,
		&e.PostedAt, &e.PostedBy, &e.ReversedBy, &e.ReversedAt,
		&e.CreatedAt, &e.CreatedBy, &e.LastUpdatedAt, &e.LastUpdatedBy,
	)
	e.ReferenceType = domain.ReferenceType(refType)
	e.Status = domain.EntryStatus(status)
	e.EntryDate = e.EntryDate.UTC()
	return e, err
}

func loadEntry(ctx context.Context, q querier, tenantID, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = ? AND entry_id = ?;`
	entry, err := scanEntry(q.QueryRowContext(ctx, query, tenantID, entryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("journal entry", entryID)
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT line_id, entry_id, account_id, debit, credit, description, line_number
		FROM journal_entry_lines
		WHERE entry_id = ?
		ORDER BY line_number;
	`, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines of journal entry %s: %w", entryID, err)
	}
	defer rows.Close()

	entry.Lines = []domain.JournalEntryLine{}
	for rows.Next() {
		var l domain.JournalEntryLine
		if err := rows.Scan(&l.LineID, &l.EntryID, &l.AccountID, &l.Debit, &l.Credit, &l.Description, &l.LineNumber); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry line: %w", err)
		}
		entry.Lines = append(entry.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entry lines: %w", err)
	}
	return &entry, nil
}

func (r *JournalRepository) FindEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	return loadEntry(ctx, r.DB, tenantID, entryID)
}

// ListEntries lists entry headers newest first, keyed on (entry_date, entry_id).
func (r *JournalRepository) ListEntries(ctx context.Context, tenantID string, params domain.ListEntriesParams) ([]domain.JournalEntry, *string, error) {
	limit := params.Limit
	args := []any{tenantID}
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = ?`
	if params.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(params.Status))
	}
	if params.NextToken != nil && *params.NextToken != "" {
		lastDate, lastID, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		query += ` AND (entry_date < ? OR (entry_date = ? AND entry_id < ?))`
		args = append(args, lastDate, lastDate, lastID)
	}
	query += ` ORDER BY entry_date DESC, entry_id DESC LIMIT ?;`
	args = append(args, limit+1)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journal entries for tenant "+tenantID, err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0, limit+1)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan journal entry row", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating journal entry rows", err)
	}

	var nextToken *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.EntryID)
		nextToken = &token
		entries = entries[:limit]
	}
	return entries, nextToken, nil
}

func (t *ledgerTx) NextEntrySequence(ctx context.Context, tenantID string, year int) (int, error) {
	query := `
		INSERT INTO journal_entry_sequences (tenant_id, year, last_value)
		VALUES (?, ?, 1)
		ON CONFLICT (tenant_id, year) DO UPDATE
		SET last_value = journal_entry_sequences.last_value + 1
		RETURNING last_value;
	`
	var next int
	if err := t.tx.QueryRowContext(ctx, query, tenantID, year).Scan(&next); err != nil {
		return 0, txError("failed to allocate entry sequence", err)
	}
	return next, nil
}

func (t *ledgerTx) InsertEntry(ctx context.Context, entry domain.JournalEntry) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO journal_entries (entry_id, tenant_id, entry_number, entry_date, description, reference,
			reference_type, reference_id, fiscal_period_id, status, total_debit, total_credit,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		entry.EntryID, entry.TenantID, entry.EntryNumber, entry.EntryDate, entry.Description, entry.Reference,
		string(entry.ReferenceType), entry.ReferenceID, entry.FiscalPeriodID, string(entry.Status),
		entry.TotalDebit.String(), entry.TotalCredit.String(),
		entry.CreatedAt, entry.CreatedBy, entry.LastUpdatedAt, entry.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: entry number %s already exists", apperrors.ErrDuplicate, entry.EntryNumber)
		}
		return txError("failed to insert journal entry header", err)
	}

	stmt, err := t.tx.PrepareContext(ctx, `
		INSERT INTO journal_entry_lines (line_id, entry_id, account_id, debit, credit, description, line_number)
		VALUES (?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return txError("failed to prepare journal line insert", err)
	}
	defer stmt.Close()

	for _, l := range entry.Lines {
		if _, err := stmt.ExecContext(ctx, l.LineID, entry.EntryID, l.AccountID, l.Debit.String(), l.Credit.String(), l.Description, l.LineNumber); err != nil {
			return txError(fmt.Sprintf("failed to insert journal entry line %d", l.LineNumber), err)
		}
	}
	return nil
}

// FindEntryForUpdate loads the entry inside the transaction, which already serializes writers.
func (t *ledgerTx) FindEntryForUpdate(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	return loadEntry(ctx, t.tx, tenantID, entryID)
}

func (t *ledgerTx) MarkEntryPosted(ctx context.Context, tenantID, entryID, userID string, at time.Time) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE journal_entries
		SET status = 'POSTED', posted_at = ?, posted_by = ?, last_updated_at = ?, last_updated_by = ?
		WHERE tenant_id = ? AND entry_id = ? AND status = 'DRAFT';
	`, at, userID, at, userID, tenantID, entryID)
	if err != nil {
		return false, txError("failed to mark entry posted", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, txError("failed to read rows affected", err)
	}
	return n == 1, nil
}

func (t *ledgerTx) MarkEntryReversed(ctx context.Context, tenantID, entryID, reversingEntryID, userID string, at time.Time) (bool, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE journal_entries
		SET status = 'REVERSED', reversed_by = ?, reversed_at = ?, last_updated_at = ?, last_updated_by = ?
		WHERE tenant_id = ? AND entry_id = ? AND status = 'POSTED' AND reversed_by IS NULL;
	`, reversingEntryID, at, at, userID, tenantID, entryID)
	if err != nil {
		return false, txError("failed to mark entry reversed", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, txError("failed to read rows affected", err)
	}
	return n == 1, nil
}

func (t *ledgerTx) CountEntriesInPeriod(ctx context.Context, tenantID, periodID string, status domain.EntryStatus) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM journal_entries e
		JOIN fiscal_periods p ON p.period_id = ? AND p.tenant_id = e.tenant_id
		WHERE e.tenant_id = ? AND e.status = ?
			AND (e.fiscal_period_id = p.period_id
				OR (e.fiscal_period_id IS NULL AND e.entry_date BETWEEN p.start_date AND p.end_date));
	`
	var count int
	if err := t.tx.QueryRowContext(ctx, query, periodID, tenantID, string(status)).Scan(&count); err != nil {
		return 0, txError("failed to count entries in period", err)
	}
	return count, nil
}
