package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/school_ledger/internal/apperrors"
	"github.com/SscSPs/school_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/school_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `entry_id, tenant_id, entry_number, entry_date, description, reference, reference_type,
	reference_id, fiscal_period_id, status, total_debit, total_credit,
	posted_at, posted_by, reversed_by, reversed_at,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxJournalRepository implements the journal reader using pgxpool.
type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries.
func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalReader = (*PgxJournalRepository)(nil)

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
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

// loadEntry reads an entry header (optionally locked) and its lines through q.
func loadEntry(ctx context.Context, q querier, tenantID, entryID, lock string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = $1 AND entry_id = $2 ` + lock + `;`
	entry, err := scanEntry(q.QueryRow(ctx, query, tenantID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("journal entry", entryID)
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}

	linesQuery := `
		SELECT line_id, entry_id, account_id, debit, credit, description, line_number
		FROM journal_entry_lines
		WHERE entry_id = $1
		ORDER BY line_number;
	`
	rows, err := q.Query(ctx, linesQuery, entryID)
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

// FindEntryByID retrieves an entry together with its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	return loadEntry(ctx, r.Pool, tenantID, entryID, "")
}

// ListEntries lists entry headers newest first using keyset pagination on (entry_date, entry_id).
func (r *PgxJournalRepository) ListEntries(ctx context.Context, tenantID string, params domain.ListEntriesParams) ([]domain.JournalEntry, *string, error) {
	limit := params.Limit
	fetchLimit := limit + 1

	args := []any{tenantID}
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = $1`
	if params.Status != "" {
		args = append(args, string(params.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if params.NextToken != nil && *params.NextToken != "" {
		lastDate, lastID, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		args = append(args, lastDate, lastID)
		query += fmt.Sprintf(` AND (entry_date, entry_id) < ($%d, $%d)`, len(args)-1, len(args))
	}
	args = append(args, fetchLimit)
	query += ` ORDER BY entry_date DESC, entry_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query journal entries for tenant "+tenantID, err)
	}
	defer rows.Close()

	entries := make([]domain.JournalEntry, 0, fetchLimit)
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

// NextEntrySequence bumps the per-tenant, per-year counter. The upsert leaves
// the counter row locked, so concurrent creators get distinct numbers.
func (t *ledgerTx) NextEntrySequence(ctx context.Context, tenantID string, year int) (int, error) {
	query := `
		INSERT INTO journal_entry_sequences (tenant_id, year, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, year) DO UPDATE
		SET last_value = journal_entry_sequences.last_value + 1
		RETURNING last_value;
	`
	var next int
	if err := t.tx.QueryRow(ctx, query, tenantID, year).Scan(&next); err != nil {
		return 0, txError("failed to allocate entry sequence", err)
	}
	return next, nil
}

// InsertEntry writes the header and queues every line in one batch.
func (t *ledgerTx) InsertEntry(ctx context.Context, entry domain.JournalEntry) error {
	headerQuery := `
		INSERT INTO journal_entries (entry_id, tenant_id, entry_number, entry_date, description, reference,
			reference_type, reference_id, fiscal_period_id, status, total_debit, total_credit,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := t.tx.Exec(ctx, headerQuery,
		entry.EntryID, entry.TenantID, entry.EntryNumber, entry.EntryDate, entry.Description, entry.Reference,
		string(entry.ReferenceType), entry.ReferenceID, entry.FiscalPeriodID, string(entry.Status),
		entry.TotalDebit, entry.TotalCredit,
		entry.CreatedAt, entry.CreatedBy, entry.LastUpdatedAt, entry.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: entry number %s already exists", apperrors.ErrDuplicate, entry.EntryNumber)
		}
		return txError("failed to insert journal entry header", err)
	}

	lineQuery := `
		INSERT INTO journal_entry_lines (line_id, entry_id, account_id, debit, credit, description, line_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	batch := &pgx.Batch{}
	for _, l := range entry.Lines {
		batch.Queue(lineQuery, l.LineID, entry.EntryID, l.AccountID, l.Debit, l.Credit, l.Description, l.LineNumber)
	}
	br := t.tx.SendBatch(ctx, batch)
	for i := range entry.Lines {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return txError(fmt.Sprintf("failed to insert journal entry line %d", i+1), err)
		}
	}
	if err := br.Close(); err != nil {
		return txError("failed to close journal line batch", err)
	}
	return nil
}

// FindEntryForUpdate loads an entry and locks its header row.
func (t *ledgerTx) FindEntryForUpdate(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	return loadEntry(ctx, t.tx, tenantID, entryID, "FOR UPDATE")
}

// MarkEntryPosted swaps DRAFT to POSTED.
func (t *ledgerTx) MarkEntryPosted(ctx context.Context, tenantID, entryID, userID string, at time.Time) (bool, error) {
	query := `
		UPDATE journal_entries
		SET status = 'POSTED', posted_at = $3, posted_by = $4, last_updated_at = $3, last_updated_by = $4
		WHERE tenant_id = $1 AND entry_id = $2 AND status = 'DRAFT';
	`
	cmdTag, err := t.tx.Exec(ctx, query, tenantID, entryID, at, userID)
	if err != nil {
		return false, txError("failed to mark entry posted", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

// MarkEntryReversed swaps POSTED to REVERSED and records the reversing entry.
func (t *ledgerTx) MarkEntryReversed(ctx context.Context, tenantID, entryID, reversingEntryID, userID string, at time.Time) (bool, error) {
	query := `
		UPDATE journal_entries
		SET status = 'REVERSED', reversed_by = $3, reversed_at = $4, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND entry_id = $2 AND status = 'POSTED' AND reversed_by IS NULL;
	`
	cmdTag, err := t.tx.Exec(ctx, query, tenantID, entryID, reversingEntryID, at, userID)
	if err != nil {
		return false, txError("failed to mark entry reversed", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

// CountEntriesInPeriod counts entries of one status assigned to a period, plus
// unassigned entries dated inside it (created before the period existed).
func (t *ledgerTx) CountEntriesInPeriod(ctx context.Context, tenantID, periodID string, status domain.EntryStatus) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM journal_entries e
		JOIN fiscal_periods p ON p.period_id = $2 AND p.tenant_id = e.tenant_id
		WHERE e.tenant_id = $1 AND e.status = $3
			AND (e.fiscal_period_id = p.period_id
				OR (e.fiscal_period_id IS NULL AND e.entry_date BETWEEN p.start_date AND p.end_date));
	`
	var count int
	if err := t.tx.QueryRow(ctx, query, tenantID, periodID, string(status)).Scan(&count); err != nil {
		return 0, txError("failed to count entries in period", err)
	}
	return count, nil
}
