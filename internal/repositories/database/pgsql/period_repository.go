package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/school_ledger/internal/apperrors"
	"github.com/SscSPs/school_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const periodColumns = `period_id, tenant_id, name, start_date, end_date, status, closed_at, closed_by,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxPeriodRepository implements the fiscal period reader using pgxpool.
type PgxPeriodRepository struct {
	BaseRepository
}

func newPgxPeriodRepository(pool *pgxpool.Pool) *PgxPeriodRepository {
	return &PgxPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PeriodReader = (*PgxPeriodRepository)(nil)

func scanPeriod(row pgx.Row) (domain.FiscalPeriod, error) {
	var p domain.FiscalPeriod
	var status string
	err := row.Scan(
		&p.PeriodID, &p.TenantID, &p.Name, &p.StartDate, &p.EndDate, &status, &p.ClosedAt, &p.ClosedBy,
		&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy,
	)
	p.Status = domain.PeriodStatus(status)
	p.StartDate = p.StartDate.UTC()
	p.EndDate = p.EndDate.UTC()
	return p, err
}

// periodByID reads one period. ErrNotFound when missing.
func periodByID(ctx context.Context, q querier, tenantID, periodID, lock string) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods WHERE tenant_id = $1 AND period_id = $2 ` + lock + `;`
	p, err := scanPeriod(q.QueryRow(ctx, query, tenantID, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("fiscal period", periodID)
		}
		return nil, fmt.Errorf("failed to find fiscal period %s: %w", periodID, err)
	}
	return &p, nil
}

// periodForDate reads the period covering date. Nil, nil when none does.
func periodForDate(ctx context.Context, q querier, tenantID string, date time.Time, lock string) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + `
		FROM fiscal_periods
		WHERE tenant_id = $1 AND start_date <= $2 AND end_date >= $2
		ORDER BY start_date
		LIMIT 1 ` + lock + `;`
	p, err := scanPeriod(q.QueryRow(ctx, query, tenantID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find fiscal period for %s: %w", date.Format(time.DateOnly), err)
	}
	return &p, nil
}

func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, tenantID, periodID string) (*domain.FiscalPeriod, error) {
	return periodByID(ctx, r.Pool, tenantID, periodID, "")
}

func (r *PgxPeriodRepository) FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	return periodForDate(ctx, r.Pool, tenantID, date, "")
}

func (r *PgxPeriodRepository) ListPeriods(ctx context.Context, tenantID string) ([]domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods WHERE tenant_id = $1 ORDER BY start_date;`
	rows, err := r.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fiscal periods: %w", err)
	}
	defer rows.Close()

	periods := []domain.FiscalPeriod{}
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fiscal period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fiscal periods: %w", err)
	}
	return periods, nil
}

// FindPeriodForDateShared holds FOR SHARE on the period so ClosePeriod, which
// needs FOR UPDATE, waits for this transaction.
func (t *ledgerTx) FindPeriodForDateShared(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	return periodForDate(ctx, t.tx, tenantID, date, "FOR SHARE")
}

func (t *ledgerTx) FindPeriodByIDForUpdate(ctx context.Context, tenantID, periodID string) (*domain.FiscalPeriod, error) {
	return periodByID(ctx, t.tx, tenantID, periodID, "FOR UPDATE")
}

// LockTenantPeriods takes a transaction-scoped advisory lock keyed on the tenant.
func (t *ledgerTx) LockTenantPeriods(ctx context.Context, tenantID string) error {
	if _, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, "fiscal_periods:"+tenantID); err != nil {
		return txError("failed to lock fiscal periods", err)
	}
	return nil
}

func (t *ledgerTx) CountOverlappingPeriods(ctx context.Context, tenantID string, start, end time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM fiscal_periods WHERE tenant_id = $1 AND start_date <= $3 AND end_date >= $2;`
	var count int
	if err := t.tx.QueryRow(ctx, query, tenantID, start, end).Scan(&count); err != nil {
		return 0, txError("failed to count overlapping periods", err)
	}
	return count, nil
}

func (t *ledgerTx) SavePeriod(ctx context.Context, period domain.FiscalPeriod) error {
	query := `
		INSERT INTO fiscal_periods (period_id, tenant_id, name, start_date, end_date, status,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := t.tx.Exec(ctx, query,
		period.PeriodID, period.TenantID, period.Name, period.StartDate, period.EndDate, string(period.Status),
		period.CreatedAt, period.CreatedBy, period.LastUpdatedAt, period.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: fiscal period %s already exists", apperrors.ErrDuplicate, period.Name)
		}
		return txError("failed to save fiscal period", err)
	}
	return nil
}

func (t *ledgerTx) MarkPeriodClosed(ctx context.Context, tenantID, periodID, userID string, at time.Time) (bool, error) {
	query := `
		UPDATE fiscal_periods
		SET status = 'CLOSED', closed_at = $3, closed_by = $4, last_updated_at = $3, last_updated_by = $4
		WHERE tenant_id = $1 AND period_id = $2 AND status = 'OPEN';
	`
	cmdTag, err := t.tx.Exec(ctx, query, tenantID, periodID, at, userID)
	if err != nil {
		return false, txError("failed to close fiscal period", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}
