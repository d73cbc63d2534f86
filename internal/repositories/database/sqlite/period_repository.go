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
)

const periodColumns = `period_id, tenant_id, name, start_date, end_date, status, closed_at, closed_by,
	created_at, created_by, last_updated_at, last_updated_by`

// PeriodRepository implements the fiscal period reader on SQLite.
type PeriodRepository struct {
	BaseRepository
}

func newPeriodRepository(db *sql.DB) *PeriodRepository {
	return &PeriodRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.PeriodReader = (*PeriodRepository)(nil)

func scanPeriod(row scanner) (domain.FiscalPeriod, error) {
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

func periodByID(ctx context.Context, q querier, tenantID, periodID string) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods WHERE tenant_id = ? AND period_id = ?;`
	p, err := scanPeriod(q.QueryRowContext(ctx, query, tenantID, periodID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("fiscal period", periodID)
		}
		return nil, fmt.Errorf("failed to find fiscal period %s: %w", periodID, err)
	}
	return &p, nil
}

func periodForDate(ctx context.Context, q querier, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + `
		FROM fiscal_periods
		WHERE tenant_id = ? AND start_date <= ? AND end_date >= ?
		ORDER BY start_date
		LIMIT 1;`
	p, err := scanPeriod(q.QueryRowContext(ctx, query, tenantID, date, date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find fiscal period for %s: %w", date.Format(time.DateOnly), err)
	}
	return &p, nil
}

func (r *PeriodRepository) FindPeriodByID(ctx context.Context, tenantID, periodID string) (*domain.FiscalPeriod, error) {
	return periodByID(ctx, r.DB, tenantID, periodID)
}

func (r *PeriodRepository) FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	return periodForDate(ctx, r.DB, tenantID, date)
}

func (r *PeriodRepository) ListPeriods(ctx context.Context, tenantID string) ([]domain.FiscalPeriod, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+periodColumns+` FROM fiscal_periods WHERE tenant_id = ? ORDER BY start_date;`, tenantID)
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

func (t *ledgerTx) FindPeriodForDateShared(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	return periodForDate(ctx, t.tx, tenantID, date)
}

func (t *ledgerTx) FindPeriodByIDForUpdate(ctx context.Context, tenantID, periodID string) (*domain.FiscalPeriod, error) {
	return periodByID(ctx, t.tx, tenantID, periodID)
}

// LockTenantPeriods is a no-op: the transaction already holds the only connection.
func (t *ledgerTx) LockTenantPeriods(context.Context, string) error {
	return nil
}

func (t *ledgerTx) CountOverlappingPeriods(ctx context.Context, tenantID string, start, end time.Time) (int, error) {
	var count int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fiscal_periods WHERE tenant_id = ? AND start_date <= ? AND end_date >= ?;`,
		tenantID, end, start).Scan(&count)
	if err != nil {
		return 0, txError("failed to count overlapping periods", err)
	}
	return count, nil
}

func (t *ledgerTx) SavePeriod(ctx context.Context, period domain.FiscalPeriod) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO fiscal_periods (period_id, tenant_id, name, start_date, end_date, status,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
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
	res, err := t.tx.ExecContext(ctx, `
		UPDATE fiscal_periods
		SET status = 'CLOSED', closed_at = ?, closed_by = ?, last_updated_at = ?, last_updated_by = ?
		WHERE tenant_id = ? AND period_id = ? AND status = 'OPEN';
	`, at, userID, at, userID, tenantID, periodID)
	if err != nil {
		return false, txError("failed to close fiscal period", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, txError("failed to read rows affected", err)
	}
	return n == 1, nil
}
