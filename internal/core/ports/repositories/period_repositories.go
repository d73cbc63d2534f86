package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/school_ledger/internal/core/domain"
)

// PeriodReader defines read operations for fiscal periods
type PeriodReader interface {
	// FindPeriodByID retrieves a period by id.
	FindPeriodByID(ctx context.Context, tenantID, periodID string) (*domain.FiscalPeriod, error)

	// FindPeriodForDate returns the period covering date, or nil when none does.
	FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error)

	// ListPeriods returns all periods of a tenant ordered by start date.
	ListPeriods(ctx context.Context, tenantID string) ([]domain.FiscalPeriod, error)
}

// PeriodTxRepository holds the fiscal period operations used inside a ledger transaction.
type PeriodTxRepository interface {
	// FindPeriodForDateShared returns the period covering date, holding a shared lock
	// on it so it cannot be closed before the transaction ends. Nil when none covers date.
	FindPeriodForDateShared(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error)

	// FindPeriodByIDForUpdate loads a period and locks it exclusively.
	FindPeriodByIDForUpdate(ctx context.Context, tenantID, periodID string) (*domain.FiscalPeriod, error)

	// LockTenantPeriods serializes period creation for a tenant.
	LockTenantPeriods(ctx context.Context, tenantID string) error

	// CountOverlappingPeriods counts periods sharing at least one day with [start, end].
	CountOverlappingPeriods(ctx context.Context, tenantID string, start, end time.Time) (int, error)

	// SavePeriod persists a new period.
	SavePeriod(ctx context.Context, period domain.FiscalPeriod) error

	// MarkPeriodClosed moves an OPEN period to CLOSED, reporting false if it was not OPEN.
	MarkPeriodClosed(ctx context.Context, tenantID, periodID, userID string, at time.Time) (bool, error)
}
