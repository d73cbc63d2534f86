package services

import (
	"context"
	"time"

	"github.com/SscSPs/school_ledger/internal/core/domain"
)

// NewFiscalPeriod describes a period to open.
type NewFiscalPeriod struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

// FiscalPeriodSvc manages the date-range locks that gate ledger mutations.
type FiscalPeriodSvc interface {
	// CreatePeriod opens a new period. Overlapping an existing period is a duplicate.
	CreatePeriod(ctx context.Context, tenantID string, req NewFiscalPeriod, userID string) (*domain.FiscalPeriod, error)

	// GetPeriod retrieves a period by id.
	GetPeriod(ctx context.Context, tenantID, periodID string) (*domain.FiscalPeriod, error)

	// ListPeriods lists all periods of a tenant.
	ListPeriods(ctx context.Context, tenantID string) ([]domain.FiscalPeriod, error)

	// PeriodForDate returns the period covering date; nil means unrestricted.
	PeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error)

	// ClosePeriod closes an OPEN period that has no DRAFT entries.
	ClosePeriod(ctx context.Context, tenantID, periodID, userID string) (*domain.FiscalPeriod, error)
}
