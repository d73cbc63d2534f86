package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/school_ledger/internal/apperrors"
	"github.com/SscSPs/school_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/school_ledger/internal/core/ports/services"
	"github.com/google/uuid"
)

// fiscalPeriodService implements the fiscal period manager.
type fiscalPeriodService struct {
	BaseService
	periodRepo portsrepo.PeriodReader
	txManager  portsrepo.TransactionManager
}

// NewFiscalPeriodService creates a new FiscalPeriodSvc.
func NewFiscalPeriodService(periodRepo portsrepo.PeriodReader, txManager portsrepo.TransactionManager, opts ...ServiceOption) portssvc.FiscalPeriodSvc {
	return &fiscalPeriodService{
		BaseService: newBaseService(opts),
		periodRepo:  periodRepo,
		txManager:   txManager,
	}
}

var _ portssvc.FiscalPeriodSvc = (*fiscalPeriodService)(nil)

func (s *fiscalPeriodService) CreatePeriod(ctx context.Context, tenantID string, req portssvc.NewFiscalPeriod, userID string) (*domain.FiscalPeriod, error) {
	start := domain.NormalizeDate(req.StartDate)
	end := domain.NormalizeDate(req.EndDate)
	name := strings.TrimSpace(req.Name)
	switch {
	case req.StartDate.IsZero() || req.EndDate.IsZero():
		return nil, fmt.Errorf("%w: start and end dates are required", apperrors.ErrValidation)
	case end.Before(start):
		return nil, fmt.Errorf("%w: end date precedes start date", apperrors.ErrValidation)
	}
	if name == "" {
		name = fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	now := s.Now()
	period := domain.FiscalPeriod{
		PeriodID:  uuid.NewString(),
		TenantID:  tenantID,
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Status:    domain.PeriodOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if err := tx.LockTenantPeriods(ctx, tenantID); err != nil {
			return err
		}
		overlapping, err := tx.CountOverlappingPeriods(ctx, tenantID, start, end)
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return fmt.Errorf("%w: period overlaps %d existing period(s)", apperrors.ErrDuplicate, overlapping)
		}
		return tx.SavePeriod(ctx, period)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogWarn(ctx, err, "Fiscal period rejected", slog.String("tenant_id", tenantID))
		} else {
			s.LogError(ctx, err, "Failed to create fiscal period", slog.String("tenant_id", tenantID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Fiscal period created",
		slog.String("period_id", period.PeriodID),
		slog.String("tenant_id", tenantID),
		slog.String("start", start.Format("2006-01-02")),
		slog.String("end", end.Format("2006-01-02")))
	return &period, nil
}

func (s *fiscalPeriodService) GetPeriod(ctx context.Context, tenantID, periodID string) (*domain.FiscalPeriod, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, tenantID, periodID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find fiscal period", slog.String("period_id", periodID))
		}
		return nil, err
	}
	return period, nil
}

func (s *fiscalPeriodService) ListPeriods(ctx context.Context, tenantID string) ([]domain.FiscalPeriod, error) {
	periods, err := s.periodRepo.ListPeriods(ctx, tenantID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list fiscal periods", slog.String("tenant_id", tenantID))
		return nil, err
	}
	if periods == nil {
		periods = []domain.FiscalPeriod{}
	}
	return periods, nil
}

func (s *fiscalPeriodService) PeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	period, err := s.periodRepo.FindPeriodForDate(ctx, tenantID, domain.NormalizeDate(date))
	if err != nil {
		s.LogError(ctx, err, "Failed to resolve fiscal period for date",
			slog.String("tenant_id", tenantID),
			slog.String("date", date.Format("2006-01-02")))
		return nil, err
	}
	return period, nil
}

// ClosePeriod locks the period row, checks that no DRAFT entry remains in it and
// flips it to CLOSED. Entry creation and posting take a shared lock on the same
// row, so neither can slip a DRAFT entry in between the check and the flip.
func (s *fiscalPeriodService) ClosePeriod(ctx context.Context, tenantID, periodID, userID string) (closed *domain.FiscalPeriod, err error) {
	ctx, end := s.startSpan(ctx, "ledger.ClosePeriod")
	defer func() { end(err) }()

	err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		period, err := tx.FindPeriodByIDForUpdate(ctx, tenantID, periodID)
		if err != nil {
			return err
		}
		if period.IsClosed() {
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyClosed, period.Name)
		}

		drafts, err := tx.CountEntriesInPeriod(ctx, tenantID, periodID, domain.Draft)
		if err != nil {
			return err
		}
		if drafts > 0 {
			return &apperrors.OpenEntriesError{Count: drafts}
		}

		now := s.Now()
		swapped, err := tx.MarkPeriodClosed(ctx, tenantID, periodID, userID, now)
		if err != nil {
			return err
		}
		if !swapped {
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyClosed, period.Name)
		}

		period.Status = domain.PeriodClosed
		period.ClosedAt = &now
		period.ClosedBy = &userID
		period.LastUpdatedAt = now
		period.LastUpdatedBy = userID
		closed = period
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, err, "Fiscal period close rejected",
				slog.String("tenant_id", tenantID),
				slog.String("period_id", periodID))
		} else {
			s.LogError(ctx, err, "Failed to close fiscal period",
				slog.String("tenant_id", tenantID),
				slog.String("period_id", periodID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Fiscal period closed",
		slog.String("period_id", periodID),
		slog.String("closed_by", userID))
	return closed, nil
}
