package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/school_ledger/internal/apperrors"
	"github.com/SscSPs/school_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// validateNewEntry runs every check that needs no database access.
func validateNewEntry(req domain.NewEntry) error {
	if len(req.Lines) < 2 {
		return apperrors.ErrTooFewLines
	}
	if strings.TrimSpace(req.TenantID) == "" {
		return fmt.Errorf("%w: tenant is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("%w: journal entry description is required", apperrors.ErrValidation)
	}

	for i, line := range req.Lines {
		if line.AccountID == "" {
			return fmt.Errorf("%w: line %d has no account", apperrors.ErrValidation, i+1)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d has a negative amount", apperrors.ErrValidation, i+1)
		}
		if line.Debit.IsZero() && line.Credit.IsZero() {
			return fmt.Errorf("%w: line %d has neither a debit nor a credit", apperrors.ErrValidation, i+1)
		}
	}

	totalDebit, totalCredit := newLineTotals(req.Lines)
	if !domain.AmountsBalance(totalDebit, totalCredit) {
		return &apperrors.UnbalancedError{TotalDebit: totalDebit, TotalCredit: totalCredit}
	}
	return nil
}

func newLineTotals(lines []domain.NewEntryLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// gatePeriod resolves the fiscal period for date under a shared lock and rejects
// closed periods. A nil id with a nil error means the date is unrestricted.
func (s *BaseService) gatePeriod(ctx context.Context, tx portsrepo.LedgerTx, tenantID string, date time.Time) (*string, error) {
	period, err := tx.FindPeriodForDateShared(ctx, tenantID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve fiscal period: %w", err)
	}
	if period == nil {
		if s.opts.requireFiscalPeriod {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrNoFiscalPeriod, date.Format("2006-01-02"))
		}
		return nil, nil
	}
	if period.IsClosed() {
		return nil, fmt.Errorf("%w: %s (%s)", apperrors.ErrPeriodClosed, period.Name, date.Format("2006-01-02"))
	}
	id := period.PeriodID
	return &id, nil
}

// createEntryInTx persists a validated request as a DRAFT entry. Inactive
// accounts are rejected unless allowInactive is set. Reversals set it so they
// can offset the accounts of the original entry.
func (s *BaseService) createEntryInTx(ctx context.Context, tx portsrepo.LedgerTx, req domain.NewEntry, allowInactive bool) (*domain.JournalEntry, error) {
	if err := validateNewEntry(req); err != nil {
		return nil, err
	}

	now := s.Now()
	entryDate := domain.NormalizeDate(req.EntryDate)
	if req.EntryDate.IsZero() {
		entryDate = domain.NormalizeDate(now)
	}

	accountIDs := make([]string, 0, len(req.Lines))
	for _, l := range req.Lines {
		accountIDs = append(accountIDs, l.AccountID)
	}
	accounts, err := tx.FindAccountsByIDs(ctx, req.TenantID, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	for _, id := range accountIDs {
		acc, ok := accounts[id]
		if !ok {
			return nil, apperrors.NewNotFoundError("account " + id + " not found")
		}
		if !acc.IsActive && !allowInactive {
			return nil, fmt.Errorf("%w: account %s (%s) is inactive", apperrors.ErrValidation, acc.Code, id)
		}
	}

	periodID, err := s.gatePeriod(ctx, tx, req.TenantID, entryDate)
	if err != nil {
		return nil, err
	}

	seq, err := tx.NextEntrySequence(ctx, req.TenantID, entryDate.Year())
	if err != nil {
		return nil, fmt.Errorf("failed to allocate entry number: %w", err)
	}

	refType := req.ReferenceType
	if refType == "" {
		refType = domain.RefManual
	}

	entryID := uuid.NewString()
	lines := make([]domain.JournalEntryLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = domain.JournalEntryLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
			LineNumber:  i + 1,
		}
	}
	totalDebit, totalCredit := domain.LineTotals(lines)

	entry := domain.JournalEntry{
		EntryID:        entryID,
		TenantID:       req.TenantID,
		EntryNumber:    domain.FormatEntryNumber(entryDate.Year(), seq),
		EntryDate:      entryDate,
		Description:    strings.TrimSpace(req.Description),
		Reference:      req.Reference,
		ReferenceType:  refType,
		ReferenceID:    req.ReferenceID,
		FiscalPeriodID: periodID,
		Status:         domain.Draft,
		TotalDebit:     totalDebit,
		TotalCredit:    totalCredit,
		Lines:          lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     req.CreatedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: req.CreatedBy,
		},
	}

	if err := tx.InsertEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return &entry, nil
}

// postEntryInTx commits a DRAFT entry: it re-checks balance and period, applies
// normal-side deltas to every touched account and swaps the status to POSTED.
func (s *BaseService) postEntryInTx(ctx context.Context, tx portsrepo.LedgerTx, tenantID, entryID, userID string) (*domain.JournalEntry, error) {
	entry, err := tx.FindEntryForUpdate(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	if !entry.Status.CanTransitionTo(domain.Posted) {
		return nil, &apperrors.InvalidStatusError{Current: string(entry.Status)}
	}
	if len(entry.Lines) < 2 {
		return nil, apperrors.ErrTooFewLines
	}
	totalDebit, totalCredit := domain.LineTotals(entry.Lines)
	if !domain.AmountsBalance(totalDebit, totalCredit) {
		return nil, &apperrors.UnbalancedError{TotalDebit: totalDebit, TotalCredit: totalCredit}
	}
	if _, err := s.gatePeriod(ctx, tx, tenantID, entry.EntryDate); err != nil {
		return nil, err
	}

	accounts, err := tx.FindAccountsByIDsForUpdate(ctx, tenantID, entry.AccountIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}

	deltas := make(map[string]decimal.Decimal, len(accounts))
	for _, line := range entry.Lines {
		acc, ok := accounts[line.AccountID]
		if !ok {
			return nil, apperrors.NewNotFoundError("account " + line.AccountID + " not found")
		}
		deltas[line.AccountID] = deltas[line.AccountID].Add(acc.AccountType.Delta(line.Debit, line.Credit))
	}

	now := s.Now()
	if err := tx.ApplyBalanceDeltas(ctx, deltas, userID, now); err != nil {
		return nil, fmt.Errorf("failed to update account balances: %w", err)
	}

	swapped, err := tx.MarkEntryPosted(ctx, tenantID, entryID, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark entry posted: %w", err)
	}
	if !swapped {
		// Lost the swap; returning an error rolls the deltas back with the transaction.
		current, err := tx.FindEntryForUpdate(ctx, tenantID, entryID)
		if err != nil {
			return nil, err
		}
		return nil, &apperrors.InvalidStatusError{Current: string(current.Status)}
	}

	entry.Status = domain.Posted
	entry.PostedAt = &now
	entry.PostedBy = &userID
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = userID
	return entry, nil
}
