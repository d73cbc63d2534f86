package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/school_ledger/internal/apperrors"
	"github.com/SscSPs/school_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
)

// ReverseEntry creates an offsetting entry dated today, posts it and marks the
// original REVERSED. All three steps share one transaction.
func (s *journalService) ReverseEntry(ctx context.Context, tenantID, entryID, userID, reason string) (reversal *domain.JournalEntry, err error) {
	ctx, end := s.startSpan(ctx, "ledger.ReverseEntry")
	defer func() { end(err) }()

	err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		original, err := tx.FindEntryForUpdate(ctx, tenantID, entryID)
		if err != nil {
			return err
		}
		if original.ReversedBy != nil {
			return fmt.Errorf("%w: %s by %s", apperrors.ErrAlreadyReversed, original.EntryNumber, *original.ReversedBy)
		}
		if !original.Status.CanTransitionTo(domain.Reversed) {
			return &apperrors.InvalidStatusError{Current: string(original.Status)}
		}

		today := domain.NormalizeDate(s.Now())
		if _, err := s.gatePeriod(ctx, tx, tenantID, today); err != nil {
			return err
		}

		lines := make([]domain.NewEntryLine, len(original.Lines))
		for i, l := range original.Lines {
			lines[i] = domain.NewEntryLine{
				AccountID:   l.AccountID,
				Debit:       l.Credit,
				Credit:      l.Debit,
				Description: l.Description,
			}
		}

		originalID := original.EntryID
		draft, err := s.createEntryInTx(ctx, tx, domain.NewEntry{
			TenantID:      tenantID,
			EntryDate:     today,
			Description:   reversalDescription(original.EntryNumber, reason),
			Reference:     original.EntryNumber,
			ReferenceType: domain.RefReversal,
			ReferenceID:   &originalID,
			CreatedBy:     userID,
			Lines:         lines,
		}, true)
		if err != nil {
			return err
		}

		posted, err := s.postEntryInTx(ctx, tx, tenantID, draft.EntryID, userID)
		if err != nil {
			return err
		}

		swapped, err := tx.MarkEntryReversed(ctx, tenantID, original.EntryID, posted.EntryID, userID, s.Now())
		if err != nil {
			return fmt.Errorf("failed to mark entry reversed: %w", err)
		}
		if !swapped {
			return &apperrors.InvalidStatusError{Current: string(original.Status)}
		}

		reversal = posted
		return nil
	})
	if err != nil {
		s.logMutationFailure(ctx, err, "Failed to reverse journal entry",
			slog.String("tenant_id", tenantID),
			slog.String("entry_id", entryID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("entry_id", entryID),
		slog.String("reversal_entry_id", reversal.EntryID),
		slog.String("reversal_entry_number", reversal.EntryNumber))
	return reversal, nil
}

func reversalDescription(entryNumber, reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "Reversal of " + entryNumber
	}
	return fmt.Sprintf("Reversal of %s: %s", entryNumber, reason)
}
