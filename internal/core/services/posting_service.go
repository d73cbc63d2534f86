package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/school_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
)

// PostEntry moves a DRAFT entry to POSTED and applies its balance deltas in one transaction.
// A second call for the same entry fails with InvalidStatus and changes nothing.
func (s *journalService) PostEntry(ctx context.Context, tenantID, entryID, userID string) (entry *domain.JournalEntry, err error) {
	ctx, end := s.startSpan(ctx, "ledger.PostEntry")
	defer func() { end(err) }()

	err = s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		posted, err := s.postEntryInTx(ctx, tx, tenantID, entryID, userID)
		if err != nil {
			return err
		}
		entry = posted
		return nil
	})
	if err != nil {
		s.logMutationFailure(ctx, err, "Failed to post journal entry",
			slog.String("tenant_id", tenantID),
			slog.String("entry_id", entryID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.String("entry_number", entry.EntryNumber),
		slog.String("posted_by", userID))
	return entry, nil
}
