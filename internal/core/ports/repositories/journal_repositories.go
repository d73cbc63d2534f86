package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/school_ledger/internal/core/domain"
)

// JournalReader defines read operations for journal entries outside a transaction
type JournalReader interface {
	// FindEntryByID retrieves an entry together with its lines.
	FindEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves entries (without lines) newest first, using cursor pagination.
	// It returns the page and the token of the next page, if any.
	ListEntries(ctx context.Context, tenantID string, params domain.ListEntriesParams) ([]domain.JournalEntry, *string, error)
}

// JournalTxRepository holds the journal operations used inside a ledger transaction.
type JournalTxRepository interface {
	// NextEntrySequence increments and returns the entry counter for tenant and year.
	// The counter row stays locked until the transaction ends.
	NextEntrySequence(ctx context.Context, tenantID string, year int) (int, error)

	// InsertEntry persists the entry header and all of its lines.
	InsertEntry(ctx context.Context, entry domain.JournalEntry) error

	// FindEntryForUpdate loads an entry with its lines and locks the header row.
	FindEntryForUpdate(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error)

	// MarkEntryPosted moves a DRAFT entry to POSTED. It reports false when the
	// entry was no longer DRAFT.
	MarkEntryPosted(ctx context.Context, tenantID, entryID, userID string, at time.Time) (bool, error)

	// MarkEntryReversed moves a POSTED, not yet reversed entry to REVERSED. It
	// reports false when that precondition no longer held.
	MarkEntryReversed(ctx context.Context, tenantID, entryID, reversingEntryID, userID string, at time.Time) (bool, error)

	// CountEntriesInPeriod counts entries of the given status assigned to a fiscal period,
	// including unassigned entries dated within it.
	CountEntriesInPeriod(ctx context.Context, tenantID, periodID string, status domain.EntryStatus) (int, error)
}
