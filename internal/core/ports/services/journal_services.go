package services

import (
	"context"

	"github.com/SscSPs/school_ledger/internal/core/domain"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetEntryByID retrieves an entry with its lines.
	GetEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entries, newest first, and the next page token.
	ListEntries(ctx context.Context, tenantID string, params domain.ListEntriesParams) ([]domain.JournalEntry, *string, error)
}

// JournalWriterSvc defines the journal entry engine.
type JournalWriterSvc interface {
	// CreateEntry validates and persists a balanced DRAFT entry.
	CreateEntry(ctx context.Context, req domain.NewEntry) (*domain.JournalEntry, error)

	// CreateAndPostEntry creates and posts an entry in one transaction.
	CreateAndPostEntry(ctx context.Context, req domain.NewEntry) (*domain.JournalEntry, error)
}

// PostingSvc commits DRAFT entries to account balances.
type PostingSvc interface {
	// PostEntry moves a DRAFT entry to POSTED and applies its balance deltas.
	PostEntry(ctx context.Context, tenantID, entryID, userID string) (*domain.JournalEntry, error)
}

// ReversalSvc counteracts posted entries.
type ReversalSvc interface {
	// ReverseEntry creates and posts the offsetting entry and retires the original.
	// It returns the new reversing entry.
	ReverseEntry(ctx context.Context, tenantID, entryID, userID, reason string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	PostingSvc
	ReversalSvc
}
