package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/school_ledger/internal/apperrors"
	"github.com/SscSPs/school_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/school_ledger/internal/core/ports/services"
)

const (
	defaultEntryListLimit = 20
	maxEntryListLimit     = 100
)

// journalService provides the journal entry, posting and reversal engines.
type journalService struct {
	BaseService
	journalRepo portsrepo.JournalReader
	txManager   portsrepo.TransactionManager
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalReader, txManager portsrepo.TransactionManager, opts ...ServiceOption) portssvc.JournalSvcFacade {
	return &journalService{
		BaseService: newBaseService(opts),
		journalRepo: journalRepo,
		txManager:   txManager,
	}
}

// Ensure journalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// CreateEntry validates and persists a DRAFT journal entry with its lines.
func (s *journalService) CreateEntry(ctx context.Context, req domain.NewEntry) (*domain.JournalEntry, error) {
	if err := validateNewEntry(req); err != nil {
		s.LogWarn(ctx, err, "Journal entry rejected",
			slog.String("tenant_id", req.TenantID),
			slog.Int("line_count", len(req.Lines)))
		return nil, err
	}

	var created *domain.JournalEntry
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		entry, err := s.createEntryInTx(ctx, tx, req, false)
		if err != nil {
			return err
		}
		created = entry
		return nil
	})
	if err != nil {
		s.logMutationFailure(ctx, err, "Failed to create journal entry", slog.String("tenant_id", req.TenantID))
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry created",
		slog.String("entry_id", created.EntryID),
		slog.String("entry_number", created.EntryNumber),
		slog.String("tenant_id", created.TenantID))
	return created, nil
}

// CreateAndPostEntry creates and posts an entry atomically. Integration hooks use it
// after resolving their account codes.
func (s *journalService) CreateAndPostEntry(ctx context.Context, req domain.NewEntry) (*domain.JournalEntry, error) {
	if err := validateNewEntry(req); err != nil {
		s.LogWarn(ctx, err, "Journal entry rejected",
			slog.String("tenant_id", req.TenantID),
			slog.String("reference_type", string(req.ReferenceType)))
		return nil, err
	}

	var posted *domain.JournalEntry
	err := s.txManager.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		draft, err := s.createEntryInTx(ctx, tx, req, false)
		if err != nil {
			return err
		}
		posted, err = s.postEntryInTx(ctx, tx, req.TenantID, draft.EntryID, req.CreatedBy)
		return err
	})
	if err != nil {
		s.logMutationFailure(ctx, err, "Failed to create and post journal entry",
			slog.String("tenant_id", req.TenantID),
			slog.String("reference_type", string(req.ReferenceType)))
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry created and posted",
		slog.String("entry_id", posted.EntryID),
		slog.String("entry_number", posted.EntryNumber))
	return posted, nil
}

// GetEntryByID retrieves an entry with its lines.
func (s *journalService) GetEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, tenantID, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal entry",
				slog.String("entry_id", entryID))
		}
		return nil, err
	}
	return entry, nil
}

// ListEntries returns a page of entries, newest first.
func (s *journalService) ListEntries(ctx context.Context, tenantID string, params domain.ListEntriesParams) ([]domain.JournalEntry, *string, error) {
	if params.Status != "" && !params.Status.IsValid() {
		return nil, nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrValidation, params.Status)
	}
	if params.Limit <= 0 {
		params.Limit = defaultEntryListLimit
	}
	if params.Limit > maxEntryListLimit {
		params.Limit = maxEntryListLimit
	}

	entries, next, err := s.journalRepo.ListEntries(ctx, tenantID, params)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to list journal entries",
				slog.String("tenant_id", tenantID))
		}
		return nil, nil, err
	}
	if entries == nil {
		entries = []domain.JournalEntry{}
	}
	return entries, next, nil
}

// logMutationFailure logs expected ledger rejections as warnings and everything else as errors.
func (s *journalService) logMutationFailure(ctx context.Context, err error, msg string, keyvals ...any) {
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrNotFound):
		s.LogWarn(ctx, err, msg, keyvals...)
	default:
		s.LogError(ctx, err, msg, keyvals...)
	}
}
