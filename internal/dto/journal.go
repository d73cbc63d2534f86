package dto

import (
	"time"

	"github.com/SscSPs/school_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateJournalEntryLineRequest is one line of a new journal entry.
// Exactly one of Debit and Credit is normally set; both must be non-negative.
type CreateJournalEntryLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Debit       decimal.Decimal `json:"debit" binding:"decimal_gte0"`
	Credit      decimal.Decimal `json:"credit" binding:"decimal_gte0"`
	Description string          `json:"description" binding:"max=500"`
}

// CreateJournalEntryRequest defines the data needed to create a journal entry.
type CreateJournalEntryRequest struct {
	EntryDate     string                          `json:"entryDate" binding:"omitempty,datetime=2006-01-02"` // Defaults to today
	Description   string                          `json:"description" binding:"required,max=1000"`
	Reference     string                          `json:"reference" binding:"max=255"`
	ReferenceType domain.ReferenceType            `json:"referenceType" binding:"omitempty,oneof=MANUAL INVOICE PAYMENT DISCOUNT REFUND EXPENSE SALARY"`
	ReferenceID   *string                         `json:"referenceID" binding:"omitempty,max=64"`
	Lines         []CreateJournalEntryLineRequest `json:"lines" binding:"dive"`
}

// ToNewEntry converts the request to the domain input of the journal engine.
func (r CreateJournalEntryRequest) ToNewEntry(tenantID, userID string) (domain.NewEntry, error) {
	var entryDate time.Time
	if r.EntryDate != "" {
		d, err := ParseDate("entryDate", r.EntryDate)
		if err != nil {
			return domain.NewEntry{}, err
		}
		entryDate = d
	}

	lines := make([]domain.NewEntryLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.NewEntryLine{
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return domain.NewEntry{
		TenantID:      tenantID,
		EntryDate:     entryDate,
		Description:   r.Description,
		Reference:     r.Reference,
		ReferenceType: r.ReferenceType,
		ReferenceID:   r.ReferenceID,
		CreatedBy:     userID,
		Lines:         lines,
	}, nil
}

// CreateJournalEntryParams are the query parameters of the create endpoint.
type CreateJournalEntryParams struct {
	Post bool `form:"post"`
}

// ReverseJournalEntryRequest carries the optional reason of a reversal.
type ReverseJournalEntryRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ListJournalEntriesParams defines query parameters for listing journal entries.
type ListJournalEntriesParams struct {
	Status    domain.EntryStatus `form:"status" binding:"omitempty,oneof=DRAFT POSTED REVERSED"`
	Limit     int                `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken *string            `form:"nextToken"`
}

// JournalEntryLineResponse defines the data returned for a journal entry line.
type JournalEntryLineResponse struct {
	LineID      string          `json:"lineID"`
	AccountID   string          `json:"accountID"`
	LineNumber  int             `json:"lineNumber"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID        string                     `json:"entryID"`
	EntryNumber    string                     `json:"entryNumber"`
	EntryDate      string                     `json:"entryDate"`
	Description    string                     `json:"description"`
	Reference      string                     `json:"reference,omitempty"`
	ReferenceType  domain.ReferenceType       `json:"referenceType"`
	ReferenceID    *string                    `json:"referenceID,omitempty"`
	FiscalPeriodID *string                    `json:"fiscalPeriodID,omitempty"`
	Status         domain.EntryStatus         `json:"status"`
	TotalDebit     decimal.Decimal            `json:"totalDebit"`
	TotalCredit    decimal.Decimal            `json:"totalCredit"`
	PostedAt       *time.Time                 `json:"postedAt,omitempty"`
	PostedBy       *string                    `json:"postedBy,omitempty"`
	ReversedBy     *string                    `json:"reversedBy,omitempty"`
	ReversedAt     *time.Time                 `json:"reversedAt,omitempty"`
	CreatedAt      time.Time                  `json:"createdAt"`
	CreatedBy      string                     `json:"createdBy"`
	LastUpdatedAt  time.Time                  `json:"lastUpdatedAt"`
	LastUpdatedBy  string                     `json:"lastUpdatedBy"`
	Lines          []JournalEntryLineResponse `json:"lines,omitempty"`
}

// ListJournalEntriesResponse is a page of entry headers.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		EntryID:        e.EntryID,
		EntryNumber:    e.EntryNumber,
		EntryDate:      formatDate(e.EntryDate),
		Description:    e.Description,
		Reference:      e.Reference,
		ReferenceType:  e.ReferenceType,
		ReferenceID:    e.ReferenceID,
		FiscalPeriodID: e.FiscalPeriodID,
		Status:         e.Status,
		TotalDebit:     e.TotalDebit,
		TotalCredit:    e.TotalCredit,
		PostedAt:       e.PostedAt,
		PostedBy:       e.PostedBy,
		ReversedBy:     e.ReversedBy,
		ReversedAt:     e.ReversedAt,
		CreatedAt:      e.CreatedAt,
		CreatedBy:      e.CreatedBy,
		LastUpdatedAt:  e.LastUpdatedAt,
		LastUpdatedBy:  e.LastUpdatedBy,
	}
	if len(e.Lines) > 0 {
		resp.Lines = make([]JournalEntryLineResponse, len(e.Lines))
		for i, l := range e.Lines {
			resp.Lines[i] = JournalEntryLineResponse{
				LineID:      l.LineID,
				AccountID:   l.AccountID,
				LineNumber:  l.LineNumber,
				Debit:       l.Debit,
				Credit:      l.Credit,
				Description: l.Description,
			}
		}
	}
	return resp
}

// ToListJournalEntriesResponse converts a page of entries.
func ToListJournalEntriesResponse(entries []domain.JournalEntry, nextToken *string) ListJournalEntriesResponse {
	resp := ListJournalEntriesResponse{Entries: make([]JournalEntryResponse, len(entries)), NextToken: nextToken}
	for i := range entries {
		resp.Entries[i] = ToJournalEntryResponse(&entries[i])
	}
	return resp
}
