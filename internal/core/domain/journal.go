package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Draft    EntryStatus = "DRAFT"
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// IsValid reports whether s is a known status.
func (s EntryStatus) IsValid() bool {
	switch s {
	case Draft, Posted, Reversed:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is a legal one-step transition.
// The lifecycle is strictly DRAFT -> POSTED -> REVERSED.
func (s EntryStatus) CanTransitionTo(next EntryStatus) bool {
	switch s {
	case Draft:
		return next == Posted
	case Posted:
		return next == Reversed
	}
	return false
}

// ReferenceType links an entry back to the business event that produced it.
type ReferenceType string

const (
	RefManual   ReferenceType = "MANUAL"
	RefReversal ReferenceType = "REVERSAL"
	RefInvoice  ReferenceType = "INVOICE"
	RefPayment  ReferenceType = "PAYMENT"
	RefDiscount ReferenceType = "DISCOUNT"
	RefRefund   ReferenceType = "REFUND"
	RefExpense  ReferenceType = "EXPENSE"
	RefSalary   ReferenceType = "SALARY"
)

// JournalEntry is one balanced financial transaction made of two or more lines.
type JournalEntry struct {
	EntryID        string          `json:"entryID"`
	TenantID       string          `json:"tenantID"`
	EntryNumber    string          `json:"entryNumber"` // JE-2024-0007
	EntryDate      time.Time       `json:"entryDate"`
	Description    string          `json:"description"`
	Reference      string          `json:"reference,omitempty"`
	ReferenceType  ReferenceType   `json:"referenceType"`
	ReferenceID    *string         `json:"referenceID,omitempty"`
	FiscalPeriodID *string         `json:"fiscalPeriodID,omitempty"`
	Status         EntryStatus     `json:"status"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	PostedAt       *time.Time      `json:"postedAt,omitempty"`
	PostedBy       *string         `json:"postedBy,omitempty"`
	ReversedBy     *string         `json:"reversedBy,omitempty"` // ID of the reversing entry
	ReversedAt     *time.Time      `json:"reversedAt,omitempty"`
	AuditFields

	Lines []JournalEntryLine `json:"lines,omitempty"`
}

// JournalEntryLine is one debit or credit row of an entry.
type JournalEntryLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	AccountID   string          `json:"accountID"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
	LineNumber  int             `json:"lineNumber"`
}

// LineTotals sums the debit and credit columns of lines.
func LineTotals(lines []JournalEntryLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// IsBalanced reports whether the entry's lines balance within BalanceTolerance.
func (e JournalEntry) IsBalanced() bool {
	d, c := LineTotals(e.Lines)
	return AmountsBalance(d, c)
}

// AccountIDs returns the distinct account ids referenced by lines, in first-seen order.
func (e JournalEntry) AccountIDs() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	ids := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}

// FormatEntryNumber renders the human readable number for a tenant+year sequence value.
func FormatEntryNumber(year, seq int) string {
	return fmt.Sprintf("JE-%d-%04d", year, seq)
}

// NewEntryLine is one requested line of a new journal entry.
type NewEntryLine struct {
	AccountID   string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// NewEntry describes a journal entry to be created.
type NewEntry struct {
	TenantID      string
	EntryDate     time.Time
	Description   string
	Reference     string
	ReferenceType ReferenceType
	ReferenceID   *string
	CreatedBy     string
	Lines         []NewEntryLine
}

// ListEntriesParams filters and paginates journal entry listings.
type ListEntriesParams struct {
	Status    EntryStatus // Empty means any status
	Limit     int
	NextToken *string
}
