package domain

import "time"

// PeriodStatus indicates whether a fiscal period still accepts entries.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
)

// FiscalPeriod is an inclusive date range per tenant that gates ledger mutations.
type FiscalPeriod struct {
	PeriodID  string       `json:"periodID"`
	TenantID  string       `json:"tenantID"`
	Name      string       `json:"name"`
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"`
	Status    PeriodStatus `json:"status"`
	ClosedAt  *time.Time   `json:"closedAt,omitempty"`
	ClosedBy  *string      `json:"closedBy,omitempty"`
	AuditFields
}

// Contains reports whether date falls within the period, comparing calendar days.
func (p FiscalPeriod) Contains(date time.Time) bool {
	d := NormalizeDate(date)
	return !d.Before(NormalizeDate(p.StartDate)) && !d.After(NormalizeDate(p.EndDate))
}

// IsClosed reports whether the period has been closed.
func (p FiscalPeriod) IsClosed() bool {
	return p.Status == PeriodClosed
}
