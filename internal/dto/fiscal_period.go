package dto

import (
	"time"

	"github.com/SscSPs/school_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/school_ledger/internal/core/ports/services"
)

// CreateFiscalPeriodRequest defines the data needed to open a fiscal period.
type CreateFiscalPeriodRequest struct {
	Name      string `json:"name" binding:"max=255"`
	StartDate string `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" binding:"required,datetime=2006-01-02"`
}

// ToNewFiscalPeriod parses the request dates.
func (r CreateFiscalPeriodRequest) ToNewFiscalPeriod() (portssvc.NewFiscalPeriod, error) {
	start, err := ParseDate("startDate", r.StartDate)
	if err != nil {
		return portssvc.NewFiscalPeriod{}, err
	}
	end, err := ParseDate("endDate", r.EndDate)
	if err != nil {
		return portssvc.NewFiscalPeriod{}, err
	}
	return portssvc.NewFiscalPeriod{Name: r.Name, StartDate: start, EndDate: end}, nil
}

// FiscalPeriodLookupParams selects the period covering a date.
type FiscalPeriodLookupParams struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

// FiscalPeriodResponse defines the data returned for a fiscal period.
type FiscalPeriodResponse struct {
	PeriodID      string              `json:"periodID"`
	Name          string              `json:"name"`
	StartDate     string              `json:"startDate"`
	EndDate       string              `json:"endDate"`
	Status        domain.PeriodStatus `json:"status"`
	ClosedAt      *time.Time          `json:"closedAt,omitempty"`
	ClosedBy      *string             `json:"closedBy,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	CreatedBy     string              `json:"createdBy"`
	LastUpdatedAt time.Time           `json:"lastUpdatedAt"`
	LastUpdatedBy string              `json:"lastUpdatedBy"`
}

// ListFiscalPeriodsResponse wraps a list of periods.
type ListFiscalPeriodsResponse struct {
	Periods []FiscalPeriodResponse `json:"periods"`
}

// ToFiscalPeriodResponse converts a domain.FiscalPeriod.
func ToFiscalPeriodResponse(p *domain.FiscalPeriod) FiscalPeriodResponse {
	return FiscalPeriodResponse{
		PeriodID:      p.PeriodID,
		Name:          p.Name,
		StartDate:     formatDate(p.StartDate),
		EndDate:       formatDate(p.EndDate),
		Status:        p.Status,
		ClosedAt:      p.ClosedAt,
		ClosedBy:      p.ClosedBy,
		CreatedAt:     p.CreatedAt,
		CreatedBy:     p.CreatedBy,
		LastUpdatedAt: p.LastUpdatedAt,
		LastUpdatedBy: p.LastUpdatedBy,
	}
}

// ToListFiscalPeriodsResponse converts a slice of periods.
func ToListFiscalPeriodsResponse(periods []domain.FiscalPeriod) ListFiscalPeriodsResponse {
	resp := ListFiscalPeriodsResponse{Periods: make([]FiscalPeriodResponse, len(periods))}
	for i := range periods {
		resp.Periods[i] = ToFiscalPeriodResponse(&periods[i])
	}
	return resp
}
