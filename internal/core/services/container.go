package services

import (
	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/school_ledger/internal/core/ports/services"
)

// NewContainer creates the service container from a repository provider.
// The same options are applied to every service.
func NewContainer(repos *portsrepo.RepositoryProvider, opts ...ServiceOption) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account:      NewAccountService(repos.AccountRepo, opts...),
		FiscalPeriod: NewFiscalPeriodService(repos.PeriodRepo, repos.TxManager, opts...),
		Journal:      NewJournalService(repos.JournalRepo, repos.TxManager, opts...),
		Reporting:    NewReportingService(repos.ReportingRepo, repos.AccountRepo, repos.PeriodRepo, opts...),
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade = (*accountService)(nil)
	_ portssvc.JournalSvcFacade = (*journalService)(nil)
	_ portssvc.FiscalPeriodSvc  = (*fiscalPeriodService)(nil)
	_ portssvc.ReportingService = (*reportingService)(nil)
)
