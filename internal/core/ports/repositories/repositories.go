package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// Both database adapters build one of these.
type RepositoryProvider struct {
	AccountRepo   AccountRepositoryFacade
	JournalRepo   JournalReader
	PeriodRepo    PeriodReader
	ReportingRepo ReportingRepository
	TxManager     TransactionManager
}
