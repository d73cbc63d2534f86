package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/school_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, tenantID string, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, tenantID, accountID, userID string, now time.Time) error {
	args := m.Called(ctx, tenantID, accountID, userID, now)
	return args.Error(0)
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

// MockJournalRepository is a mock type for the JournalReader interface
type MockJournalRepository struct {
	mock.Mock
}

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) ListEntries(ctx context.Context, tenantID string, params domain.ListEntriesParams) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, tenantID, params)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.JournalEntry), next, args.Error(2)
}

var _ portsrepo.JournalReader = (*MockJournalRepository)(nil)

// MockPeriodRepository is a mock type for the PeriodReader interface
type MockPeriodRepository struct {
	mock.Mock
}

func (m *MockPeriodRepository) FindPeriodByID(ctx context.Context, tenantID, periodID string) (*domain.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodForDate(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalPeriod), args.Error(1)
}

func (m *MockPeriodRepository) ListPeriods(ctx context.Context, tenantID string) ([]domain.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FiscalPeriod), args.Error(1)
}

var _ portsrepo.PeriodReader = (*MockPeriodRepository)(nil)

// MockReportingRepository is a mock type for the ReportingRepository interface
type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) ListTrialBalanceAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockReportingRepository) SumPostedActivity(ctx context.Context, tenantID string, from *time.Time, to time.Time, types []domain.AccountType) ([]domain.AccountActivity, error) {
	args := m.Called(ctx, tenantID, from, to, types)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountActivity), args.Error(1)
}

func (m *MockReportingRepository) SumPostedLinesForAccount(ctx context.Context, tenantID, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, accountID)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockReportingRepository) FindLedgerLines(ctx context.Context, tenantID, accountID string, query domain.LedgerQuery) (*domain.LedgerPage, error) {
	args := m.Called(ctx, tenantID, accountID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerPage), args.Error(1)
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

// MockLedgerTx is a mock type for the LedgerTx interface
type MockLedgerTx struct {
	mock.Mock
}

func (m *MockLedgerTx) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockLedgerTx) FindAccountsByIDsForUpdate(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockLedgerTx) ApplyBalanceDeltas(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, deltas, userID, now)
	return args.Error(0)
}

func (m *MockLedgerTx) NextEntrySequence(ctx context.Context, tenantID string, year int) (int, error) {
	args := m.Called(ctx, tenantID, year)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerTx) InsertEntry(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerTx) FindEntryForUpdate(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerTx) MarkEntryPosted(ctx context.Context, tenantID, entryID, userID string, at time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, entryID, userID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerTx) MarkEntryReversed(ctx context.Context, tenantID, entryID, reversingEntryID, userID string, at time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, entryID, reversingEntryID, userID, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerTx) CountEntriesInPeriod(ctx context.Context, tenantID, periodID string, status domain.EntryStatus) (int, error) {
	args := m.Called(ctx, tenantID, periodID, status)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerTx) FindPeriodForDateShared(ctx context.Context, tenantID string, date time.Time) (*domain.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalPeriod), args.Error(1)
}

func (m *MockLedgerTx) FindPeriodByIDForUpdate(ctx context.Context, tenantID, periodID string) (*domain.FiscalPeriod, error) {
	args := m.Called(ctx, tenantID, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalPeriod), args.Error(1)
}

func (m *MockLedgerTx) LockTenantPeriods(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockLedgerTx) CountOverlappingPeriods(ctx context.Context, tenantID string, start, end time.Time) (int, error) {
	args := m.Called(ctx, tenantID, start, end)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerTx) SavePeriod(ctx context.Context, period domain.FiscalPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockLedgerTx) MarkPeriodClosed(ctx context.Context, tenantID, periodID, userID string, at time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, periodID, userID, at)
	return args.Bool(0), args.Error(1)
}

var _ portsrepo.LedgerTx = (*MockLedgerTx)(nil)

// MockTxManager runs the unit of work directly against a MockLedgerTx.
type MockTxManager struct {
	Tx *MockLedgerTx
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	return fn(ctx, m.Tx)
}

var _ portsrepo.TransactionManager = (*MockTxManager)(nil)

// fixedClock pins "now" for deterministic audit timestamps.
var fixedNow = time.Date(2024, 3, 20, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }
