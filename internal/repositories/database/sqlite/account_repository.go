package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/school_ledger/internal/apperrors"
	"github.com/SscSPs/school_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, tenant_id, code, name, account_type, balance, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type scanner interface {
	Scan(dest ...any) error
}

// AccountRepository implements the account repository interfaces on SQLite.
type AccountRepository struct {
	BaseRepository
}

func newAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{BaseRepository: BaseRepository{DB: db}}
}

var _ portsrepo.AccountRepositoryFacade = (*AccountRepository)(nil)

func scanAccount(row scanner) (domain.Account, error) {
	var a domain.Account
	var accountType string
	err := row.Scan(
		&a.AccountID, &a.TenantID, &a.Code, &a.Name, &accountType, &a.Balance, &a.IsActive,
		&a.CreatedAt, &a.CreatedBy, &a.LastUpdatedAt, &a.LastUpdatedBy,
	)
	a.AccountType = domain.AccountType(accountType)
	return a, err
}

func queryAccounts(ctx context.Context, q querier, query string, args ...any) ([]domain.Account, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, tenant_id, code, name, account_type, balance, is_active,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err := r.DB.ExecContext(ctx, query,
		account.AccountID, account.TenantID, account.Code, account.Name, string(account.AccountType),
		account.Balance.String(), account.IsActive,
		account.CreatedAt, account.CreatedBy, account.LastUpdatedAt, account.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, account.Code)
		}
		return fmt.Errorf("failed to save account %s: %w", account.Code, err)
	}
	return nil
}

func (r *AccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = ? AND account_id = ?;`
	a, err := scanAccount(r.DB.QueryRowContext(ctx, query, tenantID, accountID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("account", accountID)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return &a, nil
}

func (r *AccountRepository) FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = ? AND code = ?;`
	a, err := scanAccount(r.DB.QueryRowContext(ctx, query, tenantID, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("account with code", code)
		}
		return nil, fmt.Errorf("failed to find account by code %s: %w", code, err)
	}
	return &a, nil
}

func (r *AccountRepository) FindAccountsByCodes(ctx context.Context, tenantID string, codes []string) (map[string]domain.Account, error) {
	result := make(map[string]domain.Account, len(codes))
	if len(codes) == 0 {
		return result, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = ? AND code IN (` + placeholders(len(codes)) + `);`
	accounts, err := queryAccounts(ctx, r.DB, query, append([]any{tenantID}, stringArgs(codes)...)...)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		result[a.Code] = a
	}
	return result, nil
}

func (r *AccountRepository) ListAccounts(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = ? AND (? OR is_active) ORDER BY code;`
	return queryAccounts(ctx, r.DB, query, tenantID, includeInactive)
}

func (r *AccountRepository) DeactivateAccount(ctx context.Context, tenantID, accountID, userID string, now time.Time) error {
	query := `UPDATE accounts SET is_active = 0, last_updated_at = ?, last_updated_by = ? WHERE tenant_id = ? AND account_id = ?;`
	res, err := r.DB.ExecContext(ctx, query, now, userID, tenantID, accountID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("account", accountID)
	}
	return nil
}

func (t *ledgerTx) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	ids := distinctSorted(accountIDs)
	result := make(map[string]domain.Account, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = ? AND account_id IN (` + placeholders(len(ids)) + `) ORDER BY account_id;`
	accounts, err := queryAccounts(ctx, t.tx, query, append([]any{tenantID}, stringArgs(ids)...)...)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		result[a.AccountID] = a
	}
	return result, nil
}

// FindAccountsByIDsForUpdate reads the accounts. The surrounding transaction
// owns the only connection, so no other writer can touch them until it ends.
func (t *ledgerTx) FindAccountsByIDsForUpdate(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	result, err := t.FindAccountsByIDs(ctx, tenantID, accountIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range accountIDs {
		if _, ok := result[id]; !ok {
			return nil, notFound("account", id)
		}
	}
	return result, nil
}

// ApplyBalanceDeltas reads each balance, adds the delta in decimal arithmetic and writes it back.
func (t *ledgerTx) ApplyBalanceDeltas(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		var balance decimal.Decimal
		if err := t.tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE account_id = ?;`, id).Scan(&balance); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return notFound("account", id)
			}
			return txError("failed to read balance of account "+id, err)
		}
		balance = balance.Add(deltas[id])
		_, err := t.tx.ExecContext(ctx,
			`UPDATE accounts SET balance = ?, last_updated_at = ?, last_updated_by = ? WHERE account_id = ?;`,
			balance.String(), now, userID, id)
		if err != nil {
			return txError("failed to update balance of account "+id, err)
		}
	}
	return nil
}

func distinctSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
