package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/school_ledger/internal/apperrors"
	"github.com/SscSPs/school_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/school_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, tenant_id, code, name, account_type, balance, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxAccountRepository implements the account repository interfaces using pgxpool.
type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements the account facade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	var accountType string
	err := row.Scan(
		&a.AccountID, &a.TenantID, &a.Code, &a.Name, &accountType, &a.Balance, &a.IsActive,
		&a.CreatedAt, &a.CreatedBy, &a.LastUpdatedAt, &a.LastUpdatedBy,
	)
	a.AccountType = domain.AccountType(accountType)
	return a, err
}

func collectAccounts(rows pgx.Rows) ([]domain.Account, error) {
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

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, tenant_id, code, name, account_type, balance, is_active,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		account.AccountID, account.TenantID, account.Code, account.Name, string(account.AccountType),
		account.Balance, account.IsActive,
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

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_id = $2;`
	a, err := scanAccount(r.Pool.QueryRow(ctx, query, tenantID, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("account", accountID)
		}
		return nil, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}
	return &a, nil
}

// FindAccountByCode retrieves an account by its chart code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND code = $2;`
	a, err := scanAccount(r.Pool.QueryRow(ctx, query, tenantID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("account with code", code)
		}
		return nil, fmt.Errorf("failed to find account by code %s: %w", code, err)
	}
	return &a, nil
}

// FindAccountsByCodes retrieves all accounts whose code is in codes.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, tenantID string, codes []string) (map[string]domain.Account, error) {
	result := make(map[string]domain.Account, len(codes))
	if len(codes) == 0 {
		return result, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND code = ANY($2);`
	rows, err := r.Pool.Query(ctx, query, tenantID, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by code: %w", err)
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		result[a.Code] = a
	}
	return result, nil
}

// ListAccounts retrieves the chart of accounts of a tenant ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, tenantID string, includeInactive bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND ($2 OR is_active) ORDER BY code;`
	rows, err := r.Pool.Query(ctx, query, tenantID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for tenant %s: %w", tenantID, err)
	}
	return collectAccounts(rows)
}

// DeactivateAccount marks an account inactive. Deactivating an inactive account is a no-op.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, tenantID, accountID, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $3, last_updated_by = $4
		WHERE tenant_id = $1 AND account_id = $2;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, tenantID, accountID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return notFound("account", accountID)
	}
	return nil
}

func (t *ledgerTx) selectAccounts(ctx context.Context, tenantID string, accountIDs []string, lock string) (map[string]domain.Account, error) {
	ids := distinctSorted(accountIDs)
	result := make(map[string]domain.Account, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE tenant_id = $1 AND account_id = ANY($2)
		ORDER BY account_id ` + lock + `;`
	rows, err := t.tx.Query(ctx, query, tenantID, ids)
	if err != nil {
		return nil, txError("failed to query accounts", err)
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		result[a.AccountID] = a
	}
	return result, nil
}

// FindAccountsByIDs reads accounts inside the transaction without locking them.
func (t *ledgerTx) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	return t.selectAccounts(ctx, tenantID, accountIDs, "")
}

// FindAccountsByIDsForUpdate locks the rows in ascending id order so concurrent
// postings touching overlapping accounts cannot deadlock.
func (t *ledgerTx) FindAccountsByIDsForUpdate(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	result, err := t.selectAccounts(ctx, tenantID, accountIDs, "FOR UPDATE")
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

// ApplyBalanceDeltas adds each delta to the stored balance in one batch.
func (t *ledgerTx) ApplyBalanceDeltas(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(deltas) == 0 {
		return nil
	}
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(query, id, deltas[id], now, userID)
	}

	br := t.tx.SendBatch(ctx, batch)
	for _, id := range ids {
		cmdTag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return txError("failed to update balance of account "+id, err)
		}
		if cmdTag.RowsAffected() == 0 {
			_ = br.Close()
			return notFound("account", id)
		}
	}
	if err := br.Close(); err != nil {
		return txError("failed to close balance update batch", err)
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
