package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qoyodhq/ledgercore/internal/apperrors"
	"github.com/qoyodhq/ledgercore/internal/core/domain"
	portsrepo "github.com/qoyodhq/ledgercore/internal/core/ports/repositories"
)

const accountColumns = `account_id, account_code, name, account_type, parent_account_id, is_leaf, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for chart of accounts data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	err := row.Scan(
		&acc.AccountID,
		&acc.AccountCode,
		&acc.Name,
		&acc.AccountType,
		&acc.ParentAccountID,
		&acc.IsLeaf,
		&acc.IsActive,
		&acc.CreatedAt,
		&acc.CreatedBy,
		&acc.LastUpdatedAt,
		&acc.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan account", err)
	}
	return &acc, nil
}

// FindAccountByCode retrieves an account by its code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_code = $1;`
	return scanAccount(r.Pool.QueryRow(ctx, query, accountCode))
}

// FindAccountsByCodes retrieves multiple accounts by code, keyed by code.
// Missing codes are simply absent from the result map.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, accountCodes []string) (map[string]domain.Account, error) {
	if len(accountCodes) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_code = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, accountCodes)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts by codes", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.Account, len(accountCodes))
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts[acc.AccountCode] = *acc
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate accounts", err)
	}
	return accounts, nil
}

// FindLeafAccountForRole returns the first active leaf account of the given
// type whose code or name matches the pattern, ordered by account code.
func (r *PgxAccountRepository) FindLeafAccountForRole(ctx context.Context, accountType domain.AccountType, pattern string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_type = $1
		  AND is_leaf = TRUE
		  AND is_active = TRUE
		  AND (account_code ILIKE '%' || $2 || '%' OR name ILIKE '%' || $2 || '%')
		ORDER BY account_code
		LIMIT 1;
	`
	return scanAccount(r.Pool.QueryRow(ctx, query, accountType, pattern))
}

// ListAccounts returns the chart of accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, activeOnly bool) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY account_code;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}
