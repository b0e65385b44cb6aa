package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qoyodhq/ledgercore/internal/apperrors"
	"github.com/qoyodhq/ledgercore/internal/core/domain"
	portsrepo "github.com/qoyodhq/ledgercore/internal/core/ports/repositories"
)

const currencyPolicyColumns = `policy_id, name, code, policy_type, conversion_timing,
	revaluation_enabled, revaluation_frequency, exchange_rate_source, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxCurrencyPolicyRepository struct {
	BaseRepository
}

// newPgxCurrencyPolicyRepository creates a new repository for currency policies
// and transaction currency contexts.
func newPgxCurrencyPolicyRepository(pool *pgxpool.Pool) portsrepo.CurrencyPolicyRepositoryFacade {
	return &PgxCurrencyPolicyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CurrencyPolicyRepositoryFacade = (*PgxCurrencyPolicyRepository)(nil)

func scanCurrencyPolicy(row pgx.Row) (*domain.CurrencyPolicy, error) {
	var p domain.CurrencyPolicy
	err := row.Scan(
		&p.PolicyID,
		&p.Name,
		&p.Code,
		&p.PolicyType,
		&p.ConversionTiming,
		&p.RevaluationEnabled,
		&p.RevaluationFrequency,
		&p.ExchangeRateSource,
		&p.IsActive,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan currency policy", err)
	}
	return &p, nil
}

// SavePolicy inserts a new currency policy.
func (r *PgxCurrencyPolicyRepository) SavePolicy(ctx context.Context, policy domain.CurrencyPolicy) error {
	query := `
		INSERT INTO currency_policies (` + currencyPolicyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		policy.PolicyID,
		policy.Name,
		policy.Code,
		policy.PolicyType,
		policy.ConversionTiming,
		policy.RevaluationEnabled,
		policy.RevaluationFrequency,
		policy.ExchangeRateSource,
		policy.IsActive,
		policy.CreatedAt,
		policy.CreatedBy,
		policy.LastUpdatedAt,
		policy.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert currency policy "+policy.PolicyID, err)
	}
	return nil
}

// FindPolicyByID retrieves a currency policy by its ID.
func (r *PgxCurrencyPolicyRepository) FindPolicyByID(ctx context.Context, policyID string) (*domain.CurrencyPolicy, error) {
	query := `SELECT ` + currencyPolicyColumns + ` FROM currency_policies WHERE policy_id = $1;`
	return scanCurrencyPolicy(r.Pool.QueryRow(ctx, query, policyID))
}

// FindActivePolicy retrieves the single active policy, or ErrNotFound.
func (r *PgxCurrencyPolicyRepository) FindActivePolicy(ctx context.Context) (*domain.CurrencyPolicy, error) {
	query := `SELECT ` + currencyPolicyColumns + ` FROM currency_policies WHERE is_active = TRUE LIMIT 1;`
	return scanCurrencyPolicy(r.Pool.QueryRow(ctx, query))
}

// ActivatePolicy deactivates all policies and activates the target in one
// database transaction, preserving the at-most-one-active invariant.
func (r *PgxCurrencyPolicyRepository) ActivatePolicy(ctx context.Context, policyID string, userID string, at time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	deactivate := `
		UPDATE currency_policies
		SET is_active = FALSE, last_updated_at = $1, last_updated_by = $2
		WHERE is_active = TRUE;
	`
	if _, err := tx.Exec(ctx, deactivate, at, userID); err != nil {
		return apperrors.NewAppError(500, "failed to deactivate currency policies", err)
	}

	activate := `
		UPDATE currency_policies
		SET is_active = TRUE, last_updated_at = $2, last_updated_by = $3
		WHERE policy_id = $1;
	`
	tag, err := tx.Exec(ctx, activate, policyID, at, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to activate currency policy "+policyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return r.Commit(ctx, tx)
}

// DeletePolicy removes a policy row. Guard checks live in the service layer;
// the referencing foreign key also refuses at the database level.
func (r *PgxCurrencyPolicyRepository) DeletePolicy(ctx context.Context, policyID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM currency_policies WHERE policy_id = $1;`, policyID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete currency policy "+policyID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CountContextsForPolicy counts transaction contexts referencing the policy.
func (r *PgxCurrencyPolicyRepository) CountContextsForPolicy(ctx context.Context, policyID string) (int64, error) {
	var count int64
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM transaction_currency_contexts WHERE policy_id = $1;`, policyID).
		Scan(&count)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to count contexts for policy "+policyID, err)
	}
	return count, nil
}

// SaveTransactionContext inserts a transaction currency context.
func (r *PgxCurrencyPolicyRepository) SaveTransactionContext(ctx context.Context, tcc domain.TransactionCurrencyContext) error {
	query := `
		INSERT INTO transaction_currency_contexts (
			context_id, transaction_type, transaction_id, currency_code, amount,
			reference_currency, reference_amount, exchange_rate, policy_id, decision, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		tcc.ContextID,
		tcc.TransactionType,
		tcc.TransactionID,
		tcc.CurrencyCode,
		tcc.Amount,
		tcc.ReferenceCurrency,
		tcc.ReferenceAmount,
		tcc.ExchangeRate,
		tcc.PolicyID,
		tcc.Decision,
		tcc.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert transaction currency context "+tcc.ContextID, err)
	}
	return nil
}
