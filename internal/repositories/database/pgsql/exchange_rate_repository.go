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

const exchangeRateColumns = `exchange_rate_id, source_currency, target_currency, rate, effective_at,
	source, source_reference, created_at, created_by`

type PgxExchangeRateRepository struct {
	BaseRepository
}

// newPgxExchangeRateRepository creates a new repository for the exchange rate history.
func newPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateRepositoryFacade {
	return &PgxExchangeRateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

func scanExchangeRate(row pgx.Row) (*domain.ExchangeRate, error) {
	var er domain.ExchangeRate
	err := row.Scan(
		&er.ExchangeRateID,
		&er.SourceCurrency,
		&er.TargetCurrency,
		&er.Rate,
		&er.EffectiveAt,
		&er.Source,
		&er.SourceReference,
		&er.CreatedAt,
		&er.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan exchange rate", err)
	}
	return &er, nil
}

// SaveExchangeRate appends one record to the rate history.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rate_history (` + exchangeRateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		rate.ExchangeRateID,
		rate.SourceCurrency,
		rate.TargetCurrency,
		rate.Rate,
		rate.EffectiveAt,
		rate.Source,
		rate.SourceReference,
		rate.CreatedAt,
		rate.CreatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert exchange rate", err)
	}
	return nil
}

// FindLatestRate returns the record for the pair with the latest effective
// timestamp not after asOf. Ties on effective_at resolve to the most recently
// recorded row.
func (r *PgxExchangeRateRepository) FindLatestRate(ctx context.Context, sourceCurrency, targetCurrency string, asOf time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rate_history
		WHERE source_currency = $1 AND target_currency = $2 AND effective_at <= $3
		ORDER BY effective_at DESC, created_at DESC
		LIMIT 1;
	`
	return scanExchangeRate(r.Pool.QueryRow(ctx, query, sourceCurrency, targetCurrency, asOf))
}

// ListRates returns the full history for a pair, newest first.
func (r *PgxExchangeRateRepository) ListRates(ctx context.Context, sourceCurrency, targetCurrency string) ([]domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rate_history
		WHERE source_currency = $1 AND target_currency = $2
		ORDER BY effective_at DESC, created_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, sourceCurrency, targetCurrency)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query exchange rates", err)
	}
	defer rows.Close()

	var rates []domain.ExchangeRate
	for rows.Next() {
		er, err := scanExchangeRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, *er)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate exchange rates", err)
	}
	return rates, nil
}
