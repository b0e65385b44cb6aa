package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qoyodhq/ledgercore/internal/apperrors"
	"github.com/qoyodhq/ledgercore/internal/core/domain"
	portsrepo "github.com/qoyodhq/ledgercore/internal/core/ports/repositories"
)

const currencyColumns = `currency_code, name, symbol, precision, is_primary,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxCurrencyRepository struct {
	BaseRepository
}

// newPgxCurrencyRepository creates a new repository for currency data.
func newPgxCurrencyRepository(pool *pgxpool.Pool) portsrepo.CurrencyRepositoryFacade {
	return &PgxCurrencyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CurrencyRepositoryFacade = (*PgxCurrencyRepository)(nil)

func scanCurrency(row pgx.Row) (*domain.Currency, error) {
	var c domain.Currency
	err := row.Scan(
		&c.CurrencyCode,
		&c.Name,
		&c.Symbol,
		&c.Precision,
		&c.IsPrimary,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan currency", err)
	}
	return &c, nil
}

// FindCurrencyByCode retrieves a currency by its ISO code.
func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE currency_code = $1;`
	return scanCurrency(r.Pool.QueryRow(ctx, query, currencyCode))
}

// FindPrimaryCurrency retrieves the reference currency.
func (r *PgxCurrencyRepository) FindPrimaryCurrency(ctx context.Context) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE is_primary = TRUE LIMIT 1;`
	return scanCurrency(r.Pool.QueryRow(ctx, query))
}

// ListCurrencies returns all supported currencies ordered by code.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies ORDER BY currency_code;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query currencies", err)
	}
	defer rows.Close()

	var currencies []domain.Currency
	for rows.Next() {
		c, err := scanCurrency(rows)
		if err != nil {
			return nil, err
		}
		currencies = append(currencies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate currencies", err)
	}
	return currencies, nil
}
