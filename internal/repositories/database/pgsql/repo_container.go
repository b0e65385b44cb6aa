package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/qoyodhq/ledgercore/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:      newPgxAccountRepository(dbPool),
		LedgerRepo:       newPgxLedgerRepository(dbPool),
		FiscalPeriodRepo: newPgxFiscalPeriodRepository(dbPool),
		CurrencyRepo:     newPgxCurrencyRepository(dbPool),
		ExchangeRateRepo: newPgxExchangeRateRepository(dbPool),
		PolicyRepo:       newPgxCurrencyPolicyRepository(dbPool),
	}
}
