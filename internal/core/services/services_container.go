package services

import (
	portsrepo "github.com/qoyodhq/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/qoyodhq/ledgercore/internal/core/ports/services"
)

// NewServiceContainer creates the service container with properly initialized
// dependencies.
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Chart of accounts first, everything that posts resolves accounts through it.
	container.ChartOfAccounts = NewChartOfAccountsService(repos.AccountRepo)

	container.Ledger = NewLedgerService(
		repos.LedgerRepo,
		repos.FiscalPeriodRepo,
		container.ChartOfAccounts,
		repos.CurrencyRepo,
	)
	container.FiscalPeriod = NewFiscalPeriodService(
		repos.FiscalPeriodRepo,
		container.Ledger,
		container.ChartOfAccounts,
	)
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, repos.CurrencyRepo)
	container.CurrencyPolicy = NewCurrencyPolicyService(
		repos.PolicyRepo,
		repos.CurrencyRepo,
		repos.LedgerRepo,
		container.ExchangeRate,
		container.Ledger,
		container.ChartOfAccounts,
	)

	return container
}
