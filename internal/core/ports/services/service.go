package services

// ServiceContainer holds all service facades and is passed to the HTTP layer.
type ServiceContainer struct {
	ChartOfAccounts ChartOfAccountsSvcFacade
	Ledger          LedgerSvcFacade
	FiscalPeriod    FiscalPeriodSvcFacade
	ExchangeRate    ExchangeRateSvcFacade
	CurrencyPolicy  CurrencyPolicySvcFacade
}
