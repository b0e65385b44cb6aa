package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/qoyodhq/ledgercore/internal/core/domain"
)

// AccountRepositoryFacade defines the read operations the registry needs over
// the chart of accounts. Administrative writes are seeded by migrations and
// are not part of this core.
type AccountRepositoryFacade interface {
	FindAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error)
	FindAccountsByCodes(ctx context.Context, accountCodes []string) (map[string]domain.Account, error)
	// FindLeafAccountForRole returns the first active leaf account of the given
	// type whose name or code matches the pattern, ordered by account code.
	FindLeafAccountForRole(ctx context.Context, accountType domain.AccountType, pattern string) (*domain.Account, error)
	ListAccounts(ctx context.Context, activeOnly bool) ([]domain.Account, error)
}

// LedgerRepositoryFacade defines persistence for vouchers and their entries.
// SaveEntries and SaveClosingVoucher are the only writers of ledger entries in
// the system; each runs as a single failure-atomic database transaction.
type LedgerRepositoryFacade interface {
	// SaveEntries inserts one voucher's entries atomically. The fiscal
	// period's state is re-checked under a row lock inside the same
	// transaction; a posting that races a close or lock fails with
	// ErrPeriodClosed/ErrPeriodLocked instead of landing in the period.
	SaveEntries(ctx context.Context, fiscalPeriodID string, entries []domain.LedgerEntry) error
	// SaveClosingVoucher atomically writes the closing entries of a period,
	// flags the period's revenue/expense entries as consumed, and marks the
	// period row closed. It re-checks the period state under a row lock and
	// fails with ErrPeriodClosed/ErrPeriodLocked on a race.
	SaveClosingVoucher(ctx context.Context, period domain.FiscalPeriod, entries []domain.LedgerEntry, netIncome decimal.Decimal, closedBy string, closedAt time.Time) error
	// NextVoucherNumber atomically allocates the next number for the document
	// type, formatted like "VOU-000042". Contention is resolved inside the
	// repository and never surfaced to callers.
	NextVoucherNumber(ctx context.Context, documentType string) (string, error)
	VoucherNumberExists(ctx context.Context, voucherNumber string) (bool, error)
	FindEntriesByVoucher(ctx context.Context, voucherNumber string) ([]domain.LedgerEntry, error)
	// HasReversal reports whether any entry links back to the voucher via its
	// reverses_voucher_number column.
	HasReversal(ctx context.Context, voucherNumber string) (bool, error)
	// AccountActivity sums debit and credit amounts of all entries for the
	// account with voucher_date <= asOf. The is_closed flag never hides an
	// entry from balances; it only scopes net-income recalculation.
	AccountActivity(ctx context.Context, accountID string, asOf time.Time) (debits, credits decimal.Decimal, err error)
	ListEntriesByAccount(ctx context.Context, accountID string, limit int) ([]domain.LedgerEntry, error)
	// PeriodActivityByType returns per-account debit/credit totals inside one
	// fiscal period, restricted to one account type and to entries not yet
	// consumed by a close (is_closed = false).
	PeriodActivityByType(ctx context.Context, fiscalPeriodID string, accountType domain.AccountType) ([]domain.AccountActivity, error)
	// ForeignCurrencyBalances returns per-account outstanding balances
	// (debits - credits) denominated in the given currency.
	ForeignCurrencyBalances(ctx context.Context, currencyCode string) ([]domain.AccountCurrencyBalance, error)
	// ActivityByAccount returns debit/credit totals per active account over
	// all entries with voucher_date <= asOf, for trial balance reporting.
	ActivityByAccount(ctx context.Context, asOf time.Time) ([]domain.AccountActivity, error)
}

// FiscalPeriodRepositoryFacade defines persistence for fiscal periods.
type FiscalPeriodRepositoryFacade interface {
	SavePeriod(ctx context.Context, period domain.FiscalPeriod) error
	FindPeriodByID(ctx context.Context, periodID string) (*domain.FiscalPeriod, error)
	FindPeriodForDate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error)
	ListPeriods(ctx context.Context) ([]domain.FiscalPeriod, error)
	HasOverlap(ctx context.Context, startDate, endDate time.Time) (bool, error)
	SetLocked(ctx context.Context, periodID string, locked bool, userID string, at time.Time) error
	// MarkPeriodClosed closes a period that produced no closing entries. It
	// re-checks state under a row lock like SaveClosingVoucher does.
	MarkPeriodClosed(ctx context.Context, periodID string, netIncome decimal.Decimal, closedBy string, at time.Time) error
}

// CurrencyRepositoryFacade defines read operations over supported currencies.
type CurrencyRepositoryFacade interface {
	FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)
	FindPrimaryCurrency(ctx context.Context) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// ExchangeRateRepositoryFacade defines persistence for the append-only
// exchange rate history.
type ExchangeRateRepositoryFacade interface {
	SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error
	// FindLatestRate returns the record for the pair with the latest effective
	// timestamp <= asOf, or ErrNotFound.
	FindLatestRate(ctx context.Context, sourceCurrency, targetCurrency string, asOf time.Time) (*domain.ExchangeRate, error)
	ListRates(ctx context.Context, sourceCurrency, targetCurrency string) ([]domain.ExchangeRate, error)
}

// CurrencyPolicyRepositoryFacade defines persistence for currency policies and
// the transaction contexts that reference them.
type CurrencyPolicyRepositoryFacade interface {
	SavePolicy(ctx context.Context, policy domain.CurrencyPolicy) error
	FindPolicyByID(ctx context.Context, policyID string) (*domain.CurrencyPolicy, error)
	FindActivePolicy(ctx context.Context) (*domain.CurrencyPolicy, error)
	// ActivatePolicy deactivates all policies and activates the target in one
	// database transaction.
	ActivatePolicy(ctx context.Context, policyID string, userID string, at time.Time) error
	DeletePolicy(ctx context.Context, policyID string) error
	CountContextsForPolicy(ctx context.Context, policyID string) (int64, error)
	SaveTransactionContext(ctx context.Context, tcc domain.TransactionCurrencyContext) error
}

// RepositoryProvider holds all repository interfaces needed by services.
type RepositoryProvider struct {
	AccountRepo      AccountRepositoryFacade
	LedgerRepo       LedgerRepositoryFacade
	FiscalPeriodRepo FiscalPeriodRepositoryFacade
	CurrencyRepo     CurrencyRepositoryFacade
	ExchangeRateRepo ExchangeRateRepositoryFacade
	PolicyRepo       CurrencyPolicyRepositoryFacade
}
