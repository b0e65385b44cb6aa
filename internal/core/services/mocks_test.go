package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/qoyodhq/ledgercore/internal/core/domain"
	portsrepo "github.com/qoyodhq/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/qoyodhq/ledgercore/internal/core/ports/services"
	"github.com/qoyodhq/ledgercore/internal/dto"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error) {
	args := m.Called(ctx, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, accountCodes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindLeafAccountForRole(ctx context.Context, accountType domain.AccountType, pattern string) (*domain.Account, error) {
	args := m.Called(ctx, accountType, pattern)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, activeOnly bool) ([]domain.Account, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// --- Mock LedgerRepository ---

type MockLedgerRepository struct {
	mock.Mock
}

var _ portsrepo.LedgerRepositoryFacade = (*MockLedgerRepository)(nil)

func (m *MockLedgerRepository) SaveEntries(ctx context.Context, fiscalPeriodID string, entries []domain.LedgerEntry) error {
	args := m.Called(ctx, fiscalPeriodID, entries)
	return args.Error(0)
}

func (m *MockLedgerRepository) SaveClosingVoucher(ctx context.Context, period domain.FiscalPeriod, entries []domain.LedgerEntry, netIncome decimal.Decimal, closedBy string, closedAt time.Time) error {
	args := m.Called(ctx, period, entries, netIncome, closedBy, closedAt)
	return args.Error(0)
}

func (m *MockLedgerRepository) NextVoucherNumber(ctx context.Context, documentType string) (string, error) {
	args := m.Called(ctx, documentType)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerRepository) VoucherNumberExists(ctx context.Context, voucherNumber string) (bool, error) {
	args := m.Called(ctx, voucherNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) FindEntriesByVoucher(ctx context.Context, voucherNumber string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, voucherNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) HasReversal(ctx context.Context, voucherNumber string) (bool, error) {
	args := m.Called(ctx, voucherNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) AccountActivity(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, accountID, asOf)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockLedgerRepository) ListEntriesByAccount(ctx context.Context, accountID string, limit int) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) PeriodActivityByType(ctx context.Context, fiscalPeriodID string, accountType domain.AccountType) ([]domain.AccountActivity, error) {
	args := m.Called(ctx, fiscalPeriodID, accountType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountActivity), args.Error(1)
}

func (m *MockLedgerRepository) ForeignCurrencyBalances(ctx context.Context, currencyCode string) ([]domain.AccountCurrencyBalance, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountCurrencyBalance), args.Error(1)
}

func (m *MockLedgerRepository) ActivityByAccount(ctx context.Context, asOf time.Time) ([]domain.AccountActivity, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountActivity), args.Error(1)
}

// --- Mock FiscalPeriodRepository ---

type MockFiscalPeriodRepository struct {
	mock.Mock
}

var _ portsrepo.FiscalPeriodRepositoryFacade = (*MockFiscalPeriodRepository)(nil)

func (m *MockFiscalPeriodRepository) SavePeriod(ctx context.Context, period domain.FiscalPeriod) error {
	args := m.Called(ctx, period)
	return args.Error(0)
}

func (m *MockFiscalPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.FiscalPeriod, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodRepository) FindPeriodForDate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodRepository) ListPeriods(ctx context.Context) ([]domain.FiscalPeriod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FiscalPeriod), args.Error(1)
}

func (m *MockFiscalPeriodRepository) HasOverlap(ctx context.Context, startDate, endDate time.Time) (bool, error) {
	args := m.Called(ctx, startDate, endDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockFiscalPeriodRepository) SetLocked(ctx context.Context, periodID string, locked bool, userID string, at time.Time) error {
	args := m.Called(ctx, periodID, locked, userID, at)
	return args.Error(0)
}

func (m *MockFiscalPeriodRepository) MarkPeriodClosed(ctx context.Context, periodID string, netIncome decimal.Decimal, closedBy string, at time.Time) error {
	args := m.Called(ctx, periodID, netIncome, closedBy, at)
	return args.Error(0)
}

// --- Mock CurrencyRepository ---

type MockCurrencyRepository struct {
	mock.Mock
}

var _ portsrepo.CurrencyRepositoryFacade = (*MockCurrencyRepository)(nil)

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) FindPrimaryCurrency(ctx context.Context) (*domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

// --- Mock ExchangeRateRepository ---

type MockExchangeRateRepository struct {
	mock.Mock
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*MockExchangeRateRepository)(nil)

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) FindLatestRate(ctx context.Context, sourceCurrency, targetCurrency string, asOf time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, sourceCurrency, targetCurrency, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListRates(ctx context.Context, sourceCurrency, targetCurrency string) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, sourceCurrency, targetCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

// --- Mock CurrencyPolicyRepository ---

type MockCurrencyPolicyRepository struct {
	mock.Mock
}

var _ portsrepo.CurrencyPolicyRepositoryFacade = (*MockCurrencyPolicyRepository)(nil)

func (m *MockCurrencyPolicyRepository) SavePolicy(ctx context.Context, policy domain.CurrencyPolicy) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}

func (m *MockCurrencyPolicyRepository) FindPolicyByID(ctx context.Context, policyID string) (*domain.CurrencyPolicy, error) {
	args := m.Called(ctx, policyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrencyPolicy), args.Error(1)
}

func (m *MockCurrencyPolicyRepository) FindActivePolicy(ctx context.Context) (*domain.CurrencyPolicy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrencyPolicy), args.Error(1)
}

func (m *MockCurrencyPolicyRepository) ActivatePolicy(ctx context.Context, policyID string, userID string, at time.Time) error {
	args := m.Called(ctx, policyID, userID, at)
	return args.Error(0)
}

func (m *MockCurrencyPolicyRepository) DeletePolicy(ctx context.Context, policyID string) error {
	args := m.Called(ctx, policyID)
	return args.Error(0)
}

func (m *MockCurrencyPolicyRepository) CountContextsForPolicy(ctx context.Context, policyID string) (int64, error) {
	args := m.Called(ctx, policyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCurrencyPolicyRepository) SaveTransactionContext(ctx context.Context, tcc domain.TransactionCurrencyContext) error {
	args := m.Called(ctx, tcc)
	return args.Error(0)
}

// --- Mock ChartOfAccountsService ---

type MockChartOfAccountsService struct {
	mock.Mock
}

var _ portssvc.ChartOfAccountsSvcFacade = (*MockChartOfAccountsService)(nil)

func (m *MockChartOfAccountsService) Resolve(ctx context.Context, accountCode string) (*domain.Account, error) {
	args := m.Called(ctx, accountCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockChartOfAccountsService) ResolveMany(ctx context.Context, accountCodes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountCodes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockChartOfAccountsService) ResolveRole(ctx context.Context, role domain.AccountRole) (string, error) {
	args := m.Called(ctx, role)
	return args.String(0), args.Error(1)
}

func (m *MockChartOfAccountsService) Validate(ctx context.Context, accountCode string) error {
	args := m.Called(ctx, accountCode)
	return args.Error(0)
}

func (m *MockChartOfAccountsService) ListAccounts(ctx context.Context, activeOnly bool) ([]domain.Account, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// --- Mock LedgerService ---

type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

func (m *MockLedgerService) PostTransaction(ctx context.Context, req dto.PostTransactionRequest, userID string) (string, error) {
	args := m.Called(ctx, req, userID)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerService) ReverseTransaction(ctx context.Context, voucherNumber, reason, userID string) (string, error) {
	args := m.Called(ctx, voucherNumber, reason, userID)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerService) GetAccountBalance(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountCode, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) NextVoucherNumber(ctx context.Context, documentType string) (string, error) {
	args := m.Called(ctx, documentType)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerService) GetVoucher(ctx context.Context, voucherNumber string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

func (m *MockLedgerService) ListEntriesByAccount(ctx context.Context, accountCode string, limit int) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, accountCode, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerService) GetTrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}

func (m *MockLedgerService) PeriodBalancesByType(ctx context.Context, fiscalPeriodID string, accountType domain.AccountType) ([]domain.AccountPeriodBalance, error) {
	args := m.Called(ctx, fiscalPeriodID, accountType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountPeriodBalance), args.Error(1)
}

func (m *MockLedgerService) PostPeriodClosing(ctx context.Context, period domain.FiscalPeriod, entries []dto.EntryInput, netIncome decimal.Decimal, userID string) (string, error) {
	args := m.Called(ctx, period, entries, netIncome, userID)
	return args.String(0), args.Error(1)
}

// --- Mock ExchangeRateService ---

type MockExchangeRateService struct {
	mock.Mock
}

var _ portssvc.ExchangeRateSvcFacade = (*MockExchangeRateService)(nil)

func (m *MockExchangeRateService) RecordRate(ctx context.Context, req dto.RecordExchangeRateRequest, userID string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateService) GetRate(ctx context.Context, sourceCurrency, targetCurrency string, asOf time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, sourceCurrency, targetCurrency, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateService) ListRates(ctx context.Context, sourceCurrency, targetCurrency string) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, sourceCurrency, targetCurrency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}
