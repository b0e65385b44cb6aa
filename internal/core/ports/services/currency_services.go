package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/qoyodhq/ledgercore/internal/core/domain"
	"github.com/qoyodhq/ledgercore/internal/dto"
)

// ExchangeRateSvcFacade is the append-only exchange rate store.
type ExchangeRateSvcFacade interface {
	// RecordRate appends a rate record; rates must be strictly positive.
	RecordRate(ctx context.Context, req dto.RecordExchangeRateRequest, userID string) (*domain.ExchangeRate, error)
	// GetRate resolves the rate in force at asOf: identity for equal
	// currencies, the latest direct record at or before asOf, or the inverse
	// pair's reciprocal. Fails with ErrRateNotFound otherwise.
	GetRate(ctx context.Context, sourceCurrency, targetCurrency string, asOf time.Time) (*domain.ExchangeRate, error)
	ListRates(ctx context.Context, sourceCurrency, targetCurrency string) ([]domain.ExchangeRate, error)
}

// CurrencyPolicySvcFacade holds the single active currency policy and performs
// conversion and revaluation under it.
type CurrencyPolicySvcFacade interface {
	// Convert multiplies amount by the rate in force at date, rounded to the
	// target currency's minor-unit precision.
	Convert(ctx context.Context, amount decimal.Decimal, sourceCurrency, targetCurrency string, date time.Time) (*dto.ConvertResponse, error)
	CreatePolicy(ctx context.Context, req dto.CreateCurrencyPolicyRequest, userID string) (*domain.CurrencyPolicy, error)
	// ActivatePolicy makes the target the single active policy atomically.
	ActivatePolicy(ctx context.Context, policyID string, userID string) error
	// DeletePolicy refuses to delete the active policy or one referenced by
	// transaction contexts.
	DeletePolicy(ctx context.Context, policyID string) error
	GetActivePolicy(ctx context.Context) (*domain.CurrencyPolicy, error)
	// DetermineConversionDecision evaluates the active policy for a
	// transaction currency.
	DetermineConversionDecision(ctx context.Context, currencyCode string, userRequestedConversion bool) (domain.ConversionDecision, error)
	// CreateTransactionContext binds the policy regime in force to a business
	// record, preserving historical interpretability.
	CreateTransactionContext(ctx context.Context, req dto.CreateTransactionContextRequest) (*domain.TransactionCurrencyContext, error)
	// ProcessRevaluation recognizes unrealized FX gain/loss on outstanding balances
	// in one currency and posts it as a single voucher.
	ProcessRevaluation(ctx context.Context, req dto.ProcessRevaluationRequest, userID string) (*dto.RevaluationResult, error)
}
