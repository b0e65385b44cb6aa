package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/qoyodhq/ledgercore/internal/core/domain"
)

// CreateCurrencyPolicyRequest creates a new, initially inactive, policy.
type CreateCurrencyPolicyRequest struct {
	Name                 string                    `json:"name" binding:"required"`
	Code                 string                    `json:"code" binding:"required"`
	PolicyType           domain.CurrencyPolicyType `json:"policyType" binding:"required,oneof=UNIT_OF_MEASURE VALUED_ASSET NORMALIZATION"`
	ConversionTiming     domain.ConversionTiming   `json:"conversionTiming" binding:"required,oneof=POSTING SETTLEMENT REPORTING NEVER"`
	RevaluationEnabled   bool                      `json:"revaluationEnabled"`
	RevaluationFrequency string                    `json:"revaluationFrequency"`
	ExchangeRateSource   domain.RateSource         `json:"exchangeRateSource" binding:"omitempty,oneof=MANUAL CENTRAL_BANK API SYSTEM"`
}

// ConvertRequest converts an amount between currencies at a historical rate.
type ConvertRequest struct {
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	SourceCurrency string          `json:"sourceCurrency" binding:"required,len=3"`
	TargetCurrency string          `json:"targetCurrency" binding:"required,len=3"`
	Date           time.Time       `json:"date" binding:"required" time_format:"2006-01-02"`
}

// ConvertResponse carries the converted amount and the rate applied.
type ConvertResponse struct {
	Amount decimal.Decimal `json:"amount"`
	Rate   decimal.Decimal `json:"rate"`
}

// CreateTransactionContextRequest binds the active policy to a business record.
type CreateTransactionContextRequest struct {
	TransactionType         string          `json:"transactionType" binding:"required"`
	TransactionID           string          `json:"transactionID" binding:"required"`
	CurrencyCode            string          `json:"currencyCode" binding:"required,len=3"`
	Amount                  decimal.Decimal `json:"amount" binding:"required"`
	UserRequestedConversion bool            `json:"userRequestedConversion"`
}

// ProcessRevaluationRequest revalues outstanding balances in one currency at a new rate.
type ProcessRevaluationRequest struct {
	CurrencyCode   string          `json:"currencyCode" binding:"required,len=3"`
	NewRate        decimal.Decimal `json:"newRate" binding:"required"`
	FiscalPeriodID *string         `json:"fiscalPeriodID"`
}

// RevaluationLine is the gain or loss recognized for one account.
type RevaluationLine struct {
	AccountCode string          `json:"accountCode"`
	Amount      decimal.Decimal `json:"amount"` // positive gain, negative loss
}

// RevaluationResult summarizes a revaluation run.
type RevaluationResult struct {
	VoucherNumber *string           `json:"voucherNumber,omitempty"`
	TotalGain     decimal.Decimal   `json:"totalGain"`
	TotalLoss     decimal.Decimal   `json:"totalLoss"`
	NetEffect     decimal.Decimal   `json:"netEffect"`
	Lines         []RevaluationLine `json:"lines"`
}

// CurrencyPolicyResponse is the API shape of a currency policy.
type CurrencyPolicyResponse struct {
	PolicyID             string `json:"policyID"`
	Name                 string `json:"name"`
	Code                 string `json:"code"`
	PolicyType           string `json:"policyType"`
	ConversionTiming     string `json:"conversionTiming"`
	RevaluationEnabled   bool   `json:"revaluationEnabled"`
	RevaluationFrequency string `json:"revaluationFrequency"`
	ExchangeRateSource   string `json:"exchangeRateSource"`
	IsActive             bool   `json:"isActive"`
}

// ToCurrencyPolicyResponse converts a domain CurrencyPolicy to its API shape.
func ToCurrencyPolicyResponse(p *domain.CurrencyPolicy) CurrencyPolicyResponse {
	return CurrencyPolicyResponse{
		PolicyID:             p.PolicyID,
		Name:                 p.Name,
		Code:                 p.Code,
		PolicyType:           string(p.PolicyType),
		ConversionTiming:     string(p.ConversionTiming),
		RevaluationEnabled:   p.RevaluationEnabled,
		RevaluationFrequency: p.RevaluationFrequency,
		ExchangeRateSource:   string(p.ExchangeRateSource),
		IsActive:             p.IsActive,
	}
}
