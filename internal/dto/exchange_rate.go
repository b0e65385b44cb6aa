package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/qoyodhq/ledgercore/internal/core/domain"
)

// RecordExchangeRateRequest appends a rate record to the history.
type RecordExchangeRateRequest struct {
	SourceCurrency  string            `json:"sourceCurrency" binding:"required,len=3"`
	TargetCurrency  string            `json:"targetCurrency" binding:"required,len=3"`
	Rate            decimal.Decimal   `json:"rate" binding:"required"`
	EffectiveAt     time.Time         `json:"effectiveAt" binding:"required"`
	Source          domain.RateSource `json:"source" binding:"required,oneof=MANUAL CENTRAL_BANK API SYSTEM"`
	SourceReference *string           `json:"sourceReference"`
}

// ExchangeRateResponse is the API shape of an exchange rate record.
type ExchangeRateResponse struct {
	ExchangeRateID  string          `json:"exchangeRateID,omitempty"`
	SourceCurrency  string          `json:"sourceCurrency"`
	TargetCurrency  string          `json:"targetCurrency"`
	Rate            decimal.Decimal `json:"rate"`
	EffectiveAt     time.Time       `json:"effectiveAt"`
	Source          string          `json:"source"`
	SourceReference *string         `json:"sourceReference,omitempty"`
}

// ToExchangeRateResponse converts a domain ExchangeRate to its API shape.
func ToExchangeRateResponse(r *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID:  r.ExchangeRateID,
		SourceCurrency:  r.SourceCurrency,
		TargetCurrency:  r.TargetCurrency,
		Rate:            r.Rate,
		EffectiveAt:     r.EffectiveAt,
		Source:          string(r.Source),
		SourceReference: r.SourceReference,
	}
}
