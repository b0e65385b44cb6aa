package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency represents a supported currency.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // ISO 4217, e.g. "USD"
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Precision    int32  `json:"precision"` // minor-unit digits, e.g. 2 for USD
	IsPrimary    bool   `json:"isPrimary"` // the reference (functional) currency
	AuditFields
}

// RateSource identifies where an exchange rate record came from.
type RateSource string

const (
	RateSourceManual      RateSource = "MANUAL"
	RateSourceCentralBank RateSource = "CENTRAL_BANK"
	RateSourceAPI         RateSource = "API"
	RateSourceSystem      RateSource = "SYSTEM"
)

// ExchangeRate is one record of the append-only rate history for a currency
// pair. Multiple records per day are permitted; lookups resolve to the record
// with the latest effective timestamp not after the query date.
type ExchangeRate struct {
	ExchangeRateID  string          `json:"exchangeRateID"`
	SourceCurrency  string          `json:"sourceCurrency"`
	TargetCurrency  string          `json:"targetCurrency"`
	Rate            decimal.Decimal `json:"rate"` // strictly positive
	EffectiveAt     time.Time       `json:"effectiveAt"`
	Source          RateSource      `json:"source"`
	SourceReference *string         `json:"sourceReference,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	CreatedBy       string          `json:"createdBy"`
}
