package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyPolicyType classifies how foreign-currency amounts are treated.
type CurrencyPolicyType string

const (
	// PolicyUnitOfMeasure keeps balances in their original currency.
	PolicyUnitOfMeasure CurrencyPolicyType = "UNIT_OF_MEASURE"
	// PolicyValuedAsset treats foreign currency as an asset revalued over time.
	PolicyValuedAsset CurrencyPolicyType = "VALUED_ASSET"
	// PolicyNormalization converts everything to the reference currency.
	PolicyNormalization CurrencyPolicyType = "NORMALIZATION"
)

// ConversionTiming says when conversion to the reference currency happens.
type ConversionTiming string

const (
	TimingPosting    ConversionTiming = "POSTING"
	TimingSettlement ConversionTiming = "SETTLEMENT"
	TimingReporting  ConversionTiming = "REPORTING"
	TimingNever      ConversionTiming = "NEVER"
)

// CurrencyPolicy is the ruleset governing currency treatment. At most one
// policy is active at any moment; activating one deactivates all others
// atomically.
type CurrencyPolicy struct {
	PolicyID             string             `json:"policyID"`
	Name                 string             `json:"name"`
	Code                 string             `json:"code"`
	PolicyType           CurrencyPolicyType `json:"policyType"`
	ConversionTiming     ConversionTiming   `json:"conversionTiming"`
	RevaluationEnabled   bool               `json:"revaluationEnabled"`
	RevaluationFrequency string             `json:"revaluationFrequency"`
	ExchangeRateSource   RateSource         `json:"exchangeRateSource"`
	IsActive             bool               `json:"isActive"`
	AuditFields
}

// RequiresPostingConversion reports whether amounts must be converted to the
// reference currency before they reach the ledger.
func (p CurrencyPolicy) RequiresPostingConversion() bool {
	return p.PolicyType == PolicyNormalization ||
		(p.PolicyType == PolicyValuedAsset && p.ConversionTiming == TimingPosting)
}

// AllowsMultiCurrencyBalances reports whether ledger balances may remain
// denominated in foreign currencies.
func (p CurrencyPolicy) AllowsMultiCurrencyBalances() bool {
	return p.PolicyType == PolicyUnitOfMeasure ||
		(p.PolicyType == PolicyValuedAsset && p.ConversionTiming != TimingPosting)
}

// ConversionDecision is the outcome of evaluating the active policy for a
// transaction currency.
type ConversionDecision string

const (
	DecisionSameCurrency  ConversionDecision = "SAME_CURRENCY"
	DecisionUserRequested ConversionDecision = "USER_REQUESTED"
	DecisionPolicyMandate ConversionDecision = "POLICY_MANDATED"
	DecisionDeferred      ConversionDecision = "DEFERRED"
)

// InvolvesConversion reports whether the decision results in an actual conversion.
func (d ConversionDecision) InvolvesConversion() bool {
	return d == DecisionUserRequested || d == DecisionPolicyMandate
}

// TransactionCurrencyContext binds the policy regime in force at transaction
// time to a business record, preserving the ability to reinterpret historical
// conversions. A policy referenced by any context cannot be deleted.
type TransactionCurrencyContext struct {
	ContextID         string             `json:"contextID"`
	TransactionType   string             `json:"transactionType"`
	TransactionID     string             `json:"transactionID"`
	CurrencyCode      string             `json:"currencyCode"`
	Amount            decimal.Decimal    `json:"amount"`
	ReferenceCurrency *string            `json:"referenceCurrency,omitempty"`
	ReferenceAmount   *decimal.Decimal   `json:"referenceAmount,omitempty"`
	ExchangeRate      *decimal.Decimal   `json:"exchangeRate,omitempty"`
	PolicyID          *string            `json:"policyID,omitempty"`
	Decision          ConversionDecision `json:"decision"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// WasConverted reports whether a reference amount was captured at binding time.
func (c TransactionCurrencyContext) WasConverted() bool {
	return c.Decision.InvolvesConversion() && c.ReferenceAmount != nil
}

// AccountCurrencyBalance is an account's open-entry balance denominated in a
// foreign currency, as consumed by revaluation.
type AccountCurrencyBalance struct {
	AccountID      string          `json:"accountID"`
	AccountCode    string          `json:"accountCode"`
	AccountType    AccountType     `json:"accountType"`
	CurrencyCode   string          `json:"currencyCode"`
	ForeignBalance decimal.Decimal `json:"foreignBalance"` // debits - credits
}
