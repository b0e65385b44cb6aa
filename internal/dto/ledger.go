package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/qoyodhq/ledgercore/internal/core/domain"
)

// EntryInput is one debit or credit line of a posting request.
type EntryInput struct {
	AccountCode string           `json:"accountCode" binding:"required"`
	EntryType   domain.EntryType `json:"entryType" binding:"required,oneof=DEBIT CREDIT"`
	Amount      decimal.Decimal  `json:"amount" binding:"required"`
	Description string           `json:"description"`
}

// PostTransactionRequest carries a balanced entry set to be written as one voucher.
type PostTransactionRequest struct {
	Entries       []EntryInput `json:"entries" binding:"required,min=2,dive"`
	ReferenceType *string      `json:"referenceType"`
	ReferenceID   *string      `json:"referenceID"`
	VoucherNumber *string      `json:"voucherNumber"`
	Date          time.Time    `json:"date" binding:"required" time_format:"2006-01-02"`
	CurrencyCode  string       `json:"currencyCode"`
}

// PostTransactionResponse returns the voucher number assigned to the posting.
type PostTransactionResponse struct {
	VoucherNumber string `json:"voucherNumber"`
}

// ReverseTransactionRequest asks for a mirror voucher offsetting an earlier one.
type ReverseTransactionRequest struct {
	Reason string `json:"reason"`
}

// BalanceResponse is a point-in-time account balance on the account's normal side.
type BalanceResponse struct {
	AccountCode string          `json:"accountCode"`
	AsOf        time.Time       `json:"asOf"`
	Balance     decimal.Decimal `json:"balance"`
}

// EntryResponse is the API shape of a ledger entry.
type EntryResponse struct {
	EntryID               string          `json:"entryID"`
	VoucherNumber         string          `json:"voucherNumber"`
	VoucherDate           time.Time       `json:"voucherDate"`
	AccountCode           string          `json:"accountCode"`
	EntryType             string          `json:"entryType"`
	Amount                decimal.Decimal `json:"amount"`
	CurrencyCode          string          `json:"currencyCode"`
	Description           string          `json:"description"`
	ReferenceType         *string         `json:"referenceType,omitempty"`
	ReferenceID           *string         `json:"referenceID,omitempty"`
	FiscalPeriodID        string          `json:"fiscalPeriodID"`
	IsClosed              bool            `json:"isClosed"`
	ReversesVoucherNumber *string         `json:"reversesVoucherNumber,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	CreatedBy             string          `json:"createdBy"`
}

// VoucherResponse is the API shape of a voucher with its entries.
type VoucherResponse struct {
	VoucherNumber string          `json:"voucherNumber"`
	VoucherDate   time.Time       `json:"voucherDate"`
	Description   string          `json:"description"`
	TotalDebits   decimal.Decimal `json:"totalDebits"`
	TotalCredits  decimal.Decimal `json:"totalCredits"`
	Entries       []EntryResponse `json:"entries"`
}

// ToEntryResponse converts a domain LedgerEntry to its API shape.
func ToEntryResponse(e domain.LedgerEntry) EntryResponse {
	return EntryResponse{
		EntryID:               e.EntryID,
		VoucherNumber:         e.VoucherNumber,
		VoucherDate:           e.VoucherDate,
		AccountCode:           e.AccountCode,
		EntryType:             string(e.EntryType),
		Amount:                e.Amount,
		CurrencyCode:          e.CurrencyCode,
		Description:           e.Description,
		ReferenceType:         e.ReferenceType,
		ReferenceID:           e.ReferenceID,
		FiscalPeriodID:        e.FiscalPeriodID,
		IsClosed:              e.IsClosed,
		ReversesVoucherNumber: e.ReversesVoucherNumber,
		CreatedAt:             e.CreatedAt,
		CreatedBy:             e.CreatedBy,
	}
}

// ToVoucherResponse converts a domain Voucher to its API shape.
func ToVoucherResponse(v *domain.Voucher) VoucherResponse {
	entries := make([]EntryResponse, len(v.Entries))
	for i, e := range v.Entries {
		entries[i] = ToEntryResponse(e)
	}
	return VoucherResponse{
		VoucherNumber: v.VoucherNumber,
		VoucherDate:   v.VoucherDate,
		Description:   v.Description,
		TotalDebits:   v.TotalDebits,
		TotalCredits:  v.TotalCredits,
		Entries:       entries,
	}
}
