package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType indicates whether a ledger entry is a Debit or a Credit.
type EntryType string

const (
	Debit  EntryType = "DEBIT"
	Credit EntryType = "CREDIT"
)

// Opposite returns the mirrored side, used when building reversal vouchers.
func (t EntryType) Opposite() EntryType {
	if t == Debit {
		return Credit
	}
	return Debit
}

// LedgerEntry is a single debit or credit line against one leaf account.
// Entries are append-only: once written they are never updated or deleted,
// only offset by a later reversal voucher. The one sanctioned mutation is the
// IsClosed flag, set when a period close consumes the entry so that subsequent
// net-income calculations exclude it.
type LedgerEntry struct {
	EntryID       string          `json:"entryID"`
	VoucherNumber string          `json:"voucherNumber"`
	VoucherDate   time.Time       `json:"voucherDate"`
	AccountID     string          `json:"accountID"`
	AccountCode   string          `json:"accountCode"`
	EntryType     EntryType       `json:"entryType"`
	Amount        decimal.Decimal `json:"amount"` // strictly positive
	CurrencyCode  string          `json:"currencyCode"`
	Description   string          `json:"description"`

	// Polymorphic pointer to the originating business record. The ledger never
	// dereferences it; producers resolve it in their own module.
	ReferenceType *string `json:"referenceType,omitempty"`
	ReferenceID   *string `json:"referenceID,omitempty"`

	FiscalPeriodID string `json:"fiscalPeriodID"`
	IsClosed       bool   `json:"isClosed"`

	// ReversesVoucherNumber links a reversal entry back to the voucher it
	// offsets, and is how double reversals are detected.
	ReversesVoucherNumber *string `json:"reversesVoucherNumber,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

// Voucher is the logical header of a balanced entry set sharing one voucher
// number. It is derived from the entries rather than stored as its own row.
type Voucher struct {
	VoucherNumber string          `json:"voucherNumber"`
	VoucherDate   time.Time       `json:"voucherDate"`
	Description   string          `json:"description"`
	ReferenceType *string         `json:"referenceType,omitempty"`
	ReferenceID   *string         `json:"referenceID,omitempty"`
	TotalDebits   decimal.Decimal `json:"totalDebits"`
	TotalCredits  decimal.Decimal `json:"totalCredits"`
	Entries       []LedgerEntry   `json:"entries,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
}

// AccountActivity is an account's raw debit/credit totals over some scope
// (a date range, a fiscal period). Consumers fold it into a normal-side
// balance with accounting.NormalBalance.
type AccountActivity struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debits      decimal.Decimal `json:"debits"`
	Credits     decimal.Decimal `json:"credits"`
}

// AccountPeriodBalance is an account's normal-side balance for the open
// entries of one fiscal period.
type AccountPeriodBalance struct {
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	AccountType AccountType     `json:"accountType"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalanceRow is one account line of a trial balance.
type TrialBalanceRow struct {
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	AccountType   AccountType     `json:"accountType"`
	DebitBalance  decimal.Decimal `json:"debitBalance"`
	CreditBalance decimal.Decimal `json:"creditBalance"`
}

// TrialBalance aggregates per-account balances as of a date.
type TrialBalance struct {
	AsOf         time.Time         `json:"asOf"`
	Rows         []TrialBalanceRow `json:"rows"`
	TotalDebits  decimal.Decimal   `json:"totalDebits"`
	TotalCredits decimal.Decimal   `json:"totalCredits"`
	IsBalanced   bool              `json:"isBalanced"`
}
