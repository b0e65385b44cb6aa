package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/qoyodhq/ledgercore/internal/core/domain"
	"github.com/qoyodhq/ledgercore/internal/dto"
)

// LedgerSvcFacade is the double-entry posting engine. It is the only writer
// of ledger entries in the system; business modules call PostTransaction with
// a (referenceType, referenceID) pair identifying their own record and must
// never write ledger rows directly.
type LedgerSvcFacade interface {
	// PostTransaction validates and atomically writes a balanced entry set,
	// returning the voucher number (allocated when the request supplies none).
	PostTransaction(ctx context.Context, req dto.PostTransactionRequest, userID string) (string, error)
	// ReverseTransaction posts a mirror voucher offsetting an earlier one,
	// dated at the reversal time. The original entries are never mutated.
	ReverseTransaction(ctx context.Context, voucherNumber, reason, userID string) (string, error)
	// GetAccountBalance returns the account's balance on its normal side over
	// all entries with voucher_date <= asOf. It is a pure read.
	GetAccountBalance(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error)
	// NextVoucherNumber atomically allocates the next number for a document type.
	NextVoucherNumber(ctx context.Context, documentType string) (string, error)
	GetVoucher(ctx context.Context, voucherNumber string) (*domain.Voucher, error)
	ListEntriesByAccount(ctx context.Context, accountCode string, limit int) ([]domain.LedgerEntry, error)
	GetTrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error)
	// PeriodBalancesByType returns normal-side balances of one account type
	// over a period's entries not yet consumed by a close. Used by period close.
	PeriodBalancesByType(ctx context.Context, fiscalPeriodID string, accountType domain.AccountType) ([]domain.AccountPeriodBalance, error)
	// PostPeriodClosing writes a period's closing voucher. It bypasses the
	// period-state gate that PostTransaction enforces: the close operation is
	// the one writer permitted to post into a period at the moment it closes.
	// Reserved for the fiscal period service; not exposed over HTTP.
	PostPeriodClosing(ctx context.Context, period domain.FiscalPeriod, entries []dto.EntryInput, netIncome decimal.Decimal, userID string) (string, error)
}
