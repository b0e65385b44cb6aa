package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/qoyodhq/ledgercore/internal/core/domain"
)

// SignedAmount applies the normal-balance sign convention to an entry amount.
// DEBIT to ASSET/EXPENSE -> positive, CREDIT to ASSET/EXPENSE -> negative,
// DEBIT to LIABILITY/EQUITY/REVENUE -> negative, CREDIT -> positive.
func SignedAmount(entryType domain.EntryType, amount decimal.Decimal, accountType domain.AccountType) (decimal.Decimal, error) {
	isDebit := entryType == domain.Debit
	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit {
			return amount.Neg(), nil
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit {
			return amount.Neg(), nil
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type %q", accountType)
	}
	return amount, nil
}

// SumByType totals the debit and credit amounts of an entry set.
func SumByType(entries []domain.LedgerEntry) (debits, credits decimal.Decimal) {
	debits = decimal.Zero
	credits = decimal.Zero
	for _, e := range entries {
		if e.EntryType == domain.Debit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits
}

// NormalBalance folds debit and credit totals into the balance on the
// account's normal side: debits-credits for debit-normal account types,
// credits-debits otherwise.
func NormalBalance(accountType domain.AccountType, debits, credits decimal.Decimal) decimal.Decimal {
	if accountType.IsDebitNormal() {
		return debits.Sub(credits)
	}
	return credits.Sub(debits)
}
