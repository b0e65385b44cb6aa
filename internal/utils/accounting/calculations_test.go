package accounting_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qoyodhq/ledgercore/internal/core/domain"
	"github.com/qoyodhq/ledgercore/internal/utils/accounting"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSignedAmount(t *testing.T) {
	tests := []struct {
		name        string
		entryType   domain.EntryType
		accountType domain.AccountType
		amount      string
		want        string
	}{
		{"debit to asset is positive", domain.Debit, domain.Asset, "100.00", "100.00"},
		{"credit to asset is negative", domain.Credit, domain.Asset, "100.00", "-100.00"},
		{"debit to expense is positive", domain.Debit, domain.Expense, "42.50", "42.50"},
		{"credit to revenue is positive", domain.Credit, domain.Revenue, "1000.00", "1000.00"},
		{"debit to revenue is negative", domain.Debit, domain.Revenue, "1000.00", "-1000.00"},
		{"credit to liability is positive", domain.Credit, domain.Liability, "75.25", "75.25"},
		{"debit to equity is negative", domain.Debit, domain.Equity, "500.00", "-500.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := accounting.SignedAmount(tt.entryType, d(tt.amount), tt.accountType)
			require.NoError(t, err)
			assert.True(t, got.Equal(d(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestSignedAmount_UnknownAccountType(t *testing.T) {
	_, err := accounting.SignedAmount(domain.Debit, d("10"), domain.AccountType("BOGUS"))
	assert.Error(t, err)
}

func TestSumByType(t *testing.T) {
	entries := []domain.LedgerEntry{
		{EntryType: domain.Debit, Amount: d("100.00")},
		{EntryType: domain.Credit, Amount: d("60.00")},
		{EntryType: domain.Debit, Amount: d("25.00")},
		{EntryType: domain.Credit, Amount: d("65.00")},
	}

	debits, credits := accounting.SumByType(entries)
	assert.True(t, debits.Equal(d("125.00")))
	assert.True(t, credits.Equal(d("125.00")))
}

func TestSumByType_Empty(t *testing.T) {
	debits, credits := accounting.SumByType(nil)
	assert.True(t, debits.IsZero())
	assert.True(t, credits.IsZero())
}

func TestNormalBalance(t *testing.T) {
	// A revenue account holding 1000.00 of credits reports +1000.00.
	got := accounting.NormalBalance(domain.Revenue, decimal.Zero, d("1000.00"))
	assert.True(t, got.Equal(d("1000.00")))

	// An asset account with more credits than debits goes negative.
	got = accounting.NormalBalance(domain.Asset, d("100.00"), d("150.00"))
	assert.True(t, got.Equal(d("-50.00")))

	got = accounting.NormalBalance(domain.Expense, d("300.00"), d("100.00"))
	assert.True(t, got.Equal(d("200.00")))

	got = accounting.NormalBalance(domain.Liability, d("20.00"), d("80.00"))
	assert.True(t, got.Equal(d("60.00")))
}
