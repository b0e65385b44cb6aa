package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsDebitNormal reports whether the account type accumulates value on the debit side.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// Account represents a node in the chart of accounts. Only active leaf
// accounts accept postings; non-leaf accounts are summary headers.
type Account struct {
	AccountID       string      `json:"accountID"`
	AccountCode     string      `json:"accountCode"`
	Name            string      `json:"name"`
	AccountType     AccountType `json:"accountType"`
	ParentAccountID *string     `json:"parentAccountID,omitempty"`
	IsLeaf          bool        `json:"isLeaf"`
	IsActive        bool        `json:"isActive"`
	AuditFields
}

// AccountRole is a logical role key resolved to a concrete account code by the
// chart of accounts registry, e.g. RoleCash -> "1110". Posting producers use
// roles so account codes are never hard-coded outside the registry.
type AccountRole string

const (
	RoleCash                AccountRole = "cash"
	RoleAccountsReceivable  AccountRole = "accounts_receivable"
	RoleInventory           AccountRole = "inventory"
	RoleFixedAssets         AccountRole = "fixed_assets"
	RoleAccountsPayable     AccountRole = "accounts_payable"
	RoleOutputVAT           AccountRole = "output_vat"
	RoleInputVAT            AccountRole = "input_vat"
	RoleCapital             AccountRole = "capital"
	RoleRetainedEarnings    AccountRole = "retained_earnings"
	RoleSalesRevenue        AccountRole = "sales_revenue"
	RoleSalesDiscount       AccountRole = "sales_discount"
	RoleOtherRevenue        AccountRole = "other_revenue"
	RoleCostOfGoodsSold     AccountRole = "cost_of_goods_sold"
	RoleOperatingExpenses   AccountRole = "operating_expenses"
	RoleSalariesExpense     AccountRole = "salaries_expense"
	RoleSalariesPayable     AccountRole = "salaries_payable"
	RoleDepreciationExpense AccountRole = "depreciation_expense"
	RoleFXGain              AccountRole = "fx_gain"
	RoleFXLoss              AccountRole = "fx_loss"
)
