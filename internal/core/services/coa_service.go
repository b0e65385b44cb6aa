package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qoyodhq/ledgercore/internal/apperrors"
	"github.com/qoyodhq/ledgercore/internal/core/domain"
	portsrepo "github.com/qoyodhq/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/qoyodhq/ledgercore/internal/core/ports/services"
	"github.com/qoyodhq/ledgercore/internal/middleware"
)

// roleSpec describes how a logical role key resolves: the account type to
// search, name/code patterns in preference order, and the conventional
// fallback code used when the chart has no matching leaf.
type roleSpec struct {
	accountType domain.AccountType
	patterns    []string
	fallback    string
}

var roleSpecs = map[domain.AccountRole]roleSpec{
	domain.RoleCash:                {domain.Asset, []string{"Cash"}, "1110"},
	domain.RoleAccountsReceivable:  {domain.Asset, []string{"Receivable"}, "1120"},
	domain.RoleInventory:           {domain.Asset, []string{"Inventory"}, "1130"},
	domain.RoleFixedAssets:         {domain.Asset, []string{"Fixed"}, "1210"},
	domain.RoleAccountsPayable:     {domain.Liability, []string{"Payable"}, "2110"},
	domain.RoleOutputVAT:           {domain.Liability, []string{"Output"}, "2210"},
	domain.RoleInputVAT:            {domain.Liability, []string{"Input"}, "2220"},
	domain.RoleCapital:             {domain.Equity, []string{"Capital"}, "3100"},
	domain.RoleRetainedEarnings:    {domain.Equity, []string{"Retained"}, "3200"},
	domain.RoleSalesRevenue:        {domain.Revenue, []string{"4101", "Sales"}, "4100"},
	domain.RoleSalesDiscount:       {domain.Revenue, []string{"Discount"}, "4110"},
	domain.RoleOtherRevenue:        {domain.Revenue, []string{"Other"}, "4200"},
	domain.RoleCostOfGoodsSold:     {domain.Expense, []string{"COGS", "Cost of Goods"}, "5100"},
	domain.RoleOperatingExpenses:   {domain.Expense, []string{"Operating", "5290", "5210"}, "5210"},
	domain.RoleSalariesExpense:     {domain.Expense, []string{"Salar"}, "5220"},
	domain.RoleSalariesPayable:     {domain.Liability, []string{"Salary Payable"}, "2120"},
	domain.RoleDepreciationExpense: {domain.Expense, []string{"Depreciation"}, "5300"},
	domain.RoleFXGain:              {domain.Revenue, []string{"Exchange Gain", "FX Gain"}, "4300"},
	domain.RoleFXLoss:              {domain.Expense, []string{"Exchange Loss", "FX Loss"}, "5400"},
}

// chartOfAccountsService resolves codes and roles against the account registry.
type chartOfAccountsService struct {
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewChartOfAccountsService creates the chart of accounts registry service.
func NewChartOfAccountsService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.ChartOfAccountsSvcFacade {
	return &chartOfAccountsService{accountRepo: accountRepo}
}

var _ portssvc.ChartOfAccountsSvcFacade = (*chartOfAccountsService)(nil)

// Resolve returns the account for a code, or ErrAccountNotFound.
func (s *chartOfAccountsService) Resolve(ctx context.Context, accountCode string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, accountCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountCode)
		}
		return nil, fmt.Errorf("failed to resolve account %s: %w", accountCode, err)
	}
	return account, nil
}

// ResolveMany resolves a set of codes in one round trip. Every requested code
// must resolve; a missing code fails the whole call.
func (s *chartOfAccountsService) ResolveMany(ctx context.Context, accountCodes []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, accountCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve accounts: %w", err)
	}
	for _, code := range accountCodes {
		if _, ok := accounts[code]; !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, code)
		}
	}
	return accounts, nil
}

// ResolveRole maps a logical role key to a concrete account code so that
// posting producers never hard-code account codes.
func (s *chartOfAccountsService) ResolveRole(ctx context.Context, role domain.AccountRole) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	spec, ok := roleSpecs[role]
	if !ok {
		return "", fmt.Errorf("%w: unknown account role %q", apperrors.ErrValidation, role)
	}

	for _, pattern := range spec.patterns {
		account, err := s.accountRepo.FindLeafAccountForRole(ctx, spec.accountType, pattern)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return "", fmt.Errorf("failed to resolve role %q: %w", role, err)
		}
		return account.AccountCode, nil
	}

	logger.Debug("No chart match for role, using fallback code",
		slog.String("role", string(role)), slog.String("fallback", spec.fallback))
	return spec.fallback, nil
}

// Validate returns nil only if the account exists, is active, and is a leaf.
func (s *chartOfAccountsService) Validate(ctx context.Context, accountCode string) error {
	account, err := s.Resolve(ctx, accountCode)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return fmt.Errorf("%w: account %s is inactive", apperrors.ErrAccountInvalid, accountCode)
	}
	if !account.IsLeaf {
		return fmt.Errorf("%w: account %s is a summary header", apperrors.ErrAccountInvalid, accountCode)
	}
	return nil
}

// ListAccounts returns the chart of accounts.
func (s *chartOfAccountsService) ListAccounts(ctx context.Context, activeOnly bool) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}
