package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/qoyodhq/ledgercore/internal/apperrors"
	"github.com/qoyodhq/ledgercore/internal/core/domain"
	portssvc "github.com/qoyodhq/ledgercore/internal/core/ports/services"
	"github.com/qoyodhq/ledgercore/internal/core/services"
)

type ChartOfAccountsServiceTestSuite struct {
	suite.Suite
	accountRepo *MockAccountRepository
	service     portssvc.ChartOfAccountsSvcFacade
	ctx         context.Context

	cashAccount domain.Account
}

func (suite *ChartOfAccountsServiceTestSuite) SetupTest() {
	suite.accountRepo = new(MockAccountRepository)
	suite.service = services.NewChartOfAccountsService(suite.accountRepo)
	suite.ctx = context.Background()

	suite.cashAccount = domain.Account{
		AccountID:   "acc-cash",
		AccountCode: "1110",
		Name:        "Cash",
		AccountType: domain.Asset,
		IsLeaf:      true,
		IsActive:    true,
	}
}

func (suite *ChartOfAccountsServiceTestSuite) TestResolve_Success() {
	suite.accountRepo.On("FindAccountByCode", mock.Anything, "1110").Return(&suite.cashAccount, nil).Once()

	account, err := suite.service.Resolve(suite.ctx, "1110")

	suite.Require().NoError(err)
	suite.Equal("Cash", account.Name)
}

func (suite *ChartOfAccountsServiceTestSuite) TestResolve_NotFound() {
	suite.accountRepo.On("FindAccountByCode", mock.Anything, "9999").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.Resolve(suite.ctx, "9999")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAccountNotFound)
}

func (suite *ChartOfAccountsServiceTestSuite) TestResolveMany_MissingCode() {
	found := map[string]domain.Account{"1110": suite.cashAccount}

	suite.accountRepo.On("FindAccountsByCodes", mock.Anything, []string{"1110", "9999"}).Return(found, nil).Once()

	_, err := suite.service.ResolveMany(suite.ctx, []string{"1110", "9999"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAccountNotFound)
}

func (suite *ChartOfAccountsServiceTestSuite) TestResolveRole_PatternMatch() {
	petty := domain.Account{AccountID: "acc-petty", AccountCode: "1112", Name: "Petty Cash",
		AccountType: domain.Asset, IsLeaf: true, IsActive: true}

	suite.accountRepo.On("FindLeafAccountForRole", mock.Anything, domain.Asset, "Cash").Return(&petty, nil).Once()

	code, err := suite.service.ResolveRole(suite.ctx, domain.RoleCash)

	suite.Require().NoError(err)
	suite.Equal("1112", code)
}

func (suite *ChartOfAccountsServiceTestSuite) TestResolveRole_FallbackWhenNoMatch() {
	suite.accountRepo.On("FindLeafAccountForRole", mock.Anything, domain.Equity, "Retained").Return(nil, apperrors.ErrNotFound).Once()

	code, err := suite.service.ResolveRole(suite.ctx, domain.RoleRetainedEarnings)

	suite.Require().NoError(err)
	suite.Equal("3200", code)
}

func (suite *ChartOfAccountsServiceTestSuite) TestResolveRole_SecondPatternWins() {
	sales := domain.Account{AccountID: "acc-sales", AccountCode: "4100", Name: "Sales Revenue",
		AccountType: domain.Revenue, IsLeaf: true, IsActive: true}

	suite.accountRepo.On("FindLeafAccountForRole", mock.Anything, domain.Revenue, "4101").Return(nil, apperrors.ErrNotFound).Once()
	suite.accountRepo.On("FindLeafAccountForRole", mock.Anything, domain.Revenue, "Sales").Return(&sales, nil).Once()

	code, err := suite.service.ResolveRole(suite.ctx, domain.RoleSalesRevenue)

	suite.Require().NoError(err)
	suite.Equal("4100", code)
	suite.accountRepo.AssertExpectations(suite.T())
}

func (suite *ChartOfAccountsServiceTestSuite) TestResolveRole_UnknownRole() {
	_, err := suite.service.ResolveRole(suite.ctx, domain.AccountRole("space_elevator"))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ChartOfAccountsServiceTestSuite) TestValidate_OK() {
	suite.accountRepo.On("FindAccountByCode", mock.Anything, "1110").Return(&suite.cashAccount, nil).Once()

	suite.Require().NoError(suite.service.Validate(suite.ctx, "1110"))
}

func (suite *ChartOfAccountsServiceTestSuite) TestValidate_Inactive() {
	inactive := suite.cashAccount
	inactive.IsActive = false

	suite.accountRepo.On("FindAccountByCode", mock.Anything, "1110").Return(&inactive, nil).Once()

	err := suite.service.Validate(suite.ctx, "1110")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAccountInvalid)
}

func (suite *ChartOfAccountsServiceTestSuite) TestValidate_HeaderAccount() {
	header := suite.cashAccount
	header.IsLeaf = false

	suite.accountRepo.On("FindAccountByCode", mock.Anything, "1110").Return(&header, nil).Once()

	err := suite.service.Validate(suite.ctx, "1110")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAccountInvalid)
}

func TestChartOfAccountsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ChartOfAccountsServiceTestSuite))
}
