package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/qoyodhq/ledgercore/internal/apperrors"
	"github.com/qoyodhq/ledgercore/internal/core/domain"
	portssvc "github.com/qoyodhq/ledgercore/internal/core/ports/services"
	"github.com/qoyodhq/ledgercore/internal/core/services"
	"github.com/qoyodhq/ledgercore/internal/dto"
)

type CurrencyPolicyServiceTestSuite struct {
	suite.Suite
	policyRepo   *MockCurrencyPolicyRepository
	currencyRepo *MockCurrencyRepository
	ledgerRepo   *MockLedgerRepository
	rateSvc      *MockExchangeRateService
	ledgerSvc    *MockLedgerService
	coaSvc       *MockChartOfAccountsService
	service      portssvc.CurrencyPolicySvcFacade
	ctx          context.Context

	primarySAR   *domain.Currency
	activePolicy *domain.CurrencyPolicy
}

func (suite *CurrencyPolicyServiceTestSuite) SetupTest() {
	suite.policyRepo = new(MockCurrencyPolicyRepository)
	suite.currencyRepo = new(MockCurrencyRepository)
	suite.ledgerRepo = new(MockLedgerRepository)
	suite.rateSvc = new(MockExchangeRateService)
	suite.ledgerSvc = new(MockLedgerService)
	suite.coaSvc = new(MockChartOfAccountsService)
	suite.service = services.NewCurrencyPolicyService(
		suite.policyRepo, suite.currencyRepo, suite.ledgerRepo,
		suite.rateSvc, suite.ledgerSvc, suite.coaSvc,
	)
	suite.ctx = context.Background()

	suite.primarySAR = &domain.Currency{CurrencyCode: "SAR", Name: "Saudi Riyal", Precision: 2, IsPrimary: true}
	suite.activePolicy = &domain.CurrencyPolicy{
		PolicyID:           "policy-1",
		Name:               "Normalize everything",
		Code:               "NORM",
		PolicyType:         domain.PolicyNormalization,
		ConversionTiming:   domain.TimingPosting,
		RevaluationEnabled: true,
		ExchangeRateSource: domain.RateSourceManual,
		IsActive:           true,
	}
}

func (suite *CurrencyPolicyServiceTestSuite) TestConvert_Success() {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	rate := &domain.ExchangeRate{SourceCurrency: "USD", TargetCurrency: "SAR", Rate: decimal.RequireFromString("3.75")}

	suite.rateSvc.On("GetRate", mock.Anything, "USD", "SAR", date).Return(rate, nil).Once()
	suite.currencyRepo.On("FindCurrencyByCode", mock.Anything, "SAR").Return(suite.primarySAR, nil).Once()

	resp, err := suite.service.Convert(suite.ctx, decimal.RequireFromString("100.00"), "usd", "sar", date)

	suite.Require().NoError(err)
	suite.True(resp.Amount.Equal(decimal.RequireFromString("375.00")), "got %s", resp.Amount)
	suite.True(resp.Rate.Equal(decimal.RequireFromString("3.75")))
}

func (suite *CurrencyPolicyServiceTestSuite) TestConvert_Identity() {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	resp, err := suite.service.Convert(suite.ctx, decimal.RequireFromString("42.00"), "SAR", "sar", date)

	suite.Require().NoError(err)
	suite.True(resp.Amount.Equal(decimal.RequireFromString("42.00")))
	suite.True(resp.Rate.Equal(decimal.NewFromInt(1)))
	suite.rateSvc.AssertNotCalled(suite.T(), "GetRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CurrencyPolicyServiceTestSuite) TestConvert_RateNotFound() {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	suite.rateSvc.On("GetRate", mock.Anything, "EUR", "SAR", date).Return(nil, apperrors.ErrRateNotFound).Once()

	_, err := suite.service.Convert(suite.ctx, decimal.RequireFromString("10.00"), "EUR", "SAR", date)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRateNotFound)
}

func (suite *CurrencyPolicyServiceTestSuite) TestCreatePolicy_DefaultsRateSource() {
	req := dto.CreateCurrencyPolicyRequest{
		Name:             "Unit of measure",
		Code:             "uom",
		PolicyType:       domain.PolicyUnitOfMeasure,
		ConversionTiming: domain.TimingNever,
	}

	suite.policyRepo.On("SavePolicy", mock.Anything, mock.MatchedBy(func(p domain.CurrencyPolicy) bool {
		return p.Code == "UOM" && p.ExchangeRateSource == domain.RateSourceManual &&
			!p.IsActive && p.PolicyID != "" && p.CreatedBy == "user-1"
	})).Return(nil).Once()

	policy, err := suite.service.CreatePolicy(suite.ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Equal("UOM", policy.Code)
	suite.policyRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyPolicyServiceTestSuite) TestActivatePolicy_NotFound() {
	suite.policyRepo.On("FindPolicyByID", mock.Anything, "policy-missing").Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.ActivatePolicy(suite.ctx, "policy-missing", "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.policyRepo.AssertNotCalled(suite.T(), "ActivatePolicy", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CurrencyPolicyServiceTestSuite) TestDeletePolicy_ActiveForbidden() {
	suite.policyRepo.On("FindPolicyByID", mock.Anything, "policy-1").Return(suite.activePolicy, nil).Once()

	err := suite.service.DeletePolicy(suite.ctx, "policy-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrActivePolicyDeletionForbidden)
	suite.policyRepo.AssertNotCalled(suite.T(), "DeletePolicy", mock.Anything, mock.Anything)
}

func (suite *CurrencyPolicyServiceTestSuite) TestDeletePolicy_ReferencedForbidden() {
	inactive := *suite.activePolicy
	inactive.IsActive = false

	suite.policyRepo.On("FindPolicyByID", mock.Anything, "policy-1").Return(&inactive, nil).Once()
	suite.policyRepo.On("CountContextsForPolicy", mock.Anything, "policy-1").Return(int64(3), nil).Once()

	err := suite.service.DeletePolicy(suite.ctx, "policy-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrActivePolicyDeletionForbidden)
}

func (suite *CurrencyPolicyServiceTestSuite) TestDeletePolicy_Success() {
	inactive := *suite.activePolicy
	inactive.IsActive = false

	suite.policyRepo.On("FindPolicyByID", mock.Anything, "policy-1").Return(&inactive, nil).Once()
	suite.policyRepo.On("CountContextsForPolicy", mock.Anything, "policy-1").Return(int64(0), nil).Once()
	suite.policyRepo.On("DeletePolicy", mock.Anything, "policy-1").Return(nil).Once()

	suite.Require().NoError(suite.service.DeletePolicy(suite.ctx, "policy-1"))
	suite.policyRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyPolicyServiceTestSuite) TestDecision_SameCurrency() {
	suite.currencyRepo.On("FindPrimaryCurrency", mock.Anything).Return(suite.primarySAR, nil).Once()

	decision, err := suite.service.DetermineConversionDecision(suite.ctx, "sar", false)

	suite.Require().NoError(err)
	suite.Equal(domain.DecisionSameCurrency, decision)
	suite.policyRepo.AssertNotCalled(suite.T(), "FindActivePolicy", mock.Anything)
}

func (suite *CurrencyPolicyServiceTestSuite) TestDecision_UserRequested() {
	suite.currencyRepo.On("FindPrimaryCurrency", mock.Anything).Return(suite.primarySAR, nil).Once()
	suite.policyRepo.On("FindActivePolicy", mock.Anything).Return(suite.activePolicy, nil).Once()

	decision, err := suite.service.DetermineConversionDecision(suite.ctx, "USD", true)

	suite.Require().NoError(err)
	suite.Equal(domain.DecisionUserRequested, decision)
}

func (suite *CurrencyPolicyServiceTestSuite) TestDecision_NormalizationMandates() {
	suite.currencyRepo.On("FindPrimaryCurrency", mock.Anything).Return(suite.primarySAR, nil).Once()
	suite.policyRepo.On("FindActivePolicy", mock.Anything).Return(suite.activePolicy, nil).Once()

	decision, err := suite.service.DetermineConversionDecision(suite.ctx, "USD", false)

	suite.Require().NoError(err)
	suite.Equal(domain.DecisionPolicyMandate, decision)
}

func (suite *CurrencyPolicyServiceTestSuite) TestDecision_UnitOfMeasureDefers() {
	uom := *suite.activePolicy
	uom.PolicyType = domain.PolicyUnitOfMeasure

	suite.currencyRepo.On("FindPrimaryCurrency", mock.Anything).Return(suite.primarySAR, nil).Once()
	suite.policyRepo.On("FindActivePolicy", mock.Anything).Return(&uom, nil).Once()

	decision, err := suite.service.DetermineConversionDecision(suite.ctx, "USD", false)

	suite.Require().NoError(err)
	suite.Equal(domain.DecisionDeferred, decision)
}

func (suite *CurrencyPolicyServiceTestSuite) TestDecision_ValuedAssetFollowsTiming() {
	atPosting := *suite.activePolicy
	atPosting.PolicyType = domain.PolicyValuedAsset
	atPosting.ConversionTiming = domain.TimingPosting

	suite.currencyRepo.On("FindPrimaryCurrency", mock.Anything).Return(suite.primarySAR, nil).Twice()
	suite.policyRepo.On("FindActivePolicy", mock.Anything).Return(&atPosting, nil).Once()

	decision, err := suite.service.DetermineConversionDecision(suite.ctx, "USD", false)
	suite.Require().NoError(err)
	suite.Equal(domain.DecisionPolicyMandate, decision)

	atSettlement := atPosting
	atSettlement.ConversionTiming = domain.TimingSettlement
	suite.policyRepo.On("FindActivePolicy", mock.Anything).Return(&atSettlement, nil).Once()

	decision, err = suite.service.DetermineConversionDecision(suite.ctx, "USD", false)
	suite.Require().NoError(err)
	suite.Equal(domain.DecisionDeferred, decision)
}

func (suite *CurrencyPolicyServiceTestSuite) TestDecision_NoActivePolicyDefaultsToMandate() {
	suite.currencyRepo.On("FindPrimaryCurrency", mock.Anything).Return(suite.primarySAR, nil).Once()
	suite.policyRepo.On("FindActivePolicy", mock.Anything).Return(nil, apperrors.ErrNotFound).Once()

	decision, err := suite.service.DetermineConversionDecision(suite.ctx, "USD", false)

	suite.Require().NoError(err)
	suite.Equal(domain.DecisionPolicyMandate, decision)
}

func (suite *CurrencyPolicyServiceTestSuite) TestCreateTransactionContext_MandatedConversion() {
	req := dto.CreateTransactionContextRequest{
		TransactionType: "invoices",
		TransactionID:   "inv-42",
		CurrencyCode:    "usd",
		Amount:          decimal.RequireFromString("100.00"),
	}
	rate := &domain.ExchangeRate{SourceCurrency: "USD", TargetCurrency: "SAR", Rate: decimal.RequireFromString("3.75")}

	suite.currencyRepo.On("FindPrimaryCurrency", mock.Anything).Return(suite.primarySAR, nil).Twice()
	suite.policyRepo.On("FindActivePolicy", mock.Anything).Return(suite.activePolicy, nil).Twice()
	suite.rateSvc.On("GetRate", mock.Anything, "USD", "SAR", mock.AnythingOfType("time.Time")).Return(rate, nil).Once()
	suite.currencyRepo.On("FindCurrencyByCode", mock.Anything, "SAR").Return(suite.primarySAR, nil).Once()
	suite.policyRepo.On("SaveTransactionContext", mock.Anything, mock.MatchedBy(func(tcc domain.TransactionCurrencyContext) bool {
		return tcc.Decision == domain.DecisionPolicyMandate &&
			tcc.CurrencyCode == "USD" &&
			tcc.PolicyID != nil && *tcc.PolicyID == "policy-1" &&
			tcc.ReferenceAmount != nil && tcc.ReferenceAmount.Equal(decimal.RequireFromString("375.00")) &&
			tcc.ExchangeRate != nil && tcc.ExchangeRate.Equal(decimal.RequireFromString("3.75"))
	})).Return(nil).Once()

	tcc, err := suite.service.CreateTransactionContext(suite.ctx, req)

	suite.Require().NoError(err)
	suite.True(tcc.WasConverted())
	suite.policyRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyPolicyServiceTestSuite) TestCreateTransactionContext_DeferredSkipsConversion() {
	uom := *suite.activePolicy
	uom.PolicyType = domain.PolicyUnitOfMeasure
	req := dto.CreateTransactionContextRequest{
		TransactionType: "invoices",
		TransactionID:   "inv-43",
		CurrencyCode:    "USD",
		Amount:          decimal.RequireFromString("100.00"),
	}

	suite.currencyRepo.On("FindPrimaryCurrency", mock.Anything).Return(suite.primarySAR, nil).Twice()
	suite.policyRepo.On("FindActivePolicy", mock.Anything).Return(&uom, nil).Twice()
	suite.policyRepo.On("SaveTransactionContext", mock.Anything, mock.MatchedBy(func(tcc domain.TransactionCurrencyContext) bool {
		return tcc.Decision == domain.DecisionDeferred && tcc.ReferenceAmount == nil && tcc.ExchangeRate == nil
	})).Return(nil).Once()

	tcc, err := suite.service.CreateTransactionContext(suite.ctx, req)

	suite.Require().NoError(err)
	suite.False(tcc.WasConverted())
	suite.rateSvc.AssertNotCalled(suite.T(), "GetRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CurrencyPolicyServiceTestSuite) TestProcessRevaluation_NotEnabled() {
	disabled := *suite.activePolicy
	disabled.RevaluationEnabled = false

	suite.policyRepo.On("FindActivePolicy", mock.Anything).Return(&disabled, nil).Once()

	_, err := suite.service.ProcessRevaluation(suite.ctx, dto.ProcessRevaluationRequest{
		CurrencyCode: "USD",
		NewRate:      decimal.RequireFromString("3.80"),
	}, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRevaluationNotEnabled)
}

func (suite *CurrencyPolicyServiceTestSuite) TestProcessRevaluation_NoActivePolicy() {
	suite.policyRepo.On("FindActivePolicy", mock.Anything).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.ProcessRevaluation(suite.ctx, dto.ProcessRevaluationRequest{
		CurrencyCode: "USD",
		NewRate:      decimal.RequireFromString("3.80"),
	}, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRevaluationNotEnabled)
}

func (suite *CurrencyPolicyServiceTestSuite) TestProcessRevaluation_NonPositiveRate() {
	suite.policyRepo.On("FindActivePolicy", mock.Anything).Return(suite.activePolicy, nil).Once()

	_, err := suite.service.ProcessRevaluation(suite.ctx, dto.ProcessRevaluationRequest{
		CurrencyCode: "USD",
		NewRate:      decimal.Zero,
	}, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CurrencyPolicyServiceTestSuite) TestProcessRevaluation_GainPosted() {
	booked := &domain.ExchangeRate{SourceCurrency: "USD", TargetCurrency: "SAR", Rate: decimal.RequireFromString("3.75")}
	balances := []domain.AccountCurrencyBalance{
		{AccountID: "acc-ar", AccountCode: "1120", AccountType: domain.Asset,
			CurrencyCode: "USD", ForeignBalance: decimal.RequireFromString("1000.00")},
	}

	suite.policyRepo.On("FindActivePolicy", mock.Anything).Return(suite.activePolicy, nil).Once()
	suite.currencyRepo.On("FindPrimaryCurrency", mock.Anything).Return(suite.primarySAR, nil).Once()
	suite.rateSvc.On("GetRate", mock.Anything, "USD", "SAR", mock.AnythingOfType("time.Time")).Return(booked, nil).Once()
	suite.ledgerRepo.On("ForeignCurrencyBalances", mock.Anything, "USD").Return(balances, nil).Once()
	suite.coaSvc.On("ResolveRole", mock.Anything, domain.RoleFXGain).Return("4300", nil).Once()
	suite.coaSvc.On("ResolveRole", mock.Anything, domain.RoleFXLoss).Return("5400", nil).Once()
	suite.ledgerSvc.On("PostTransaction", mock.Anything, mock.MatchedBy(func(req dto.PostTransactionRequest) bool {
		if len(req.Entries) != 2 || req.CurrencyCode != "SAR" {
			return false
		}
		// (3.80 - 3.75) * 1000.00 = 50.00 of unrealized gain.
		gain := decimal.RequireFromString("50.00")
		debit := req.Entries[0].AccountCode == "1120" && req.Entries[0].EntryType == domain.Debit && req.Entries[0].Amount.Equal(gain)
		credit := req.Entries[1].AccountCode == "4300" && req.Entries[1].EntryType == domain.Credit && req.Entries[1].Amount.Equal(gain)
		return debit && credit
	}), "user-1").Return("VOU-000020", nil).Once()
	suite.rateSvc.On("RecordRate", mock.Anything, mock.MatchedBy(func(req dto.RecordExchangeRateRequest) bool {
		return req.SourceCurrency == "USD" && req.TargetCurrency == "SAR" &&
			req.Rate.Equal(decimal.RequireFromString("3.80")) &&
			req.Source == domain.RateSourceSystem &&
			req.SourceReference != nil && *req.SourceReference == "REVALUATION"
	}), "user-1").Return(&domain.ExchangeRate{}, nil).Once()

	result, err := suite.service.ProcessRevaluation(suite.ctx, dto.ProcessRevaluationRequest{
		CurrencyCode: "usd",
		NewRate:      decimal.RequireFromString("3.80"),
	}, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(result.VoucherNumber)
	suite.Equal("VOU-000020", *result.VoucherNumber)
	suite.True(result.TotalGain.Equal(decimal.RequireFromString("50.00")))
	suite.True(result.TotalLoss.IsZero())
	suite.True(result.NetEffect.Equal(decimal.RequireFromString("50.00")))
	suite.Require().Len(result.Lines, 1)
	suite.ledgerSvc.AssertExpectations(suite.T())
	suite.rateSvc.AssertExpectations(suite.T())
}

func (suite *CurrencyPolicyServiceTestSuite) TestProcessRevaluation_LossPosted() {
	booked := &domain.ExchangeRate{SourceCurrency: "USD", TargetCurrency: "SAR", Rate: decimal.RequireFromString("3.75")}
	balances := []domain.AccountCurrencyBalance{
		{AccountID: "acc-ar", AccountCode: "1120", AccountType: domain.Asset,
			CurrencyCode: "USD", ForeignBalance: decimal.RequireFromString("1000.00")},
	}

	suite.policyRepo.On("FindActivePolicy", mock.Anything).Return(suite.activePolicy, nil).Once()
	suite.currencyRepo.On("FindPrimaryCurrency", mock.Anything).Return(suite.primarySAR, nil).Once()
	suite.rateSvc.On("GetRate", mock.Anything, "USD", "SAR", mock.AnythingOfType("time.Time")).Return(booked, nil).Once()
	suite.ledgerRepo.On("ForeignCurrencyBalances", mock.Anything, "USD").Return(balances, nil).Once()
	suite.coaSvc.On("ResolveRole", mock.Anything, domain.RoleFXGain).Return("4300", nil).Once()
	suite.coaSvc.On("ResolveRole", mock.Anything, domain.RoleFXLoss).Return("5400", nil).Once()
	suite.ledgerSvc.On("PostTransaction", mock.Anything, mock.MatchedBy(func(req dto.PostTransactionRequest) bool {
		if len(req.Entries) != 2 {
			return false
		}
		loss := decimal.RequireFromString("50.00")
		debit := req.Entries[0].AccountCode == "5400" && req.Entries[0].EntryType == domain.Debit && req.Entries[0].Amount.Equal(loss)
		credit := req.Entries[1].AccountCode == "1120" && req.Entries[1].EntryType == domain.Credit && req.Entries[1].Amount.Equal(loss)
		return debit && credit
	}), "user-1").Return("VOU-000021", nil).Once()
	suite.rateSvc.On("RecordRate", mock.Anything, mock.AnythingOfType("dto.RecordExchangeRateRequest"), "user-1").
		Return(&domain.ExchangeRate{}, nil).Once()

	result, err := suite.service.ProcessRevaluation(suite.ctx, dto.ProcessRevaluationRequest{
		CurrencyCode: "USD",
		NewRate:      decimal.RequireFromString("3.70"),
	}, "user-1")

	suite.Require().NoError(err)
	suite.True(result.TotalLoss.Equal(decimal.RequireFromString("50.00")))
	suite.True(result.NetEffect.Equal(decimal.RequireFromString("-50.00")))
}

func (suite *CurrencyPolicyServiceTestSuite) TestProcessRevaluation_NoBalances() {
	suite.policyRepo.On("FindActivePolicy", mock.Anything).Return(suite.activePolicy, nil).Once()
	suite.currencyRepo.On("FindPrimaryCurrency", mock.Anything).Return(suite.primarySAR, nil).Once()
	suite.rateSvc.On("GetRate", mock.Anything, "USD", "SAR", mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrRateNotFound).Once()
	suite.ledgerRepo.On("ForeignCurrencyBalances", mock.Anything, "USD").Return([]domain.AccountCurrencyBalance{}, nil).Once()
	suite.coaSvc.On("ResolveRole", mock.Anything, domain.RoleFXGain).Return("4300", nil).Once()
	suite.coaSvc.On("ResolveRole", mock.Anything, domain.RoleFXLoss).Return("5400", nil).Once()
	suite.rateSvc.On("RecordRate", mock.Anything, mock.AnythingOfType("dto.RecordExchangeRateRequest"), "user-1").
		Return(&domain.ExchangeRate{}, nil).Once()

	result, err := suite.service.ProcessRevaluation(suite.ctx, dto.ProcessRevaluationRequest{
		CurrencyCode: "USD",
		NewRate:      decimal.RequireFromString("3.80"),
	}, "user-1")

	suite.Require().NoError(err)
	suite.Nil(result.VoucherNumber)
	suite.Empty(result.Lines)
	suite.ledgerSvc.AssertNotCalled(suite.T(), "PostTransaction", mock.Anything, mock.Anything, mock.Anything)
	suite.rateSvc.AssertExpectations(suite.T())
}

func TestCurrencyPolicyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CurrencyPolicyServiceTestSuite))
}
