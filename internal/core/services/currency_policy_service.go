package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qoyodhq/ledgercore/internal/apperrors"
	"github.com/qoyodhq/ledgercore/internal/core/domain"
	portsrepo "github.com/qoyodhq/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/qoyodhq/ledgercore/internal/core/ports/services"
	"github.com/qoyodhq/ledgercore/internal/dto"
	"github.com/qoyodhq/ledgercore/internal/middleware"
)

// referenceTypeRevaluation marks vouchers produced by currency revaluation.
const referenceTypeRevaluation = "currency_revaluations"

// currencyPolicyService evaluates the active currency policy and performs
// conversion and revaluation under it.
type currencyPolicyService struct {
	policyRepo   portsrepo.CurrencyPolicyRepositoryFacade
	currencyRepo portsrepo.CurrencyRepositoryFacade
	ledgerRepo   portsrepo.LedgerRepositoryFacade
	rateSvc      portssvc.ExchangeRateSvcFacade
	ledgerSvc    portssvc.LedgerSvcFacade
	coaSvc       portssvc.ChartOfAccountsSvcFacade
}

// NewCurrencyPolicyService creates the currency policy engine.
func NewCurrencyPolicyService(
	policyRepo portsrepo.CurrencyPolicyRepositoryFacade,
	currencyRepo portsrepo.CurrencyRepositoryFacade,
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	rateSvc portssvc.ExchangeRateSvcFacade,
	ledgerSvc portssvc.LedgerSvcFacade,
	coaSvc portssvc.ChartOfAccountsSvcFacade,
) portssvc.CurrencyPolicySvcFacade {
	return &currencyPolicyService{
		policyRepo:   policyRepo,
		currencyRepo: currencyRepo,
		ledgerRepo:   ledgerRepo,
		rateSvc:      rateSvc,
		ledgerSvc:    ledgerSvc,
		coaSvc:       coaSvc,
	}
}

var _ portssvc.CurrencyPolicySvcFacade = (*currencyPolicyService)(nil)

// Convert multiplies amount by the rate in force at date, rounded to the
// target currency's minor-unit precision. Equal currencies are an identity.
func (s *currencyPolicyService) Convert(ctx context.Context, amount decimal.Decimal, sourceCurrency, targetCurrency string, date time.Time) (*dto.ConvertResponse, error) {
	source := strings.ToUpper(sourceCurrency)
	target := strings.ToUpper(targetCurrency)

	if source == target {
		return &dto.ConvertResponse{Amount: amount, Rate: decimal.NewFromInt(1)}, nil
	}

	rate, err := s.rateSvc.GetRate(ctx, source, target, date)
	if err != nil {
		return nil, err
	}

	precision := int32(2)
	if currency, err := s.currencyRepo.FindCurrencyByCode(ctx, target); err == nil {
		precision = currency.Precision
	}

	return &dto.ConvertResponse{
		Amount: amount.Mul(rate.Rate).Round(precision),
		Rate:   rate.Rate,
	}, nil
}

// CreatePolicy creates a new, initially inactive, policy.
func (s *currencyPolicyService) CreatePolicy(ctx context.Context, req dto.CreateCurrencyPolicyRequest, userID string) (*domain.CurrencyPolicy, error) {
	source := req.ExchangeRateSource
	if source == "" {
		source = domain.RateSourceManual
	}

	now := time.Now().UTC()
	policy := domain.CurrencyPolicy{
		PolicyID:             uuid.NewString(),
		Name:                 req.Name,
		Code:                 strings.ToUpper(req.Code),
		PolicyType:           req.PolicyType,
		ConversionTiming:     req.ConversionTiming,
		RevaluationEnabled:   req.RevaluationEnabled,
		RevaluationFrequency: req.RevaluationFrequency,
		ExchangeRateSource:   source,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.policyRepo.SavePolicy(ctx, policy); err != nil {
		return nil, fmt.Errorf("failed to create currency policy: %w", err)
	}
	return &policy, nil
}

// ActivatePolicy makes the target the single active policy. Deactivation of
// all others and activation of the target happen in one atomic step.
func (s *currencyPolicyService) ActivatePolicy(ctx context.Context, policyID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.policyRepo.FindPolicyByID(ctx, policyID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("currency policy %s: %w", policyID, apperrors.ErrNotFound)
		}
		return err
	}

	if err := s.policyRepo.ActivatePolicy(ctx, policyID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to activate currency policy: %w", err)
	}

	logger.Info("Currency policy activated", slog.String("policy_id", policyID))
	return nil
}

// DeletePolicy refuses to delete the active policy or one still referenced by
// transaction contexts, preserving historical interpretability of past
// conversions.
func (s *currencyPolicyService) DeletePolicy(ctx context.Context, policyID string) error {
	policy, err := s.policyRepo.FindPolicyByID(ctx, policyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("currency policy %s: %w", policyID, apperrors.ErrNotFound)
		}
		return err
	}
	if policy.IsActive {
		return fmt.Errorf("%w: policy %s is active", apperrors.ErrActivePolicyDeletionForbidden, policy.Code)
	}

	refs, err := s.policyRepo.CountContextsForPolicy(ctx, policyID)
	if err != nil {
		return fmt.Errorf("failed to count policy references: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("%w: policy %s is referenced by %d transaction contexts",
			apperrors.ErrActivePolicyDeletionForbidden, policy.Code, refs)
	}

	return s.policyRepo.DeletePolicy(ctx, policyID)
}

// GetActivePolicy returns the single active policy, or ErrNotFound.
func (s *currencyPolicyService) GetActivePolicy(ctx context.Context) (*domain.CurrencyPolicy, error) {
	return s.policyRepo.FindActivePolicy(ctx)
}

// DetermineConversionDecision evaluates the active policy for a transaction
// currency. With no active policy configured the engine defaults to mandated
// normalization.
func (s *currencyPolicyService) DetermineConversionDecision(ctx context.Context, currencyCode string, userRequestedConversion bool) (domain.ConversionDecision, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	reference, err := s.currencyRepo.FindPrimaryCurrency(ctx)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return "", fmt.Errorf("failed to resolve reference currency: %w", err)
	}
	if reference != nil && strings.EqualFold(currencyCode, reference.CurrencyCode) {
		return domain.DecisionSameCurrency, nil
	}

	policy, err := s.policyRepo.FindActivePolicy(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("No active currency policy configured, defaulting to mandated conversion")
			return domain.DecisionPolicyMandate, nil
		}
		return "", fmt.Errorf("failed to load active currency policy: %w", err)
	}

	if userRequestedConversion {
		return domain.DecisionUserRequested, nil
	}

	switch policy.PolicyType {
	case domain.PolicyNormalization:
		return domain.DecisionPolicyMandate, nil
	case domain.PolicyUnitOfMeasure:
		return domain.DecisionDeferred, nil
	case domain.PolicyValuedAsset:
		if policy.ConversionTiming == domain.TimingPosting {
			return domain.DecisionPolicyMandate, nil
		}
		return domain.DecisionDeferred, nil
	default:
		return "", fmt.Errorf("unknown currency policy type %q", policy.PolicyType)
	}
}

// CreateTransactionContext binds the policy regime in force to a business
// record. The context is what later forbids deleting the policy it references.
func (s *currencyPolicyService) CreateTransactionContext(ctx context.Context, req dto.CreateTransactionContextRequest) (*domain.TransactionCurrencyContext, error) {
	decision, err := s.DetermineConversionDecision(ctx, req.CurrencyCode, req.UserRequestedConversion)
	if err != nil {
		return nil, err
	}

	tcc := domain.TransactionCurrencyContext{
		ContextID:       uuid.NewString(),
		TransactionType: req.TransactionType,
		TransactionID:   req.TransactionID,
		CurrencyCode:    strings.ToUpper(req.CurrencyCode),
		Amount:          req.Amount,
		Decision:        decision,
		CreatedAt:       time.Now().UTC(),
	}

	if policy, err := s.policyRepo.FindActivePolicy(ctx); err == nil {
		tcc.PolicyID = &policy.PolicyID
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load active currency policy: %w", err)
	}

	reference, err := s.currencyRepo.FindPrimaryCurrency(ctx)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve reference currency: %w", err)
	}
	if reference != nil {
		tcc.ReferenceCurrency = &reference.CurrencyCode
	}

	if decision.InvolvesConversion() && reference != nil && tcc.CurrencyCode != reference.CurrencyCode {
		converted, err := s.Convert(ctx, req.Amount, tcc.CurrencyCode, reference.CurrencyCode, tcc.CreatedAt)
		if err != nil {
			return nil, err
		}
		tcc.ReferenceAmount = &converted.Amount
		tcc.ExchangeRate = &converted.Rate
	}

	if err := s.policyRepo.SaveTransactionContext(ctx, tcc); err != nil {
		return nil, fmt.Errorf("failed to save transaction currency context: %w", err)
	}
	return &tcc, nil
}

// ProcessRevaluation recognizes unrealized FX gain/loss on every outstanding balance
// denominated in the given currency, posts the result as one voucher, and
// records the new rate. Requires the active policy to permit revaluation.
func (s *currencyPolicyService) ProcessRevaluation(ctx context.Context, req dto.ProcessRevaluationRequest, userID string) (*dto.RevaluationResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	policy, err := s.policyRepo.FindActivePolicy(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrRevaluationNotEnabled
		}
		return nil, fmt.Errorf("failed to load active currency policy: %w", err)
	}
	if !policy.RevaluationEnabled {
		return nil, fmt.Errorf("%w: policy %s", apperrors.ErrRevaluationNotEnabled, policy.Code)
	}
	if req.NewRate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: revaluation rate must be positive", apperrors.ErrValidation)
	}

	reference, err := s.currencyRepo.FindPrimaryCurrency(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no reference currency configured", apperrors.ErrValidation)
		}
		return nil, fmt.Errorf("failed to resolve reference currency: %w", err)
	}

	currency := strings.ToUpper(req.CurrencyCode)
	now := time.Now().UTC()

	// The booked rate defaults to 1 when no history exists, matching how the
	// balances were originally carried.
	bookedRate := decimal.NewFromInt(1)
	if rate, err := s.rateSvc.GetRate(ctx, currency, reference.CurrencyCode, now); err == nil {
		bookedRate = rate.Rate
	} else if !errors.Is(err, apperrors.ErrRateNotFound) {
		return nil, err
	}

	balances, err := s.ledgerRepo.ForeignCurrencyBalances(ctx, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to load foreign currency balances: %w", err)
	}

	gainCode, err := s.coaSvc.ResolveRole(ctx, domain.RoleFXGain)
	if err != nil {
		return nil, err
	}
	lossCode, err := s.coaSvc.ResolveRole(ctx, domain.RoleFXLoss)
	if err != nil {
		return nil, err
	}

	result := &dto.RevaluationResult{
		TotalGain: decimal.Zero,
		TotalLoss: decimal.Zero,
		Lines:     make([]dto.RevaluationLine, 0, len(balances)),
	}
	rateDelta := req.NewRate.Sub(bookedRate)
	entries := make([]dto.EntryInput, 0, 2*len(balances))

	for _, bal := range balances {
		if bal.ForeignBalance.IsZero() {
			continue
		}
		delta := rateDelta.Mul(bal.ForeignBalance).Round(reference.Precision)
		if delta.IsZero() {
			continue
		}

		note := fmt.Sprintf("Revaluation of %s at %s", currency, req.NewRate.String())
		if delta.IsPositive() {
			// Unrealized gain: the foreign-denominated balance is worth more.
			entries = append(entries,
				dto.EntryInput{AccountCode: bal.AccountCode, EntryType: domain.Debit, Amount: delta, Description: note},
				dto.EntryInput{AccountCode: gainCode, EntryType: domain.Credit, Amount: delta, Description: note},
			)
			result.TotalGain = result.TotalGain.Add(delta)
		} else {
			loss := delta.Neg()
			entries = append(entries,
				dto.EntryInput{AccountCode: lossCode, EntryType: domain.Debit, Amount: loss, Description: note},
				dto.EntryInput{AccountCode: bal.AccountCode, EntryType: domain.Credit, Amount: loss, Description: note},
			)
			result.TotalLoss = result.TotalLoss.Add(loss)
		}
		result.Lines = append(result.Lines, dto.RevaluationLine{AccountCode: bal.AccountCode, Amount: delta})
	}
	result.NetEffect = result.TotalGain.Sub(result.TotalLoss)

	if len(entries) > 0 {
		refType := referenceTypeRevaluation
		refID := currency
		if req.FiscalPeriodID != nil {
			refID = *req.FiscalPeriodID
		}
		voucherNumber, err := s.ledgerSvc.PostTransaction(ctx, dto.PostTransactionRequest{
			Entries:       entries,
			ReferenceType: &refType,
			ReferenceID:   &refID,
			Date:          now,
			CurrencyCode:  reference.CurrencyCode,
		}, userID)
		if err != nil {
			return nil, err
		}
		result.VoucherNumber = &voucherNumber
	}

	sourceRef := "REVALUATION"
	if _, err := s.rateSvc.RecordRate(ctx, dto.RecordExchangeRateRequest{
		SourceCurrency:  currency,
		TargetCurrency:  reference.CurrencyCode,
		Rate:            req.NewRate,
		EffectiveAt:     now,
		Source:          domain.RateSourceSystem,
		SourceReference: &sourceRef,
	}, userID); err != nil {
		return nil, err
	}

	logger.Info("Revaluation processed", slog.String("currency", currency),
		slog.String("net_effect", result.NetEffect.String()))
	return result, nil
}
