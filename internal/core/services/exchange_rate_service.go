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

// inverseRatePrecision bounds the decimal places kept when deriving a rate
// from the inverse pair, so 1/3 style reciprocals stay finite.
const inverseRatePrecision = 12

// exchangeRateService is the append-only exchange rate store.
type exchangeRateService struct {
	rateRepo     portsrepo.ExchangeRateRepositoryFacade
	currencyRepo portsrepo.CurrencyRepositoryFacade
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, currencyRepo portsrepo.CurrencyRepositoryFacade) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{rateRepo: rateRepo, currencyRepo: currencyRepo}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// RecordRate appends a new rate record to the history. History is never
// updated in place; intraday corrections are additional records.
func (s *exchangeRateService) RecordRate(ctx context.Context, req dto.RecordExchangeRateRequest, userID string) (*domain.ExchangeRate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	source := strings.ToUpper(req.SourceCurrency)
	target := strings.ToUpper(req.TargetCurrency)

	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if source == target {
		return nil, fmt.Errorf("%w: source and target currency cannot be the same", apperrors.ErrValidation)
	}

	for _, code := range []string{source, target} {
		if _, err := s.currencyRepo.FindCurrencyByCode(ctx, code); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: currency %q not found", apperrors.ErrValidation, code)
			}
			return nil, fmt.Errorf("failed to validate currency %q: %w", code, err)
		}
	}

	rate := domain.ExchangeRate{
		ExchangeRateID:  uuid.NewString(),
		SourceCurrency:  source,
		TargetCurrency:  target,
		Rate:            req.Rate,
		EffectiveAt:     req.EffectiveAt,
		Source:          req.Source,
		SourceReference: req.SourceReference,
		CreatedAt:       time.Now().UTC(),
		CreatedBy:       userID,
	}

	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		logger.Error("Failed to save exchange rate", slog.String("error", err.Error()),
			slog.String("source", source), slog.String("target", target))
		return nil, fmt.Errorf("failed to record exchange rate: %w", err)
	}

	logger.Info("Exchange rate recorded", slog.String("source", source),
		slog.String("target", target), slog.String("rate", req.Rate.String()))
	return &rate, nil
}

// GetRate resolves the rate in force at asOf. Equal currencies short-circuit
// to 1 without a stored record; a missing direct pair falls back to the
// reciprocal of the inverse pair. Records effective after asOf never apply.
func (s *exchangeRateService) GetRate(ctx context.Context, sourceCurrency, targetCurrency string, asOf time.Time) (*domain.ExchangeRate, error) {
	source := strings.ToUpper(sourceCurrency)
	target := strings.ToUpper(targetCurrency)
	if len(source) != 3 || len(target) != 3 {
		return nil, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}

	if source == target {
		return &domain.ExchangeRate{
			SourceCurrency: source,
			TargetCurrency: target,
			Rate:           decimal.NewFromInt(1),
			EffectiveAt:    asOf,
			Source:         domain.RateSourceSystem,
		}, nil
	}

	rate, err := s.rateRepo.FindLatestRate(ctx, source, target, asOf)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up exchange rate: %w", err)
	}

	inverse, err := s.rateRepo.FindLatestRate(ctx, target, source, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s to %s at %s", apperrors.ErrRateNotFound, source, target, asOf.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to look up inverse exchange rate: %w", err)
	}

	derived := *inverse
	derived.SourceCurrency = source
	derived.TargetCurrency = target
	derived.Rate = decimal.NewFromInt(1).DivRound(inverse.Rate, inverseRatePrecision)
	return &derived, nil
}

// ListRates returns the full history for a pair, newest first.
func (s *exchangeRateService) ListRates(ctx context.Context, sourceCurrency, targetCurrency string) ([]domain.ExchangeRate, error) {
	rates, err := s.rateRepo.ListRates(ctx, strings.ToUpper(sourceCurrency), strings.ToUpper(targetCurrency))
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	return rates, nil
}
