package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
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

// fiscalPeriodService owns period boundaries and the open/locked/closed state
// machine, and orchestrates close through the posting engine.
type fiscalPeriodService struct {
	periodRepo portsrepo.FiscalPeriodRepositoryFacade
	ledgerSvc  portssvc.LedgerSvcFacade
	coaSvc     portssvc.ChartOfAccountsSvcFacade
}

// NewFiscalPeriodService creates the fiscal period lifecycle service.
func NewFiscalPeriodService(periodRepo portsrepo.FiscalPeriodRepositoryFacade, ledgerSvc portssvc.LedgerSvcFacade, coaSvc portssvc.ChartOfAccountsSvcFacade) portssvc.FiscalPeriodSvcFacade {
	return &fiscalPeriodService{
		periodRepo: periodRepo,
		ledgerSvc:  ledgerSvc,
		coaSvc:     coaSvc,
	}
}

var _ portssvc.FiscalPeriodSvcFacade = (*fiscalPeriodService)(nil)

// CreatePeriod creates a new open period; its date range must not overlap any
// existing period.
func (s *fiscalPeriodService) CreatePeriod(ctx context.Context, req dto.CreateFiscalPeriodRequest, userID string) (*domain.FiscalPeriod, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.StartDate.Before(req.EndDate) {
		return nil, fmt.Errorf("%w: start date must be before end date", apperrors.ErrValidation)
	}

	overlaps, err := s.periodRepo.HasOverlap(ctx, req.StartDate, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check period overlap: %w", err)
	}
	if overlaps {
		return nil, fmt.Errorf("%w: %s to %s", apperrors.ErrPeriodOverlap,
			req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"))
	}

	now := time.Now().UTC()
	period := domain.FiscalPeriod{
		PeriodID:   uuid.NewString(),
		PeriodName: req.PeriodName,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.periodRepo.SavePeriod(ctx, period); err != nil {
		logger.Error("Failed to save fiscal period", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create fiscal period: %w", err)
	}

	logger.Info("Fiscal period created", slog.String("period_id", period.PeriodID),
		slog.String("period_name", period.PeriodName))
	return &period, nil
}

func (s *fiscalPeriodService) findPeriod(ctx context.Context, periodID string) (*domain.FiscalPeriod, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("fiscal period %s: %w", periodID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load fiscal period %s: %w", periodID, err)
	}
	return period, nil
}

// ClosePeriod computes net income, posts the closing voucher through the
// posting engine, and marks the period closed. Closing is terminal. A locked
// period is rejected: locking is an administrative freeze that must be lifted
// before close.
func (s *fiscalPeriodService) ClosePeriod(ctx context.Context, periodID string, userID string) (*dto.ClosePeriodResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	period, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if period.IsClosed {
		return nil, fmt.Errorf("%w: period %s is already closed", apperrors.ErrPeriodClosed, period.PeriodName)
	}
	if period.IsLocked {
		return nil, fmt.Errorf("%w: cannot close a locked period", apperrors.ErrPeriodLocked)
	}

	revenueBalances, err := s.ledgerSvc.PeriodBalancesByType(ctx, periodID, domain.Revenue)
	if err != nil {
		return nil, err
	}
	expenseBalances, err := s.ledgerSvc.PeriodBalancesByType(ctx, periodID, domain.Expense)
	if err != nil {
		return nil, err
	}

	netIncome := decimal.Zero
	closingEntries := make([]dto.EntryInput, 0, len(revenueBalances)+len(expenseBalances)+1)
	closingNote := fmt.Sprintf("Closing entry - %s", period.PeriodName)

	// Zero every revenue account: debit a credit-side balance, credit a
	// negative one.
	for _, bal := range revenueBalances {
		netIncome = netIncome.Add(bal.Balance)
		if bal.Balance.IsZero() {
			continue
		}
		side := domain.Debit
		if bal.Balance.IsNegative() {
			side = domain.Credit
		}
		closingEntries = append(closingEntries, dto.EntryInput{
			AccountCode: bal.AccountCode,
			EntryType:   side,
			Amount:      bal.Balance.Abs(),
			Description: closingNote,
		})
	}

	for _, bal := range expenseBalances {
		netIncome = netIncome.Sub(bal.Balance)
		if bal.Balance.IsZero() {
			continue
		}
		side := domain.Credit
		if bal.Balance.IsNegative() {
			side = domain.Debit
		}
		closingEntries = append(closingEntries, dto.EntryInput{
			AccountCode: bal.AccountCode,
			EntryType:   side,
			Amount:      bal.Balance.Abs(),
			Description: closingNote,
		})
	}

	now := time.Now().UTC()
	result := &dto.ClosePeriodResult{PeriodID: periodID, NetIncome: netIncome}

	if len(closingEntries) == 0 {
		// No activity this period; close without a voucher.
		if err := s.periodRepo.MarkPeriodClosed(ctx, periodID, netIncome, userID, now); err != nil {
			return nil, err
		}
		logger.Info("Fiscal period closed with no activity", slog.String("period_id", periodID))
		return result, nil
	}

	if !netIncome.IsZero() {
		retainedEarningsCode, err := s.coaSvc.ResolveRole(ctx, domain.RoleRetainedEarnings)
		if err != nil {
			return nil, err
		}
		side := domain.Credit
		if netIncome.IsNegative() {
			side = domain.Debit
		}
		closingEntries = append(closingEntries, dto.EntryInput{
			AccountCode: retainedEarningsCode,
			EntryType:   side,
			Amount:      netIncome.Abs(),
			Description: fmt.Sprintf("Net income transfer - %s", period.PeriodName),
		})
	}

	voucherNumber, err := s.ledgerSvc.PostPeriodClosing(ctx, *period, closingEntries, netIncome, userID)
	if err != nil {
		return nil, err
	}

	result.ClosingVoucherNumber = &voucherNumber
	logger.Info("Fiscal period closed", slog.String("period_id", periodID),
		slog.String("closing_voucher", voucherNumber), slog.String("net_income", netIncome.String()))
	return result, nil
}

// LockPeriod freezes a period against new postings. Reversible via UnlockPeriod.
func (s *fiscalPeriodService) LockPeriod(ctx context.Context, periodID string, userID string) error {
	period, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return err
	}
	if period.IsClosed {
		return fmt.Errorf("%w: cannot lock a closed period", apperrors.ErrPeriodClosed)
	}
	if period.IsLocked {
		return fmt.Errorf("%w: period %s is already locked", apperrors.ErrValidation, period.PeriodName)
	}
	return s.periodRepo.SetLocked(ctx, periodID, true, userID, time.Now().UTC())
}

// UnlockPeriod lifts a lock. Closed periods cannot be unlocked.
func (s *fiscalPeriodService) UnlockPeriod(ctx context.Context, periodID string, userID string) error {
	period, err := s.findPeriod(ctx, periodID)
	if err != nil {
		return err
	}
	if period.IsClosed {
		return fmt.Errorf("%w: cannot unlock a closed period", apperrors.ErrPeriodClosed)
	}
	if !period.IsLocked {
		return fmt.Errorf("%w: period %s is not locked", apperrors.ErrValidation, period.PeriodName)
	}
	return s.periodRepo.SetLocked(ctx, periodID, false, userID, time.Now().UTC())
}

// GetPeriod loads a period by ID.
func (s *fiscalPeriodService) GetPeriod(ctx context.Context, periodID string) (*domain.FiscalPeriod, error) {
	return s.findPeriod(ctx, periodID)
}

// FindPeriodForDate resolves the period covering a date.
func (s *fiscalPeriodService) FindPeriodForDate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error) {
	period, err := s.periodRepo.FindPeriodForDate(ctx, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrPeriodNotFound, date.Format("2006-01-02"))
		}
		return nil, err
	}
	return period, nil
}

// ListPeriods returns all periods ordered by start date.
func (s *fiscalPeriodService) ListPeriods(ctx context.Context) ([]domain.FiscalPeriod, error) {
	return s.periodRepo.ListPeriods(ctx)
}
