package services

import (
	"context"
	"time"

	"github.com/qoyodhq/ledgercore/internal/core/domain"
	"github.com/qoyodhq/ledgercore/internal/dto"
)

// FiscalPeriodSvcFacade owns period boundaries and their open/locked/closed
// state machine, and orchestrates period close through the posting engine.
type FiscalPeriodSvcFacade interface {
	CreatePeriod(ctx context.Context, req dto.CreateFiscalPeriodRequest, userID string) (*domain.FiscalPeriod, error)
	// ClosePeriod computes net income, posts the closing voucher, and marks
	// the period closed. Terminal; there is no unclose.
	ClosePeriod(ctx context.Context, periodID string, userID string) (*dto.ClosePeriodResult, error)
	LockPeriod(ctx context.Context, periodID string, userID string) error
	UnlockPeriod(ctx context.Context, periodID string, userID string) error
	GetPeriod(ctx context.Context, periodID string) (*domain.FiscalPeriod, error)
	FindPeriodForDate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error)
	ListPeriods(ctx context.Context) ([]domain.FiscalPeriod, error)
}
