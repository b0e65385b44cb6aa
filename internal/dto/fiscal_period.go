package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/qoyodhq/ledgercore/internal/core/domain"
)

// CreateFiscalPeriodRequest creates a new open period.
type CreateFiscalPeriodRequest struct {
	PeriodName string    `json:"periodName" binding:"required"`
	StartDate  time.Time `json:"startDate" binding:"required" time_format:"2006-01-02"`
	EndDate    time.Time `json:"endDate" binding:"required" time_format:"2006-01-02"`
}

// ClosePeriodResult reports the outcome of a period close.
type ClosePeriodResult struct {
	PeriodID             string          `json:"periodID"`
	NetIncome            decimal.Decimal `json:"netIncome"`
	ClosingVoucherNumber *string         `json:"closingVoucherNumber,omitempty"`
}

// FiscalPeriodResponse is the API shape of a fiscal period.
type FiscalPeriodResponse struct {
	PeriodID             string           `json:"periodID"`
	PeriodName           string           `json:"periodName"`
	StartDate            time.Time        `json:"startDate"`
	EndDate              time.Time        `json:"endDate"`
	IsClosed             bool             `json:"isClosed"`
	IsLocked             bool             `json:"isLocked"`
	ClosingVoucherNumber *string          `json:"closingVoucherNumber,omitempty"`
	NetIncome            *decimal.Decimal `json:"netIncome,omitempty"`
	ClosedAt             *time.Time       `json:"closedAt,omitempty"`
	ClosedBy             *string          `json:"closedBy,omitempty"`
	LockedAt             *time.Time       `json:"lockedAt,omitempty"`
	LockedBy             *string          `json:"lockedBy,omitempty"`
}

// ToFiscalPeriodResponse converts a domain FiscalPeriod to its API shape.
func ToFiscalPeriodResponse(p *domain.FiscalPeriod) FiscalPeriodResponse {
	return FiscalPeriodResponse{
		PeriodID:             p.PeriodID,
		PeriodName:           p.PeriodName,
		StartDate:            p.StartDate,
		EndDate:              p.EndDate,
		IsClosed:             p.IsClosed,
		IsLocked:             p.IsLocked,
		ClosingVoucherNumber: p.ClosingVoucherNumber,
		NetIncome:            p.NetIncome,
		ClosedAt:             p.ClosedAt,
		ClosedBy:             p.ClosedBy,
		LockedAt:             p.LockedAt,
		LockedBy:             p.LockedBy,
	}
}
