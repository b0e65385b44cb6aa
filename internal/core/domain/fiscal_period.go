package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FiscalPeriod is a non-overlapping date range governing which postings are
// admitted. State machine: Open -> Locked (reversible) and Open -> Closed
// (terminal). A locked period must be unlocked before it can be closed.
type FiscalPeriod struct {
	PeriodID   string    `json:"periodID"`
	PeriodName string    `json:"periodName"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`

	IsClosed bool `json:"isClosed"`
	IsLocked bool `json:"isLocked"`

	ClosingVoucherNumber *string          `json:"closingVoucherNumber,omitempty"`
	NetIncome            *decimal.Decimal `json:"netIncome,omitempty"`

	ClosedAt *time.Time `json:"closedAt,omitempty"`
	ClosedBy *string    `json:"closedBy,omitempty"`
	LockedAt *time.Time `json:"lockedAt,omitempty"`
	LockedBy *string    `json:"lockedBy,omitempty"`

	AuditFields
}

// Contains reports whether d falls within the period's date range, inclusive.
func (p FiscalPeriod) Contains(d time.Time) bool {
	day := d.Truncate(24 * time.Hour)
	return !day.Before(p.StartDate.Truncate(24*time.Hour)) && !day.After(p.EndDate.Truncate(24*time.Hour))
}
