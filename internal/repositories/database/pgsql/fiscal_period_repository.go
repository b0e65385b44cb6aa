package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/qoyodhq/ledgercore/internal/apperrors"
	"github.com/qoyodhq/ledgercore/internal/core/domain"
	portsrepo "github.com/qoyodhq/ledgercore/internal/core/ports/repositories"
)

const fiscalPeriodColumns = `period_id, period_name, start_date, end_date, is_closed, is_locked,
	closing_voucher_number, net_income, closed_at, closed_by, locked_at, locked_by,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxFiscalPeriodRepository struct {
	BaseRepository
}

// newPgxFiscalPeriodRepository creates a new repository for fiscal period data.
func newPgxFiscalPeriodRepository(pool *pgxpool.Pool) portsrepo.FiscalPeriodRepositoryFacade {
	return &PgxFiscalPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.FiscalPeriodRepositoryFacade = (*PgxFiscalPeriodRepository)(nil)

func scanFiscalPeriod(row pgx.Row) (*domain.FiscalPeriod, error) {
	var p domain.FiscalPeriod
	err := row.Scan(
		&p.PeriodID,
		&p.PeriodName,
		&p.StartDate,
		&p.EndDate,
		&p.IsClosed,
		&p.IsLocked,
		&p.ClosingVoucherNumber,
		&p.NetIncome,
		&p.ClosedAt,
		&p.ClosedBy,
		&p.LockedAt,
		&p.LockedBy,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan fiscal period", err)
	}
	return &p, nil
}

// SavePeriod inserts a new fiscal period. The fiscal_periods_no_overlap
// exclusion constraint backstops the service-level overlap check, so two
// racing creates over intersecting ranges resolve to one winner here.
func (r *PgxFiscalPeriodRepository) SavePeriod(ctx context.Context, period domain.FiscalPeriod) error {
	query := `
		INSERT INTO fiscal_periods (` + fiscalPeriodColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.Pool.Exec(ctx, query,
		period.PeriodID,
		period.PeriodName,
		period.StartDate,
		period.EndDate,
		period.IsClosed,
		period.IsLocked,
		period.ClosingVoucherNumber,
		period.NetIncome,
		period.ClosedAt,
		period.ClosedBy,
		period.LockedAt,
		period.LockedBy,
		period.CreatedAt,
		period.CreatedBy,
		period.LastUpdatedAt,
		period.LastUpdatedBy,
	)
	if err != nil {
		if isExclusionViolation(err) {
			return apperrors.ErrPeriodOverlap
		}
		return apperrors.NewAppError(500, "failed to insert fiscal period "+period.PeriodID, err)
	}
	return nil
}

// FindPeriodByID retrieves a fiscal period by its ID.
func (r *PgxFiscalPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.FiscalPeriod, error) {
	query := `SELECT ` + fiscalPeriodColumns + ` FROM fiscal_periods WHERE period_id = $1;`
	return scanFiscalPeriod(r.Pool.QueryRow(ctx, query, periodID))
}

// FindPeriodForDate retrieves the period whose date range contains the date.
// Ranges are inclusive on both ends; the date is compared by calendar day.
func (r *PgxFiscalPeriodRepository) FindPeriodForDate(ctx context.Context, date time.Time) (*domain.FiscalPeriod, error) {
	query := `
		SELECT ` + fiscalPeriodColumns + `
		FROM fiscal_periods
		WHERE start_date <= $1::date AND end_date >= $1::date
		ORDER BY start_date
		LIMIT 1;
	`
	return scanFiscalPeriod(r.Pool.QueryRow(ctx, query, date))
}

// ListPeriods returns all fiscal periods, newest first.
func (r *PgxFiscalPeriodRepository) ListPeriods(ctx context.Context) ([]domain.FiscalPeriod, error) {
	query := `SELECT ` + fiscalPeriodColumns + ` FROM fiscal_periods ORDER BY start_date DESC;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query fiscal periods", err)
	}
	defer rows.Close()

	var periods []domain.FiscalPeriod
	for rows.Next() {
		p, err := scanFiscalPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate fiscal periods", err)
	}
	return periods, nil
}

// HasOverlap reports whether any existing period intersects the date range.
func (r *PgxFiscalPeriodRepository) HasOverlap(ctx context.Context, startDate, endDate time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM fiscal_periods
			WHERE start_date <= $2::date AND end_date >= $1::date
		);
	`
	var overlaps bool
	if err := r.Pool.QueryRow(ctx, query, startDate, endDate).Scan(&overlaps); err != nil {
		return false, apperrors.NewAppError(500, "failed to check period overlap", err)
	}
	return overlaps, nil
}

// SetLocked flips the lock flag on a period.
func (r *PgxFiscalPeriodRepository) SetLocked(ctx context.Context, periodID string, locked bool, userID string, at time.Time) error {
	var query string
	if locked {
		query = `
			UPDATE fiscal_periods
			SET is_locked = TRUE, locked_at = $2, locked_by = $3, last_updated_at = $2, last_updated_by = $3
			WHERE period_id = $1;
		`
	} else {
		query = `
			UPDATE fiscal_periods
			SET is_locked = FALSE, locked_at = NULL, locked_by = NULL, last_updated_at = $2, last_updated_by = $3
			WHERE period_id = $1;
		`
	}
	tag, err := r.Pool.Exec(ctx, query, periodID, at, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update lock on fiscal period "+periodID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPeriodNotFound
	}
	return nil
}

// MarkPeriodClosed closes a period that produced no closing entries. The
// state is re-checked under a row lock like SaveClosingVoucher does.
func (r *PgxFiscalPeriodRepository) MarkPeriodClosed(ctx context.Context, periodID string, netIncome decimal.Decimal, closedBy string, at time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var isClosed, isLocked bool
	err = tx.QueryRow(ctx, `SELECT is_closed, is_locked FROM fiscal_periods WHERE period_id = $1 FOR UPDATE;`, periodID).
		Scan(&isClosed, &isLocked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrPeriodNotFound
		}
		return apperrors.NewAppError(500, "failed to lock fiscal period "+periodID, err)
	}
	if isClosed {
		return apperrors.ErrPeriodClosed
	}
	if isLocked {
		return apperrors.ErrPeriodLocked
	}

	query := `
		UPDATE fiscal_periods
		SET is_closed = TRUE, net_income = $2, closed_at = $3, closed_by = $4,
		    last_updated_at = $3, last_updated_by = $4
		WHERE period_id = $1;
	`
	if _, err := tx.Exec(ctx, query, periodID, netIncome, at, closedBy); err != nil {
		return apperrors.NewAppError(500, "failed to close fiscal period "+periodID, err)
	}

	return r.Commit(ctx, tx)
}
