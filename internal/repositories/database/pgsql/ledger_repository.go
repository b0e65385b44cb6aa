package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/qoyodhq/ledgercore/internal/apperrors"
	"github.com/qoyodhq/ledgercore/internal/core/domain"
	portsrepo "github.com/qoyodhq/ledgercore/internal/core/ports/repositories"
)

const ledgerEntryColumns = `entry_id, voucher_number, voucher_date, account_id, account_code, entry_type,
	amount, currency_code, description, reference_type, reference_id, fiscal_period_id,
	is_closed, reverses_voucher_number, created_at, created_by`

const insertLedgerEntryQuery = `
	INSERT INTO ledger_entries (` + ledgerEntryColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
`

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for ledger entry data.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func queueLedgerEntry(batch *pgx.Batch, e domain.LedgerEntry) {
	batch.Queue(insertLedgerEntryQuery,
		e.EntryID,
		e.VoucherNumber,
		e.VoucherDate,
		e.AccountID,
		e.AccountCode,
		e.EntryType,
		e.Amount,
		e.CurrencyCode,
		e.Description,
		e.ReferenceType,
		e.ReferenceID,
		e.FiscalPeriodID,
		e.IsClosed,
		e.ReversesVoucherNumber,
		e.CreatedAt,
		e.CreatedBy,
	)
}

// SaveEntries inserts all entries of one voucher in a single database
// transaction. The voucher is either fully persisted or not at all. The
// period's state is re-checked under a share lock inside the transaction, so
// a posting racing a close either commits before the close consumes the
// period or observes ErrPeriodClosed; it never lands in a closed period.
func (r *PgxLedgerRepository) SaveEntries(ctx context.Context, fiscalPeriodID string, entries []domain.LedgerEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var isClosed, isLocked bool
	err = tx.QueryRow(ctx, `SELECT is_closed, is_locked FROM fiscal_periods WHERE period_id = $1 FOR SHARE;`, fiscalPeriodID).
		Scan(&isClosed, &isLocked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrPeriodNotFound
		}
		return apperrors.NewAppError(500, "failed to lock fiscal period "+fiscalPeriodID, err)
	}
	if isClosed {
		return apperrors.ErrPeriodClosed
	}
	if isLocked {
		return apperrors.ErrPeriodLocked
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		queueLedgerEntry(batch, e)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert ledger entries", err)
	}

	return r.Commit(ctx, tx)
}

// SaveClosingVoucher atomically writes a period's closing entries, flags the
// period's revenue/expense entries as consumed, and marks the period row
// closed. The period state is re-checked under a row lock so a concurrent
// close or lock loses cleanly.
func (r *PgxLedgerRepository) SaveClosingVoucher(ctx context.Context, period domain.FiscalPeriod, entries []domain.LedgerEntry, netIncome decimal.Decimal, closedBy string, closedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var isClosed, isLocked bool
	err = tx.QueryRow(ctx, `SELECT is_closed, is_locked FROM fiscal_periods WHERE period_id = $1 FOR UPDATE;`, period.PeriodID).
		Scan(&isClosed, &isLocked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrPeriodNotFound
		}
		return apperrors.NewAppError(500, "failed to lock fiscal period "+period.PeriodID, err)
	}
	if isClosed {
		return apperrors.ErrPeriodClosed
	}
	if isLocked {
		return apperrors.ErrPeriodLocked
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		queueLedgerEntry(batch, e)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert closing entries for period "+period.PeriodID, err)
	}

	// Flag the period's revenue/expense entries, the closing voucher's own
	// legs included, so a later net-income recalculation over the period reads
	// zero. The retained-earnings entry stays unflagged: balance queries must
	// keep seeing the net-income transfer.
	flagQuery := `
		UPDATE ledger_entries
		SET is_closed = TRUE
		WHERE fiscal_period_id = $1
		  AND is_closed = FALSE
		  AND account_id IN (
			SELECT account_id FROM accounts WHERE account_type IN ('REVENUE', 'EXPENSE')
		  );
	`
	if _, err := tx.Exec(ctx, flagQuery, period.PeriodID); err != nil {
		return apperrors.NewAppError(500, "failed to flag consumed entries for period "+period.PeriodID, err)
	}

	var closingVoucher *string
	if len(entries) > 0 {
		closingVoucher = &entries[0].VoucherNumber
	}
	periodQuery := `
		UPDATE fiscal_periods
		SET is_closed = TRUE, closing_voucher_number = $2, net_income = $3,
		    closed_at = $4, closed_by = $5, last_updated_at = $4, last_updated_by = $5
		WHERE period_id = $1;
	`
	if _, err := tx.Exec(ctx, periodQuery, period.PeriodID, closingVoucher, netIncome, closedAt, closedBy); err != nil {
		return apperrors.NewAppError(500, "failed to close fiscal period "+period.PeriodID, err)
	}

	return r.Commit(ctx, tx)
}

// NextVoucherNumber atomically allocates the next number for the document
// type. The upsert resolves contention inside the database, so two concurrent
// callers always receive distinct numbers.
func (r *PgxLedgerRepository) NextVoucherNumber(ctx context.Context, documentType string) (string, error) {
	query := `
		INSERT INTO document_sequences (document_type, current_number)
		VALUES ($1, 1)
		ON CONFLICT (document_type)
		DO UPDATE SET current_number = document_sequences.current_number + 1
		RETURNING current_number;
	`
	var number int64
	if err := r.Pool.QueryRow(ctx, query, documentType).Scan(&number); err != nil {
		return "", apperrors.NewAppError(500, "failed to allocate voucher number for "+documentType, err)
	}
	return fmt.Sprintf("%s-%06d", documentType, number), nil
}

// VoucherNumberExists reports whether any entry carries the voucher number.
func (r *PgxLedgerRepository) VoucherNumberExists(ctx context.Context, voucherNumber string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE voucher_number = $1);`, voucherNumber).
		Scan(&exists)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to check voucher number "+voucherNumber, err)
	}
	return exists, nil
}

func scanLedgerEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := row.Scan(
		&e.EntryID,
		&e.VoucherNumber,
		&e.VoucherDate,
		&e.AccountID,
		&e.AccountCode,
		&e.EntryType,
		&e.Amount,
		&e.CurrencyCode,
		&e.Description,
		&e.ReferenceType,
		&e.ReferenceID,
		&e.FiscalPeriodID,
		&e.IsClosed,
		&e.ReversesVoucherNumber,
		&e.CreatedAt,
		&e.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to scan ledger entry", err)
	}
	return &e, nil
}

func (r *PgxLedgerRepository) queryEntries(ctx context.Context, query string, args ...any) ([]domain.LedgerEntry, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query ledger entries", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate ledger entries", err)
	}
	return entries, nil
}

// FindEntriesByVoucher returns all entries of one voucher in insertion order.
func (r *PgxLedgerRepository) FindEntriesByVoucher(ctx context.Context, voucherNumber string) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE voucher_number = $1 ORDER BY entry_id;`
	return r.queryEntries(ctx, query, voucherNumber)
}

// HasReversal reports whether any entry links back to the voucher.
func (r *PgxLedgerRepository) HasReversal(ctx context.Context, voucherNumber string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE reverses_voucher_number = $1);`, voucherNumber).
		Scan(&exists)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to check reversal of voucher "+voucherNumber, err)
	}
	return exists, nil
}

// AccountActivity sums debit and credit amounts of all entries for one
// account up to asOf. Closing entries count like any other entry; the
// is_closed flag only scopes net-income recalculation, never balances.
func (r *PgxLedgerRepository) AccountActivity(ctx context.Context, accountID string, asOf time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'DEBIT'), 0),
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'CREDIT'), 0)
		FROM ledger_entries
		WHERE account_id = $1 AND voucher_date <= $2;
	`
	var debits, credits decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountID, asOf).Scan(&debits, &credits); err != nil {
		return decimal.Zero, decimal.Zero, apperrors.NewAppError(500, "failed to sum activity for account "+accountID, err)
	}
	return debits, credits, nil
}

// ListEntriesByAccount returns the most recent entries for one account.
func (r *PgxLedgerRepository) ListEntriesByAccount(ctx context.Context, accountID string, limit int) ([]domain.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerEntryColumns + `
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY voucher_date DESC, created_at DESC
		LIMIT $2;
	`
	return r.queryEntries(ctx, query, accountID, limit)
}

// PeriodActivityByType returns per-account debit/credit totals of open
// entries inside one fiscal period, restricted to one account type.
func (r *PgxLedgerRepository) PeriodActivityByType(ctx context.Context, fiscalPeriodID string, accountType domain.AccountType) ([]domain.AccountActivity, error) {
	query := `
		SELECT a.account_id, a.account_code, a.name, a.account_type,
			COALESCE(SUM(e.amount) FILTER (WHERE e.entry_type = 'DEBIT'), 0),
			COALESCE(SUM(e.amount) FILTER (WHERE e.entry_type = 'CREDIT'), 0)
		FROM ledger_entries e
		JOIN accounts a ON a.account_id = e.account_id
		WHERE e.fiscal_period_id = $1 AND e.is_closed = FALSE AND a.account_type = $2
		GROUP BY a.account_id, a.account_code, a.name, a.account_type
		ORDER BY a.account_code;
	`
	rows, err := r.Pool.Query(ctx, query, fiscalPeriodID, accountType)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query period activity", err)
	}
	defer rows.Close()

	var activity []domain.AccountActivity
	for rows.Next() {
		var a domain.AccountActivity
		if err := rows.Scan(&a.AccountID, &a.AccountCode, &a.AccountName, &a.AccountType, &a.Debits, &a.Credits); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan period activity", err)
		}
		activity = append(activity, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate period activity", err)
	}
	return activity, nil
}

// ForeignCurrencyBalances returns per-account outstanding balances
// (debits - credits) denominated in the given currency.
func (r *PgxLedgerRepository) ForeignCurrencyBalances(ctx context.Context, currencyCode string) ([]domain.AccountCurrencyBalance, error) {
	query := `
		SELECT a.account_id, a.account_code, a.account_type, e.currency_code,
			COALESCE(SUM(CASE WHEN e.entry_type = 'DEBIT' THEN e.amount ELSE -e.amount END), 0) AS balance
		FROM ledger_entries e
		JOIN accounts a ON a.account_id = e.account_id
		WHERE e.currency_code = $1
		GROUP BY a.account_id, a.account_code, a.account_type, e.currency_code
		HAVING COALESCE(SUM(CASE WHEN e.entry_type = 'DEBIT' THEN e.amount ELSE -e.amount END), 0) <> 0
		ORDER BY a.account_code;
	`
	rows, err := r.Pool.Query(ctx, query, currencyCode)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query foreign currency balances", err)
	}
	defer rows.Close()

	var balances []domain.AccountCurrencyBalance
	for rows.Next() {
		var b domain.AccountCurrencyBalance
		if err := rows.Scan(&b.AccountID, &b.AccountCode, &b.AccountType, &b.CurrencyCode, &b.ForeignBalance); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan foreign currency balance", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate foreign currency balances", err)
	}
	return balances, nil
}

// ActivityByAccount returns debit/credit totals per active account over all
// entries up to asOf, for trial balance reporting.
func (r *PgxLedgerRepository) ActivityByAccount(ctx context.Context, asOf time.Time) ([]domain.AccountActivity, error) {
	query := `
		SELECT a.account_id, a.account_code, a.name, a.account_type,
			COALESCE(SUM(e.amount) FILTER (WHERE e.entry_type = 'DEBIT'), 0),
			COALESCE(SUM(e.amount) FILTER (WHERE e.entry_type = 'CREDIT'), 0)
		FROM ledger_entries e
		JOIN accounts a ON a.account_id = e.account_id
		WHERE e.voucher_date <= $1 AND a.is_active = TRUE
		GROUP BY a.account_id, a.account_code, a.name, a.account_type
		ORDER BY a.account_code;
	`
	rows, err := r.Pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query account activity", err)
	}
	defer rows.Close()

	var activity []domain.AccountActivity
	for rows.Next() {
		var a domain.AccountActivity
		if err := rows.Scan(&a.AccountID, &a.AccountCode, &a.AccountName, &a.AccountType, &a.Debits, &a.Credits); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account activity", err)
		}
		activity = append(activity, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate account activity", err)
	}
	return activity, nil
}
