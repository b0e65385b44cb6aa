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
	"github.com/qoyodhq/ledgercore/internal/utils/accounting"
)

// DocumentTypeVoucher is the default document sequence for ledger vouchers.
const DocumentTypeVoucher = "VOU"

// referenceTypeLedger marks reversal vouchers as originating from the ledger itself.
const referenceTypeLedger = "general_ledger"

// ledgerService is the double-entry posting engine.
type ledgerService struct {
	ledgerRepo portsrepo.LedgerRepositoryFacade
	periodRepo portsrepo.FiscalPeriodRepositoryFacade
	coaSvc     portssvc.ChartOfAccountsSvcFacade
	currRepo   portsrepo.CurrencyRepositoryFacade
}

// NewLedgerService creates the posting engine.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, periodRepo portsrepo.FiscalPeriodRepositoryFacade, coaSvc portssvc.ChartOfAccountsSvcFacade, currRepo portsrepo.CurrencyRepositoryFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo: ledgerRepo,
		periodRepo: periodRepo,
		coaSvc:     coaSvc,
		currRepo:   currRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// validateEntries checks shape, positive amounts, valid sides, and that every
// referenced account is an active leaf. Returns the resolved accounts.
func (s *ledgerService) validateEntries(ctx context.Context, entries []dto.EntryInput) (map[string]domain.Account, error) {
	if len(entries) < 2 {
		return nil, fmt.Errorf("%w: at least two entries are required", apperrors.ErrValidation)
	}

	codes := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.EntryType != domain.Debit && e.EntryType != domain.Credit {
			return nil, fmt.Errorf("%w: entry type must be DEBIT or CREDIT", apperrors.ErrValidation)
		}
		if e.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: entry amount must be positive for account %s", apperrors.ErrValidation, e.AccountCode)
		}
		if _, ok := seen[e.AccountCode]; !ok {
			seen[e.AccountCode] = struct{}{}
			codes = append(codes, e.AccountCode)
		}
	}

	accounts, err := s.coaSvc.ResolveMany(ctx, codes)
	if err != nil {
		return nil, err
	}
	for _, code := range codes {
		acc := accounts[code]
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrAccountInvalid, code)
		}
		if !acc.IsLeaf {
			return nil, fmt.Errorf("%w: account %s is a summary header", apperrors.ErrAccountInvalid, code)
		}
	}
	return accounts, nil
}

// validateBalance enforces the system's single most important invariant:
// debit and credit totals of a voucher must be exactly equal.
func validateBalance(entries []dto.EntryInput) error {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, e := range entries {
		if e.EntryType == domain.Debit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}
	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits sum to %s, credits sum to %s",
			apperrors.ErrUnbalancedVoucher, debits.String(), credits.String())
	}
	return nil
}

// postOptions carries internal knobs not exposed on the public posting API.
type postOptions struct {
	// reversesVoucher links every written entry back to the voucher it offsets.
	reversesVoucher *string
}

func (s *ledgerService) resolveCurrency(ctx context.Context, requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	primary, err := s.currRepo.FindPrimaryCurrency(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve primary currency: %w", err)
	}
	return primary.CurrencyCode, nil
}

// PostTransaction validates and atomically writes a balanced entry set.
// Validation order: accounts, then balance, then fiscal period state.
func (s *ledgerService) PostTransaction(ctx context.Context, req dto.PostTransactionRequest, userID string) (string, error) {
	return s.post(ctx, req, userID, postOptions{})
}

func (s *ledgerService) post(ctx context.Context, req dto.PostTransactionRequest, userID string, opts postOptions) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accounts, err := s.validateEntries(ctx, req.Entries)
	if err != nil {
		return "", err
	}
	if err := validateBalance(req.Entries); err != nil {
		return "", err
	}

	period, err := s.periodRepo.FindPeriodForDate(ctx, req.Date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", apperrors.ErrPeriodNotFound, req.Date.Format("2006-01-02"))
		}
		return "", fmt.Errorf("failed to resolve fiscal period: %w", err)
	}
	if period.IsClosed {
		return "", fmt.Errorf("%w: %s", apperrors.ErrPeriodClosed, period.PeriodName)
	}
	if period.IsLocked {
		return "", fmt.Errorf("%w: %s", apperrors.ErrPeriodLocked, period.PeriodName)
	}

	voucherNumber, err := s.resolveVoucherNumber(ctx, req.VoucherNumber)
	if err != nil {
		return "", err
	}

	currency, err := s.resolveCurrency(ctx, req.CurrencyCode)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	entries := make([]domain.LedgerEntry, len(req.Entries))
	for i, e := range req.Entries {
		acc := accounts[e.AccountCode]
		entries[i] = domain.LedgerEntry{
			EntryID:               uuid.NewString(),
			VoucherNumber:         voucherNumber,
			VoucherDate:           req.Date,
			AccountID:             acc.AccountID,
			AccountCode:           acc.AccountCode,
			EntryType:             e.EntryType,
			Amount:                e.Amount,
			CurrencyCode:          currency,
			Description:           e.Description,
			ReferenceType:         req.ReferenceType,
			ReferenceID:           req.ReferenceID,
			FiscalPeriodID:        period.PeriodID,
			ReversesVoucherNumber: opts.reversesVoucher,
			CreatedAt:             now,
			CreatedBy:             userID,
		}
	}

	if err := s.ledgerRepo.SaveEntries(ctx, period.PeriodID, entries); err != nil {
		logger.Error("Failed to save voucher entries", slog.String("error", err.Error()),
			slog.String("voucher_number", voucherNumber))
		return "", fmt.Errorf("failed to save voucher %s: %w", voucherNumber, err)
	}

	logger.Info("Voucher posted", slog.String("voucher_number", voucherNumber),
		slog.Int("entry_count", len(entries)), slog.String("fiscal_period", period.PeriodName))
	return voucherNumber, nil
}

func (s *ledgerService) resolveVoucherNumber(ctx context.Context, supplied *string) (string, error) {
	if supplied == nil || *supplied == "" {
		return s.ledgerRepo.NextVoucherNumber(ctx, DocumentTypeVoucher)
	}
	exists, err := s.ledgerRepo.VoucherNumberExists(ctx, *supplied)
	if err != nil {
		return "", fmt.Errorf("failed to check voucher number: %w", err)
	}
	if exists {
		return "", fmt.Errorf("%w: %s", apperrors.ErrDuplicateVoucherNumber, *supplied)
	}
	return *supplied, nil
}

// NextVoucherNumber atomically allocates the next number for a document type.
func (s *ledgerService) NextVoucherNumber(ctx context.Context, documentType string) (string, error) {
	if documentType == "" {
		documentType = DocumentTypeVoucher
	}
	return s.ledgerRepo.NextVoucherNumber(ctx, documentType)
}

// ReverseTransaction posts a mirror of the voucher's entries with sides
// swapped, dated at the reversal time. The original entries are untouched;
// reversal is additive so the audit history stays complete.
func (s *ledgerService) ReverseTransaction(ctx context.Context, voucherNumber, reason, userID string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	originals, err := s.ledgerRepo.FindEntriesByVoucher(ctx, voucherNumber)
	if err != nil {
		return "", fmt.Errorf("failed to load voucher %s: %w", voucherNumber, err)
	}
	if len(originals) == 0 {
		return "", fmt.Errorf("%w: %s", apperrors.ErrVoucherNotFound, voucherNumber)
	}

	reversed, err := s.ledgerRepo.HasReversal(ctx, voucherNumber)
	if err != nil {
		return "", fmt.Errorf("failed to check reversal state of %s: %w", voucherNumber, err)
	}
	if reversed {
		return "", fmt.Errorf("%w: %s", apperrors.ErrAlreadyReversed, voucherNumber)
	}

	mirror := make([]dto.EntryInput, len(originals))
	for i, orig := range originals {
		description := reason
		if description == "" {
			description = fmt.Sprintf("Reversal of %s", orig.Description)
		}
		mirror[i] = dto.EntryInput{
			AccountCode: orig.AccountCode,
			EntryType:   orig.EntryType.Opposite(),
			Amount:      orig.Amount,
			Description: description,
		}
	}

	refType := referenceTypeLedger
	refID := voucherNumber
	reversalReq := dto.PostTransactionRequest{
		Entries:       mirror,
		ReferenceType: &refType,
		ReferenceID:   &refID,
		Date:          time.Now().UTC(),
		CurrencyCode:  originals[0].CurrencyCode,
	}

	newVoucher, err := s.post(ctx, reversalReq, userID, postOptions{reversesVoucher: &voucherNumber})
	if err != nil {
		return "", err
	}

	logger.Info("Voucher reversed", slog.String("voucher_number", voucherNumber),
		slog.String("reversal_voucher_number", newVoucher))
	return newVoucher, nil
}

// GetAccountBalance returns the balance on the account's normal side over all
// entries with voucher_date <= asOf: debits-credits for Asset/Expense,
// credits-debits for Liability/Equity/Revenue. A revenue account holding
// 1000.00 of credits reports +1000.00. Deterministic and side-effect-free.
func (s *ledgerService) GetAccountBalance(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error) {
	account, err := s.coaSvc.Resolve(ctx, accountCode)
	if err != nil {
		return decimal.Zero, err
	}

	debits, credits, err := s.ledgerRepo.AccountActivity(ctx, account.AccountID, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute balance for %s: %w", accountCode, err)
	}
	return accounting.NormalBalance(account.AccountType, debits, credits), nil
}

// GetVoucher loads a voucher header with its entries.
func (s *ledgerService) GetVoucher(ctx context.Context, voucherNumber string) (*domain.Voucher, error) {
	entries, err := s.ledgerRepo.FindEntriesByVoucher(ctx, voucherNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load voucher %s: %w", voucherNumber, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrVoucherNotFound, voucherNumber)
	}

	debits, credits := accounting.SumByType(entries)
	head := entries[0]
	return &domain.Voucher{
		VoucherNumber: head.VoucherNumber,
		VoucherDate:   head.VoucherDate,
		Description:   head.Description,
		ReferenceType: head.ReferenceType,
		ReferenceID:   head.ReferenceID,
		TotalDebits:   debits,
		TotalCredits:  credits,
		Entries:       entries,
		CreatedAt:     head.CreatedAt,
		CreatedBy:     head.CreatedBy,
	}, nil
}

// ListEntriesByAccount returns an account's entry history, newest first.
func (s *ledgerService) ListEntriesByAccount(ctx context.Context, accountCode string, limit int) ([]domain.LedgerEntry, error) {
	account, err := s.coaSvc.Resolve(ctx, accountCode)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.ledgerRepo.ListEntriesByAccount(ctx, account.AccountID, limit)
}

// GetTrialBalance aggregates per-account normal-side balances as of a date,
// split into debit/credit columns.
func (s *ledgerService) GetTrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalance, error) {
	activity, err := s.ledgerRepo.ActivityByAccount(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to compute trial balance: %w", err)
	}

	tb := &domain.TrialBalance{
		AsOf:         asOf,
		Rows:         make([]domain.TrialBalanceRow, 0, len(activity)),
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}
	for _, act := range activity {
		if act.Debits.IsZero() && act.Credits.IsZero() {
			continue
		}
		row := domain.TrialBalanceRow{
			AccountCode:   act.AccountCode,
			AccountName:   act.AccountName,
			AccountType:   act.AccountType,
			DebitBalance:  decimal.Zero,
			CreditBalance: decimal.Zero,
		}
		// A nonnegative normal-side balance lands in the account's normal
		// column; a negative one flips to the opposite column as a positive.
		balance := accounting.NormalBalance(act.AccountType, act.Debits, act.Credits)
		onNormalSide := !balance.IsNegative()
		if balance.IsNegative() {
			balance = balance.Neg()
		}
		if act.AccountType.IsDebitNormal() == onNormalSide {
			row.DebitBalance = balance
		} else {
			row.CreditBalance = balance
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebits = tb.TotalDebits.Add(row.DebitBalance)
		tb.TotalCredits = tb.TotalCredits.Add(row.CreditBalance)
	}
	tb.IsBalanced = tb.TotalDebits.Equal(tb.TotalCredits)
	return tb, nil
}

// PeriodBalancesByType folds per-account period activity into normal-side balances.
func (s *ledgerService) PeriodBalancesByType(ctx context.Context, fiscalPeriodID string, accountType domain.AccountType) ([]domain.AccountPeriodBalance, error) {
	activity, err := s.ledgerRepo.PeriodActivityByType(ctx, fiscalPeriodID, accountType)
	if err != nil {
		return nil, fmt.Errorf("failed to compute period balances: %w", err)
	}

	balances := make([]domain.AccountPeriodBalance, 0, len(activity))
	for _, act := range activity {
		balances = append(balances, domain.AccountPeriodBalance{
			AccountID:   act.AccountID,
			AccountCode: act.AccountCode,
			AccountType: act.AccountType,
			Balance:     accounting.NormalBalance(act.AccountType, act.Debits, act.Credits),
		})
	}
	return balances, nil
}

// PostPeriodClosing writes a period's closing voucher in one atomic unit:
// the closing entries, the consumed flags on the period's revenue/expense
// entries, and the period row itself. Closing entries post like ordinary
// entries so balances keep seeing them, the retained-earnings net-income
// transfer above all. It deliberately skips the period-state gate; the
// repository re-checks state under a row lock so a racing close or posting
// resolves to exactly one winner.
func (s *ledgerService) PostPeriodClosing(ctx context.Context, period domain.FiscalPeriod, entryInputs []dto.EntryInput, netIncome decimal.Decimal, userID string) (string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	accounts, err := s.validateEntries(ctx, entryInputs)
	if err != nil {
		return "", err
	}
	if err := validateBalance(entryInputs); err != nil {
		return "", err
	}

	voucherNumber, err := s.ledgerRepo.NextVoucherNumber(ctx, DocumentTypeVoucher)
	if err != nil {
		return "", err
	}

	currency, err := s.resolveCurrency(ctx, "")
	if err != nil {
		return "", err
	}

	refType := "fiscal_periods"
	refID := period.PeriodID
	now := time.Now().UTC()
	entries := make([]domain.LedgerEntry, len(entryInputs))
	for i, e := range entryInputs {
		acc := accounts[e.AccountCode]
		entries[i] = domain.LedgerEntry{
			EntryID:        uuid.NewString(),
			VoucherNumber:  voucherNumber,
			VoucherDate:    period.EndDate,
			AccountID:      acc.AccountID,
			AccountCode:    acc.AccountCode,
			EntryType:      e.EntryType,
			Amount:         e.Amount,
			CurrencyCode:   currency,
			Description:    e.Description,
			ReferenceType:  &refType,
			ReferenceID:    &refID,
			FiscalPeriodID: period.PeriodID,
			CreatedAt:      now,
			CreatedBy:      userID,
		}
	}

	if err := s.ledgerRepo.SaveClosingVoucher(ctx, period, entries, netIncome, userID, now); err != nil {
		logger.Error("Failed to save closing voucher", slog.String("error", err.Error()),
			slog.String("period_id", period.PeriodID))
		return "", err
	}

	logger.Info("Closing voucher posted", slog.String("voucher_number", voucherNumber),
		slog.String("period_id", period.PeriodID), slog.String("net_income", netIncome.String()))
	return voucherNumber, nil
}
