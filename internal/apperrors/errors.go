package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// Posting errors.
var (
	// ErrAccountNotFound indicates that an entry references an unknown account code.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAccountInvalid indicates that an entry references an account that is
	// inactive or not a leaf, so it cannot accept postings.
	ErrAccountInvalid = errors.New("account cannot accept postings")

	// ErrUnbalancedVoucher indicates that the debit and credit totals of a
	// voucher differ. This is always a caller bug and is never retried.
	ErrUnbalancedVoucher = errors.New("voucher debits do not equal credits")

	// ErrDuplicateVoucherNumber indicates a collision on an explicitly supplied
	// voucher number. With atomic allocation this should never occur.
	ErrDuplicateVoucherNumber = errors.New("voucher number already exists")
)

// Reversal errors.
var (
	// ErrVoucherNotFound indicates that no ledger entries exist for a voucher number.
	ErrVoucherNotFound = errors.New("voucher not found")

	// ErrAlreadyReversed indicates that a reversal voucher already references the voucher.
	ErrAlreadyReversed = errors.New("voucher has already been reversed")
)

// Fiscal period errors.
var (
	// ErrPeriodClosed indicates that the target fiscal period is closed.
	ErrPeriodClosed = errors.New("fiscal period is closed")

	// ErrPeriodLocked indicates that the target fiscal period is locked.
	ErrPeriodLocked = errors.New("fiscal period is locked")

	// ErrPeriodNotFound indicates that no fiscal period covers the requested date.
	ErrPeriodNotFound = errors.New("no fiscal period covers the given date")

	// ErrPeriodOverlap indicates that a new period's date range overlaps an existing one.
	ErrPeriodOverlap = errors.New("fiscal period overlaps an existing period")
)

// Currency errors.
var (
	// ErrRateNotFound indicates that neither a direct nor an inverse exchange
	// rate exists at or before the requested date.
	ErrRateNotFound = errors.New("no exchange rate found for currency pair")

	// ErrActivePolicyDeletionForbidden indicates an attempt to delete the active
	// currency policy, or one that is still referenced by transaction contexts.
	ErrActivePolicyDeletionForbidden = errors.New("currency policy is active or in use and cannot be deleted")

	// ErrRevaluationNotEnabled indicates that the active policy does not permit revaluation.
	ErrRevaluationNotEnabled = errors.New("revaluation is not enabled by the active currency policy")
)

// AppError wraps a lower-level error with an HTTP-ish status code and message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewValidationError creates an AppError carrying ErrValidation.
func NewValidationError(message string) *AppError {
	return &AppError{Code: 400, Message: message, Err: ErrValidation}
}
