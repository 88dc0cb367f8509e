package errors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrInvalidMethod          = errors.New("invalid calculation method")
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrNoUnpaidSchedules      = errors.New("no unpaid schedules found for this loan")
	ErrInsufficientCollateral = errors.New("insufficient cash collateral balance")
	ErrAmountMismatch         = errors.New("settlement amount does not match expected amount")
	ErrExceedsPenalty         = errors.New("waiver amount exceeds current unpaid penalty")
	ErrLoanNotFound           = errors.New("loan not found")
	ErrProductNotFound        = errors.New("loan product not found")
	ErrScheduleNotFound       = errors.New("schedule not found")
	ErrRepaymentNotFound      = errors.New("repayment not found")
	ErrCollateralNotFound     = errors.New("cash collateral not found")
	ErrConsistency            = errors.New("state change failed to persist")
)

// Error codes
const (
	CodeValidation             = "VALIDATION_ERROR"
	CodeInvalidMethod          = "INVALID_METHOD"
	CodeNoUnpaidSchedules      = "NO_UNPAID_SCHEDULES"
	CodeInsufficientCollateral = "INSUFFICIENT_COLLATERAL"
	CodeAmountMismatch         = "AMOUNT_MISMATCH"
	CodeExceedsPenalty         = "EXCEEDS_PENALTY"
	CodeNotFound               = "NOT_FOUND"
	CodeConsistency            = "CONSISTENCY_ERROR"
	CodeDatabase               = "DATABASE_ERROR"
)

// BusinessError represents a business logic error with a stable code and a
// human-readable message carrying the offending field or amount.
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap common errors with business context

func WrapInvalidMethod(method string) *BusinessError {
	return NewBusinessError(
		CodeInvalidMethod,
		fmt.Sprintf("Unknown calculation method %q", method),
		ErrInvalidMethod,
	)
}

func WrapNoUnpaidSchedules(loanID string) *BusinessError {
	return NewBusinessError(
		CodeNoUnpaidSchedules,
		fmt.Sprintf("Loan %s has no unpaid schedules", loanID),
		ErrNoUnpaidSchedules,
	)
}

func WrapInsufficientCollateral(available, requested decimal.Decimal) *BusinessError {
	return NewBusinessError(
		CodeInsufficientCollateral,
		fmt.Sprintf("Insufficient cash collateral balance. Available: %s, requested: %s",
			available.StringFixed(2), requested.StringFixed(2)),
		ErrInsufficientCollateral,
	)
}

func WrapAmountMismatch(expected, provided decimal.Decimal) *BusinessError {
	return NewBusinessError(
		CodeAmountMismatch,
		fmt.Sprintf("Settle amount mismatch. Expected: %s, provided: %s",
			expected.StringFixed(2), provided.StringFixed(2)),
		ErrAmountMismatch,
	)
}

func WrapExceedsPenalty(current, requested decimal.Decimal) *BusinessError {
	return NewBusinessError(
		CodeExceedsPenalty,
		fmt.Sprintf("Waiver amount %s exceeds current unpaid penalty %s",
			requested.StringFixed(2), current.StringFixed(2)),
		ErrExceedsPenalty,
	)
}

func WrapNotFound(err error, id string) *BusinessError {
	return NewBusinessError(
		CodeNotFound,
		fmt.Sprintf("%s: %s", err.Error(), id),
		err,
	)
}

func WrapValidation(message string) *BusinessError {
	return NewBusinessError(CodeValidation, message, nil)
}

func WrapConsistency(message string, err error) *BusinessError {
	return NewBusinessError(CodeConsistency, message, errors.Join(ErrConsistency, err))
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(CodeDatabase, "database operation failed", err)
}
