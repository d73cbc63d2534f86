package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the request is valid but the current state of the resource forbids it.
var ErrConflict = errors.New("state conflict")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller is authenticated but not allowed to perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrInternal indicates an unexpected infrastructure failure.
var ErrInternal = errors.New("internal error")

// Ledger validation errors.
var (
	ErrTooFewLines          = fmt.Errorf("%w: journal entry must have at least two lines", ErrValidation)
	ErrUnbalanced           = fmt.Errorf("%w: journal entry is unbalanced", ErrValidation)
	ErrNoFiscalPeriod       = fmt.Errorf("%w: no fiscal period covers the entry date", ErrValidation)
	ErrAccountNotConfigured = fmt.Errorf("%w: required account is not configured", ErrValidation)
)

// Ledger state-machine errors.
var (
	ErrInvalidStatus    = fmt.Errorf("%w: invalid journal entry status", ErrConflict)
	ErrAlreadyReversed  = fmt.Errorf("%w: journal entry has already been reversed", ErrConflict)
	ErrPeriodClosed     = fmt.Errorf("%w: fiscal period is closed", ErrConflict)
	ErrAlreadyClosed    = fmt.Errorf("%w: fiscal period is already closed", ErrConflict)
	ErrOpenEntriesExist = fmt.Errorf("%w: fiscal period has draft entries", ErrConflict)
)

// UnbalancedError reports the totals of an entry whose debits and credits differ.
type UnbalancedError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("%s: debits %s, credits %s", ErrUnbalanced.Error(), e.TotalDebit.StringFixed(2), e.TotalCredit.StringFixed(2))
}

func (e *UnbalancedError) Unwrap() error { return ErrUnbalanced }

// InvalidStatusError carries the status an entry actually had.
type InvalidStatusError struct {
	Current string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("%s: current status is %s", ErrInvalidStatus.Error(), e.Current)
}

func (e *InvalidStatusError) Unwrap() error { return ErrInvalidStatus }

// OpenEntriesError carries the number of DRAFT entries blocking a period close.
type OpenEntriesError struct {
	Count int
}

func (e *OpenEntriesError) Error() string {
	return fmt.Sprintf("%s: %d draft entries", ErrOpenEntriesExist.Error(), e.Count)
}

func (e *OpenEntriesError) Unwrap() error { return ErrOpenEntriesExist }

// AccountNotConfiguredError lists the account codes a caller needed but the chart lacks.
type AccountNotConfiguredError struct {
	Codes []string
}

func (e *AccountNotConfiguredError) Error() string {
	return fmt.Sprintf("%s: missing codes %v", ErrAccountNotConfigured.Error(), e.Codes)
}

func (e *AccountNotConfiguredError) Unwrap() error { return ErrAccountNotConfigured }

// AppError wraps an underlying error with an HTTP-ish status code and a message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	if e.Err == nil && e.Code >= http.StatusInternalServerError {
		return ErrInternal
	}
	return e.Err
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}
