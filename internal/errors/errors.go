package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ValidationError     ErrorCode = "validation_error"
	NotFound            ErrorCode = "not_found"
	InsufficientBalance ErrorCode = "insufficient_balance"
	DuplicateUser       ErrorCode = "duplicate_user"
	InternalError       ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an AppError of the same kind, so callers can
// write errors.Is(err, ErrInsufficientBalance) regardless of message.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !stderrors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetails returns a copy carrying details, leaving shared sentinels untouched.
func (e *AppError) WithDetails(details string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// HTTPStatus maps the error kind to a response status code.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ValidationError, InsufficientBalance, DuplicateUser:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// AsAppError unwraps err into an AppError. Anything that is not already one
// is reported as an internal error carrying the original message as details.
func AsAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewAppError(InternalError, "an unexpected error occurred").WithDetails(err.Error())
}

// Predefined errors for common cases
var (
	ErrUserIDRequired         = NewAppError(ValidationError, "User ID is required")
	ErrInvalidUserID          = NewAppError(ValidationError, "User ID must be a positive integer")
	ErrAmountRequired         = NewAppError(ValidationError, "User ID and amount are required")
	ErrTransferFieldsRequired = NewAppError(ValidationError, "Source user ID, destination user ID, and amount are required")
	ErrSameAccountTransfer    = NewAppError(ValidationError, "Cannot transfer to the same account")
	ErrAmountPrecision        = NewAppError(ValidationError, "Amount must have at most 2 decimal places")
	ErrAmountTooLarge         = NewAppError(ValidationError, "Amount exceeds maximum limit")
	ErrBalanceLimit           = NewAppError(ValidationError, "Resulting balance exceeds maximum limit")
	ErrUserFieldsRequired     = NewAppError(ValidationError, "Please provide name, email, and phone number")
	ErrNegativeBalance        = NewAppError(ValidationError, "Initial balance cannot be negative")
	ErrInvalidRequestBody     = NewAppError(ValidationError, "Invalid request body")

	ErrAccountNotFound            = NewAppError(NotFound, "Account not found for this user")
	ErrSourceAccountNotFound      = NewAppError(NotFound, "Source account not found")
	ErrDestinationAccountNotFound = NewAppError(NotFound, "Destination account not found")

	ErrInsufficientBalance = NewAppError(InsufficientBalance, "Insufficient balance")

	ErrDuplicateUser = NewAppError(DuplicateUser, "User with this email already exists")

	ErrCannotBeginTransaction = NewAppError(InternalError, "cannot begin a transaction from within a transaction")
)
