package cashbook

import (
	"errors"
	"fmt"
)

// Domain-level error values returned by the cash-book service.
var (
	ErrLimitExceeded     = errors.New("cash book limit exceeded")
	ErrDuplicateName     = errors.New("duplicate cash book name")
	ErrProtectedCashBook = errors.New("protected cash book")
	ErrNonZeroBalance    = errors.New("cash book balance is not zero")
	ErrLocked            = errors.New("entry is locked by reconciliation")
	ErrInvalidAccount    = errors.New("invalid transfer account")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrStoreUnavailable  = errors.New("store unavailable")

	ErrUnknownCashBook      = errors.New("unknown cash book")
	ErrUnknownEntry         = errors.New("unknown entry")
	ErrInvalidTenantID      = errors.New("invalid tenant id")
	ErrInvalidUserID        = errors.New("invalid user id")
	ErrInvalidCashBookID    = errors.New("invalid cash book id")
	ErrInvalidCashBookName  = errors.New("invalid cash book name")
	ErrInvalidEntryID       = errors.New("invalid entry id")
	ErrInvalidEntryKind     = errors.New("invalid entry kind")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidPageCursor    = errors.New("invalid page cursor")
	ErrInvalidServiceConfig = errors.New("invalid service config")
)

// OperationError wraps a failure with a stable operation code.
type OperationError struct {
	operation string
	subject   string
	code      string
	err       error
}

// Error returns the formatted error message.
func (operationError OperationError) Error() string {
	return fmt.Sprintf("%s.%s.%s: %v", operationError.operation, operationError.subject, operationError.code, operationError.err)
}

// Unwrap returns the underlying error.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the operation segment.
func (operationError OperationError) Operation() string {
	return operationError.operation
}

// Subject returns the subject segment.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the stable error code segment.
func (operationError OperationError) Code() string {
	return operationError.code
}

// WrapError wraps an error with operation, subject, and code metadata.
func WrapError(operation string, subject string, code string, err error) error {
	if err == nil {
		return nil
	}
	return OperationError{
		operation: operation,
		subject:   subject,
		code:      code,
		err:       err,
	}
}
