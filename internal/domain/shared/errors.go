package shared

import (
	"errors"
	"fmt"
)

// DomainError is a ledger rule violation. Errors built with Errorf keep the
// code of their sentinel, so errors.Is matches on the code alone.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string { return e.Message }

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// Errorf formats a detailed error of kind
func Errorf(kind *DomainError, format string, args ...any) *DomainError {
	return &DomainError{Code: kind.Code, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode returns the code of the first DomainError in err's chain, or
// "INTERNAL" when there is none
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return "INTERNAL"
}

var (
	ErrNotFound            = &DomainError{"NOT_FOUND", "not found"}
	ErrInvalidInput        = &DomainError{"INVALID_INPUT", "invalid input"}
	ErrInvalidOperation    = &DomainError{"INVALID_OPERATION", "operation not recognized"}
	ErrInvalidState        = &DomainError{"INVALID_STATE", "not allowed in the current state"}
	ErrConcurrencyConflict = &DomainError{"CONCURRENCY_CONFLICT", "modified by another writer"}
	ErrInsufficientStock   = &DomainError{"INSUFFICIENT_STOCK", "insufficient stock"}
	ErrLockNotObtained     = &DomainError{"LOCK_NOT_OBTAINED", "ledger lock not obtained"}
)
