package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across store adapters.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeModelMissing ErrorCode = "MODEL_MISSING"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a classified store-layer error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets wrapped instances match the sentinel carrying the same code.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && e != nil && other != nil && e.Code == other.Code
}

// NewError builds a classified error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common errors shared by the adapters.
var (
	ErrUserNotFound    = NewError(ErrCodeNotFound, "user not found")
	ErrTicketNotFound  = NewError(ErrCodeNotFound, "ticket not found")
	ErrArticleNotFound = NewError(ErrCodeNotFound, "article not found")
	ErrInvalidPayload  = NewError(ErrCodeInvalid, "invalid payload")

	// ErrModelMissing marks a relational target model that is not present
	// in the live schema. The degraded-mode policy branches on this code;
	// every other relational failure propagates unchanged.
	ErrModelMissing = NewError(ErrCodeModelMissing, "relational model missing")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
