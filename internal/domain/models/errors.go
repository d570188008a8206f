package models

import (
	"fmt"
	"time"
)

// ErrorCode classifies domain failures so transports can map them to
// status codes without string matching.
type ErrorCode string

const (
	ErrCodeDataUnavailable     ErrorCode = "DATA_UNAVAILABLE"
	ErrCodeUnknownSymbol       ErrorCode = "UNKNOWN_SYMBOL"
	ErrCodeInvalidRange        ErrorCode = "INVALID_RANGE"
	ErrCodeInvalidParameter    ErrorCode = "INVALID_PARAMETER"
	ErrCodeMissingColumn       ErrorCode = "MISSING_COLUMN"
	ErrCodeRateLimitExceeded   ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeCacheUnavailable    ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeIndicatorNotAllowed ErrorCode = "INDICATOR_NOT_ALLOWED"
	ErrCodeUserExists          ErrorCode = "USER_EXISTS"
	ErrCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
)

// DomainError is a classified error raised below the transport layer.
type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a classified error.
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// NewDomainErrorf creates a classified error with formatting.
func NewDomainErrorf(code ErrorCode, format string, a ...interface{}) *DomainError {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, a...)}
}

// WrapDomainError wraps an underlying error with a classification.
func WrapDomainError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// ErrUnknownSymbol builds the error for a symbol absent from the dataset.
func ErrUnknownSymbol(symbol string) *DomainError {
	return NewDomainErrorf(ErrCodeUnknownSymbol, "symbol %s not found in dataset", symbol)
}

// ErrInvalidRange builds the error for a range that is empty after clamping.
func ErrInvalidRange(start, end time.Time) *DomainError {
	return NewDomainErrorf(ErrCodeInvalidRange, "start date %s is after end date %s",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// ErrMissingColumn builds the error for a series lacking a required column.
func ErrMissingColumn(column string) *DomainError {
	return NewDomainErrorf(ErrCodeMissingColumn, "dataset has no %s column", column)
}

// RateLimitExceededError rejects a request over the daily quota. It carries
// the full decision so transports can emit quota headers and a reset time.
type RateLimitExceededError struct {
	Limit     int64
	Used      int64
	Remaining int64
	ResetAt   time.Time
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded: used %d/%d requests today, resets at %s",
		e.Used, e.Limit, e.ResetAt.Format(time.RFC3339))
}
