package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies a class of tracker error.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// TrackerError is an error that knows which HTTP status it maps to.
// Message is safe to show to API clients; Err is not.
type TrackerError struct {
	Code    ErrorCode
	Status  int
	Message string
	Err     error
}

func (e *TrackerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *TrackerError) Unwrap() error { return e.Err }

// NewInvalidRequest creates a 400 error for malformed write input.
func NewInvalidRequest(msg string) *TrackerError {
	return &TrackerError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error.
func NewNotFound() *TrackerError {
	return &TrackerError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "Not found",
	}
}

// NewInternal wraps an unexpected failure. msg is the client-facing text,
// the cause is kept for logging only.
func NewInternal(msg string, err error) *TrackerError {
	return &TrackerError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// Is reports whether err, or anything it wraps, is a TrackerError with the given code.
func Is(err error, code ErrorCode) bool {
	if tErr, ok := As(err); ok {
		return tErr.Code == code
	}
	return false
}

// As finds the first TrackerError in err's chain.
func As(err error) (*TrackerError, bool) {
	var tErr *TrackerError
	if stderrors.As(err, &tErr) {
		return tErr, true
	}
	return nil, false
}
