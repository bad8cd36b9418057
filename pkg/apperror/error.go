package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindConflict    Kind = "conflict"
	KindInternal    Kind = "internal"
	KindRateLimited Kind = "rate_limited"
	KindUnavailable Kind = "unavailable"
)

type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Detail returns the cause text exposed on server-side failures.
// Client errors never carry one.
func (e *AppError) Detail() string {
	if e.Code < http.StatusInternalServerError || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func New(kind Kind, code int, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(KindValidation, http.StatusBadRequest, message, nil)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, http.StatusNotFound, message, nil)
}

// Conflict reports a uniqueness violation caught by the store after the
// pre-check passed. It is a server-side failure.
func Conflict(message string, err error) *AppError {
	return New(KindConflict, http.StatusInternalServerError, message, err)
}

func Internal(message string, err error) *AppError {
	if message == "" {
		message = "Internal Server Error"
	}
	return New(KindInternal, http.StatusInternalServerError, message, err)
}

func TooManyRequests(message string) *AppError {
	return New(KindRateLimited, http.StatusTooManyRequests, message, nil)
}

func Unavailable(message string, err error) *AppError {
	return New(KindUnavailable, http.StatusServiceUnavailable, message, err)
}

// As extracts an *AppError from err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err carries an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
