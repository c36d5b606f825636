package domain

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
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

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// WithMessage returns a copy of e carrying a more specific client-facing message.
func (e *AppError) WithMessage(msg string) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    msg,
		StatusCode: e.StatusCode,
		Err:        e.Err,
	}
}

// Is matches on Code so copies made by WithError/WithMessage still compare
// equal to the predefined sentinel.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewValidationError builds a 400 error whose message is returned verbatim to the client.
func NewValidationError(msg string) *AppError {
	return ErrValidationFailed.WithMessage(msg)
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required",
		StatusCode: 401,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Access denied",
		StatusCode: 403,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Rate limit exceeded, please try again later",
		StatusCode: 429,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 400,
	}

	// Alert errors
	ErrAlertNotFound = &AppError{
		Code:       "ALERT_NOT_FOUND",
		Message:    "Alert not found",
		StatusCode: 404,
	}

	ErrMissingAlertFields = &AppError{
		Code:       "MISSING_ALERT_FIELDS",
		Message:    "Missing required alert fields",
		StatusCode: 400,
	}

	ErrInvalidSeverity = &AppError{
		Code:       "INVALID_SEVERITY",
		Message:    "Severity must be one of critical, high, medium, low",
		StatusCode: 400,
	}

	ErrMissingTransitionFields = &AppError{
		Code:       "MISSING_FIELDS",
		Message:    "Missing required fields",
		StatusCode: 400,
	}

	ErrInvalidAction = &AppError{
		Code:       "INVALID_ACTION",
		Message:    "Invalid action",
		StatusCode: 400,
	}

	ErrMissingAlertID = &AppError{
		Code:       "MISSING_ALERT_ID",
		Message:    "Alert ID is required",
		StatusCode: 400,
	}

	// Settings errors
	ErrInvalidSettings = &AppError{
		Code:       "INVALID_SETTINGS",
		Message:    "Invalid settings data",
		StatusCode: 400,
	}

	ErrResetNotConfirmed = &AppError{
		Code:       "RESET_NOT_CONFIRMED",
		Message:    "Reset confirmation required",
		StatusCode: 400,
	}
)
