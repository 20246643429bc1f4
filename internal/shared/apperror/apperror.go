// Package apperror defines the operational error type every handler funnels
// into the central error middleware.
package apperror

import (
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation        Kind = "VALIDATION_ERROR"
	KindDuplicate         Kind = "DUPLICATE_FIELD"
	KindInvalidID         Kind = "INVALID_ID"
	KindInvalidToken      Kind = "INVALID_TOKEN"
	KindExpiredToken      Kind = "EXPIRED_TOKEN"
	KindInvalidResetToken Kind = "INVALID_RESET_TOKEN"
	KindNotFound          Kind = "NOT_FOUND"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindForbidden         Kind = "FORBIDDEN"
	KindBadRequest        Kind = "BAD_REQUEST"
	KindPayloadTooLarge   Kind = "PAYLOAD_TOO_LARGE"
	KindTooManyRequests   Kind = "TOO_MANY_REQUESTS"
	KindInternal          Kind = "INTERNAL_ERROR"
)

// AppError carries an HTTP status and a message that is safe to show clients.
// Operational is false for programming or unknown failures; those are masked
// in production.
type AppError struct {
	Kind        Kind
	StatusCode  int
	Message     string
	Operational bool
	Err         error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status is the envelope status: "fail" for client errors, "error" otherwise.
func (e *AppError) Status() string {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return "fail"
	}
	return "error"
}

// WithErr attaches the underlying cause.
func (e *AppError) WithErr(err error) *AppError {
	e.Err = err
	return e
}

func New(kind Kind, status int, message string) *AppError {
	return &AppError{Kind: kind, StatusCode: status, Message: message, Operational: true}
}

func Validation(message string) *AppError {
	return New(KindValidation, http.StatusBadRequest, message)
}

func Duplicate(message string) *AppError {
	return New(KindDuplicate, http.StatusBadRequest, message)
}

func InvalidID(value string) *AppError {
	return New(KindInvalidID, http.StatusBadRequest, fmt.Sprintf("Invalid id: %s.", value))
}

func InvalidToken() *AppError {
	return New(KindInvalidToken, http.StatusUnauthorized, "Invalid token. Please log in again!")
}

func ExpiredToken() *AppError {
	return New(KindExpiredToken, http.StatusUnauthorized, "Your token has expired! Please log in again.")
}

func InvalidResetToken() *AppError {
	return New(KindInvalidResetToken, http.StatusBadRequest, "Token is invalid or has expired")
}

func NotFound(message string) *AppError {
	return New(KindNotFound, http.StatusNotFound, message)
}

func Unauthorized(message string) *AppError {
	return New(KindUnauthorized, http.StatusUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(KindForbidden, http.StatusForbidden, message)
}

func BadRequest(message string) *AppError {
	return New(KindBadRequest, http.StatusBadRequest, message)
}

func TooManyRequests(message string) *AppError {
	return New(KindTooManyRequests, http.StatusTooManyRequests, message)
}

// Internal is an operational 500: the message is shown to clients.
func Internal(message string, err error) *AppError {
	return New(KindInternal, http.StatusInternalServerError, message).WithErr(err)
}
