package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Stable error codes exposed to API callers.
const (
	CodeInvalidToken          = "INVALID_TOKEN"
	CodeAccessDenied          = "ACCESS_DENIED"
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeUserNotFound          = "USER_NOT_FOUND"
	CodeUserAlreadyExists     = "USER_ALREADY_EXISTS"
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeTooManyLoginAttempts  = "TOO_MANY_LOGIN_ATTEMPTS"
	CodeInternalError         = "INTERNAL_ERROR"
	internalErrorMessage      = "internal server error"
	invalidCredentialsMessage = "invalid username or password"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

// NewInvalidToken is returned for every bearer token rejection. The message is
// fixed so callers cannot tell which check failed.
func NewInvalidToken() error {
	return NewDomainError(CodeInvalidToken, "invalid authentication token", http.StatusUnauthorized, nil)
}

func NewAccessDenied() error {
	return NewDomainError(CodeAccessDenied, "access denied", http.StatusForbidden, nil)
}

// NewInvalidCredentials covers both unknown usernames and wrong passwords.
func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, invalidCredentialsMessage, http.StatusUnauthorized, nil)
}

func NewUserNotFound() error {
	return NewDomainError(CodeUserNotFound, "user not found", http.StatusNotFound, nil)
}

func NewUserAlreadyExists() error {
	return NewDomainError(CodeUserAlreadyExists, "user already exists", http.StatusBadRequest, nil)
}

func NewTooManyLoginAttempts() error {
	return NewDomainError(CodeTooManyLoginAttempts, "too many login attempts, try again later", http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    internalErrorMessage,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. Anything unclassified
// becomes an internal error whose cause stays in Err and out of the response.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code < http.StatusInternalServerError {
		return &DomainError{
			Code:       statusCode(fiberErr.Code),
			Message:    strings.ToLower(http.StatusText(fiberErr.Code)),
			HTTPStatus: fiberErr.Code,
		}
	}
	return &DomainError{
		Code:       CodeInternalError,
		Message:    internalErrorMessage,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// statusCode derives a code such as METHOD_NOT_ALLOWED from an HTTP status.
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "HTTP_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
