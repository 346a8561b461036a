package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{name: "invalid token", err: NewInvalidToken(), wantCode: CodeInvalidToken, wantStatus: http.StatusUnauthorized},
		{name: "access denied", err: NewAccessDenied(), wantCode: CodeAccessDenied, wantStatus: http.StatusForbidden},
		{name: "invalid credentials", err: NewInvalidCredentials(), wantCode: CodeInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{name: "user not found", err: NewUserNotFound(), wantCode: CodeUserNotFound, wantStatus: http.StatusNotFound},
		{name: "user exists", err: NewUserAlreadyExists(), wantCode: CodeUserAlreadyExists, wantStatus: http.StatusBadRequest},
		{name: "throttled", err: NewTooManyLoginAttempts(), wantCode: CodeTooManyLoginAttempts, wantStatus: http.StatusTooManyRequests},
		{name: "wrapped domain error", err: fmt.Errorf("grant: %w", NewUserNotFound()), wantCode: CodeUserNotFound, wantStatus: http.StatusNotFound},
		{name: "fiber not found", err: fiber.ErrNotFound, wantCode: "NOT_FOUND", wantStatus: http.StatusNotFound},
		{name: "fiber method not allowed", err: fiber.ErrMethodNotAllowed, wantCode: "METHOD_NOT_ALLOWED", wantStatus: http.StatusMethodNotAllowed},
		{name: "fiber server error", err: fiber.ErrBadGateway, wantCode: CodeInternalError, wantStatus: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("pq: connection refused"), wantCode: CodeInternalError, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.HTTPStatus)
		})
	}

	assert.Nil(t, ToDomainError(nil))
}

func TestInternalErrorHidesCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.5:5432: connection refused")
	got := ToDomainError(cause)

	assert.Equal(t, internalErrorMessage, got.Message)
	assert.NotContains(t, got.Message, "10.0.0.5")
	assert.ErrorIs(t, got, cause)
}

func TestInvalidCredentialsIsUniform(t *testing.T) {
	a := ToDomainError(NewInvalidCredentials())
	b := ToDomainError(NewInvalidCredentials())
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, a.Code, b.Code)
}
