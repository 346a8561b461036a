package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/behnamfe76/user-auth-service/internal/observability"
	apperrors "github.com/behnamfe76/user-auth-service/pkg/util/errorutil"
)

const bearerPrefix = "Bearer "

// Authenticator turns an Authorization header value into a Principal.
type Authenticator struct {
	tokens *TokenCodec
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(tokens *TokenCodec) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Authenticate returns (nil, nil) when header carries no bearer credential.
// Otherwise it returns the principal or one of ErrMalformed,
// ErrInvalidSignature and ErrExpired.
func (a *Authenticator) Authenticate(header string) (*Principal, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, nil
	}

	claims, err := a.tokens.Verify(header[len(bearerPrefix):])
	if err != nil {
		return nil, err
	}
	return FromClaims(claims)
}

// Middleware establishes caller identity for every request. It never
// authorizes; routes opt into role checks with RequireRole.
type Middleware struct {
	authenticator *Authenticator
	logger        *zap.Logger
	metrics       *observability.Metrics
}

// NewMiddleware constructs middleware.
func NewMiddleware(authenticator *Authenticator, logger *zap.Logger, metrics *observability.Metrics) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{authenticator: authenticator, logger: logger, metrics: metrics}
}

// Handle attaches the principal when a valid bearer token is present, passes
// through anonymous requests, and rejects everything else with INVALID_TOKEN.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	principal, err := m.authenticator.Authenticate(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		reason := failureReason(err)
		m.metrics.RecordAuthFailure(reason)
		m.logger.Debug("bearer token rejected",
			zap.String("reason", reason),
			zap.String("path", c.Path()),
		)
		return apperrors.NewInvalidToken()
	}
	if principal == nil {
		return c.Next()
	}

	c.Locals(principalKey, principal)
	c.SetUserContext(WithPrincipal(c.UserContext(), principal))
	return c.Next()
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}
