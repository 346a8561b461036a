package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/behnamfe76/user-auth-service/internal/domain"
)

const principalKey = "auth_principal"

type principalCtxKey struct{}

// Principal represents the authenticated caller of a single request.
type Principal struct {
	Username string
	Role     domain.Role
}

// FromClaims builds a Principal from verified claims. A role outside the
// declared set means the token was not issued by this service's rules and is
// reported as ErrMalformed; no role is ever assumed.
func FromClaims(claims *Claims) (*Principal, error) {
	if claims == nil || claims.Username == "" {
		return nil, ErrMalformed
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return nil, ErrMalformed
	}
	return &Principal{Username: claims.Username, Role: role}, nil
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext retrieves the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(*Principal)
	return p, ok && p != nil
}

// PrincipalFromFiber retrieves the authenticated caller from fiber locals.
func PrincipalFromFiber(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal != nil
}
