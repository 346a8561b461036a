package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/behnamfe76/user-auth-service/internal/domain"
	apperrors "github.com/behnamfe76/user-auth-service/pkg/util/errorutil"
)

var (
	// ErrUnauthenticated means no principal was established for the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the principal's role does not match the requirement.
	ErrForbidden = errors.New("forbidden")
)

// Operation names a protected operation.
type Operation string

const (
	OperationGrantAdminRole Operation = "grant_admin_role"
)

// Policy maps protected operations to the exact role they require.
var Policy = map[Operation]domain.Role{
	OperationGrantAdminRole: domain.RoleAdmin,
}

// Authorize allows p only when its role equals required. Roles form no
// hierarchy: ADMIN does not satisfy a USER requirement.
func Authorize(p *Principal, required domain.Role) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if p.Role != required {
		return ErrForbidden
	}
	return nil
}

// RequireRole guards a route with the role the policy assigns to op. Both
// denial kinds surface as ACCESS_DENIED. Operations absent from the policy are
// always denied.
func RequireRole(op Operation) fiber.Handler {
	required, known := Policy[op]

	return func(c *fiber.Ctx) error {
		if !known {
			return apperrors.NewAccessDenied()
		}
		principal, _ := PrincipalFromFiber(c)
		if err := Authorize(principal, required); err != nil {
			return apperrors.NewAccessDenied()
		}
		return c.Next()
	}
}
