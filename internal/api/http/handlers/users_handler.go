package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/behnamfe76/user-auth-service/internal/api/dto"
	"github.com/behnamfe76/user-auth-service/internal/domain"
	"github.com/behnamfe76/user-auth-service/internal/service"
	apperrors "github.com/behnamfe76/user-auth-service/pkg/util/errorutil"
)

// UserService is the subset of service.UserService the handlers need.
type UserService interface {
	SignUp(ctx context.Context, cmd service.SignUpCommand) (*domain.User, error)
	Login(ctx context.Context, cmd service.LoginCommand) (*service.LoginResult, error)
	GrantAdminRole(ctx context.Context, userID int64) (*domain.User, error)
}

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	users UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// SignUp handles POST /signup.
func (h *UsersHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); details != nil {
		return apperrors.NewValidationError("username, password, nickname required", details)
	}

	user, err := h.users.SignUp(c.UserContext(), service.SignUpCommand{
		Username: req.Username,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Login handles POST /login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if details := dto.Validate(req); details != nil {
		return apperrors.NewValidationError("username and password required", details)
	}

	result, err := h.users.Login(c.UserContext(), service.LoginCommand{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{Token: result.Token})
}

// GrantAdminRole handles PATCH /admin/users/:userId/roles.
func (h *UsersHandler) GrantAdminRole(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("userId"), 10, 64)
	if err != nil || userID <= 0 {
		return apperrors.NewValidationError("invalid user id", map[string]any{"userId": c.Params("userId")})
	}

	user, err := h.users.GrantAdminRole(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}
