package dto

import "github.com/behnamfe76/user-auth-service/internal/domain"

// SignUpRequest payload for new accounts.
type SignUpRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
	Nickname string `json:"nickname" validate:"required,max=50"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// RoleResponse names a single role.
type RoleResponse struct {
	Role string `json:"role"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	Username string         `json:"username"`
	Nickname string         `json:"nickname"`
	Roles    []RoleResponse `json:"roles"`
}

// NewUserResponse maps a domain user to its public view.
func NewUserResponse(user *domain.User) UserResponse {
	roles := []RoleResponse{}
	if user.Role != "" {
		roles = append(roles, RoleResponse{Role: user.Role.String()})
	}
	return UserResponse{
		Username: user.Username,
		Nickname: user.Nickname,
		Roles:    roles,
	}
}
