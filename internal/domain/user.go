package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole converts a raw role name into a Role. It is the only place a
// string becomes a Role; unknown names are rejected rather than defaulted.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) String() string {
	return string(r)
}

// User is the account record owned by the user store.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Nickname     string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
