package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/behnamfe76/user-auth-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserSignedUp     EventType = "USER_SIGNED_UP"
	EventUserLoggedIn     EventType = "USER_LOGGED_IN"
	EventLoginFailed      EventType = "LOGIN_FAILED"
	EventAdminRoleGranted EventType = "ADMIN_ROLE_GRANTED"
)

// Actor identifies who triggered an event. Username is empty for anonymous
// callers such as signup.
type Actor struct {
	Username string      `json:"username,omitempty"`
	Role     domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserSignedUpPayload payload.
type UserSignedUpPayload struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}

// UserLoggedInPayload payload.
type UserLoggedInPayload struct {
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// LoginFailedPayload payload. Reason is internal only and never reaches the
// caller.
type LoginFailedPayload struct {
	Username string `json:"username"`
	Reason   string `json:"reason"`
	Attempts int64  `json:"attempts,omitempty"`
}

// AdminRoleGrantedPayload payload.
type AdminRoleGrantedPayload struct {
	TargetUserID   int64       `json:"target_user_id"`
	TargetUsername string      `json:"target_username"`
	PreviousRole   domain.Role `json:"previous_role"`
}
