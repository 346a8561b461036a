package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/behnamfe76/user-auth-service/internal/events"
)

// AuditService writes a structured audit trail for account events.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service. Entries go to a named child logger so
// they can be routed separately.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserSignedUp, a.handleUserSignedUp)
	a.dispatcher.Subscribe(events.EventUserLoggedIn, a.handleUserLoggedIn)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleLoginFailed)
	a.dispatcher.Subscribe(events.EventAdminRoleGranted, a.handleAdminRoleGranted)
}

func (a *AuditService) handleUserSignedUp(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.UserSignedUpPayload)
	a.logger.Info("UserSignedUp",
		eventFields(event,
			zap.Int64("user_id", payload.UserID),
			zap.String("username", payload.Username),
			zap.String("nickname", payload.Nickname),
		)...)
	return nil
}

func (a *AuditService) handleUserLoggedIn(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.UserLoggedInPayload)
	a.logger.Info("UserLoggedIn",
		eventFields(event,
			zap.String("username", payload.Username),
			zap.String("role", payload.Role.String()),
			zap.Time("token_expires_at", payload.ExpiresAt),
		)...)
	return nil
}

func (a *AuditService) handleLoginFailed(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.LoginFailedPayload)
	a.logger.Warn("LoginFailed",
		eventFields(event,
			zap.String("username", payload.Username),
			zap.String("reason", payload.Reason),
			zap.Int64("attempts", payload.Attempts),
		)...)
	return nil
}

func (a *AuditService) handleAdminRoleGranted(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.AdminRoleGrantedPayload)
	a.logger.Info("AdminRoleGranted",
		eventFields(event,
			zap.String("granted_by", event.Actor.Username),
			zap.Int64("target_user_id", payload.TargetUserID),
			zap.String("target_username", payload.TargetUsername),
			zap.String("previous_role", payload.PreviousRole.String()),
		)...)
	return nil
}

func eventFields(event events.Event, fields ...zap.Field) []zap.Field {
	return append([]zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Time("at", event.Timestamp),
	}, fields...)
}
