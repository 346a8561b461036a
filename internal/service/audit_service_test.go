package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/behnamfe76/user-auth-service/internal/domain"
	"github.com/behnamfe76/user-auth-service/internal/events"
)

func TestAuditServiceLogsEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventUserLoggedIn,
		events.Actor{Username: "alice", Role: domain.RoleUser},
		events.UserLoggedInPayload{Username: "alice", Role: domain.RoleUser, ExpiresAt: time.Now().Add(time.Hour)},
	)))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventLoginFailed,
		events.Actor{},
		events.LoginFailedPayload{Username: "alice", Reason: "wrong_password", Attempts: 2},
	)))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventAdminRoleGranted,
		events.Actor{Username: "root", Role: domain.RoleAdmin},
		events.AdminRoleGrantedPayload{TargetUserID: 9, TargetUsername: "bob", PreviousRole: domain.RoleUser},
	)))

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)

	assert.Equal(t, "UserLoggedIn", entries[0].Message)
	assert.Equal(t, "audit", entries[0].LoggerName)

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "wrong_password", entries[1].ContextMap()["reason"])

	fields := entries[2].ContextMap()
	assert.Equal(t, "root", fields["granted_by"])
	assert.Equal(t, "bob", fields["target_username"])
	assert.Equal(t, "USER", fields["previous_role"])
}
