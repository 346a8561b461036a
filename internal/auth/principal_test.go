package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/behnamfe76/user-auth-service/internal/domain"
)

func TestFromClaims(t *testing.T) {
	tests := []struct {
		name    string
		claims  *Claims
		want    *Principal
		wantErr error
	}{
		{
			name:   "user role",
			claims: &Claims{Username: "alice", Role: "USER"},
			want:   &Principal{Username: "alice", Role: domain.RoleUser},
		},
		{
			name:   "admin role",
			claims: &Claims{Username: "root", Role: "ADMIN"},
			want:   &Principal{Username: "root", Role: domain.RoleAdmin},
		},
		{name: "unknown role", claims: &Claims{Username: "alice", Role: "SUPERUSER"}, wantErr: ErrMalformed},
		{name: "lowercase role", claims: &Claims{Username: "alice", Role: "admin"}, wantErr: ErrMalformed},
		{name: "missing role", claims: &Claims{Username: "alice"}, wantErr: ErrMalformed},
		{name: "missing username", claims: &Claims{Role: "USER"}, wantErr: ErrMalformed},
		{name: "nil claims", claims: nil, wantErr: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromClaims(tt.claims)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	p := &Principal{Username: "alice", Role: domain.RoleUser}
	ctx := WithPrincipal(context.Background(), p)
	got, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, p, got)

	_, ok = PrincipalFromContext(WithPrincipal(context.Background(), nil))
	assert.False(t, ok)
}
