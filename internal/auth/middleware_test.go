package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/behnamfe76/user-auth-service/internal/domain"
	"github.com/behnamfe76/user-auth-service/internal/observability"
	apperrors "github.com/behnamfe76/user-auth-service/pkg/util/errorutil"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func renderDomainError(c *fiber.Ctx, err error) error {
	domainErr := apperrors.ToDomainError(err)
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}})
}

type testApp struct {
	app     *fiber.App
	codec   *TokenCodec
	clock   *fakeClock
	metrics *observability.Metrics
	reached *bool
}

// newTestApp mounts the auth middleware in front of /whoami and an
// ADMIN-guarded /admin route.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	clock := newFakeClock(epoch)
	codec := newTestCodec(t, clock)
	metrics := observability.NewMetrics()
	reached := false

	app := fiber.New(fiber.Config{ErrorHandler: renderDomainError})
	app.Use(NewMiddleware(NewAuthenticator(codec), zap.NewNop(), metrics).Handle)

	app.Get("/whoami", func(c *fiber.Ctx) error {
		reached = true
		p, ok := PrincipalFromFiber(c)
		ctxP, ctxOK := PrincipalFromContext(c.UserContext())
		if ok != ctxOK || (ok && p != ctxP) {
			return apperrors.NewInternalError(nil)
		}
		if !ok {
			return c.JSON(fiber.Map{"anonymous": true})
		}
		return c.JSON(fiber.Map{"username": p.Username, "role": p.Role})
	})
	app.Patch("/admin", RequireRole(OperationGrantAdminRole), func(c *fiber.Ctx) error {
		reached = true
		return c.SendStatus(http.StatusOK)
	})

	return &testApp{app: app, codec: codec, clock: clock, metrics: metrics, reached: &reached}
}

func (ta *testApp) do(t *testing.T, method, path, authorization string) *http.Response {
	t.Helper()
	*ta.reached = false
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (ta *testApp) issue(t *testing.T, username string, role domain.Role) string {
	t.Helper()
	token, _, err := ta.codec.Issue(username, role)
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestAuthenticator(t *testing.T) {
	clock := newFakeClock(epoch)
	codec := newTestCodec(t, clock)
	authn := NewAuthenticator(codec)
	token, _, err := codec.Issue("alice", domain.RoleUser)
	require.NoError(t, err)

	t.Run("absent header", func(t *testing.T) {
		p, err := authn.Authenticate("")
		assert.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("non bearer scheme is treated as absent", func(t *testing.T) {
		for _, header := range []string{"Basic YWxpY2U6cHc=", "bearer " + token, "Bearer" + token, "Token " + token} {
			p, err := authn.Authenticate(header)
			assert.NoError(t, err, header)
			assert.Nil(t, p, header)
		}
	})

	t.Run("valid bearer", func(t *testing.T) {
		p, err := authn.Authenticate("Bearer " + token)
		require.NoError(t, err)
		assert.Equal(t, &Principal{Username: "alice", Role: domain.RoleUser}, p)
	})

	t.Run("empty bearer", func(t *testing.T) {
		_, err := authn.Authenticate("Bearer ")
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("expired bearer", func(t *testing.T) {
		clock.Set(epoch.Add(TokenTTL))
		defer clock.Set(epoch)
		_, err := authn.Authenticate("Bearer " + token)
		assert.ErrorIs(t, err, ErrExpired)
	})
}

func TestMiddlewareAnonymousPassthrough(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.do(t, http.MethodGet, "/whoami", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, *ta.reached)

	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, true, body["anonymous"])
}

func TestMiddlewareMalformedPrefixPassesThrough(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.do(t, http.MethodGet, "/whoami", "Basic YWxpY2U6cGFzcw==")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, *ta.reached)
}

func TestMiddlewareAttachesPrincipal(t *testing.T) {
	ta := newTestApp(t)
	token := ta.issue(t, "alice", domain.RoleUser)

	resp := ta.do(t, http.MethodGet, "/whoami", "Bearer "+token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "USER", body["role"])
}

func TestMiddlewareRejectsUniformly(t *testing.T) {
	ta := newTestApp(t)
	valid := ta.issue(t, "alice", domain.RoleUser)
	tampered := valid[:len(valid)-2] + "AA"
	if tampered == valid {
		tampered = valid[:len(valid)-2] + "BA"
	}

	other, err := NewTokenCodec([]byte(strings.Repeat("z", 64)), WithClock(ta.clock.Now))
	require.NoError(t, err)
	foreign, _, err := other.Issue("alice", domain.RoleAdmin)
	require.NoError(t, err)

	cases := map[string]func() string{
		"malformed": func() string { return "garbage" },
		"tampered":  func() string { return tampered },
		"foreign":   func() string { return foreign },
		"expired": func() string {
			ta.clock.Set(epoch.Add(TokenTTL + time.Second))
			return valid
		},
	}

	var bodies []errorBody
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			defer ta.clock.Set(epoch)
			resp := ta.do(t, http.MethodGet, "/whoami", "Bearer "+token())
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.False(t, *ta.reached, "downstream handler must not run")

			var body errorBody
			decode(t, resp, &body)
			assert.Equal(t, apperrors.CodeInvalidToken, body.Error.Code)
			bodies = append(bodies, body)
		})
	}

	for _, body := range bodies[1:] {
		assert.Equal(t, bodies[0], body)
	}

	snapshot := ta.metrics.Snapshot()
	assert.Equal(t, int64(1), snapshot.AuthFailures["expired"])
	assert.Equal(t, int64(2), snapshot.AuthFailures["invalid_signature"])
	assert.Equal(t, int64(1), snapshot.AuthFailures["malformed"])
}

func TestRequireRole(t *testing.T) {
	ta := newTestApp(t)

	t.Run("anonymous is denied", func(t *testing.T) {
		resp := ta.do(t, http.MethodPatch, "/admin", "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.False(t, *ta.reached)

		var body errorBody
		decode(t, resp, &body)
		assert.Equal(t, apperrors.CodeAccessDenied, body.Error.Code)
	})

	t.Run("user role is denied", func(t *testing.T) {
		resp := ta.do(t, http.MethodPatch, "/admin", "Bearer "+ta.issue(t, "alice", domain.RoleUser))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.False(t, *ta.reached)

		var body errorBody
		decode(t, resp, &body)
		assert.Equal(t, apperrors.CodeAccessDenied, body.Error.Code)
	})

	t.Run("admin role is allowed", func(t *testing.T) {
		resp := ta.do(t, http.MethodPatch, "/admin", "Bearer "+ta.issue(t, "root", domain.RoleAdmin))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, *ta.reached)
	})

	t.Run("invalid token wins over access check", func(t *testing.T) {
		resp := ta.do(t, http.MethodPatch, "/admin", "Bearer not.a.token")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestAuthorize(t *testing.T) {
	user := &Principal{Username: "alice", Role: domain.RoleUser}
	admin := &Principal{Username: "root", Role: domain.RoleAdmin}

	assert.ErrorIs(t, Authorize(nil, domain.RoleAdmin), ErrUnauthenticated)
	assert.ErrorIs(t, Authorize(user, domain.RoleAdmin), ErrForbidden)
	assert.NoError(t, Authorize(admin, domain.RoleAdmin))
	assert.NoError(t, Authorize(user, domain.RoleUser))
	assert.ErrorIs(t, Authorize(admin, domain.RoleUser), ErrForbidden)
}

func TestRequireRoleUnknownOperation(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: renderDomainError})
	codec := newTestCodec(t, newFakeClock(epoch))
	app.Use(NewMiddleware(NewAuthenticator(codec), zap.NewNop(), nil).Handle)
	app.Get("/x", RequireRole(Operation("delete_everything")), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	token, _, err := codec.Issue("root", domain.RoleAdmin)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
