package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/behnamfe76/user-auth-service/internal/api/http/handlers"
	"github.com/behnamfe76/user-auth-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Identity is established for every route
// after the probes; role checks are opt-in per route.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.Use(cfg.AuthMiddleware.Handle)

	app.Post("/signup", cfg.Users.SignUp)
	app.Post("/login", cfg.Users.Login)

	admin := app.Group("/admin")
	admin.Patch("/users/:userId/roles", auth.RequireRole(auth.OperationGrantAdminRole), cfg.Users.GrantAdminRole)
}
