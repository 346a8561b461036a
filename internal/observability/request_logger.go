package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

const unmatchedRoute = "unmatched"

// RequestLogger assigns a request id, then logs and counts every request once
// the rest of the chain has produced a status.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDHeader, requestID)
		c.Locals("request_id", requestID)

		err := c.Next()

		status := c.Response().StatusCode()
		duration := time.Since(start)
		metrics.RecordRequest(RoutePattern(c), c.Method(), status, duration)

		logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", duration),
		)
		return err
	}
}

// RoutePattern returns the matched route pattern for counter keys, so path
// params like :userId and unknown URLs cannot grow the key set.
func RoutePattern(c *fiber.Ctx) string {
	route := c.Route()
	// Fiber falls back to the raw path when no route was matched.
	if len(route.Handlers) == 0 {
		return unmatchedRoute
	}
	return route.Path
}
