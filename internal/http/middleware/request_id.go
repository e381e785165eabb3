package middleware

import (
	"github.com/google/uuid"
	"github.com/gofiber/fiber/v2"
)

// RequestIDHeader carries the request ID on responses and is honored on
// requests so upstream proxies can correlate logs.
const RequestIDHeader = "X-Request-ID"

// RequestID attaches a unique ID to each request.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(RequestIDHeader)
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Set(RequestIDHeader, rid)
		c.Locals("request_id", rid)
		return c.Next()
	}
}