package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthChecker reports the state of one dependency
type HealthChecker interface {
	Health(ctx context.Context) map[string]interface{}
}

// HealthHandlers serves /health
type HealthHandlers struct {
	Checks map[string]HealthChecker
}

// Health GET /health. Responds 503 when any dependency is down.
func (h *HealthHandlers) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	status := "up"
	deps := make(fiber.Map, len(h.Checks))
	for name, check := range h.Checks {
		res := check.Health(ctx)
		if res["status"] != "up" {
			status = "down"
		}
		deps[name] = res
	}

	code := fiber.StatusOK
	if status != "up" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":       status,
		"dependencies": deps,
		"time":         time.Now().UTC(),
	})
}
