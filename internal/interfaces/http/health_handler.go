package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger dependencia que puede verificarse (pool de PostgreSQL, Redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responde GET /health con el estado de cada dependencia.
type HealthHandler struct {
	service string
	checks  map[string]Pinger
}

// NewHealthHandler construye el handler; checks nil o vacío responde solo el estado del proceso.
func NewHealthHandler(service string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{service: service, checks: checks}
}

// Health godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := "ok"
	deps := make(fiber.Map, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			status = "degraded"
			deps[name] = err.Error()
			continue
		}
		deps[name] = "ok"
	}
	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{"status": status, "service": h.service, "checks": deps})
}
