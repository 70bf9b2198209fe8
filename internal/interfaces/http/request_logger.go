package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/pkg/logger"
)

// RequestLogger registra una línea estructurada por petición con el request id
// que agrega el middleware requestid. 5xx se registran como error, 4xx como warn.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()

		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error()
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("request_id", requestID(c)).
			Str("ip", c.IP())
		if uid := GetUserID(c); uid != "" {
			ev.Str("user_id", uid)
		}
		ev.Msg("http request")
		return nil
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
