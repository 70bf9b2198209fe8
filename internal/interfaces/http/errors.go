package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/rs/zerolog/log"
)

// errorMapping traduce un error de dominio a status HTTP y código estable para el frontend.
type errorMapping struct {
	target error
	status int
	code   string
}

// El orden importa: los errores más específicos primero.
var errorMappings = []errorMapping{
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrOverpayment, fiber.StatusBadRequest, "OVERPAYMENT"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInUse, fiber.StatusConflict, "IN_USE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrExternalService, fiber.StatusBadGateway, "EXTERNAL_SERVICE"},
	{context.DeadlineExceeded, fiber.StatusGatewayTimeout, "TIMEOUT"},
}

// writeError responde con el status y el dto.ErrorResponse que corresponden al error.
// Los errores no mapeados se registran y se devuelven como 500 sin detalles internos.
func writeError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: fiberErrorCode(fe.Code), Message: fe.Message})
	}
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		resp := dto.ErrorResponse{Code: m.code, Message: err.Error()}
		var ve *domain.ValidationError
		if errors.As(err, &ve) && ve.Field != "" {
			resp.Fields = map[string]string{ve.Field: ve.Message}
		}
		var se *domain.StockError
		if errors.As(err, &se) {
			resp.Fields = map[string]string{"sku": se.SKU, "requested": se.Requested, "available": se.Available}
		}
		return c.Status(m.status).JSON(resp)
	}
	log.Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno del servidor"})
}

func errorJSON(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message})
}

func fiberErrorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	}
	if status >= 500 {
		return "INTERNAL"
	}
	return "BAD_REQUEST"
}

// ErrorHandler manejador global de Fiber: rutas inexistentes, panics recuperados y errores sin manejar.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, err)
}
