package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/backoffice-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el resumen del día y del mes en curso.
// GET /api/dashboard/summary
//
// Respuesta: DashboardSummaryDTO (ventas y margen de hoy y del mes, top 5 productos,
// saldos por cobrar y por pagar). Se cachea en Redis cuando está configurado.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
