package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
)

// InventoryHandler maneja ajustes de stock, kardex y reposición (protegido).
type InventoryHandler struct {
	stock         *inventory.StockUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(stock *inventory.StockUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{stock: stock, replenishment: replenishment}
}

// Adjust godoc
// @Summary      Ajustar stock
// @Description  quantity es un delta distinto de cero; un delta negativo no puede dejar el stock bajo cero.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del producto"
// @Param        body  body  dto.AdjustStockRequest  true  "quantity, reason, unit_cost (solo entradas)"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/{id}/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.stock.Adjust(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Kardex del producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Límite (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{id}/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if ok, err := bindQuery(c, &page); !ok {
		return err
	}
	out, err := h.stock.Movements(c.UserContext(), GetCompanyID(c), c.Params("id"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Reporte de inventario y reposición
// @Description  Stock, valorización (stock × costo), alerta de stock bajo y cantidad sugerida
//
//	max(min_stock·2 − stock, 0).
//
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryReportDTO
// @Router       /api/reports/inventory [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	out, err := h.replenishment.InventoryReport(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
