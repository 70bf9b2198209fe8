package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/billing"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
)

// SyncHandler sincronización de facturas de compra a través del webhook n8n.
type SyncHandler struct {
	uc *billing.SyncUseCase
}

func NewSyncHandler(uc *billing.SyncUseCase) *SyncHandler {
	return &SyncHandler{uc: uc}
}

// SyncInvoices godoc
// @Summary      Sincronizar facturas desde n8n
// @Description  Pide al webhook las facturas XML del rango e importa cada una como compra.
//
//	Los duplicados se omiten y los productos desconocidos se crean.
//
// @Tags         sync
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SyncInvoicesRequest  true  "from, to (YYYY-MM-DD)"
// @Success      200   {object}  dto.SyncRunResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sync/invoices [post]
func (h *SyncHandler) SyncInvoices(c *fiber.Ctx) error {
	var in dto.SyncInvoicesRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.SyncInvoices(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Runs godoc
// @Summary      Sincronizaciones recientes
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SyncRunListResponse
// @Router       /api/sync/runs [get]
func (h *SyncHandler) Runs(c *fiber.Ctx) error {
	out, err := h.uc.Runs(c.UserContext(), GetCompanyID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
