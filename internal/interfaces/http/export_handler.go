package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/billing"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
)

// ExportHandler ventas a clientes.
type ExportHandler struct {
	exports *billing.ExportUseCase
	docs    *billing.DocumentUseCase
}

func NewExportHandler(exports *billing.ExportUseCase, docs *billing.DocumentUseCase) *ExportHandler {
	return &ExportHandler{exports: exports, docs: docs}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Valida existencias (409 INSUFFICIENT_STOCK con el SKU), registra salidas al costo
//
//	promedio vigente, numera PX<yyyymm>-NNNN si no trae número y crea la deuda RECEIVABLE.
//
// @Tags         exports
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateExportRequest  true  "Venta"
// @Success      201   {object}  dto.ExportInvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/exports [post]
func (h *ExportHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateExportRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.exports.Create(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar ventas
// @Tags         exports
// @Security     Bearer
// @Produce      json
// @Param        search      query  string  false  "Número o cliente"
// @Param        partner_id  query  string  false  "Cliente"
// @Param        status      query  string  false  "COMPLETED|CANCELLED"
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Param        sort        query  string  false  "issue_date|number|grand_total|created_at"
// @Param        order       query  string  false  "asc|desc"
// @Param        limit       query  int     false  "Límite (default 20)"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.ExportListResponse
// @Router       /api/exports [get]
func (h *ExportHandler) List(c *fiber.Ctx) error {
	var q dto.InvoiceListQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.exports.List(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta con líneas
// @Tags         exports
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.ExportInvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/exports/{id} [get]
func (h *ExportHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.exports.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Anular venta
// @Description  Devuelve el stock al costo registrado. 409 si la deuda ya tiene abonos.
// @Tags         exports
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.ExportInvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/exports/{id}/cancel [post]
func (h *ExportHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.exports.Cancel(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ExportXLSX godoc
// @Summary      Exportar ventas a Excel
// @Tags         exports
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  file
// @Router       /api/exports/export.xlsx [get]
func (h *ExportHandler) ExportXLSX(c *fiber.Ctx) error {
	var q dto.InvoiceListQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	data, err := h.docs.ExportsXLSX(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return sendDownload(c, data, "ventas.xlsx", mimeXLSX)
}

// PDF godoc
// @Summary      Factura de venta en PDF
// @Description  Incluye el código de consulta (SHA-384) y su QR.
// @Tags         exports
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/exports/{id}/pdf [get]
func (h *ExportHandler) PDF(c *fiber.Ctx) error {
	data, name, err := h.docs.ExportPDF(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendDownload(c, data, name, mimePDF)
}
