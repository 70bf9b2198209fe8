package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/billing"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
)

// DebtHandler cuentas por pagar y por cobrar con abonos parciales.
type DebtHandler struct {
	debts *billing.DebtUseCase
	docs  *billing.DocumentUseCase
}

func NewDebtHandler(debts *billing.DebtUseCase, docs *billing.DocumentUseCase) *DebtHandler {
	return &DebtHandler{debts: debts, docs: docs}
}

// List godoc
// @Summary      Listar deudas
// @Tags         debts
// @Security     Bearer
// @Produce      json
// @Param        type          query  string  false  "PAYABLE|RECEIVABLE"
// @Param        status        query  string  false  "UNPAID|PARTIAL|PAID|OVERDUE|CANCELLED"
// @Param        partner_id    query  string  false  "Contraparte"
// @Param        overdue_only  query  bool    false  "Solo vencidas"
// @Param        search        query  string  false  "Número de factura o contraparte"
// @Param        sort          query  string  false  "due_date|remaining|amount|created_at"
// @Param        order         query  string  false  "asc|desc"
// @Param        limit         query  int     false  "Límite (default 20)"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.DebtListResponse
// @Router       /api/debts [get]
func (h *DebtHandler) List(c *fiber.Ctx) error {
	var q dto.DebtListQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.debts.List(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener deuda con abonos
// @Tags         debts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la deuda"
// @Success      200  {object}  dto.DebtResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/debts/{id} [get]
func (h *DebtHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.debts.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AddPayment godoc
// @Summary      Registrar abono
// @Description  amount > 0 y ≤ saldo (400 OVERPAYMENT). Actualiza también el pagado de la factura.
// @Tags         debts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la deuda"
// @Param        body  body  dto.PaymentRequest  true  "amount, method, paid_at"
// @Success      201   {object}  dto.DebtResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/debts/{id}/payments [post]
func (h *DebtHandler) AddPayment(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.debts.AddPayment(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DeletePayment godoc
// @Summary      Eliminar abono (admin, contador)
// @Tags         debts
// @Security     Bearer
// @Produce      json
// @Param        id         path  string  true  "ID de la deuda"
// @Param        paymentId  path  string  true  "ID del abono"
// @Success      200  {object}  dto.DebtResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/debts/{id}/payments/{paymentId} [delete]
func (h *DebtHandler) DeletePayment(c *fiber.Ctx) error {
	out, err := h.debts.DeletePayment(c.UserContext(), GetCompanyID(c), c.Params("id"), c.Params("paymentId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ExportXLSX godoc
// @Summary      Exportar deudas a Excel
// @Tags         debts
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  file
// @Router       /api/debts/export.xlsx [get]
func (h *DebtHandler) ExportXLSX(c *fiber.Ctx) error {
	var q dto.DebtListQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	data, err := h.docs.DebtsXLSX(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return sendDownload(c, data, "cong_no.xlsx", mimeXLSX)
}

// statementQuery parámetros de GET /api/debts/statement.pdf.
type statementQuery struct {
	PartnerID string `query:"partner_id" validate:"required,uuid"`
	Type      string `query:"type" validate:"omitempty,oneof=PAYABLE RECEIVABLE"`
}

// Statement godoc
// @Summary      Estado de cuenta en PDF
// @Description  Sin type se deduce del tipo de contraparte (proveedor PAYABLE, cliente RECEIVABLE).
// @Tags         debts
// @Security     Bearer
// @Produce      application/pdf
// @Param        partner_id  query  string  true   "Contraparte"
// @Param        type        query  string  false  "PAYABLE|RECEIVABLE"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/debts/statement.pdf [get]
func (h *DebtHandler) Statement(c *fiber.Ctx) error {
	var q statementQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	data, name, err := h.docs.DebtStatementPDF(c.UserContext(), GetCompanyID(c), q.PartnerID, q.Type)
	if err != nil {
		return writeError(c, err)
	}
	if len(data) == 0 {
		return writeError(c, domain.ErrNotFound)
	}
	return sendDownload(c, data, name, mimePDF)
}
