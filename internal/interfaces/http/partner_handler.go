package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/billing"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
)

// PartnerHandler CRUD de clientes o proveedores; la misma implementación se monta
// en /api/customers y /api/suppliers con el caso de uso del tipo correspondiente.
type PartnerHandler struct {
	uc    *usecase.PartnerUseCase
	debts *billing.DebtUseCase
}

// NewPartnerHandler construye el handler para el tipo de contraparte del caso de uso.
func NewPartnerHandler(uc *usecase.PartnerUseCase, debts *billing.DebtUseCase) *PartnerHandler {
	return &PartnerHandler{uc: uc, debts: debts}
}

// List godoc
// @Summary      Listar clientes / proveedores
// @Description  Búsqueda sin tildes sobre código, nombre, MST y teléfono.
// @Tags         partners
// @Security     Bearer
// @Produce      json
// @Param        search  query  string  false  "Texto a buscar"
// @Param        sort    query  string  false  "code|name|tax_code|created_at"
// @Param        order   query  string  false  "asc|desc"
// @Param        limit   query  int     false  "Límite (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.PartnerListResponse
// @Router       /api/customers [get]
// @Router       /api/suppliers [get]
func (h *PartnerHandler) List(c *fiber.Ctx) error {
	var q dto.ListQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear cliente / proveedor
// @Description  Sin código se genera KH0001 (clientes) o NCC0001 (proveedores).
// @Tags         partners
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PartnerRequest  true  "Datos de la contraparte"
// @Success      201   {object}  dto.PartnerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/customers [post]
// @Router       /api/suppliers [post]
func (h *PartnerHandler) Create(c *fiber.Ctx) error {
	var in dto.PartnerRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener cliente / proveedor
// @Tags         partners
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.PartnerResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/customers/{id} [get]
// @Router       /api/suppliers/{id} [get]
func (h *PartnerHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar cliente / proveedor
// @Tags         partners
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID"
// @Param        body  body  dto.PartnerRequest  true  "Datos"
// @Success      200   {object}  dto.PartnerResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/customers/{id} [put]
// @Router       /api/suppliers/{id} [put]
func (h *PartnerHandler) Update(c *fiber.Ctx) error {
	var in dto.PartnerRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar cliente / proveedor
// @Description  409 IN_USE si hay facturas que lo referencian.
// @Tags         partners
// @Security     Bearer
// @Param        id   path  string  true  "ID"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/customers/{id} [delete]
// @Router       /api/suppliers/{id} [delete]
func (h *PartnerHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Debts godoc
// @Summary      Saldo de deudas de la contraparte
// @Tags         partners
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.PartnerDebtSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/customers/{id}/debts [get]
// @Router       /api/suppliers/{id}/debts [get]
func (h *PartnerHandler) Debts(c *fiber.Ctx) error {
	out, err := h.debts.PartnerSummary(c.UserContext(), GetCompanyID(c), h.uc.Kind(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
