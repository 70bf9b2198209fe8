package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
)

// CompanyHandler maneja las peticiones HTTP para el recurso Company.
type CompanyHandler struct {
	uc *usecase.CompanyUseCase
}

// NewCompanyHandler construye el handler inyectando el caso de uso.
func NewCompanyHandler(uc *usecase.CompanyUseCase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// Create godoc
// @Summary      Crear empresa (alta inicial, público)
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCompanyRequest  true  "Datos de la empresa"
// @Success      201   {object}  dto.CompanyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/companies [post]
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCompanyRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener la empresa propia
// @Tags         companies
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la empresa"
// @Success      200  {object}  dto.CompanyResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/companies/{id} [get]
func (h *CompanyHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar perfil de la empresa (admin)
// @Tags         companies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la empresa"
// @Param        body  body  dto.UpdateCompanyRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.CompanyResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/companies/{id} [put]
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCompanyRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), GetCompanyID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
