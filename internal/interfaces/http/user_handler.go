package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
)

// UserHandler administración de usuarios de la empresa (solo admin).
type UserHandler struct {
	uc *usecase.UserUseCase
}

func NewUserHandler(uc *usecase.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        search  query  string  false  "Nombre o email"
// @Param        role    query  string  false  "admin|accountant|warehouse|sales"
// @Param        status  query  string  false  "active|inactive"
// @Param        sort    query  string  false  "name|email|role|created_at"
// @Param        order   query  string  false  "asc|desc"
// @Param        limit   query  int     false  "Límite (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.UserListResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	var q dto.UserListQuery
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
// @Summary      Crear usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "Datos del usuario"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
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
// @Summary      Obtener usuario
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del usuario"
// @Success      200  {object}  dto.UserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Modificar nombre, rol o estado
// @Description  Un admin no puede desactivarse a sí mismo ni dejar la empresa sin admin activo (409).
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del usuario"
// @Param        body  body  dto.UpdateUserRequest  true  "Cambios"
// @Success      200   {object}  dto.UserResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateUserRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ResetPassword godoc
// @Summary      Restablecer contraseña de un usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Param        id    path  string                    true  "ID del usuario"
// @Param        body  body  dto.ResetPasswordRequest  true  "new_password"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/users/{id}/password [put]
func (h *UserHandler) ResetPassword(c *fiber.Ctx) error {
	var in dto.ResetPasswordRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	if err := h.uc.ResetPassword(c.UserContext(), GetCompanyID(c), c.Params("id"), in); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete godoc
// @Summary      Eliminar usuario
// @Tags         users
// @Security     Bearer
// @Param        id   path  string  true  "ID del usuario"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetCompanyID(c), GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
