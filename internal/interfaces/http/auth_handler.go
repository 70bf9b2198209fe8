package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/internal/application/auth"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
)

// AuthHandler maneja registro, login y la cuenta propia.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar usuario
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "email, password, company_id, name"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	user, err := h.uc.RegisterUser(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return errorJSON(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "credenciales inválidas")
		}
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Me godoc
// @Summary      Usuario autenticado
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.UserResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	out, err := h.uc.Me(c.UserContext(), GetCompanyID(c), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ChangePassword godoc
// @Summary      Cambiar contraseña propia
// @Tags         auth
// @Security     Bearer
// @Accept       json
// @Param        body  body  dto.ChangePasswordRequest  true  "current_password, new_password"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/password [put]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var in dto.ChangePasswordRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	if err := h.uc.ChangePassword(c.UserContext(), GetCompanyID(c), GetUserID(c), in); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
