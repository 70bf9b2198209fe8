package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/backoffice-api/pkg/jwt"
)

// Locals keys para UserID, CompanyID y Role en Fiber.
const (
	LocalUserID    = "user_id"
	LocalCompanyID = "company_id"
	LocalRole      = "role"
)

// AuthMiddleware valida el Bearer Token JWT y extrae UserID, CompanyID y Role a c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return errorJSON(c, fiber.StatusUnauthorized, "MISSING_TOKEN", "Authorization header requerido")
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return errorJSON(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "formato: Bearer <token>")
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return errorJSON(c, fiber.StatusUnauthorized, "MISSING_TOKEN", "token vacío")
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return errorJSON(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "token inválido o expirado")
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalCompanyID, claims.CompanyID)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// RequireRole autoriza solo a los roles indicados. Debe ir DESPUÉS de AuthMiddleware.
//   - 401 MISSING_ROLE si el token no trae rol.
//   - 403 FORBIDDEN si el rol no está permitido.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return errorJSON(c, fiber.StatusUnauthorized, "MISSING_ROLE", "el token no incluye rol")
		}
		if _, ok := allowed[role]; !ok {
			return errorJSON(c, fiber.StatusForbidden, "FORBIDDEN", "el rol '"+role+"' no tiene acceso a este recurso")
		}
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	return localString(c, LocalUserID)
}

// GetCompanyID devuelve el CompanyID del contexto (después del middleware de auth).
func GetCompanyID(c *fiber.Ctx) string {
	return localString(c, LocalCompanyID)
}

// GetRole devuelve el rol del usuario autenticado.
func GetRole(c *fiber.Ctx) string {
	return localString(c, LocalRole)
}

func localString(c *fiber.Ctx, key string) string {
	s, _ := c.Locals(key).(string)
	return s
}
