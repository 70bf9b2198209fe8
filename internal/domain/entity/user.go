package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
	RoleWarehouse  = "warehouse"
	RoleSales      = "sales"
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// ValidRole indica si el rol es uno de los soportados.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAccountant, RoleWarehouse, RoleSales:
		return true
	}
	return false
}

// ValidUserStatus indica si el estado es soportado.
func ValidUserStatus(status string) bool {
	return status == UserStatusActive || status == UserStatusInactive
}

// User representa un usuario del sistema (pertenece a una Company).
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string
	Status       string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive indica si el usuario puede iniciar sesión.
func (u *User) IsActive() bool { return u.Status == UserStatusActive }

// IsAdmin indica si el usuario es administrador.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
