package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// UserFilter filtros del listado de usuarios.
type UserFilter struct {
	ListParams
	Role   string
	Status string
}

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, companyID, id string) (*entity.User, error)
	// GetByEmail busca en todas las empresas: el email es único global.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	TouchLogin(ctx context.Context, id string) error
	Delete(ctx context.Context, companyID, id string) error
	List(ctx context.Context, companyID string, f UserFilter) ([]*entity.User, int, error)
	CountActiveAdmins(ctx context.Context, companyID string) (int, error)
}
