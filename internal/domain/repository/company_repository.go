package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByTaxCode(ctx context.Context, taxCode string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	// ListActive devuelve las empresas activas (tareas programadas por empresa).
	ListActive(ctx context.Context) ([]*entity.Company, error)
}
