package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// PartnerRepository puerto de persistencia de clientes y proveedores.
// Todas las operaciones se acotan por empresa y tipo (CUSTOMER | SUPPLIER).
type PartnerRepository interface {
	Create(ctx context.Context, p *entity.Partner) error
	GetByID(ctx context.Context, companyID, kind, id string) (*entity.Partner, error)
	GetByTaxCode(ctx context.Context, companyID, kind, taxCode string) (*entity.Partner, error)
	Update(ctx context.Context, p *entity.Partner) error
	Delete(ctx context.Context, companyID, kind, id string) error
	List(ctx context.Context, companyID, kind string, p ListParams) ([]*entity.Partner, int, error)
	// IsReferenced indica si alguna factura usa la contraparte.
	IsReferenced(ctx context.Context, companyID, kind, id string) (bool, error)
}
