package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductFilter filtros del listado de inventario.
type ProductFilter struct {
	ListParams
	Category string
	LowStock bool
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE); solo tiene sentido dentro de una tx.
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Product, error)
	// Update no modifica Cost ni Stock (se manejan vía movimientos).
	Update(ctx context.Context, product *entity.Product) error
	UpdateStockAndCost(ctx context.Context, id string, stock, cost decimal.Decimal) error
	Delete(ctx context.Context, companyID, id string) error
	List(ctx context.Context, companyID string, f ProductFilter) ([]*entity.Product, int, error)
	IsReferenced(ctx context.Context, companyID, id string) (bool, error)
}
