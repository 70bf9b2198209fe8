package repository

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// InventoryMovementRepository define el puerto para persistir el kardex.
type InventoryMovementRepository interface {
	Create(ctx context.Context, m *entity.InventoryMovement) error
	ListByProduct(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.InventoryMovement, int, error)
}
