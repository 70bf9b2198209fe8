package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación del kardex sobre PostgreSQL.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create registra un movimiento.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_movements (id, company_id, product_id, type, quantity, unit_cost, total_cost, stock_after, ref_type, ref_id, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		m.ID, m.CompanyID, m.ProductID, m.Type, m.Quantity, m.UnitCost, m.TotalCost, m.StockAfter,
		m.RefType, nullIfEmpty(m.RefID), m.Note, nullIfEmpty(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inventory movement: %w", err)
	}
	return nil
}

// ListByProduct lista movimientos de un producto, más recientes primero.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, companyID, productID string, limit, offset int) ([]*entity.InventoryMovement, int, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, product_id, type, quantity, unit_cost, total_cost, stock_after, ref_type,
			COALESCE(ref_id::text, ''), note, COALESCE(created_by::text, ''), created_at, COUNT(*) OVER()
		FROM inventory_movements
		WHERE company_id = $1 AND product_id = $2
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`,
		companyID, productID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var (
		list  []*entity.InventoryMovement
		total int
	)
	for rows.Next() {
		var m entity.InventoryMovement
		if err := rows.Scan(&m.ID, &m.CompanyID, &m.ProductID, &m.Type, &m.Quantity, &m.UnitCost, &m.TotalCost,
			&m.StockAfter, &m.RefType, &m.RefID, &m.Note, &m.CreatedBy, &m.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, total, rows.Err()
}
