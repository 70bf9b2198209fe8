package inventory

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
)

// StockUseCase ajustes manuales y consulta del kardex.
type StockUseCase struct {
	txRunner  repository.TxRunner
	products  repository.ProductRepository
	movements repository.InventoryMovementRepository
	stock     *StockService
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	txRunner repository.TxRunner,
	products repository.ProductRepository,
	movements repository.InventoryMovementRepository,
	stock *StockService,
) *StockUseCase {
	return &StockUseCase{txRunner: txRunner, products: products, movements: movements, stock: stock}
}

// Adjust registra un ajuste (ADJUSTMENT) sobre el producto en una transacción.
func (uc *StockUseCase) Adjust(ctx context.Context, companyID, userID, productID string, in dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	var out *entity.Product
	err := uc.txRunner.Run(ctx, func(st repository.TxStores) error {
		p, err := uc.stock.Adjust(ctx, st, MovementInput{
			CompanyID: companyID,
			UserID:    userID,
			ProductID: productID,
			RefType:   entity.MovementRefAdjustment,
			Note:      in.Reason,
		}, in.Quantity, in.UnitCost)
		out = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToProductResponse(out), nil
}

// Movements devuelve el kardex del producto, más reciente primero.
func (uc *StockUseCase) Movements(ctx context.Context, companyID, productID string, page dto.PageRequest) (*dto.MovementListResponse, error) {
	page.DefaultPage()
	p, err := uc.products.GetByID(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	list, total, err := uc.movements.ListByProduct(ctx, companyID, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.MovementResponse{
			ID:         m.ID,
			ProductID:  m.ProductID,
			Type:       m.Type,
			Quantity:   m.Quantity,
			UnitCost:   m.UnitCost,
			TotalCost:  m.TotalCost,
			StockAfter: m.StockAfter,
			RefType:    m.RefType,
			RefID:      m.RefID,
			Note:       m.Note,
			CreatedBy:  m.CreatedBy,
			CreatedAt:  m.CreatedAt,
		})
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// ToProductResponse mapea el producto a su DTO.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Unit:        p.Unit,
		Category:    p.Category,
		Description: p.Description,
		Price:       p.Price,
		Cost:        p.Cost,
		VATRate:     p.VATRate,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		StockValue:  p.StockValue(),
		LowStock:    p.IsLowStock(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
