package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	invoicedom "github.com/jhoicas/backoffice-api/internal/domain/invoice"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase casos de uso CRUD para productos. Cost y Stock se manejan vía movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto. Cost y Stock inician en 0.
func (uc *ProductUseCase) Create(ctx context.Context, companyID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	existing, err := uc.repo.GetBySKU(ctx, companyID, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: el SKU %s ya existe", domain.ErrDuplicate, sku)
	}
	if err := validateProductAmounts(in.Price, in.VATRate, in.MinStock); err != nil {
		return nil, err
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		SKU:         sku,
		Name:        strings.TrimSpace(in.Name),
		Unit:        strings.TrimSpace(in.Unit),
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
		Price:       in.Price,
		Cost:        decimal.Zero,
		VATRate:     in.VATRate,
		Stock:       decimal.Zero,
		MinStock:    in.MinStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return inventory.ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return inventory.ToProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar Cost ni Stock (se manejan vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		if !strings.EqualFold(sku, product.SKU) {
			other, err := uc.repo.GetBySKU(ctx, companyID, sku)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, fmt.Errorf("%w: el SKU %s ya existe", domain.ErrDuplicate, sku)
			}
		}
		product.SKU = sku
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Unit != nil {
		product.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.VATRate != nil {
		product.VATRate = *in.VATRate
	}
	if in.MinStock != nil {
		product.MinStock = *in.MinStock
	}
	if err := validateProductAmounts(product.Price, product.VATRate, product.MinStock); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return inventory.ToProductResponse(product), nil
}

// List lista productos con búsqueda, categoría, filtro de stock bajo y paginación.
func (uc *ProductUseCase) List(ctx context.Context, companyID string, q dto.ProductListQuery) (*dto.ProductListResponse, error) {
	q.DefaultPage()
	list, total, err := uc.repo.List(ctx, companyID, repository.ProductFilter{
		ListParams: ToListParams(q.ListQuery),
		Category:   q.Category,
		LowStock:   q.LowStock,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *inventory.ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// Delete elimina un producto. Con stock o con facturas/movimientos asociados devuelve ErrInUse.
func (uc *ProductUseCase) Delete(ctx context.Context, companyID, id string) error {
	product, err := uc.get(ctx, companyID, id)
	if err != nil {
		return err
	}
	if !product.Stock.IsZero() {
		return fmt.Errorf("%w: el producto aún tiene %s en existencia", domain.ErrInUse, product.Stock.String())
	}
	used, err := uc.repo.IsReferenced(ctx, companyID, id)
	if err != nil {
		return err
	}
	if used {
		return domain.ErrInUse
	}
	return uc.repo.Delete(ctx, companyID, id)
}

func (uc *ProductUseCase) get(ctx context.Context, companyID, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func validateProductAmounts(price, vat, minStock decimal.Decimal) error {
	if price.IsNegative() {
		return domain.Invalid("price", "no puede ser negativo")
	}
	if !invoicedom.ValidVATRate(vat) {
		return domain.Invalid("vat_rate", "debe ser 0, 5, 8 o 10")
	}
	if minStock.IsNegative() {
		return domain.Invalid("min_stock", "no puede ser negativo")
	}
	return nil
}
