package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Stock y costo arrancan en cero.
type CreateProductRequest struct {
	SKU         string          `json:"sku" validate:"required,min=1,max=100"`
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	Unit        string          `json:"unit" validate:"required,max=30"`
	Category    string          `json:"category" validate:"omitempty,max=100"`
	Description string          `json:"description" validate:"omitempty,max=1000"`
	Price       decimal.Decimal `json:"price" swaggertype:"string"`
	VATRate     decimal.Decimal `json:"vat_rate" swaggertype:"string"`
	MinStock    decimal.Decimal `json:"min_stock" swaggertype:"string"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Cost ni Stock).
type UpdateProductRequest struct {
	SKU         *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Unit        *string          `json:"unit" validate:"omitempty,min=1,max=30"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	Price       *decimal.Decimal `json:"price" swaggertype:"string"`
	VATRate     *decimal.Decimal `json:"vat_rate" swaggertype:"string"`
	MinStock    *decimal.Decimal `json:"min_stock" swaggertype:"string"`
}

// ProductListQuery filtros de GET /api/inventory.
type ProductListQuery struct {
	ListQuery
	Category string `query:"category" validate:"omitempty,max=100"`
	LowStock bool   `query:"low_stock"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price" swaggertype:"string"`
	Cost        decimal.Decimal `json:"cost" swaggertype:"string"`
	VATRate     decimal.Decimal `json:"vat_rate" swaggertype:"string"`
	Stock       decimal.Decimal `json:"stock" swaggertype:"string"`
	MinStock    decimal.Decimal `json:"min_stock" swaggertype:"string"`
	StockValue  decimal.Decimal `json:"stock_value" swaggertype:"string"`
	LowStock    bool            `json:"low_stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
