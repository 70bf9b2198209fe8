package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/inventory/:id/adjust.
// Quantity es un delta: positivo suma, negativo resta. UnitCost solo aplica a deltas positivos.
type AdjustStockRequest struct {
	Quantity decimal.Decimal  `json:"quantity" swaggertype:"string"`
	UnitCost *decimal.Decimal `json:"unit_cost,omitempty" swaggertype:"string"`
	Reason   string           `json:"reason" validate:"required,min=1,max=500"`
}

// MovementResponse línea del kardex.
type MovementResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Type       string          `json:"type"` // IN | OUT | ADJUSTMENT
	Quantity   decimal.Decimal `json:"quantity" swaggertype:"string"`
	UnitCost   decimal.Decimal `json:"unit_cost" swaggertype:"string"`
	TotalCost  decimal.Decimal `json:"total_cost" swaggertype:"string"`
	StockAfter decimal.Decimal `json:"stock_after" swaggertype:"string"`
	RefType    string          `json:"ref_type"`
	RefID      string          `json:"ref_id,omitempty"`
	Note       string          `json:"note,omitempty"`
	CreatedBy  string          `json:"created_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// MovementListResponse kardex paginado.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ReplenishmentSuggestionDTO fila del reporte de inventario con la sugerencia de reposición.
type ReplenishmentSuggestionDTO struct {
	ProductID         string          `json:"product_id"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"product_name"`
	Unit              string          `json:"unit"`
	Category          string          `json:"category,omitempty"`
	CurrentStock      decimal.Decimal `json:"current_stock" swaggertype:"string"`
	MinStock          decimal.Decimal `json:"min_stock" swaggertype:"string"`
	UnitCost          decimal.Decimal `json:"unit_cost" swaggertype:"string"`  // costo promedio ponderado
	StockValue        decimal.Decimal `json:"stock_value" swaggertype:"string"` // stock * costo
	LowStock          bool            `json:"low_stock"`
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty" swaggertype:"string"` // max(min*2 - stock, 0)
}

// InventoryReportDTO respuesta de GET /api/reports/inventory.
type InventoryReportDTO struct {
	TotalValue    decimal.Decimal              `json:"total_value" swaggertype:"string"`
	ProductCount  int                          `json:"product_count"`
	LowStockCount int                          `json:"low_stock_count"`
	Items         []ReplenishmentSuggestionDTO `json:"items"`
}
