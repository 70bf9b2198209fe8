package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del inventario con existencia única (sin bodegas).
// Cost (promedio ponderado) y Stock los mantiene el sistema a partir de los movimientos.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // código único por empresa
	Name        string
	Unit        string
	Category    string
	Description string
	Price       decimal.Decimal // precio de venta sugerido
	Cost        decimal.Decimal // costo promedio ponderado
	VATRate     decimal.Decimal // porcentaje: 0, 5, 8 o 10
	Stock       decimal.Decimal
	MinStock    decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsLowStock indica si la existencia está en o por debajo del mínimo configurado.
func (p *Product) IsLowStock() bool {
	return p.MinStock.IsPositive() && p.Stock.LessThanOrEqual(p.MinStock)
}

// StockValue valor del inventario a costo promedio.
func (p *Product) StockValue() decimal.Decimal {
	return p.Stock.Mul(p.Cost).Round(2)
}
