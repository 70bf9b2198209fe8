package repository

import (
	"context"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// SalesTotals totales de compras y ventas de un período (facturas no anuladas).
type SalesTotals struct {
	ImportTotal  decimal.Decimal // neto de compras
	ExportTotal  decimal.Decimal // neto de ventas
	ExportTax    decimal.Decimal
	COGS         decimal.Decimal
	ImportCount  int
	ExportCount  int
}

// PeriodRow fila de la serie temporal de ingresos.
type PeriodRow struct {
	Period      time.Time // inicio del día o del mes
	Revenue     decimal.Decimal
	COGS        decimal.Decimal
	ImportSpend decimal.Decimal
}

// SKUMarginResult resultado crudo de la consulta de márgenes por SKU.
type SKUMarginResult struct {
	ProductID    string
	SKU          string
	ProductName  string
	UnitsSold    decimal.Decimal
	GrossRevenue decimal.Decimal
	TotalCOGS    decimal.Decimal
	GrossProfit  decimal.Decimal
}

// DebtTotals saldos abiertos por tipo.
type DebtTotals struct {
	ReceivableOutstanding decimal.Decimal
	PayableOutstanding    decimal.Decimal
	OverdueReceivables    int
	OverduePayables       int
}

// ReportRepository consultas de lectura para reportes y dashboard.
// Las implementaciones son read-only (no modifican datos).
type ReportRepository interface {
	GetSalesTotals(ctx context.Context, companyID string, start, end time.Time) (SalesTotals, error)
	// GetRevenueSeries agrupa por día ("day") o por mes ("month").
	GetRevenueSeries(ctx context.Context, companyID string, start, end time.Time, groupBy string) ([]PeriodRow, error)
	// GetSKUMargins devuelve los SKUs ordenados por ingreso descendente; limit <= 0 sin límite.
	GetSKUMargins(ctx context.Context, companyID string, start, end time.Time, limit int) ([]SKUMarginResult, error)
	GetDebtTotals(ctx context.Context, companyID string) (DebtTotals, error)
	GetInventoryValue(ctx context.Context, companyID string) (decimal.Decimal, error)
	// ListOpenDebts devuelve deudas no pagadas ni anuladas (para antigüedad de saldos).
	ListOpenDebts(ctx context.Context, companyID string) ([]*entity.Debt, error)
	// ListProducts devuelve todos los productos ordenados por SKU.
	ListProducts(ctx context.Context, companyID string) ([]*entity.Product, error)
}
