package dto

import "github.com/shopspring/decimal"

// ── Query parameters ──────────────────────────────────────────────────────────

// ReportPeriodQuery rango de fechas de los reportes.
type ReportPeriodQuery struct {
	StartDate string `query:"start_date" validate:"omitempty,datetime=2006-01-02"` // por defecto primer día del mes actual
	EndDate   string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`   // por defecto hoy
}

// RevenueReportRequest parámetros para GET /api/reports/revenue.
type RevenueReportRequest struct {
	ReportPeriodQuery
	GroupBy string `query:"group_by" validate:"omitempty,oneof=day month"`
}

// TopProductsRequest parámetros para GET /api/reports/top-products.
type TopProductsRequest struct {
	ReportPeriodQuery
	TopN int `query:"top_n" validate:"omitempty,min=1,max=200"` // default 20
}

// PeriodDTO rango de fechas del reporte.
type PeriodDTO struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ── Resumen ───────────────────────────────────────────────────────────────────

// SummaryReportDTO respuesta de GET /api/reports/summary.
type SummaryReportDTO struct {
	Period                PeriodDTO       `json:"period"`
	ImportTotal           decimal.Decimal `json:"import_total" swaggertype:"string"`
	ImportCount           int             `json:"import_count"`
	ExportTotal           decimal.Decimal `json:"export_total" swaggertype:"string"` // neto (sin IVA)
	ExportTax             decimal.Decimal `json:"export_tax" swaggertype:"string"`
	ExportCount           int             `json:"export_count"`
	COGS                  decimal.Decimal `json:"cogs" swaggertype:"string"`
	GrossProfit           decimal.Decimal `json:"gross_profit" swaggertype:"string"` // ExportTotal - COGS
	MarginPct             decimal.Decimal `json:"margin_pct" swaggertype:"string"`   // GrossProfit / ExportTotal * 100
	ReceivableOutstanding decimal.Decimal `json:"receivable_outstanding" swaggertype:"string"`
	PayableOutstanding    decimal.Decimal `json:"payable_outstanding" swaggertype:"string"`
	OverdueReceivables    int             `json:"overdue_receivables"`
	OverduePayables       int             `json:"overdue_payables"`
	InventoryValue        decimal.Decimal `json:"inventory_value" swaggertype:"string"`
}

// ── Serie temporal ────────────────────────────────────────────────────────────

// RevenuePointDTO un punto de la serie.
type RevenuePointDTO struct {
	Period      string          `json:"period"` // 2024-10-05 o 2024-10
	Revenue     decimal.Decimal `json:"revenue" swaggertype:"string"`
	COGS        decimal.Decimal `json:"cogs" swaggertype:"string"`
	Profit      decimal.Decimal `json:"profit" swaggertype:"string"`
	ImportSpend decimal.Decimal `json:"import_spend" swaggertype:"string"`
}

// RevenueReportDTO respuesta de GET /api/reports/revenue.
type RevenueReportDTO struct {
	Period  PeriodDTO         `json:"period"`
	GroupBy string            `json:"group_by"`
	Points  []RevenuePointDTO `json:"points"`
}

// ── Por SKU ───────────────────────────────────────────────────────────────────

// SKURankingDTO margen y rentabilidad por SKU/producto.
type SKURankingDTO struct {
	Rank             int             `json:"rank"` // posición (1 = mayor ingreso)
	ProductID        string          `json:"product_id"`
	SKU              string          `json:"sku"`
	ProductName      string          `json:"product_name"`
	UnitsSold        decimal.Decimal `json:"units_sold" swaggertype:"string"`
	GrossRevenue     decimal.Decimal `json:"gross_revenue" swaggertype:"string"`
	TotalCOGS        decimal.Decimal `json:"total_cogs" swaggertype:"string"`
	GrossProfit      decimal.Decimal `json:"gross_profit" swaggertype:"string"`           // GrossRevenue - TotalCOGS
	MarginPct        decimal.Decimal `json:"margin_pct" swaggertype:"string"`             // GrossProfit / GrossRevenue * 100
	RevenuePct       decimal.Decimal `json:"revenue_pct" swaggertype:"string"`            // participación % en ingresos totales
	CumulativeRevPct decimal.Decimal `json:"cumulative_revenue_pct" swaggertype:"string"` // acumulado descendente
	IsTopPareto      bool            `json:"is_top_pareto"`                               // true si forma parte del top 80% de ingresos
}

// TopProductsReportDTO respuesta de GET /api/reports/top-products.
type TopProductsReportDTO struct {
	Period       PeriodDTO       `json:"period"`
	TotalRevenue decimal.Decimal `json:"total_revenue" swaggertype:"string"`
	Items        []SKURankingDTO `json:"items"`
	ParetoCount  int             `json:"pareto_count"` // productos que acumulan el 80% de ingresos
}

// ── Antigüedad de saldos ──────────────────────────────────────────────────────

// AgingBucketDTO saldo de un tramo de mora.
type AgingBucketDTO struct {
	Bucket string          `json:"bucket"` // current | 1-30 | 31-60 | 61-90 | >90
	Amount decimal.Decimal `json:"amount" swaggertype:"string"`
	Count  int             `json:"count"`
}

// AgingByTypeDTO tramos de un tipo de deuda.
type AgingByTypeDTO struct {
	Type    string           `json:"type"` // PAYABLE | RECEIVABLE
	Total   decimal.Decimal  `json:"total" swaggertype:"string"`
	Buckets []AgingBucketDTO `json:"buckets"`
}

// AgingReportDTO respuesta de GET /api/reports/debts/aging.
type AgingReportDTO struct {
	AsOf  string           `json:"as_of"`
	Types []AgingByTypeDTO `json:"types"`
}
