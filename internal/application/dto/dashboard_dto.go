package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// Contiene los KPIs principales del día y del mes en curso, más el Top-5 SKUs del mes.
type DashboardSummaryDTO struct {
	// Métricas del día actual (00:00 – 23:59)
	TodaySales  decimal.Decimal `json:"today_sales" swaggertype:"string"`  // ventas netas de hoy
	TodayMargin decimal.Decimal `json:"today_margin" swaggertype:"string"` // margen bruto de hoy (revenue - COGS)

	// Métricas del mes en curso (día 1 – hoy)
	MonthlySales     decimal.Decimal `json:"monthly_sales" swaggertype:"string"`
	MonthlyMargin    decimal.Decimal `json:"monthly_margin" swaggertype:"string"`
	MonthlyMarginPct decimal.Decimal `json:"monthly_margin_pct" swaggertype:"string"`

	// Saldos abiertos
	ReceivableOutstanding decimal.Decimal `json:"receivable_outstanding" swaggertype:"string"`
	PayableOutstanding    decimal.Decimal `json:"payable_outstanding" swaggertype:"string"`

	// Top 5 SKUs por ingreso del mes (ordenados de mayor a menor revenue)
	TopSKUs []TopSKUDTO `json:"top_skus"`

	DateLabel string `json:"date_label"` // ej: "Tháng 10/2024"
	Cached    bool   `json:"cached"`
}

// TopSKUDTO resumen de un SKU para el widget del dashboard.
type TopSKUDTO struct {
	ProductID        string          `json:"product_id"`
	SKU              string          `json:"sku"`
	ProductName      string          `json:"product_name"`
	QuantitySold     decimal.Decimal `json:"quantity_sold" swaggertype:"string"`
	TotalRevenue     decimal.Decimal `json:"total_revenue" swaggertype:"string"`
	MarginPercentage decimal.Decimal `json:"margin_percentage" swaggertype:"string"` // (revenue - cogs) / revenue * 100
}
