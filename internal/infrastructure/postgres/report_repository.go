package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura para reportes y dashboard.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// GetSalesTotals totales netos de compras y ventas del período (sin anuladas).
// El COGS sale del costo unitario guardado en cada línea al momento de la salida.
func (r *ReportRepo) GetSalesTotals(ctx context.Context, companyID string, start, end time.Time) (repository.SalesTotals, error) {
	const query = `
	SELECT
	    (SELECT COALESCE(SUM(net_amount), 0) FROM import_invoices
	      WHERE company_id = $1 AND status = 'COMPLETED' AND issue_date BETWEEN $2 AND $3) AS import_total,
	    (SELECT COUNT(*) FROM import_invoices
	      WHERE company_id = $1 AND status = 'COMPLETED' AND issue_date BETWEEN $2 AND $3) AS import_count,
	    COALESCE(SUM(e.net_amount), 0)  AS export_total,
	    COALESCE(SUM(e.tax_amount), 0)  AS export_tax,
	    COALESCE(SUM(e.cost_total), 0)  AS cogs,
	    COUNT(e.id)                     AS export_count
	FROM export_invoices e
	WHERE e.company_id = $1 AND e.status = 'COMPLETED' AND e.issue_date BETWEEN $2 AND $3`

	var t repository.SalesTotals
	err := r.q.QueryRow(ctx, query, companyID, dateOnly(start), dateOnly(end)).Scan(
		&t.ImportTotal, &t.ImportCount, &t.ExportTotal, &t.ExportTax, &t.COGS, &t.ExportCount,
	)
	if err != nil {
		return t, fmt.Errorf("reports.GetSalesTotals: %w", err)
	}
	return t, nil
}

// GetRevenueSeries serie de ventas, COGS y compras por día o mes.
func (r *ReportRepo) GetRevenueSeries(ctx context.Context, companyID string, start, end time.Time, groupBy string) ([]repository.PeriodRow, error) {
	unit := "day"
	if groupBy == "month" {
		unit = "month"
	}
	query := `
	WITH sales AS (
	    SELECT date_trunc('` + unit + `', issue_date)::date AS period,
	           SUM(net_amount) AS revenue, SUM(cost_total) AS cogs
	    FROM export_invoices
	    WHERE company_id = $1 AND status = 'COMPLETED' AND issue_date BETWEEN $2 AND $3
	    GROUP BY 1
	), purchases AS (
	    SELECT date_trunc('` + unit + `', issue_date)::date AS period, SUM(net_amount) AS spend
	    FROM import_invoices
	    WHERE company_id = $1 AND status = 'COMPLETED' AND issue_date BETWEEN $2 AND $3
	    GROUP BY 1
	)
	SELECT COALESCE(s.period, p.period) AS period,
	       COALESCE(s.revenue, 0), COALESCE(s.cogs, 0), COALESCE(p.spend, 0)
	FROM sales s
	FULL OUTER JOIN purchases p ON p.period = s.period
	ORDER BY 1`

	rows, err := r.q.Query(ctx, query, companyID, dateOnly(start), dateOnly(end))
	if err != nil {
		return nil, fmt.Errorf("reports.GetRevenueSeries: %w", err)
	}
	defer rows.Close()

	var out []repository.PeriodRow
	for rows.Next() {
		var row repository.PeriodRow
		if err := rows.Scan(&row.Period, &row.Revenue, &row.COGS, &row.ImportSpend); err != nil {
			return nil, fmt.Errorf("reports.GetRevenueSeries scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetSKUMargins devuelve rentabilidad bruta por SKU ordenada por ingreso.
func (r *ReportRepo) GetSKUMargins(ctx context.Context, companyID string, start, end time.Time, limit int) ([]repository.SKUMarginResult, error) {
	query := `
	SELECT
	    l.product_id,
	    l.sku,
	    MAX(l.product_name)                         AS product_name,
	    SUM(l.quantity)                             AS units_sold,
	    SUM(l.subtotal)                             AS gross_revenue,
	    SUM(ROUND(l.quantity * l.unit_cost, 2))     AS total_cogs,
	    SUM(l.subtotal - ROUND(l.quantity * l.unit_cost, 2)) AS gross_profit
	FROM export_invoice_lines l
	JOIN export_invoices e ON e.id = l.invoice_id
	WHERE e.company_id = $1
	  AND e.status = 'COMPLETED'
	  AND e.issue_date BETWEEN $2 AND $3
	GROUP BY l.product_id, l.sku
	ORDER BY gross_revenue DESC, l.sku`
	args := []any{companyID, dateOnly(start), dateOnly(end)}
	if limit > 0 {
		query += ` LIMIT $4`
		args = append(args, limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reports.GetSKUMargins: %w", err)
	}
	defer rows.Close()

	var results []repository.SKUMarginResult
	for rows.Next() {
		var row repository.SKUMarginResult
		if err := rows.Scan(
			&row.ProductID,
			&row.SKU,
			&row.ProductName,
			&row.UnitsSold,
			&row.GrossRevenue,
			&row.TotalCOGS,
			&row.GrossProfit,
		); err != nil {
			return nil, fmt.Errorf("reports.GetSKUMargins scan: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// GetDebtTotals saldos abiertos y cantidad de deudas vencidas por tipo.
func (r *ReportRepo) GetDebtTotals(ctx context.Context, companyID string) (repository.DebtTotals, error) {
	const query = `
	SELECT
	    COALESCE(SUM(amount - paid_amount) FILTER (WHERE type = 'RECEIVABLE'), 0),
	    COALESCE(SUM(amount - paid_amount) FILTER (WHERE type = 'PAYABLE'), 0),
	    COUNT(*) FILTER (WHERE type = 'RECEIVABLE' AND status = 'OVERDUE'),
	    COUNT(*) FILTER (WHERE type = 'PAYABLE' AND status = 'OVERDUE')
	FROM debts
	WHERE company_id = $1 AND status IN ('UNPAID', 'PARTIAL', 'OVERDUE')`

	var t repository.DebtTotals
	err := r.q.QueryRow(ctx, query, companyID).Scan(
		&t.ReceivableOutstanding, &t.PayableOutstanding, &t.OverdueReceivables, &t.OverduePayables,
	)
	if err != nil {
		return t, fmt.Errorf("reports.GetDebtTotals: %w", err)
	}
	return t, nil
}

// GetInventoryValue valor total del inventario a costo promedio.
func (r *ReportRepo) GetInventoryValue(ctx context.Context, companyID string) (decimal.Decimal, error) {
	var v decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(ROUND(stock * cost, 2)), 0) FROM products WHERE company_id = $1`, companyID,
	).Scan(&v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reports.GetInventoryValue: %w", err)
	}
	return v, nil
}

// ListOpenDebts deudas con saldo pendiente.
func (r *ReportRepo) ListOpenDebts(ctx context.Context, companyID string) ([]*entity.Debt, error) {
	rows, err := r.q.Query(ctx, debtColumns+debtFrom+`
		WHERE d.company_id = $1 AND d.status IN ('UNPAID', 'PARTIAL', 'OVERDUE')
		ORDER BY d.due_date NULLS LAST`, companyID)
	if err != nil {
		return nil, fmt.Errorf("reports.ListOpenDebts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("reports.ListOpenDebts scan: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// ListProducts todos los productos de la empresa ordenados por SKU.
func (r *ReportRepo) ListProducts(ctx context.Context, companyID string) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE company_id = $1 ORDER BY sku`, companyID)
	if err != nil {
		return nil, fmt.Errorf("reports.ListProducts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("reports.ListProducts scan: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
