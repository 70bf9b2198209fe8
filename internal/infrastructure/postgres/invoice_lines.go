package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
)

// insertLines persiste las líneas en la tabla indicada (import_invoice_lines | export_invoice_lines).
func insertLines(ctx context.Context, q Querier, table, invoiceID string, lines []entity.InvoiceLine) error {
	withCost := table == "export_invoice_lines"
	for i := range lines {
		l := &lines[i]
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.InvoiceID = invoiceID
		query := `INSERT INTO ` + table + ` (id, invoice_id, line_no, product_id, sku, product_name, unit, quantity, unit_price, discount, vat_rate, subtotal, tax_amount, total`
		args := []any{l.ID, invoiceID, l.LineNo, l.ProductID, l.SKU, l.ProductName, l.Unit, l.Quantity, l.UnitPrice,
			l.Discount, l.VATRate, l.Subtotal, l.TaxAmount, l.Total}
		if withCost {
			query += `, unit_cost) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
			args = append(args, l.UnitCost)
		} else {
			query += `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
		}
		if _, err := q.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

// loadLines lee las líneas ordenadas por line_no.
func loadLines(ctx context.Context, q Querier, table, invoiceID string) ([]entity.InvoiceLine, error) {
	cost := "0::numeric"
	if table == "export_invoice_lines" {
		cost = "unit_cost"
	}
	rows, err := q.Query(ctx, `
		SELECT id, invoice_id, line_no, product_id, sku, product_name, unit, quantity, unit_price, discount,
			vat_rate, subtotal, tax_amount, total, `+cost+`
		FROM `+table+` WHERE invoice_id = $1 ORDER BY line_no`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()
	var lines []entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.LineNo, &l.ProductID, &l.SKU, &l.ProductName, &l.Unit,
			&l.Quantity, &l.UnitPrice, &l.Discount, &l.VATRate, &l.Subtotal, &l.TaxAmount, &l.Total, &l.UnitCost); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
