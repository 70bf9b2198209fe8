package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/pkg/textnorm"
	"github.com/shopspring/decimal"
)

var _ repository.ExportInvoiceRepository = (*ExportInvoiceRepo)(nil)

// ExportInvoiceRepo persistencia de facturas de venta.
type ExportInvoiceRepo struct {
	q Querier
}

// NewExportInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewExportInvoiceRepository(q Querier) *ExportInvoiceRepo {
	return &ExportInvoiceRepo{q: q}
}

const (
	exportColumns = `
	SELECT e.id, e.company_id, e.customer_id, c.name, e.number, e.issue_date, e.due_date, e.note, e.status,
		e.net_amount, e.tax_amount, e.grand_total, e.cost_total, e.paid_amount, e.lookup_code,
		COALESCE(e.created_by::text, ''), e.created_at, e.updated_at, e.cancelled_at`
	exportFrom = `
	FROM export_invoices e
	JOIN partners c ON c.id = e.customer_id`
)

var exportSortColumns = map[string]string{
	"issue_date":  "e.issue_date",
	"number":      "e.number",
	"grand_total": "e.grand_total",
	"customer":    "c.name",
	"created_at":  "e.created_at",
}

// Create persiste cabecera y líneas (con costo unitario de salida).
func (r *ExportInvoiceRepo) Create(ctx context.Context, inv *entity.ExportInvoice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO export_invoices (id, company_id, customer_id, number, issue_date, due_date, note, status,
			net_amount, tax_amount, grand_total, cost_total, paid_amount, lookup_code, search_text, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		inv.ID, inv.CompanyID, inv.CustomerID, inv.Number, dateOnly(inv.IssueDate), inv.DueDate, inv.Note, inv.Status,
		inv.NetAmount, inv.TaxAmount, inv.GrandTotal, inv.CostTotal, inv.PaidAmount, inv.LookupCode,
		textnorm.Join(inv.Number, inv.CustomerName), nullIfEmpty(inv.CreatedBy), inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert export invoice: %w", err)
	}
	return insertLines(ctx, r.q, "export_invoice_lines", inv.ID, inv.Lines)
}

// GetByID devuelve la factura con sus líneas.
func (r *ExportInvoiceRepo) GetByID(ctx context.Context, companyID, id string) (*entity.ExportInvoice, error) {
	inv, err := scanExport(r.q.QueryRow(ctx, exportColumns+exportFrom+` WHERE e.company_id = $1 AND e.id = $2`, companyID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get export invoice: %w", err)
	}
	if inv.Lines, err = loadLines(ctx, r.q, "export_invoice_lines", inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}

// ExistsByNumber verifica la unicidad del número dentro de la empresa.
func (r *ExportInvoiceRepo) ExistsByNumber(ctx context.Context, companyID, number string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM export_invoices WHERE company_id = $1 AND number = $2)`, companyID, number,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("export exists: %w", err)
	}
	return exists, nil
}

// List lista facturas de venta sin líneas.
func (r *ExportInvoiceRepo) List(ctx context.Context, companyID string, f repository.ExportFilter) ([]*entity.ExportInvoice, int, error) {
	w := newWhere("e.company_id = ?", companyID)
	w.search("e", textnorm.Fold(f.Search))
	w.addIf(f.CustomerID != "", "e.customer_id = ?", f.CustomerID)
	w.addIf(f.Status != "", "e.status = ?", f.Status)
	if f.From != nil {
		w.add("e.issue_date >= ?", dateOnly(*f.From))
	}
	if f.To != nil {
		w.add("e.issue_date <= ?", dateOnly(*f.To))
	}

	query := exportColumns + `, COUNT(*) OVER()` + exportFrom + w.sql() +
		orderBy(exportSortColumns, f.Sort, f.Desc, "e.issue_date DESC, e.created_at DESC") + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list export invoices: %w", err)
	}
	defer rows.Close()

	var (
		list  []*entity.ExportInvoice
		total int
	)
	for rows.Next() {
		inv, err := scanExport(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan export invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, total, rows.Err()
}

// MarkCancelled anula la factura. Si ya estaba anulada devuelve ErrConflict.
func (r *ExportInvoiceRepo) MarkCancelled(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE export_invoices SET status = 'CANCELLED', cancelled_at = $2, updated_at = $2 WHERE id = $1 AND status = 'COMPLETED'`, id, at)
	if err != nil {
		return fmt.Errorf("cancel export invoice: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// AddPaid suma (o resta) al monto cobrado de la factura.
func (r *ExportInvoiceRepo) AddPaid(ctx context.Context, id string, delta decimal.Decimal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE export_invoices SET paid_amount = GREATEST(paid_amount + $2, 0), updated_at = now() WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("update export paid: %w", err)
	}
	return nil
}

func scanExport(row pgxScanner, extra ...any) (*entity.ExportInvoice, error) {
	var inv entity.ExportInvoice
	dest := []any{&inv.ID, &inv.CompanyID, &inv.CustomerID, &inv.CustomerName, &inv.Number, &inv.IssueDate, &inv.DueDate,
		&inv.Note, &inv.Status, &inv.NetAmount, &inv.TaxAmount, &inv.GrandTotal, &inv.CostTotal, &inv.PaidAmount,
		&inv.LookupCode, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt, &inv.CancelledAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &inv, nil
}
