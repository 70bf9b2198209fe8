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

var _ repository.ImportInvoiceRepository = (*ImportInvoiceRepo)(nil)

// ImportInvoiceRepo persistencia de facturas de compra.
type ImportInvoiceRepo struct {
	q Querier
}

// NewImportInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewImportInvoiceRepository(q Querier) *ImportInvoiceRepo {
	return &ImportInvoiceRepo{q: q}
}

const (
	importColumns = `
	SELECT i.id, i.company_id, i.supplier_id, s.name, i.series, i.number, i.issue_date, i.due_date, i.note,
		i.source, i.status, i.net_amount, i.tax_amount, i.grand_total, i.paid_amount,
		COALESCE(i.attachment_id::text, ''), COALESCE(i.xml_fingerprint, ''), COALESCE(i.created_by::text, ''),
		i.created_at, i.updated_at, i.cancelled_at`
	importFrom = `
	FROM import_invoices i
	JOIN partners s ON s.id = i.supplier_id`
	importSelect = importColumns + importFrom
)

var importSortColumns = map[string]string{
	"issue_date":  "i.issue_date",
	"number":      "i.number",
	"grand_total": "i.grand_total",
	"supplier":    "s.name",
	"created_at":  "i.created_at",
}

// Create persiste cabecera y líneas.
func (r *ImportInvoiceRepo) Create(ctx context.Context, inv *entity.ImportInvoice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO import_invoices (id, company_id, supplier_id, series, number, issue_date, due_date, note, source, status,
			net_amount, tax_amount, grand_total, paid_amount, attachment_id, xml_fingerprint, search_text, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		inv.ID, inv.CompanyID, inv.SupplierID, inv.Series, inv.Number, dateOnly(inv.IssueDate), inv.DueDate, inv.Note,
		inv.Source, inv.Status, inv.NetAmount, inv.TaxAmount, inv.GrandTotal, inv.PaidAmount,
		nullIfEmpty(inv.AttachmentID), nullIfEmpty(inv.XMLFingerprint),
		textnorm.Join(inv.Series, inv.Number, inv.SupplierName), nullIfEmpty(inv.CreatedBy), inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert import invoice: %w", err)
	}
	return insertLines(ctx, r.q, "import_invoice_lines", inv.ID, inv.Lines)
}

// GetByID devuelve la factura con sus líneas.
func (r *ImportInvoiceRepo) GetByID(ctx context.Context, companyID, id string) (*entity.ImportInvoice, error) {
	inv, err := scanImport(r.q.QueryRow(ctx, importSelect+` WHERE i.company_id = $1 AND i.id = $2`, companyID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get import invoice: %w", err)
	}
	if inv.Lines, err = loadLines(ctx, r.q, "import_invoice_lines", inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}

// ExistsByNumber verifica la unicidad (empresa, proveedor, serie, número).
func (r *ImportInvoiceRepo) ExistsByNumber(ctx context.Context, companyID, supplierID, series, number string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM import_invoices WHERE company_id = $1 AND supplier_id = $2 AND series = $3 AND number = $4)`,
		companyID, supplierID, series, number,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("import exists: %w", err)
	}
	return exists, nil
}

// ExistsByFingerprint verifica si ya se importó el mismo XML.
func (r *ImportInvoiceRepo) ExistsByFingerprint(ctx context.Context, companyID, fingerprint string) (bool, error) {
	if fingerprint == "" {
		return false, nil
	}
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM import_invoices WHERE company_id = $1 AND xml_fingerprint = $2)`,
		companyID, fingerprint,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("import fingerprint exists: %w", err)
	}
	return exists, nil
}

// List lista facturas de compra sin líneas.
func (r *ImportInvoiceRepo) List(ctx context.Context, companyID string, f repository.ImportFilter) ([]*entity.ImportInvoice, int, error) {
	w := newWhere("i.company_id = ?", companyID)
	w.search("i", textnorm.Fold(f.Search))
	w.addIf(f.SupplierID != "", "i.supplier_id = ?", f.SupplierID)
	w.addIf(f.Status != "", "i.status = ?", f.Status)
	w.addIf(f.Source != "", "i.source = ?", f.Source)
	if f.From != nil {
		w.add("i.issue_date >= ?", dateOnly(*f.From))
	}
	if f.To != nil {
		w.add("i.issue_date <= ?", dateOnly(*f.To))
	}

	query := importColumns + `, COUNT(*) OVER()` + importFrom + w.sql() +
		orderBy(importSortColumns, f.Sort, f.Desc, "i.issue_date DESC, i.created_at DESC") + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list import invoices: %w", err)
	}
	defer rows.Close()

	var (
		list  []*entity.ImportInvoice
		total int
	)
	for rows.Next() {
		inv, err := scanImport(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan import invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, total, rows.Err()
}

// MarkCancelled anula la factura. Si ya estaba anulada devuelve ErrConflict.
func (r *ImportInvoiceRepo) MarkCancelled(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE import_invoices SET status = 'CANCELLED', cancelled_at = $2, updated_at = $2 WHERE id = $1 AND status = 'COMPLETED'`, id, at)
	if err != nil {
		return fmt.Errorf("cancel import invoice: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

// AddPaid suma (o resta) al monto pagado de la factura.
func (r *ImportInvoiceRepo) AddPaid(ctx context.Context, id string, delta decimal.Decimal) error {
	_, err := r.q.Exec(ctx,
		`UPDATE import_invoices SET paid_amount = GREATEST(paid_amount + $2, 0), updated_at = now() WHERE id = $1`, id, delta)
	if err != nil {
		return fmt.Errorf("update import paid: %w", err)
	}
	return nil
}

// SetAttachment asocia el archivo fuente (XML, imagen) a la factura.
func (r *ImportInvoiceRepo) SetAttachment(ctx context.Context, id, attachmentID string) error {
	_, err := r.q.Exec(ctx, `UPDATE import_invoices SET attachment_id = $2 WHERE id = $1`, id, attachmentID)
	if err != nil {
		return fmt.Errorf("set import attachment: %w", err)
	}
	return nil
}

func scanImport(row pgxScanner, extra ...any) (*entity.ImportInvoice, error) {
	var inv entity.ImportInvoice
	dest := []any{&inv.ID, &inv.CompanyID, &inv.SupplierID, &inv.SupplierName, &inv.Series, &inv.Number, &inv.IssueDate,
		&inv.DueDate, &inv.Note, &inv.Source, &inv.Status, &inv.NetAmount, &inv.TaxAmount, &inv.GrandTotal, &inv.PaidAmount,
		&inv.AttachmentID, &inv.XMLFingerprint, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt, &inv.CancelledAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &inv, nil
}
