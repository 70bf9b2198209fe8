package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/pkg/textnorm"
)

var _ repository.DebtRepository = (*DebtRepo)(nil)

// DebtRepo persistencia de deudas y abonos.
type DebtRepo struct {
	q Querier
}

// NewDebtRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDebtRepository(q Querier) *DebtRepo {
	return &DebtRepo{q: q}
}

const (
	debtColumns = `
	SELECT d.id, d.company_id, d.type, d.partner_id, p.name, d.invoice_type, d.invoice_id, d.invoice_number,
		d.amount, d.paid_amount, d.due_date, d.status, d.note, d.created_at, d.updated_at`
	debtFrom = `
	FROM debts d
	JOIN partners p ON p.id = d.partner_id`
)

var debtSortColumns = map[string]string{
	"due_date":   "d.due_date",
	"amount":     "d.amount",
	"remaining":  "(d.amount - d.paid_amount)",
	"partner":    "p.name",
	"status":     "d.status",
	"created_at": "d.created_at",
}

// Create persiste una deuda nueva.
func (r *DebtRepo) Create(ctx context.Context, d *entity.Debt) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO debts (id, company_id, type, partner_id, invoice_type, invoice_id, invoice_number, amount, paid_amount,
			due_date, status, note, search_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		d.ID, d.CompanyID, d.Type, d.PartnerID, d.InvoiceType, d.InvoiceID, d.InvoiceNumber, d.Amount, d.PaidAmount,
		d.DueDate, d.Status, d.Note, textnorm.Join(d.InvoiceNumber, d.PartnerName), d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert debt: %w", err)
	}
	return nil
}

// GetByID devuelve la deuda con sus abonos.
func (r *DebtRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Debt, error) {
	d, err := r.getOne(ctx, debtColumns+debtFrom+` WHERE d.company_id = $1 AND d.id = $2`, companyID, id)
	if err != nil || d == nil {
		return d, err
	}
	if d.Payments, err = r.listPayments(ctx, d.ID); err != nil {
		return nil, err
	}
	return d, nil
}

// GetForUpdate devuelve la deuda bloqueando su fila (sin abonos).
func (r *DebtRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Debt, error) {
	return r.getOne(ctx, debtColumns+debtFrom+` WHERE d.company_id = $1 AND d.id = $2 FOR UPDATE OF d`, companyID, id)
}

// GetByInvoice devuelve la deuda originada por una factura, si existe.
func (r *DebtRepo) GetByInvoice(ctx context.Context, invoiceType, invoiceID string) (*entity.Debt, error) {
	return r.getOne(ctx, debtColumns+debtFrom+` WHERE d.invoice_type = $1 AND d.invoice_id = $2 FOR UPDATE OF d`, invoiceType, invoiceID)
}

func (r *DebtRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Debt, error) {
	d, err := scanDebt(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get debt: %w", err)
	}
	return d, nil
}

// UpdateBalance persiste el monto pagado y el estado.
func (r *DebtRepo) UpdateBalance(ctx context.Context, d *entity.Debt) error {
	_, err := r.q.Exec(ctx,
		`UPDATE debts SET paid_amount = $2, status = $3, updated_at = now() WHERE id = $1`,
		d.ID, d.PaidAmount, d.Status,
	)
	if err != nil {
		return fmt.Errorf("update debt balance: %w", err)
	}
	return nil
}

// AddPayment registra un abono.
func (r *DebtRepo) AddPayment(ctx context.Context, p *entity.DebtPayment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO debt_payments (id, debt_id, amount, method, paid_at, reference, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.DebtID, p.Amount, p.Method, dateOnly(p.PaidAt), p.Reference, p.Note, nullIfEmpty(p.CreatedBy), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert debt payment: %w", err)
	}
	return nil
}

// GetPayment obtiene un abono de la deuda.
func (r *DebtRepo) GetPayment(ctx context.Context, debtID, paymentID string) (*entity.DebtPayment, error) {
	p, err := scanPayment(r.q.QueryRow(ctx, paymentSelect+` WHERE debt_id = $1 AND id = $2`, debtID, paymentID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get debt payment: %w", err)
	}
	return p, nil
}

// DeletePayment elimina un abono.
func (r *DebtRepo) DeletePayment(ctx context.Context, paymentID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM debt_payments WHERE id = $1`, paymentID); err != nil {
		return fmt.Errorf("delete debt payment: %w", err)
	}
	return nil
}

// CountPayments cuenta los abonos registrados de la deuda.
func (r *DebtRepo) CountPayments(ctx context.Context, debtID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM debt_payments WHERE debt_id = $1`, debtID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count debt payments: %w", err)
	}
	return n, nil
}

// List lista deudas con filtros, orden y paginación.
func (r *DebtRepo) List(ctx context.Context, companyID string, f repository.DebtFilter) ([]*entity.Debt, int, error) {
	w := newWhere("d.company_id = ?", companyID)
	w.search("d", textnorm.Fold(f.Search))
	w.addIf(f.Type != "", "d.type = ?", f.Type)
	w.addIf(f.PartnerID != "", "d.partner_id = ?", f.PartnerID)
	debtStatusFilter(w, f)

	query := debtColumns + `, COUNT(*) OVER()` + debtFrom + w.sql() +
		orderBy(debtSortColumns, f.Sort, f.Desc, "d.due_date ASC NULLS LAST, d.created_at DESC") + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var (
		list  []*entity.Debt
		total int
	)
	for rows.Next() {
		d, err := scanDebt(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan debt: %w", err)
		}
		list = append(list, d)
	}
	return list, total, rows.Err()
}

// overdueCond vencida: ya marcada OVERDUE o abierta con vencimiento anterior a hoy.
const overdueCond = `(d.status = 'OVERDUE' OR (d.status IN ('UNPAID', 'PARTIAL') AND d.due_date < ? AND d.paid_amount < d.amount))`

// debtStatusFilter filtra por estado. Con f.Today el estado vencido se evalúa a esa fecha,
// de modo que UNPAID/PARTIAL excluyen lo que ya venció.
func debtStatusFilter(w *whereBuilder, f repository.DebtFilter) {
	if f.Today.IsZero() {
		w.addIf(f.Status != "", "d.status = ?", f.Status)
		w.addIf(f.OverdueOnly, "d.status = 'OVERDUE'")
		return
	}
	today := dateOnly(f.Today)
	if f.OverdueOnly || f.Status == entity.DebtOverdue {
		w.add(overdueCond, today)
	}
	switch f.Status {
	case "", entity.DebtOverdue:
	case entity.DebtUnpaid, entity.DebtPartial:
		w.add("d.status = ?", f.Status)
		w.add("(d.due_date IS NULL OR d.due_date >= ?)", today)
	default:
		w.add("d.status = ?", f.Status)
	}
}

// MarkOverdue pasa a OVERDUE las deudas UNPAID/PARTIAL vencidas.
func (r *DebtRepo) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE debts SET status = 'OVERDUE', updated_at = now()
		WHERE status IN ('UNPAID', 'PARTIAL') AND due_date IS NOT NULL AND due_date < $1 AND paid_amount < amount`,
		dateOnly(today),
	)
	if err != nil {
		return 0, fmt.Errorf("mark overdue debts: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// SummaryByPartner consolida los saldos no anulados de una contraparte.
func (r *DebtRepo) SummaryByPartner(ctx context.Context, companyID, debtType, partnerID string) (*repository.PartnerDebtSummary, error) {
	s := repository.PartnerDebtSummary{PartnerID: partnerID, Type: debtType}
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(paid_amount), 0),
			COUNT(*) FILTER (WHERE status IN ('UNPAID', 'PARTIAL', 'OVERDUE')),
			COUNT(*) FILTER (WHERE status = 'OVERDUE')
		FROM debts
		WHERE company_id = $1 AND type = $2 AND partner_id = $3 AND status <> 'CANCELLED'`,
		companyID, debtType, partnerID,
	).Scan(&s.TotalAmount, &s.TotalPaid, &s.OpenCount, &s.OverdueCount)
	if err != nil {
		return nil, fmt.Errorf("partner debt summary: %w", err)
	}
	s.Outstanding = s.TotalAmount.Sub(s.TotalPaid)
	return &s, nil
}

const paymentSelect = `SELECT id, debt_id, amount, method, paid_at, reference, note, COALESCE(created_by::text, ''), created_at FROM debt_payments`

func (r *DebtRepo) listPayments(ctx context.Context, debtID string) ([]entity.DebtPayment, error) {
	rows, err := r.q.Query(ctx, paymentSelect+` WHERE debt_id = $1 ORDER BY paid_at, created_at`, debtID)
	if err != nil {
		return nil, fmt.Errorf("list debt payments: %w", err)
	}
	defer rows.Close()
	var list []entity.DebtPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt payment: %w", err)
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

func scanDebt(row pgxScanner, extra ...any) (*entity.Debt, error) {
	var d entity.Debt
	dest := []any{&d.ID, &d.CompanyID, &d.Type, &d.PartnerID, &d.PartnerName, &d.InvoiceType, &d.InvoiceID, &d.InvoiceNumber,
		&d.Amount, &d.PaidAmount, &d.DueDate, &d.Status, &d.Note, &d.CreatedAt, &d.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &d, nil
}

func scanPayment(row pgxScanner) (*entity.DebtPayment, error) {
	var p entity.DebtPayment
	if err := row.Scan(&p.ID, &p.DebtID, &p.Amount, &p.Method, &p.PaidAt, &p.Reference, &p.Note, &p.CreatedBy, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
