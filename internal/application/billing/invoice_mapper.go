package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/debt"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// maxSheetRows tope de filas en las exportaciones a Excel.
const maxSheetRows = 10000

// newLines convierte las líneas del request; SKU, nombre, unidad e IVA por defecto
// se completan con fillLines una vez bloqueados los productos.
func newLines(invoiceID string, reqs []dto.InvoiceLineRequest) []entity.InvoiceLine {
	lines := make([]entity.InvoiceLine, 0, len(reqs))
	for _, r := range reqs {
		l := entity.InvoiceLine{
			ID:        uuid.New().String(),
			InvoiceID: invoiceID,
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
			UnitPrice: r.UnitPrice,
			Discount:  r.Discount,
			VATRate:   decimal.NewFromInt(-1),
		}
		if r.VATRate != nil {
			l.VATRate = *r.VATRate
		}
		lines = append(lines, l)
	}
	return lines
}

// fillLines copia los datos del producto en cada línea. Con defaultPrice, un precio
// cero toma el precio de venta del producto.
func fillLines(lines []entity.InvoiceLine, products map[string]*entity.Product, defaultPrice bool) {
	for i := range lines {
		p := products[lines[i].ProductID]
		lines[i].SKU, lines[i].ProductName, lines[i].Unit = p.SKU, p.Name, p.Unit
		if lines[i].VATRate.IsNegative() {
			lines[i].VATRate = p.VATRate
		}
		if defaultPrice && lines[i].UnitPrice.IsZero() {
			lines[i].UnitPrice = p.Price
		}
	}
}

func productIDs(lines []entity.InvoiceLine) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

// lineUnitCost costo unitario de una línea de compra: subtotal (neto de descuento, sin IVA) / cantidad.
func lineUnitCost(l entity.InvoiceLine) decimal.Decimal {
	if !l.Quantity.IsPositive() {
		return decimal.Zero
	}
	return l.Subtotal.Div(l.Quantity).Round(4)
}

// invoiceDates interpreta fecha de emisión (por defecto hoy) y vencimiento.
func invoiceDates(issue, due string, loc *time.Location, now time.Time) (time.Time, *time.Time, error) {
	issueDate, err := dto.ParseDate(issue, loc)
	if err != nil {
		return time.Time{}, nil, domain.Invalid("issue_date", "formato esperado YYYY-MM-DD")
	}
	if issueDate == nil {
		n := now.In(loc)
		t := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
		issueDate = &t
	}
	dueDate, err := dto.ParseDate(due, loc)
	if err != nil {
		return time.Time{}, nil, domain.Invalid("due_date", "formato esperado YYYY-MM-DD")
	}
	if dueDate != nil && dueDate.Before(*issueDate) {
		return time.Time{}, nil, domain.Invalid("due_date", "no puede ser anterior a la fecha de emisión")
	}
	return *issueDate, dueDate, nil
}

// dateRange filtro de fechas inclusivo por día.
func dateRange(start, end string, loc *time.Location) (repository.DateRange, error) {
	from, err := dto.ParseDate(start, loc)
	if err != nil {
		return repository.DateRange{}, domain.Invalid("start_date", "formato esperado YYYY-MM-DD")
	}
	to, err := dto.ParseDate(end, loc)
	if err != nil {
		return repository.DateRange{}, domain.Invalid("end_date", "formato esperado YYYY-MM-DD")
	}
	if from != nil && to != nil && to.Before(*from) {
		return repository.DateRange{}, domain.Invalid("end_date", "no puede ser anterior a start_date")
	}
	return repository.DateRange{From: from, To: to}, nil
}

// newInvoiceDebt deuda por la parte no pagada de la factura; nil si está saldada.
func newInvoiceDebt(companyID, debtType, partnerID, invoiceType, invoiceID, number string,
	grand, paid decimal.Decimal, due *time.Time, now time.Time) *entity.Debt {
	if !grand.Sub(paid).IsPositive() {
		return nil
	}
	d := &entity.Debt{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		Type:          debtType,
		PartnerID:     partnerID,
		InvoiceType:   invoiceType,
		InvoiceID:     invoiceID,
		InvoiceNumber: number,
		Amount:        grand.Sub(paid),
		DueDate:       due,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	d.Status = debt.ResolveStatus(d, now)
	return d
}

// cancellableDebt devuelve la deuda de la factura (nil si no tiene).
// Con abonos registrados la factura no se puede anular: ErrConflict.
func cancellableDebt(ctx context.Context, st repository.TxStores, invoiceType, invoiceID string) (*entity.Debt, error) {
	d, err := st.Debts.GetByInvoice(ctx, invoiceType, invoiceID)
	if err != nil || d == nil {
		return nil, err
	}
	n, err := st.Debts.CountPayments(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("%w: la deuda de la factura tiene abonos registrados", domain.ErrConflict)
	}
	return d, nil
}

// closeDebt marca la deuda como anulada.
func closeDebt(ctx context.Context, st repository.TxStores, d *entity.Debt, now time.Time) error {
	if d == nil {
		return nil
	}
	d.Status = entity.DebtCancelled
	d.UpdatedAt = now
	return st.Debts.UpdateBalance(ctx, d)
}

func toLineResponses(lines []entity.InvoiceLine, withCost bool) []dto.InvoiceLineResponse {
	if len(lines) == 0 {
		return nil
	}
	out := make([]dto.InvoiceLineResponse, 0, len(lines))
	for _, l := range lines {
		r := dto.InvoiceLineResponse{
			LineNo:      l.LineNo,
			ProductID:   l.ProductID,
			SKU:         l.SKU,
			ProductName: l.ProductName,
			Unit:        l.Unit,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Discount:    l.Discount,
			VATRate:     l.VATRate,
			Subtotal:    l.Subtotal,
			TaxAmount:   l.TaxAmount,
			Total:       l.Total,
		}
		if withCost {
			cost := l.UnitCost
			r.UnitCost = &cost
		}
		out = append(out, r)
	}
	return out
}

func remaining(grand, paid decimal.Decimal) decimal.Decimal {
	return decimal.Max(grand.Sub(paid), decimal.Zero)
}

// ImportResponse mapea la factura de compra a DTO.
func ImportResponse(inv *entity.ImportInvoice) *dto.ImportInvoiceResponse {
	return &dto.ImportInvoiceResponse{
		ID:             inv.ID,
		SupplierID:     inv.SupplierID,
		SupplierName:   inv.SupplierName,
		Series:         inv.Series,
		Number:         inv.Number,
		IssueDate:      inv.IssueDate.Format(dto.DateLayout),
		DueDate:        dto.FormatDate(inv.DueDate),
		Note:           inv.Note,
		Source:         inv.Source,
		Status:         inv.Status,
		NetAmount:      inv.NetAmount,
		TaxAmount:      inv.TaxAmount,
		GrandTotal:     inv.GrandTotal,
		PaidAmount:     inv.PaidAmount,
		Remaining:      remaining(inv.GrandTotal, inv.PaidAmount),
		AttachmentID:   inv.AttachmentID,
		XMLFingerprint: inv.XMLFingerprint,
		CreatedBy:      inv.CreatedBy,
		CreatedAt:      inv.CreatedAt,
		CancelledAt:    inv.CancelledAt,
		Lines:          toLineResponses(inv.Lines, false),
	}
}

// ExportResponse mapea la factura de venta a DTO.
func ExportResponse(inv *entity.ExportInvoice) *dto.ExportInvoiceResponse {
	return &dto.ExportInvoiceResponse{
		ID:           inv.ID,
		CustomerID:   inv.CustomerID,
		CustomerName: inv.CustomerName,
		Number:       inv.Number,
		IssueDate:    inv.IssueDate.Format(dto.DateLayout),
		DueDate:      dto.FormatDate(inv.DueDate),
		Note:         inv.Note,
		Status:       inv.Status,
		NetAmount:    inv.NetAmount,
		TaxAmount:    inv.TaxAmount,
		GrandTotal:   inv.GrandTotal,
		CostTotal:    inv.CostTotal,
		GrossProfit:  inv.NetAmount.Sub(inv.CostTotal),
		PaidAmount:   inv.PaidAmount,
		Remaining:    remaining(inv.GrandTotal, inv.PaidAmount),
		LookupCode:   inv.LookupCode,
		CreatedBy:    inv.CreatedBy,
		CreatedAt:    inv.CreatedAt,
		CancelledAt:  inv.CancelledAt,
		Lines:        toLineResponses(inv.Lines, true),
	}
}
