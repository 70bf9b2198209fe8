package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/debt"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// DebtUseCase cuentas por pagar y por cobrar: consulta, abonos y vencimientos.
type DebtUseCase struct {
	txRunner repository.TxRunner
	debts    repository.DebtRepository
	partners repository.PartnerRepository
	loc      *time.Location
	now      func() time.Time
}

// NewDebtUseCase construye el caso de uso.
func NewDebtUseCase(txRunner repository.TxRunner, debts repository.DebtRepository, partners repository.PartnerRepository, loc *time.Location) *DebtUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &DebtUseCase{txRunner: txRunner, debts: debts, partners: partners, loc: loc, now: time.Now}
}

// List lista deudas con filtros, búsqueda y paginación.
func (uc *DebtUseCase) List(ctx context.Context, companyID string, q dto.DebtListQuery) (*dto.DebtListResponse, error) {
	q.DefaultPage()
	today := uc.today()
	list, total, err := uc.debts.List(ctx, companyID, debtFilter(q, today))
	if err != nil {
		return nil, err
	}
	items := make([]dto.DebtResponse, 0, len(list))
	for _, d := range list {
		debt.Refresh(d, today)
		items = append(items, *DebtResponse(d))
	}
	return &dto.DebtListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}, nil
}

// GetByID devuelve la deuda con sus abonos.
func (uc *DebtUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.DebtResponse, error) {
	d, err := uc.debts.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	debt.Refresh(d, uc.today())
	return DebtResponse(d), nil
}

// AddPayment registra un abono: 0 < monto <= saldo (si no ErrOverpayment), recalcula el
// estado y suma el pago a la factura de origen.
func (uc *DebtUseCase) AddPayment(ctx context.Context, companyID, userID, debtID string, in dto.PaymentRequest) (*dto.DebtResponse, error) {
	paidAt, err := dto.ParseDate(in.PaidAt, uc.loc)
	if err != nil {
		return nil, domain.Invalid("paid_at", "formato esperado YYYY-MM-DD")
	}
	now := uc.now()
	if paidAt == nil {
		paidAt = &now
	}
	var out *entity.Debt
	err = uc.txRunner.Run(ctx, func(st repository.TxStores) error {
		d, err := st.Debts.GetForUpdate(ctx, companyID, debtID)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
		if err := debt.ValidatePayment(d, in.Amount, in.Method); err != nil {
			return err
		}
		p := &entity.DebtPayment{
			ID:        uuid.New().String(),
			DebtID:    d.ID,
			Amount:    in.Amount,
			Method:    in.Method,
			PaidAt:    *paidAt,
			Reference: strings.TrimSpace(in.Reference),
			Note:      in.Note,
			CreatedBy: userID,
			CreatedAt: now,
		}
		if err := st.Debts.AddPayment(ctx, p); err != nil {
			return err
		}
		debt.ApplyPayment(d, in.Amount, now.In(uc.loc))
		d.UpdatedAt = now
		if err := st.Debts.UpdateBalance(ctx, d); err != nil {
			return err
		}
		if err := addInvoicePaid(ctx, st, d, in.Amount); err != nil {
			return err
		}
		out, err = st.Debts.GetByID(ctx, companyID, d.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return DebtResponse(out), nil
}

// DeletePayment elimina un abono y recalcula saldo y estado (deuda y factura).
func (uc *DebtUseCase) DeletePayment(ctx context.Context, companyID, debtID, paymentID string) (*dto.DebtResponse, error) {
	var out *entity.Debt
	err := uc.txRunner.Run(ctx, func(st repository.TxStores) error {
		d, err := st.Debts.GetForUpdate(ctx, companyID, debtID)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrNotFound
		}
		if d.Status == entity.DebtCancelled {
			return fmt.Errorf("%w: la deuda está anulada", domain.ErrConflict)
		}
		p, err := st.Debts.GetPayment(ctx, d.ID, paymentID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: abono %s", domain.ErrNotFound, paymentID)
		}
		if err := st.Debts.DeletePayment(ctx, p.ID); err != nil {
			return err
		}
		now := uc.now()
		debt.RevertPayment(d, p.Amount, now.In(uc.loc))
		d.UpdatedAt = now
		if err := st.Debts.UpdateBalance(ctx, d); err != nil {
			return err
		}
		if err := addInvoicePaid(ctx, st, d, p.Amount.Neg()); err != nil {
			return err
		}
		out, err = st.Debts.GetByID(ctx, companyID, d.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return DebtResponse(out), nil
}

// today fecha de hoy en la zona horaria de la empresa.
func (uc *DebtUseCase) today() time.Time {
	return uc.now().In(uc.loc)
}

// MarkOverdue pasa a OVERDUE las deudas abiertas vencidas (tarea diaria).
func (uc *DebtUseCase) MarkOverdue(ctx context.Context) (int64, error) {
	return uc.debts.MarkOverdue(ctx, uc.today())
}

// PartnerSummary saldo consolidado de un cliente (RECEIVABLE) o proveedor (PAYABLE) con sus deudas abiertas.
func (uc *DebtUseCase) PartnerSummary(ctx context.Context, companyID, kind, partnerID string) (*dto.PartnerDebtSummaryResponse, error) {
	p, err := uc.partners.GetByID(ctx, companyID, kind, partnerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	debtType := DebtTypeFor(kind)
	sum, err := uc.debts.SummaryByPartner(ctx, companyID, debtType, p.ID)
	if err != nil {
		return nil, err
	}
	today := uc.today()
	list, _, err := uc.debts.List(ctx, companyID, repository.DebtFilter{
		ListParams: repository.ListParams{Sort: "due_date", Limit: maxSheetRows},
		Type:       debtType,
		PartnerID:  p.ID,
		Today:      today,
	})
	if err != nil {
		return nil, err
	}
	open := make([]dto.DebtResponse, 0, len(list))
	overdue := 0
	for _, d := range list {
		debt.Refresh(d, today)
		if d.Status == entity.DebtOverdue {
			overdue++
		}
		if isOpen(d) {
			open = append(open, *DebtResponse(d))
		}
	}
	return &dto.PartnerDebtSummaryResponse{
		Partner:      *usecase.PartnerResponse(p),
		DebtType:     debtType,
		TotalAmount:  sum.TotalAmount,
		TotalPaid:    sum.TotalPaid,
		Outstanding:  sum.Outstanding,
		OpenCount:    sum.OpenCount,
		OverdueCount: max(sum.OverdueCount, overdue),
		OpenDebts:    open,
	}, nil
}

// DebtTypeFor tipo de deuda de una contraparte: proveedores PAYABLE, clientes RECEIVABLE.
func DebtTypeFor(kind string) string {
	if kind == entity.PartnerSupplier {
		return entity.DebtPayable
	}
	return entity.DebtReceivable
}

func isOpen(d *entity.Debt) bool {
	switch d.Status {
	case entity.DebtUnpaid, entity.DebtPartial, entity.DebtOverdue:
		return true
	}
	return false
}

func debtFilter(q dto.DebtListQuery, today time.Time) repository.DebtFilter {
	return repository.DebtFilter{
		Today:       today,
		ListParams:  usecase.ToListParams(q.ListQuery),
		Type:        q.Type,
		Status:      q.Status,
		PartnerID:   q.PartnerID,
		OverdueOnly: q.OverdueOnly,
	}
}

// addInvoicePaid mantiene el pagado de la factura de origen alineado con los abonos.
func addInvoicePaid(ctx context.Context, st repository.TxStores, d *entity.Debt, delta decimal.Decimal) error {
	switch d.InvoiceType {
	case entity.InvoiceTypeImport:
		return st.Imports.AddPaid(ctx, d.InvoiceID, delta)
	case entity.InvoiceTypeExport:
		return st.Exports.AddPaid(ctx, d.InvoiceID, delta)
	}
	return nil
}

// DebtResponse mapea la deuda (con abonos si vienen cargados) a DTO.
func DebtResponse(d *entity.Debt) *dto.DebtResponse {
	r := &dto.DebtResponse{
		ID:            d.ID,
		Type:          d.Type,
		PartnerID:     d.PartnerID,
		PartnerName:   d.PartnerName,
		InvoiceType:   d.InvoiceType,
		InvoiceID:     d.InvoiceID,
		InvoiceNumber: d.InvoiceNumber,
		Amount:        d.Amount,
		PaidAmount:    d.PaidAmount,
		Remaining:     d.Remaining(),
		DueDate:       dto.FormatDate(d.DueDate),
		Status:        d.Status,
		Note:          d.Note,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	for _, p := range d.Payments {
		r.Payments = append(r.Payments, dto.PaymentResponse{
			ID:        p.ID,
			Amount:    p.Amount,
			Method:    p.Method,
			PaidAt:    p.PaidAt.Format(dto.DateLayout),
			Reference: p.Reference,
			Note:      p.Note,
			CreatedBy: p.CreatedBy,
			CreatedAt: p.CreatedAt,
		})
	}
	return r
}
