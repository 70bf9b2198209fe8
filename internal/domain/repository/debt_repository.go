package repository

import (
	"context"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DebtFilter filtros del listado de deudas.
type DebtFilter struct {
	ListParams
	Type        string
	Status      string
	PartnerID   string
	OverdueOnly bool
	// Today, si no es cero, hace que los filtros de estado traten como OVERDUE las deudas
	// abiertas ya vencidas aunque la tarea diaria aún no las haya marcado.
	Today time.Time
}

// PartnerDebtSummary saldo consolidado de una contraparte.
type PartnerDebtSummary struct {
	PartnerID    string
	Type         string
	TotalAmount  decimal.Decimal
	TotalPaid    decimal.Decimal
	Outstanding  decimal.Decimal
	OpenCount    int
	OverdueCount int
}

// DebtRepository puerto de persistencia de deudas y abonos.
type DebtRepository interface {
	Create(ctx context.Context, d *entity.Debt) error
	// GetByID incluye los abonos.
	GetByID(ctx context.Context, companyID, id string) (*entity.Debt, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Debt, error)
	GetByInvoice(ctx context.Context, invoiceType, invoiceID string) (*entity.Debt, error)
	// UpdateBalance persiste PaidAmount y Status.
	UpdateBalance(ctx context.Context, d *entity.Debt) error
	AddPayment(ctx context.Context, p *entity.DebtPayment) error
	GetPayment(ctx context.Context, debtID, paymentID string) (*entity.DebtPayment, error)
	DeletePayment(ctx context.Context, paymentID string) error
	CountPayments(ctx context.Context, debtID string) (int, error)
	List(ctx context.Context, companyID string, f DebtFilter) ([]*entity.Debt, int, error)
	// MarkOverdue pasa a OVERDUE las deudas abiertas vencidas antes de today; devuelve cuántas cambió.
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
	SummaryByPartner(ctx context.Context, companyID, debtType, partnerID string) (*PartnerDebtSummary, error)
}
