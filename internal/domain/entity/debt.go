package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de deuda.
const (
	DebtPayable    = "PAYABLE"    // por pagar a proveedor
	DebtReceivable = "RECEIVABLE" // por cobrar a cliente
)

// Estados de deuda.
const (
	DebtUnpaid    = "UNPAID"
	DebtPartial   = "PARTIAL"
	DebtPaid      = "PAID"
	DebtOverdue   = "OVERDUE"
	DebtCancelled = "CANCELLED"
)

// Medios de pago.
const (
	PaymentCash         = "CASH"
	PaymentBankTransfer = "BANK_TRANSFER"
	PaymentOther        = "OTHER"
)

// ValidPaymentMethod indica si el medio de pago es soportado.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentBankTransfer, PaymentOther:
		return true
	}
	return false
}

// Debt saldo por pagar o por cobrar originado en una factura.
type Debt struct {
	ID            string
	CompanyID     string
	Type          string
	PartnerID     string
	PartnerName   string
	InvoiceType   string
	InvoiceID     string
	InvoiceNumber string
	Amount        decimal.Decimal
	PaidAmount    decimal.Decimal
	DueDate       *time.Time
	Status        string
	Note          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Payments      []DebtPayment
}

// Remaining saldo pendiente.
func (d *Debt) Remaining() decimal.Decimal {
	r := d.Amount.Sub(d.PaidAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// DebtPayment abono registrado contra una deuda.
type DebtPayment struct {
	ID        string
	DebtID    string
	Amount    decimal.Decimal
	Method    string
	PaidAt    time.Time
	Reference string
	Note      string
	CreatedBy string
	CreatedAt time.Time
}
