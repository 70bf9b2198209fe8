package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DebtListQuery filtros de GET /api/debts.
type DebtListQuery struct {
	ListQuery
	Type        string `query:"type" validate:"omitempty,oneof=PAYABLE RECEIVABLE"`
	Status      string `query:"status" validate:"omitempty,oneof=UNPAID PARTIAL PAID OVERDUE CANCELLED"`
	PartnerID   string `query:"partner_id" validate:"omitempty,uuid"`
	OverdueOnly bool   `query:"overdue_only"`
}

// PaymentRequest body de POST /api/debts/:id/payments.
type PaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" swaggertype:"string"`
	Method    string          `json:"method" validate:"required,oneof=CASH BANK_TRANSFER OTHER"`
	PaidAt    string          `json:"paid_at" validate:"omitempty,datetime=2006-01-02"`
	Reference string          `json:"reference" validate:"omitempty,max=100"`
	Note      string          `json:"note" validate:"omitempty,max=500"`
}

// PaymentResponse abono registrado.
type PaymentResponse struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string"`
	Method    string          `json:"method"`
	PaidAt    string          `json:"paid_at"`
	Reference string          `json:"reference,omitempty"`
	Note      string          `json:"note,omitempty"`
	CreatedBy string          `json:"created_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// DebtResponse deuda con saldo y abonos.
type DebtResponse struct {
	ID            string            `json:"id"`
	Type          string            `json:"type"`
	PartnerID     string            `json:"partner_id"`
	PartnerName   string            `json:"partner_name"`
	InvoiceType   string            `json:"invoice_type"`
	InvoiceID     string            `json:"invoice_id"`
	InvoiceNumber string            `json:"invoice_number"`
	Amount        decimal.Decimal   `json:"amount" swaggertype:"string"`
	PaidAmount    decimal.Decimal   `json:"paid_amount" swaggertype:"string"`
	Remaining     decimal.Decimal   `json:"remaining" swaggertype:"string"`
	DueDate       string            `json:"due_date,omitempty"`
	Status        string            `json:"status"`
	Note          string            `json:"note,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Payments      []PaymentResponse `json:"payments,omitempty"`
}

// DebtListResponse lista paginada de deudas.
type DebtListResponse struct {
	Items []DebtResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
