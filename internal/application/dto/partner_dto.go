package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartnerRequest body de POST/PUT /api/customers y /api/suppliers.
// Code vacío en la creación genera KH0001 / NCC0001.
type PartnerRequest struct {
	Code          string `json:"code" validate:"omitempty,max=30"`
	Name          string `json:"name" validate:"required,min=1,max=200"`
	TaxCode       string `json:"tax_code" validate:"omitempty,max=20"`
	Phone         string `json:"phone" validate:"omitempty,max=30"`
	Email         string `json:"email" validate:"omitempty,email"`
	Address       string `json:"address" validate:"omitempty,max=500"`
	ContactPerson string `json:"contact_person" validate:"omitempty,max=200"`
	BankAccount   string `json:"bank_account" validate:"omitempty,max=100"`
	Note          string `json:"note" validate:"omitempty,max=1000"`
}

// PartnerResponse cliente o proveedor en respuestas.
type PartnerResponse struct {
	ID            string    `json:"id"`
	Kind          string    `json:"kind"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	TaxCode       string    `json:"tax_code,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	ContactPerson string    `json:"contact_person,omitempty"`
	BankAccount   string    `json:"bank_account,omitempty"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// PartnerListResponse lista paginada de clientes o proveedores.
type PartnerListResponse struct {
	Items []PartnerResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// PartnerDebtSummaryResponse saldo de la contraparte más sus deudas abiertas.
type PartnerDebtSummaryResponse struct {
	Partner      PartnerResponse `json:"partner"`
	DebtType     string          `json:"debt_type"`
	TotalAmount  decimal.Decimal `json:"total_amount" swaggertype:"string"`
	TotalPaid    decimal.Decimal `json:"total_paid" swaggertype:"string"`
	Outstanding  decimal.Decimal `json:"outstanding" swaggertype:"string"`
	OpenCount    int             `json:"open_count"`
	OverdueCount int             `json:"overdue_count"`
	OpenDebts    []DebtResponse  `json:"open_debts"`
}
