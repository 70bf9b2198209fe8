package dto

import "time"

// CreateCompanyRequest entrada para crear una empresa.
type CreateCompanyRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	TaxCode string `json:"tax_code" validate:"required,min=1,max=20"`
	Address string `json:"address" validate:"max=500"`
	Phone   string `json:"phone" validate:"max=30"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// UpdateCompanyRequest entrada para actualizar una empresa (campos opcionales).
type UpdateCompanyRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	TaxCode *string `json:"tax_code" validate:"omitempty,min=1,max=20"`
	Address *string `json:"address" validate:"omitempty,max=500"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
	Email   *string `json:"email" validate:"omitempty,email"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxCode   string    `json:"tax_code"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
