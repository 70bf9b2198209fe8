package entity

import "time"

// Estados de empresa.
const (
	CompanyStatusActive    = "active"
	CompanyStatusSuspended = "suspended"
)

// Company representa la empresa comercializadora (tenant). Sus datos fiscales
// se imprimen en facturas y estados de cuenta.
type Company struct {
	ID        string
	Name      string
	TaxCode   string // MST (mã số thuế)
	Address   string
	Phone     string
	Email     string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
