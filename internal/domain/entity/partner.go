package entity

import "time"

// Tipos de contraparte.
const (
	PartnerCustomer = "CUSTOMER"
	PartnerSupplier = "SUPPLIER"
)

// PartnerCodePrefix prefijo del código autogenerado por tipo (KH0001, NCC0001).
func PartnerCodePrefix(kind string) string {
	if kind == PartnerSupplier {
		return "NCC"
	}
	return "KH"
}

// Partner representa un cliente (CUSTOMER) o proveedor (SUPPLIER) de la empresa.
// ContactPerson y BankAccount solo aplican a proveedores.
type Partner struct {
	ID            string
	CompanyID     string
	Kind          string
	Code          string // único por empresa y tipo
	Name          string
	TaxCode       string // único por empresa y tipo cuando no está vacío
	Phone         string
	Email         string
	Address       string
	ContactPerson string
	BankAccount   string
	Note          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
