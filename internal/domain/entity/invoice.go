package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de factura.
const (
	InvoiceStatusCompleted = "COMPLETED"
	InvoiceStatusCancelled = "CANCELLED"
)

// Origen de una factura de compra.
const (
	InvoiceSourceManual = "MANUAL"
	InvoiceSourceXML    = "XML"
	InvoiceSourceOCR    = "OCR"
	InvoiceSourceSync   = "SYNC"
)

// Tipos de factura (para adjuntos y deudas).
const (
	InvoiceTypeImport = "IMPORT"
	InvoiceTypeExport = "EXPORT"
)

// ValidInvoiceSource indica si el origen es soportado.
func ValidInvoiceSource(s string) bool {
	switch s {
	case InvoiceSourceManual, InvoiceSourceXML, InvoiceSourceOCR, InvoiceSourceSync:
		return true
	}
	return false
}

// InvoiceLine línea de factura (compra o venta). Los montos los calcula el dominio.
type InvoiceLine struct {
	ID          string
	InvoiceID   string
	LineNo      int
	ProductID   string
	SKU         string
	ProductName string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	VATRate     decimal.Decimal
	Subtotal    decimal.Decimal // qty*price - discount
	TaxAmount   decimal.Decimal
	Total       decimal.Decimal
	UnitCost    decimal.Decimal // solo ventas: costo promedio al momento de la salida
}

// ImportInvoice factura de compra (mercancía recibida de un proveedor).
type ImportInvoice struct {
	ID             string
	CompanyID      string
	SupplierID     string
	SupplierName   string
	Series         string // ký hiệu
	Number         string
	IssueDate      time.Time
	DueDate        *time.Time
	Note           string
	Source         string
	Status         string
	NetAmount      decimal.Decimal
	TaxAmount      decimal.Decimal
	GrandTotal     decimal.Decimal
	PaidAmount     decimal.Decimal
	AttachmentID   string
	XMLFingerprint string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CancelledAt    *time.Time
	Lines          []InvoiceLine
}

// ExportInvoice factura de venta (mercancía entregada a un cliente).
type ExportInvoice struct {
	ID           string
	CompanyID    string
	CustomerID   string
	CustomerName string
	Number       string
	IssueDate    time.Time
	DueDate      *time.Time
	Note         string
	Status       string
	NetAmount    decimal.Decimal
	TaxAmount    decimal.Decimal
	GrandTotal   decimal.Decimal
	CostTotal    decimal.Decimal // costo de ventas (COGS)
	PaidAmount   decimal.Decimal
	LookupCode   string
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CancelledAt  *time.Time
	Lines        []InvoiceLine
}
