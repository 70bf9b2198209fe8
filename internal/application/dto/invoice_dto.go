package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceLineRequest línea de factura. VATRate nil toma la tasa del producto.
type InvoiceLineRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal  `json:"quantity" swaggertype:"string"`
	UnitPrice decimal.Decimal  `json:"unit_price" swaggertype:"string"`
	Discount  decimal.Decimal  `json:"discount" swaggertype:"string"`
	VATRate   *decimal.Decimal `json:"vat_rate,omitempty" swaggertype:"string"`
}

// CreateImportRequest body para POST /api/imports.
type CreateImportRequest struct {
	SupplierID   string               `json:"supplier_id" validate:"required,uuid"`
	Series       string               `json:"series" validate:"omitempty,max=20"`
	Number       string               `json:"number" validate:"required,min=1,max=50"`
	IssueDate    string               `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate      string               `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Note         string               `json:"note" validate:"omitempty,max=1000"`
	PaidAmount   decimal.Decimal      `json:"paid_amount" swaggertype:"string"`
	AttachmentID string               `json:"attachment_id" validate:"omitempty,uuid"`
	Lines        []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateExportRequest body para POST /api/exports. Number vacío se genera como PX<yyyymm>-NNNN.
type CreateExportRequest struct {
	CustomerID string               `json:"customer_id" validate:"required,uuid"`
	Number     string               `json:"number" validate:"omitempty,max=50"`
	IssueDate  string               `json:"issue_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate    string               `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Note       string               `json:"note" validate:"omitempty,max=1000"`
	PaidAmount decimal.Decimal      `json:"paid_amount" swaggertype:"string"`
	Lines      []InvoiceLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// InvoiceListQuery filtros comunes de GET /api/imports y /api/exports.
type InvoiceListQuery struct {
	ListQuery
	PartnerID string `query:"partner_id" validate:"omitempty,uuid"`
	Status    string `query:"status" validate:"omitempty,oneof=COMPLETED CANCELLED"`
	Source    string `query:"source" validate:"omitempty,oneof=MANUAL XML OCR SYNC"`
	StartDate string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// InvoiceLineResponse línea en la respuesta.
type InvoiceLineResponse struct {
	LineNo      int             `json:"line_no"`
	ProductID   string          `json:"product_id"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity" swaggertype:"string"`
	UnitPrice   decimal.Decimal `json:"unit_price" swaggertype:"string"`
	Discount    decimal.Decimal `json:"discount" swaggertype:"string"`
	VATRate     decimal.Decimal `json:"vat_rate" swaggertype:"string"`
	Subtotal    decimal.Decimal `json:"subtotal" swaggertype:"string"`
	TaxAmount   decimal.Decimal `json:"tax_amount" swaggertype:"string"`
	Total       decimal.Decimal `json:"total" swaggertype:"string"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty" swaggertype:"string"` // solo ventas
}

// ImportInvoiceResponse factura de compra con detalle.
type ImportInvoiceResponse struct {
	ID             string                `json:"id"`
	SupplierID     string                `json:"supplier_id"`
	SupplierName   string                `json:"supplier_name"`
	Series         string                `json:"series,omitempty"`
	Number         string                `json:"number"`
	IssueDate      string                `json:"issue_date"`
	DueDate        string                `json:"due_date,omitempty"`
	Note           string                `json:"note,omitempty"`
	Source         string                `json:"source"`
	Status         string                `json:"status"`
	NetAmount      decimal.Decimal       `json:"net_amount" swaggertype:"string"`
	TaxAmount      decimal.Decimal       `json:"tax_amount" swaggertype:"string"`
	GrandTotal     decimal.Decimal       `json:"grand_total" swaggertype:"string"`
	PaidAmount     decimal.Decimal       `json:"paid_amount" swaggertype:"string"`
	Remaining      decimal.Decimal       `json:"remaining" swaggertype:"string"`
	AttachmentID   string                `json:"attachment_id,omitempty"`
	XMLFingerprint string                `json:"xml_fingerprint,omitempty"`
	CreatedBy      string                `json:"created_by,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	CancelledAt    *time.Time            `json:"cancelled_at,omitempty"`
	Lines          []InvoiceLineResponse `json:"lines,omitempty"`
}

// ImportListResponse lista paginada de compras.
type ImportListResponse struct {
	Items []ImportInvoiceResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// ExportInvoiceResponse factura de venta con detalle.
type ExportInvoiceResponse struct {
	ID           string                `json:"id"`
	CustomerID   string                `json:"customer_id"`
	CustomerName string                `json:"customer_name"`
	Number       string                `json:"number"`
	IssueDate    string                `json:"issue_date"`
	DueDate      string                `json:"due_date,omitempty"`
	Note         string                `json:"note,omitempty"`
	Status       string                `json:"status"`
	NetAmount    decimal.Decimal       `json:"net_amount" swaggertype:"string"`
	TaxAmount    decimal.Decimal       `json:"tax_amount" swaggertype:"string"`
	GrandTotal   decimal.Decimal       `json:"grand_total" swaggertype:"string"`
	CostTotal    decimal.Decimal       `json:"cost_total" swaggertype:"string"`
	GrossProfit  decimal.Decimal       `json:"gross_profit" swaggertype:"string"`
	PaidAmount   decimal.Decimal       `json:"paid_amount" swaggertype:"string"`
	Remaining    decimal.Decimal       `json:"remaining" swaggertype:"string"`
	LookupCode   string                `json:"lookup_code"` // SHA-384 impreso como QR
	CreatedBy    string                `json:"created_by,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	CancelledAt  *time.Time            `json:"cancelled_at,omitempty"`
	Lines        []InvoiceLineResponse `json:"lines,omitempty"`
}

// ExportListResponse lista paginada de ventas.
type ExportListResponse struct {
	Items []ExportInvoiceResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// PreviewPartyDTO vendedor o comprador leído del documento.
type PreviewPartyDTO struct {
	Name    string `json:"name"`
	TaxCode string `json:"tax_code,omitempty"`
	Address string `json:"address,omitempty"`
}

// PreviewLineDTO línea extraída del XML o por OCR.
type PreviewLineDTO struct {
	Code             string          `json:"code,omitempty"`
	Name             string          `json:"name"`
	Unit             string          `json:"unit,omitempty"`
	Quantity         decimal.Decimal `json:"quantity" swaggertype:"string"`
	UnitPrice        decimal.Decimal `json:"unit_price" swaggertype:"string"`
	Discount         decimal.Decimal `json:"discount" swaggertype:"string"`
	Amount           decimal.Decimal `json:"amount" swaggertype:"string"`
	VATRate          decimal.Decimal `json:"vat_rate" swaggertype:"string"` // KCT/KKKNT -> 0
	MatchedProductID string          `json:"matched_product_id,omitempty"`
}

// InvoicePreviewDTO extracción de solo lectura de un XML o de una imagen/PDF.
type InvoicePreviewDTO struct {
	Source            string           `json:"source"` // XML | OCR
	Seller            PreviewPartyDTO  `json:"seller"`
	Buyer             PreviewPartyDTO  `json:"buyer"`
	Series            string           `json:"series,omitempty"`
	Number            string           `json:"number"`
	IssueDate         string           `json:"issue_date,omitempty"`
	Currency          string           `json:"currency,omitempty"`
	Lines             []PreviewLineDTO `json:"lines"`
	NetAmount         decimal.Decimal  `json:"net_amount" swaggertype:"string"`
	TaxAmount         decimal.Decimal  `json:"tax_amount" swaggertype:"string"`
	GrandTotal        decimal.Decimal  `json:"grand_total" swaggertype:"string"`
	MatchedSupplierID string           `json:"matched_supplier_id,omitempty"`
	Duplicate         bool             `json:"duplicate"`
	Fingerprint       string           `json:"fingerprint,omitempty"`
	Warnings          []string         `json:"warnings,omitempty"`
}

// XMLImportOptions campos de formulario de POST /api/imports/xml.
type XMLImportOptions struct {
	AutoCreateProducts bool            `form:"auto_create_products"`
	PaidAmount         decimal.Decimal `form:"paid_amount"`
	DueDate            string          `form:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Note               string          `form:"note" validate:"omitempty,max=1000"`
}

// ParseDate interpreta YYYY-MM-DD en la zona dada; vacío devuelve nil.
func ParseDate(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate formatea una fecha opcional como YYYY-MM-DD.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
