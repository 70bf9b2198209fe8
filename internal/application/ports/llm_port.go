package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ParsedParty vendedor o comprador leído de un documento.
type ParsedParty struct {
	Name    string
	TaxCode string
	Address string
}

// ParsedLine línea de mercancía leída de un documento.
type ParsedLine struct {
	Code      string
	Name      string
	Unit      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal // monto, ya descontado de Amount
	Amount    decimal.Decimal // antes de impuestos
	VATRate   decimal.Decimal // porcentaje; KCT/KKKNT -> 0
}

// ParsedInvoice factura extraída de un XML electrónico o por OCR.
// Fingerprint solo se llena para XML (digest de la forma canónica).
type ParsedInvoice struct {
	Seller      ParsedParty
	Buyer       ParsedParty
	Series      string
	Number      string
	IssueDate   time.Time
	Currency    string
	Lines       []ParsedLine
	NetAmount   decimal.Decimal
	TaxAmount   decimal.Decimal
	GrandTotal  decimal.Decimal
	Fingerprint string
}

// InvoiceExtractor define el puerto de salida para los servicios de inteligencia artificial
// que leen facturas escaneadas. Cualquier adaptador (Anthropic, Gemini, mock) implementa este contrato.
type InvoiceExtractor interface {
	// ExtractInvoice analiza la imagen o PDF y devuelve los datos de la factura.
	// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
	ExtractInvoice(ctx context.Context, fileName, mimeType string, content []byte) (*ParsedInvoice, error)
}

// InvoiceXMLParser interpreta el XML de una factura electrónica.
type InvoiceXMLParser interface {
	Parse(data []byte) (*ParsedInvoice, error)
}
