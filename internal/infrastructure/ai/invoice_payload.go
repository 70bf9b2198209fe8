package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-api/internal/application/ports"
)

// extractionPrompt define el rol del modelo y el formato de salida, común a ambos proveedores.
const extractionPrompt = `Eres un contador experto en facturas de Vietnam (hóa đơn GTGT / hóa đơn bán hàng).
Lee la factura adjunta y devuelve ÚNICAMENTE un objeto JSON (sin markdown, sin texto adicional) con esta estructura exacta:
{
  "seller": {"name": "", "tax_code": "", "address": ""},
  "buyer": {"name": "", "tax_code": "", "address": ""},
  "series": "<ký hiệu, ej. 1C24TAA>",
  "number": "<số hóa đơn>",
  "issue_date": "<YYYY-MM-DD>",
  "currency": "VND",
  "lines": [
    {"code": "", "name": "", "unit": "", "quantity": 0, "unit_price": 0, "amount": 0, "vat_rate": 0}
  ],
  "net_amount": 0,
  "tax_amount": 0,
  "grand_total": 0
}

Reglas:
- Montos como números sin separadores de miles (1250000, no "1.250.000").
- vat_rate en porcentaje: 0, 5, 8 o 10. "KCT" o "không chịu thuế" = 0.
- amount es el importe de la línea antes de IVA.
- Campos que no se leen: cadena vacía o 0. No inventes datos.`

// jsonBlockRe extrae el primer objeto JSON del texto aunque el modelo lo envuelva en markdown.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

type partyPayload struct {
	Name    string `json:"name"`
	TaxCode string `json:"tax_code"`
	Address string `json:"address"`
}

type linePayload struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
	VATRate   decimal.Decimal `json:"vat_rate"`
}

// invoicePayload JSON que esperamos recibir del modelo.
type invoicePayload struct {
	Seller     partyPayload    `json:"seller"`
	Buyer      partyPayload    `json:"buyer"`
	Series     string          `json:"series"`
	Number     string          `json:"number"`
	IssueDate  string          `json:"issue_date"`
	Currency   string          `json:"currency"`
	Lines      []linePayload   `json:"lines"`
	NetAmount  decimal.Decimal `json:"net_amount"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// parseInvoiceJSON limpia la respuesta del modelo y la convierte al formato común.
func parseInvoiceJSON(raw string) (*ports.ParsedInvoice, error) {
	clean := extractJSON(raw)
	if clean == "" {
		return nil, fmt.Errorf("AI: no se encontró JSON válido en la respuesta del modelo (respuesta: %s)", truncate(raw, 300))
	}
	var p invoicePayload
	if err := json.Unmarshal([]byte(clean), &p); err != nil {
		return nil, fmt.Errorf("AI: parsear JSON de la factura: %w (JSON extraído: %s)", err, truncate(clean, 300))
	}

	out := &ports.ParsedInvoice{
		Seller:     ports.ParsedParty(p.Seller),
		Buyer:      ports.ParsedParty(p.Buyer),
		Series:     strings.TrimSpace(p.Series),
		Number:     strings.TrimSpace(p.Number),
		Currency:   strings.ToUpper(strings.TrimSpace(p.Currency)),
		NetAmount:  p.NetAmount,
		TaxAmount:  p.TaxAmount,
		GrandTotal: p.GrandTotal,
	}
	if out.Currency == "" {
		out.Currency = "VND"
	}
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(p.IssueDate)); err == nil {
		out.IssueDate = t
	}
	for _, l := range p.Lines {
		if strings.TrimSpace(l.Name) == "" {
			continue
		}
		gross := l.Quantity.Mul(l.UnitPrice)
		amount := l.Amount
		if amount.IsZero() {
			amount = gross
		}
		var discount decimal.Decimal
		if amount.LessThan(gross) {
			discount = gross.Sub(amount)
		}
		out.Lines = append(out.Lines, ports.ParsedLine{
			Code:      strings.TrimSpace(l.Code),
			Name:      strings.TrimSpace(l.Name),
			Unit:      strings.TrimSpace(l.Unit),
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  discount,
			Amount:    amount,
			VATRate:   normalizeVATRate(l.VATRate),
		})
	}
	return out, nil
}

// normalizeVATRate fuerza el valor al conjunto {0, 5, 8, 10}.
// Si el modelo devuelve algo distinto, elige el más cercano.
func normalizeVATRate(raw decimal.Decimal) decimal.Decimal {
	valid := []int64{0, 5, 8, 10}
	best := decimal.NewFromInt(valid[0])
	bestDiff := raw.Sub(best).Abs()
	for _, v := range valid[1:] {
		d := decimal.NewFromInt(v)
		if diff := raw.Sub(d).Abs(); diff.LessThan(bestDiff) {
			best, bestDiff = d, diff
		}
	}
	return best
}

// extractJSON extrae el primer objeto JSON bien formado de un texto libre.
// Estrategia en dos pasos:
//  1. Eliminar bloques de código markdown (```json … ``` o ``` … ```).
//  2. Usar regex para capturar el primer bloque { … }.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if end := strings.LastIndex(after, "```"); end != -1 {
			after = after[:end]
		}
		text = strings.TrimSpace(after)
	}
	if strings.HasPrefix(text, "{") {
		return text
	}
	return strings.TrimSpace(jsonBlockRe.FindString(text))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
