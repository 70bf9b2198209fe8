// Package invoice contiene las reglas de cálculo de facturas de compra y venta.
package invoice

import (
	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Tasas de IVA admitidas (porcentaje).
var allowedVAT = []decimal.Decimal{
	decimal.NewFromInt(0),
	decimal.NewFromInt(5),
	decimal.NewFromInt(8),
	decimal.NewFromInt(10),
}

// ValidVATRate indica si la tasa está en {0, 5, 8, 10}.
func ValidVATRate(rate decimal.Decimal) bool {
	for _, r := range allowedVAT {
		if rate.Equal(r) {
			return true
		}
	}
	return false
}

// Totals totales de cabecera.
type Totals struct {
	Net   decimal.Decimal
	Tax   decimal.Decimal
	Grand decimal.Decimal
}

// ComputeLine calcula subtotal, impuesto y total de una línea y valida sus montos.
func ComputeLine(l *entity.InvoiceLine) error {
	if !l.Quantity.IsPositive() {
		return domain.Invalid("quantity", "debe ser mayor que cero")
	}
	if l.UnitPrice.IsNegative() {
		return domain.Invalid("unit_price", "no puede ser negativo")
	}
	if l.Discount.IsNegative() {
		return domain.Invalid("discount", "no puede ser negativo")
	}
	if !ValidVATRate(l.VATRate) {
		return domain.Invalid("vat_rate", "debe ser 0, 5, 8 o 10")
	}
	gross := l.Quantity.Mul(l.UnitPrice)
	if l.Discount.GreaterThan(gross) {
		return domain.Invalid("discount", "supera el valor de la línea")
	}
	l.Subtotal = gross.Sub(l.Discount).Round(2)
	l.TaxAmount = TaxOn(l.Subtotal, l.VATRate)
	l.Total = l.Subtotal.Add(l.TaxAmount)
	return nil
}

// TaxOn impuesto de un subtotal a la tasa rate (porcentaje), redondeado a 2 decimales.
func TaxOn(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Div(hundred).Round(2)
}

// ComputeTotals calcula todas las líneas y devuelve los totales de la factura.
func ComputeTotals(lines []entity.InvoiceLine) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, domain.Invalid("lines", "la factura debe tener al menos una línea")
	}
	var t Totals
	for i := range lines {
		lines[i].LineNo = i + 1
		if err := ComputeLine(&lines[i]); err != nil {
			return Totals{}, err
		}
		t.Net = t.Net.Add(lines[i].Subtotal)
		t.Tax = t.Tax.Add(lines[i].TaxAmount)
	}
	t.Grand = t.Net.Add(t.Tax)
	return t, nil
}

// ValidatePaid verifica 0 <= pagado <= total.
func ValidatePaid(paid, grand decimal.Decimal) error {
	if paid.IsNegative() {
		return domain.Invalid("paid_amount", "no puede ser negativo")
	}
	if paid.GreaterThan(grand) {
		return domain.Invalid("paid_amount", "supera el total de la factura")
	}
	return nil
}
