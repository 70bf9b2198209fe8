package invoice

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/backoffice-api/pkg/taxcode"
	"github.com/shopspring/decimal"
)

// LookupParams datos que identifican una factura de venta para su código de consulta.
type LookupParams struct {
	Number          string
	IssueDate       time.Time
	Grand           decimal.Decimal
	Tax             decimal.Decimal
	SellerTaxCode   string
	CustomerTaxCode string
}

// LookupCode genera el código de consulta (SHA-384 hex) impreso como QR en la factura.
// Cadena: numero|fecha(YYYY-MM-DD)|total|impuesto|mst_vendedor|mst_cliente, montos con 2 decimales.
func LookupCode(p LookupParams) (string, error) {
	number := strings.Join(strings.Fields(p.Number), "")
	if number == "" {
		return "", fmt.Errorf("invoice: número obligatorio para el código de consulta")
	}
	if p.IssueDate.IsZero() {
		return "", fmt.Errorf("invoice: fecha obligatoria para el código de consulta")
	}
	cadena := strings.Join([]string{
		number,
		p.IssueDate.Format("2006-01-02"),
		formatAmount(p.Grand),
		formatAmount(p.Tax),
		taxcode.Normalize(p.SellerTaxCode),
		taxcode.Normalize(p.CustomerTaxCode),
	}, "|")
	hash := sha512.Sum384([]byte(cadena))
	return hex.EncodeToString(hash[:]), nil
}

// formatAmount sin separador de miles, punto decimal, 2 decimales (1500.00).
func formatAmount(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
