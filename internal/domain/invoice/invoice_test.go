package invoice_test

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/backoffice-api/internal/domain"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/invoice"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals_LineasConDescuentoEIVA(t *testing.T) {
	lines := []entity.InvoiceLine{
		{Quantity: d("3"), UnitPrice: d("100000"), Discount: d("10000"), VATRate: d("10")},
		{Quantity: d("2.5"), UnitPrice: d("33333"), VATRate: d("8")},
	}
	tot, err := invoice.ComputeTotals(lines)
	require.NoError(t, err)

	assert.Equal(t, "290000.00", lines[0].Subtotal.StringFixed(2))
	assert.Equal(t, "29000.00", lines[0].TaxAmount.StringFixed(2))
	// 2.5*33333 = 83332.5 ; 8% = 6666.60
	assert.Equal(t, "83332.50", lines[1].Subtotal.StringFixed(2))
	assert.Equal(t, "6666.60", lines[1].TaxAmount.StringFixed(2))
	assert.Equal(t, 2, lines[1].LineNo)

	assert.Equal(t, "373332.50", tot.Net.StringFixed(2))
	assert.Equal(t, "35666.60", tot.Tax.StringFixed(2))
	assert.Equal(t, "408999.10", tot.Grand.StringFixed(2))
}

func TestComputeTotals_Validaciones(t *testing.T) {
	cases := map[string]entity.InvoiceLine{
		"cantidad cero":    {Quantity: d("0"), UnitPrice: d("1"), VATRate: d("0")},
		"precio negativo":  {Quantity: d("1"), UnitPrice: d("-1"), VATRate: d("0")},
		"iva no admitido":  {Quantity: d("1"), UnitPrice: d("1"), VATRate: d("19")},
		"descuento mayor":  {Quantity: d("1"), UnitPrice: d("10"), Discount: d("11"), VATRate: d("0")},
		"descuento negat.": {Quantity: d("1"), UnitPrice: d("10"), Discount: d("-1"), VATRate: d("0")},
	}
	for name, l := range cases {
		_, err := invoice.ComputeTotals([]entity.InvoiceLine{l})
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), name)
	}

	_, err := invoice.ComputeTotals(nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestValidatePaid(t *testing.T) {
	assert.NoError(t, invoice.ValidatePaid(d("0"), d("10")))
	assert.NoError(t, invoice.ValidatePaid(d("10"), d("10")))
	assert.Error(t, invoice.ValidatePaid(d("10.01"), d("10")))
	assert.Error(t, invoice.ValidatePaid(d("-1"), d("10")))
}

func TestNumbering(t *testing.T) {
	issue := time.Date(2024, 10, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "PX202410-0007", invoice.FormatExportNumber(issue, 7))
	assert.Equal(t, "PX202410", invoice.ExportNumberScope(issue))
	assert.Equal(t, "NCC0012", invoice.FormatPartnerCode("NCC", 12))
	assert.Equal(t, "KH12345", invoice.FormatPartnerCode("KH", 12345))
}

func TestLookupCode_CadenaEstable(t *testing.T) {
	p := invoice.LookupParams{
		Number:          "PX202410-0001",
		IssueDate:       time.Date(2024, 10, 3, 15, 0, 0, 0, time.UTC),
		Grand:           d("1100000"),
		Tax:             d("100000"),
		SellerTaxCode:   "0101234567",
		CustomerTaxCode: "MST 0309876543-001",
	}
	got, err := invoice.LookupCode(p)
	require.NoError(t, err)

	sum := sha512.Sum384([]byte("PX202410-0001|2024-10-03|1100000.00|100000.00|0101234567|0309876543-001"))
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
	assert.Len(t, got, 96)
}

func TestLookupCode_RequiereNumeroYFecha(t *testing.T) {
	_, err := invoice.LookupCode(invoice.LookupParams{IssueDate: time.Now()})
	assert.Error(t, err)
	_, err = invoice.LookupCode(invoice.LookupParams{Number: "PX1"})
	assert.Error(t, err)
}
