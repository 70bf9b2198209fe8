package billing

import (
	"context"

	"github.com/jhoicas/backoffice-api/internal/application/dto"
	"github.com/jhoicas/backoffice-api/internal/application/ports"
	"github.com/jhoicas/backoffice-api/internal/domain/entity"
	"github.com/jhoicas/backoffice-api/internal/domain/invoice"
	"github.com/jhoicas/backoffice-api/internal/domain/repository"
	"github.com/jhoicas/backoffice-api/pkg/taxcode"
	"github.com/shopspring/decimal"
)

// tolerancia de redondeo al comparar totales leídos con los recalculados.
var totalsTolerance = decimal.NewFromInt(1)

// previewMatcher cruza una factura leída con los datos de la empresa:
// proveedor por MST, productos por código (SKU) y duplicados.
type previewMatcher struct {
	companies repository.CompanyRepository
	partners  repository.PartnerRepository
	products  repository.ProductRepository
	imports   repository.ImportInvoiceRepository
}

func (m previewMatcher) build(ctx context.Context, companyID, source string, p *ports.ParsedInvoice) (*dto.InvoicePreviewDTO, error) {
	out := &dto.InvoicePreviewDTO{
		Source:      source,
		Seller:      dto.PreviewPartyDTO{Name: p.Seller.Name, TaxCode: p.Seller.TaxCode, Address: p.Seller.Address},
		Buyer:       dto.PreviewPartyDTO{Name: p.Buyer.Name, TaxCode: p.Buyer.TaxCode, Address: p.Buyer.Address},
		Series:      p.Series,
		Number:      p.Number,
		Currency:    p.Currency,
		NetAmount:   p.NetAmount,
		TaxAmount:   p.TaxAmount,
		GrandTotal:  p.GrandTotal,
		Fingerprint: p.Fingerprint,
		Lines:       make([]dto.PreviewLineDTO, 0, len(p.Lines)),
	}
	if !p.IssueDate.IsZero() {
		out.IssueDate = p.IssueDate.Format(dto.DateLayout)
	}

	if company, err := m.companies.GetByID(ctx, companyID); err != nil {
		return nil, err
	} else if company != nil && company.TaxCode != "" && p.Buyer.TaxCode != "" &&
		taxcode.Normalize(company.TaxCode) != taxcode.Normalize(p.Buyer.TaxCode) {
		out.Warnings = append(out.Warnings, "la MST del comprador no coincide con la de la empresa")
	}

	if sellerTax := taxcode.Normalize(p.Seller.TaxCode); sellerTax != "" {
		switch {
		case taxcode.Validate(sellerTax) != nil:
			out.Warnings = append(out.Warnings, "la MST del vendedor no tiene un formato válido")
		case !taxcode.HasValidCheckDigit(sellerTax):
			out.Warnings = append(out.Warnings, "la MST del vendedor no supera el dígito de control")
		}
		supplier, err := m.partners.GetByTaxCode(ctx, companyID, entity.PartnerSupplier, sellerTax)
		if err != nil {
			return nil, err
		}
		if supplier != nil {
			out.MatchedSupplierID = supplier.ID
		} else {
			out.Warnings = append(out.Warnings, "proveedor no registrado; se creará al importar")
		}
	} else {
		out.Warnings = append(out.Warnings, "el documento no trae la MST del vendedor")
	}

	if p.Fingerprint != "" {
		dup, err := m.imports.ExistsByFingerprint(ctx, companyID, p.Fingerprint)
		if err != nil {
			return nil, err
		}
		out.Duplicate = dup
	}
	if !out.Duplicate && out.MatchedSupplierID != "" && p.Number != "" {
		dup, err := m.imports.ExistsByNumber(ctx, companyID, out.MatchedSupplierID, p.Series, p.Number)
		if err != nil {
			return nil, err
		}
		out.Duplicate = dup
	}

	sum, tax := decimal.Zero, decimal.Zero
	unmatched := 0
	for _, l := range p.Lines {
		line := dto.PreviewLineDTO{
			Code:      l.Code,
			Name:      l.Name,
			Unit:      l.Unit,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			Amount:    l.Amount,
			VATRate:   l.VATRate,
		}
		if l.Code != "" {
			prod, err := m.products.GetBySKU(ctx, companyID, l.Code)
			if err != nil {
				return nil, err
			}
			if prod != nil {
				line.MatchedProductID = prod.ID
			}
		}
		if line.MatchedProductID == "" {
			unmatched++
		}
		sum = sum.Add(l.Amount)
		tax = tax.Add(invoice.TaxOn(l.Amount, l.VATRate))
		out.Lines = append(out.Lines, line)
	}
	if unmatched > 0 {
		out.Warnings = append(out.Warnings, "hay productos sin coincidencia en el inventario")
	}
	if p.NetAmount.IsPositive() && sum.Sub(p.NetAmount).Abs().GreaterThan(totalsTolerance) {
		out.Warnings = append(out.Warnings, "la suma de las líneas no coincide con el total neto")
	}
	if p.GrandTotal.IsPositive() && sum.Add(tax).Sub(p.GrandTotal).Abs().GreaterThan(totalsTolerance) {
		out.Warnings = append(out.Warnings, "el total recalculado no coincide con el total a pagar del documento")
	}
	return out, nil
}
